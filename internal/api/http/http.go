package http

import (
	"fmt"

	"crocodile-be/internal/api/http/websocket"
	"crocodile-be/internal/state"

	"github.com/kataras/iris/v12"
)

func RunServer(appState *state.AppState) {
	app := iris.Default()

	api := app.Party("/api/v1")

	api.Post("/rooms/create", CreateRoom(appState))

	api.Get("/ws/join", websocket.JoinGame(appState))

	addr := fmt.Sprintf(
		"%s:%d",
		appState.Cfg.Host,
		appState.Cfg.Port,
	)

	app.Listen(addr)
}
