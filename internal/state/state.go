package state

import (
	"crocodile-be/internal/config"
	"crocodile-be/internal/service"
)

type AppState struct {
	Cfg     *config.AppConfig
	RoomSvc *service.RoomService
}

func NewAppState(
	cfg *config.AppConfig,
	roomSvc *service.RoomService,
) *AppState {
	return &AppState{
		Cfg:     cfg,
		RoomSvc: roomSvc,
	}
}
