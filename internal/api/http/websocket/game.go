package websocket

import (
	"encoding/json"
	"time"

	"crocodile-be/internal/service/dto"
	"crocodile-be/internal/service/game"
	"crocodile-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

func JoinGame(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		conn.SetPongHandler(heartbeatHandler(conn))

		clientIP := ctx.RemoteAddr()

		// 读取首次请求，获取必要的参数
		_, msg, err := conn.ReadMessage()
		if err != nil {
			zap.L().Error(
				"读取首次请求失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			return
		}

		var joinReq dto.JoinRoomRequest

		if err := json.Unmarshal(msg, &joinReq); err != nil {
			zap.L().Error(
				"解析首次请求失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)

			return
		}

		// 缓冲要盖过入场时的名单和历史回放
		respCh := make(chan []game.Action, 64)

		playerID, reqCh, err := appState.RoomSvc.JoinRoom(joinReq, respCh)
		if err != nil {
			zap.L().Error(
				"加入房间失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)

			return
		}

		zap.L().Info(
			"玩家成功加入房间",
			zap.String("client_ip", clientIP),
			zap.String("room_id", joinReq.RoomID),
			zap.String("player_id", playerID),
			zap.String("player_name", joinReq.Name),
		)

		// 写协程启动前先把加入确认发给客户端，
		// 保证它是客户端收到的第一帧
		if err := conn.WriteJSON(dto.JoinRoomResponse{
			RoomID:   joinReq.RoomID,
			PlayerID: playerID,
		}); err != nil {
			zap.L().Error(
				"发送加入确认失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)

			appState.RoomSvc.LeaveRoom(joinReq.RoomID, playerID, respCh)
			return
		}

		// 写协程的退出信号
		writeDoneCh := make(chan struct{})
		defer close(writeDoneCh)

		// 写入协程
		go func() {
			ticker := time.NewTicker(HEARTBEAT_INTERVAL)
			defer ticker.Stop()

			for {
				select {
				case <-writeDoneCh:
					zap.L().Info(
						"WebSocket写入协程退出",
						zap.String("client_ip", clientIP),
					)
					return

				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))

					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						zap.L().Error(
							"发送心跳失败",
							zap.String("client_ip", clientIP),
							zap.Error(err),
						)
						return
					}

					zap.L().Debug(
						"发送心跳",
						zap.String("client_ip", clientIP),
					)

				case actions, ok := <-respCh:
					// 通道关闭说明绑定已解除（离开或被重连顶替）
					if !ok {
						zap.L().Info(
							"响应通道已关闭，退出写协程",
							zap.String("client_ip", clientIP),
						)
						return
					}

					if err := conn.WriteJSON(actions); err != nil {
						zap.L().Error(
							"发送动作失败",
							zap.String("client_ip", clientIP),
							zap.Error(err),
						)
						return
					}

					zap.L().Debug(
						"发送动作",
						zap.String("client_ip", clientIP),
						zap.Any("actions", actions),
					)
				}
			}
		}()

		// 读取协程（主协程）
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(
					err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					zap.L().Error(
						"读取消息失败",
						zap.String("client_ip", clientIP),
						zap.Error(err),
					)
				}

				break
			}

			// 解析消息
			var action game.Action

			if err := json.Unmarshal(msg, &action); err != nil {
				zap.L().Error(
					"解析消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)

				continue
			}

			// 将动作发送到房间的事件循环
			event := game.Event{
				FromID: playerID,
				Action: action,
			}

			select {
			case reqCh <- event:
				zap.L().Debug(
					"发送动作到事件循环",
					zap.String("client_ip", clientIP),
					zap.String("action_type", action.Type),
				)
			default:
				zap.L().Error(
					"发送动作到事件循环失败：请求通道已满",
					zap.String("client_ip", clientIP),
					zap.String("action_type", action.Type),
				)
			}
		}

		// 读循环退出，表示客户端断开连接。
		// 解绑通道并通知引擎，玩家进入重连宽限期
		zap.L().Info(
			"客户端连接断开",
			zap.String("client_ip", clientIP),
			zap.String("player_id", playerID),
		)

		appState.RoomSvc.LeaveRoom(joinReq.RoomID, playerID, respCh)
	}
}
