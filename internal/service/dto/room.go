package dto

type CreateRoomRequest struct {
	RoomName string `json:"room_name"`
}

type CreateRoomResponse struct {
	RoomID string `json:"room_id"`
}

// 加入通过 WebSocket 的首帧完成：任何阶段都允许加入，
// 带 player_id 表示断线重连
type JoinRoomRequest struct {
	RoomID   string `json:"room_id"`
	Name     string `json:"name"`
	PlayerID string `json:"player_id,omitempty"`
}

type JoinRoomResponse struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}
