package game

// Responder 是引擎对外的唯一出站边界。
// 每次调用入队一批权威动作，按调用顺序投递给接收方。
// 生产实现在 service 层（基于每玩家的响应通道），
// 测试用 mock 在这一层截获全部出站流量
type Responder interface {
	SendToOne(playerID string, actions []Action)
	SendToAll(actions []Action)
	SendToAllButOne(excludedID string, actions []Action)
}
