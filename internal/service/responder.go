package service

import (
	"sync"

	"crocodile-be/internal/service/game"

	"go.uber.org/zap"
)

// playerChannelResponder 是 Responder 的生产实现：
// 每个在线玩家对应一个响应通道，由该玩家的写协程消费。
// 发送方是房间的事件循环，单一发送者保证了每个接收方
// 看到的动作顺序与入队顺序一致
type playerChannelResponder struct {
	mu    sync.RWMutex
	chans map[string]chan []game.Action
}

func newPlayerChannelResponder() *playerChannelResponder {
	return &playerChannelResponder{
		chans: make(map[string]chan []game.Action),
	}
}

// Attach 绑定玩家的响应通道。
// 同一玩家重复绑定（顶替重连）时关闭旧通道，
// 让旧连接的写协程退出
func (r *playerChannelResponder) Attach(playerID string, ch chan []game.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.chans[playerID]; ok && old != ch {
		close(old)

		zap.L().Debug(
			"已关闭旧连接的响应通道",
			zap.String("player_id", playerID),
		)
	}

	r.chans[playerID] = ch
}

// Detach 解绑并关闭玩家的响应通道，返回是否真的解绑了。
// 传入 ch 时只在当前绑定仍是该通道时生效，
// 防止旧连接的收尾误关顶替后的新连接
func (r *playerChannelResponder) Detach(playerID string, ch chan []game.Action) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.chans[playerID]
	if !ok {
		return false
	}

	if ch != nil && current != ch {
		return false
	}

	close(current)
	delete(r.chans, playerID)

	return true
}

// NumberOfAttached 返回当前绑定了响应通道的玩家数，
// 供房间清理循环判断空置
func (r *playerChannelResponder) NumberOfAttached() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.chans)
}

func (r *playerChannelResponder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, ch := range r.chans {
		close(ch)
		delete(r.chans, id)
	}
}

func (r *playerChannelResponder) SendToOne(playerID string, actions []game.Action) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	r.sendLocked(playerID, actions)
}

func (r *playerChannelResponder) SendToAll(actions []game.Action) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id := range r.chans {
		r.sendLocked(id, actions)
	}
}

func (r *playerChannelResponder) SendToAllButOne(excludedID string, actions []game.Action) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id := range r.chans {
		if id == excludedID {
			continue
		}

		r.sendLocked(id, actions)
	}
}

func (r *playerChannelResponder) sendLocked(playerID string, actions []game.Action) {
	ch, ok := r.chans[playerID]
	if !ok {
		// 宽限期内的掉线玩家没有通道，静默跳过
		return
	}

	select {
	case ch <- actions:
	default:
		zap.L().Warn(
			"发送动作失败：玩家响应通道已满",
			zap.String("player_id", playerID),
		)
	}
}
