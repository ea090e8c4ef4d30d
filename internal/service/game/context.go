package game

import (
	"time"

	"go.uber.org/zap"
)

// GameContext 持有当前回合状态和房间数据，
// 是状态对象访问 Responder 和定时器的唯一通道
type GameContext struct {
	data      *GameData
	responder Responder
	state     RoundState

	cfg Config

	// 由 Game 注入，把定时器到期事件送回事件循环
	schedule func(fn func(), delay time.Duration) *DelayedCall
}

func (gc *GameContext) Data() *GameData {
	return gc.data
}

func (gc *GameContext) Stage() string {
	if gc.state == nil {
		return STAGE_LOBBY
	}

	return gc.state.Stage()
}

// SetState 替换当前状态并立即执行新状态的 HandleEnter。
// 入场动作可以同步地再次切换状态（例如 BeforeRound
// 直接完成进入 RoundInProgress），这里用直接递归支持
// 这种链式转换
func (gc *GameContext) SetState(state RoundState) {
	zap.L().Debug(
		"切换回合状态",
		zap.String("stage", state.Stage()),
	)

	gc.state = state
	state.HandleEnter(gc)
}

func (gc *GameContext) HandleAction(fromID string, action Action) error {
	if gc.state == nil {
		return nil
	}

	return gc.state.HandleAction(gc, fromID, action)
}

func (gc *GameContext) HandleDisconnectedPlayer(playerID string) {
	if gc.state == nil {
		return
	}

	gc.state.HandleDisconnectedPlayer(gc, playerID)
}

func (gc *GameContext) SendActionToAll(action Action) {
	gc.responder.SendToAll([]Action{action})
}

func (gc *GameContext) SendActionToOne(playerID string, action Action) {
	gc.responder.SendToOne(playerID, []Action{action})
}

func (gc *GameContext) SendActionToAllButOne(excludedID string, action Action) {
	gc.responder.SendToAllButOne(excludedID, []Action{action})
}
