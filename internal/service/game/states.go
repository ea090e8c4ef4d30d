package game

import (
	"errors"

	"go.uber.org/zap"
)

// 回合流转一共四个状态：
// 1. 大厅（Lobby）：房间刚创建，还没收到配置，只积累玩家
// 2. 等待（Wait）：在线人数不足两人，无法开局
// 3. 回合前（BeforeRound）：等待自动开局或选词人选词
// 4. 回合中（RoundInProgress）：画手作画，其余玩家猜词
const (
	STAGE_LOBBY        = "Lobby"
	STAGE_WAIT         = "Wait"
	STAGE_BEFORE_ROUND = "BeforeRound"
	STAGE_ROUND        = "RoundInProgress"
)

// 每回合猜中一次记一分
const SCORE_FOR_RIGHT_ANSWER = 1

type RoundState interface {
	Stage() string

	HandleEnter(gc *GameContext)
	HandleDisconnectedPlayer(gc *GameContext, playerID string)
	HandleAction(gc *GameContext, fromID string, action Action) error
}

// 大厅状态：应用配置之前的初始状态
type lobbyState struct{}

func newLobbyState() *lobbyState {
	return &lobbyState{}
}

func (ls *lobbyState) Stage() string {
	return STAGE_LOBBY
}

func (ls *lobbyState) HandleEnter(gc *GameContext) {
}

func (ls *lobbyState) HandleDisconnectedPlayer(gc *GameContext, playerID string) {
}

func (ls *lobbyState) HandleAction(gc *GameContext, fromID string, action Action) error {
	if settings := TryUnwrapSetSettings(action); settings != nil {
		gc.data.Settings = &settings.Settings

		// 配置落定后立刻钦定首任画手并公布，
		// 这样后续连入的玩家都能看到当前画手
		if gc.data.Leader == "" {
			connected := gc.data.ConnectedIDs()

			if len(connected) > 0 {
				gc.data.Leader = gc.cfg.PickLeaderStrategy(connected)
				gc.SendActionToAll(setPainterAction(gc.data.Leader))
			}
		}

		gc.SetState(newBeforeRoundState())

		return nil
	}

	// 玩家在配置到来之前连入，先积累，不做其他反应。
	// 生命周期通知只认引擎自己发出的，客户端伪造无效
	if fromID == FROM_SELF &&
		(action.Type == ACTION_NEW_PLAYER ||
			action.Type == ACTION_DELETED_PLAYER) {
		return nil
	}

	return errors.New("房间尚未配置，无法处理该动作")
}

// 等待状态：在线人数跌破两人后进入
type waitState struct{}

func newWaitState() *waitState {
	return &waitState{}
}

func (ws *waitState) Stage() string {
	return STAGE_WAIT
}

func (ws *waitState) HandleEnter(gc *GameContext) {
	gc.SendActionToAll(waitAction())
}

func (ws *waitState) HandleDisconnectedPlayer(gc *GameContext, playerID string) {
}

func (ws *waitState) HandleAction(gc *GameContext, fromID string, action Action) error {
	if fromID == FROM_SELF {
		switch action.Type {
		case ACTION_NEW_PLAYER:
			// 凑齐两人即可回到开局流程
			if gc.data.NumberOfConnected() >= 2 {
				gc.SetState(newBeforeRoundState())
			}

			return nil

		case ACTION_DELETED_PLAYER:
			return nil
		}
	}

	return errors.New("等待阶段不接受该动作")
}

// 回合前状态：开局的闸门
type beforeRoundState struct{}

func newBeforeRoundState() *beforeRoundState {
	return &beforeRoundState{}
}

func (bs *beforeRoundState) Stage() string {
	return STAGE_BEFORE_ROUND
}

func (bs *beforeRoundState) HandleEnter(gc *GameContext) {
	// 恰好两人时不存在选词人，直接开局；
	// 多于两人则等待选词人的 PickWord
	if gc.data.NumberOfConnected() == 2 {
		bs.startTwoPlayerRound(gc)
	}
}

func (bs *beforeRoundState) HandleDisconnectedPlayer(gc *GameContext, playerID string) {
	connected := gc.data.NumberOfConnected()

	if connected < 2 {
		gc.SetState(newWaitState())
		return
	}

	// 选词人掉线后剩两人，退化成两人开局
	if connected == 2 {
		bs.startTwoPlayerRound(gc)
	}
}

func (bs *beforeRoundState) HandleAction(gc *GameContext, fromID string, action Action) error {
	if fromID == FROM_SELF {
		switch action.Type {
		case ACTION_NEW_PLAYER:
			if gc.data.NumberOfConnected() == 2 {
				bs.startTwoPlayerRound(gc)
			}

			return nil

		case ACTION_DELETED_PLAYER:
			return nil
		}
	}

	if word, ok := TryUnwrapPickWord(action); ok {
		// 只认选词人提交的词，其余一律忽略
		if gc.data.Picker == "" || fromID != gc.data.Picker {
			return errors.New("发送者不是当前选词人，忽略选词")
		}

		gc.data.Word = word
		gc.data.WordPicker = fromID

		// 选词人职责完成，立刻复位并公布
		gc.data.Picker = ""
		gc.SendActionToAll(setNextWordPickerAction(""))

		bs.startNewRound(gc)

		return nil
	}

	return errors.New("回合前阶段不接受该动作")
}

func (bs *beforeRoundState) startTwoPlayerRound(gc *GameContext) {
	// 两人局不需要选词人，清掉可能残留的指派
	gc.data.Picker = ""

	bs.startNewRound(gc)
}

// 开局算法。画手优先沿用钦定的 Leader，词语优先沿用
// 选词人提交的 Word，两者缺失时分别回退到选人策略和
// 随机选词。选不出画手就原地等待，下一个触发事件重试
func (bs *beforeRoundState) startNewRound(gc *GameContext) {
	leader := gc.data.Leader

	if leader == "" || !bs.isConnected(gc, leader) {
		connected := gc.data.ConnectedIDs()

		if len(connected) == 0 {
			zap.L().Debug("没有在线玩家，无法开局")
			return
		}

		leader = gc.cfg.PickLeaderStrategy(connected)
	}

	if leader == "" {
		return
	}

	word := gc.data.Word
	if word == "" {
		word = gc.cfg.PickWord()
		// 兜底选词时没有知情的选词人
		gc.data.WordPicker = ""
	}

	gc.data.Leader = leader
	gc.data.Word = word
	gc.data.RoundInProgress = true

	remaining := gc.cfg.TimeForRound.Milliseconds()

	gc.SendActionToAll(setPainterAction(leader))
	// 核心保密不变量：谜底只会出现在发给画手的那一条里
	gc.SendActionToAllButOne(leader, startRoundAction("", remaining))
	gc.SendActionToOne(leader, startRoundAction(word, remaining))

	gc.SetState(newRoundInProgressState())
}

func (bs *beforeRoundState) isConnected(gc *GameContext, playerID string) bool {
	p := gc.data.Player(playerID)
	return p != nil && !p.Disconnected
}

// 回合中状态：接收作画、聊天与猜词
type roundInProgressState struct{}

func newRoundInProgressState() *roundInProgressState {
	return &roundInProgressState{}
}

func (rs *roundInProgressState) Stage() string {
	return STAGE_ROUND
}

func (rs *roundInProgressState) HandleEnter(gc *GameContext) {
	// 回合倒计时。结束回合的每一条路径都必须取消它，
	// 否则迟到的到期事件会制造第二次 EndRound
	gc.data.RoundTimeout = gc.schedule(func() {
		rs.handleTimeout(gc)
	}, gc.cfg.TimeForRound)
}

func (rs *roundInProgressState) handleTimeout(gc *GameContext) {
	zap.L().Debug("回合倒计时到期")

	// 超时结束没有得分者，画手照常轮换
	rs.endRound(gc, "")
}

func (rs *roundInProgressState) HandleDisconnectedPlayer(gc *GameContext, playerID string) {
	// 人数跌破两人优先于画手轮换：两人局的画手掉线后
	// 只剩一人，不再轮换，直接进入等待
	if gc.data.NumberOfConnected() < 2 {
		rs.endRoundToWait(gc)
		return
	}

	// 画手掉线等价于超时结束
	if playerID == gc.data.Leader {
		rs.endRound(gc, "")
	}
}

func (rs *roundInProgressState) HandleAction(gc *GameContext, fromID string, action Action) error {
	if fromID == FROM_SELF {
		switch action.Type {
		case ACTION_NEW_PLAYER, ACTION_DELETED_PLAYER:
			// 新玩家的历史回放在连接流程里完成，这里无事可做
			return nil
		}
	}

	if messages := TryUnwrapChatMessages(action); messages != nil {
		gc.data.AppendChatMessages(fromID, messages)
		gc.SendActionToAllButOne(fromID, action.withOrigin(fromID))

		return nil
	}

	if strokes := TryUnwrapDrawActions(action); strokes != nil {
		// 作画权专属于画手，其他人的笔画静默丢弃
		if fromID != gc.data.Leader {
			return errors.New("发送者不是画手，丢弃笔画")
		}

		gc.data.AppendDrawActions(fromID, strokes)
		gc.SendActionToAllButOne(fromID, action.withOrigin(fromID))

		return nil
	}

	if answer, ok := TryUnwrapProposeAnswer(action); ok {
		if gc.data.Player(fromID) == nil {
			return errors.New("发送者不在名单中，忽略答案")
		}

		// 画手和选词人都知道谜底，他们的"答案"没有意义，
		// 不判定、不广播、不落账
		if fromID == gc.data.Leader || fromID == gc.data.WordPicker {
			return errors.New("发送者知晓谜底，忽略答案")
		}

		right := answer == gc.data.Word

		gc.data.AppendAnswer(Answer{
			Answer: answer,
			Right:  right,
			From:   fromID,
		})

		broadcast := addAnswersAction([]Answer{{Answer: answer, Right: right}})
		gc.SendActionToAll(broadcast.withOrigin(fromID))

		if right {
			rs.endRound(gc, fromID)
		}

		return nil
	}

	return errors.New("回合中不接受该动作")
}

// 结束回合。scorerID 为空表示超时或画手掉线，没有得分者。
// 以 RoundInProgress 标志做幂等保护：无论正确答案、倒计时
// 到期、画手掉线以什么顺序到达，回合最多结束一次
func (rs *roundInProgressState) endRound(gc *GameContext, scorerID string) {
	if !gc.data.RoundInProgress {
		return
	}

	gc.data.RoundInProgress = false
	rs.cancelTimeout(gc)

	gc.SendActionToAll(endRoundAction())

	oldLeader := gc.data.Leader

	var newLeader string

	// 得分者已经不在名单里时按无得分者处理
	if scorer := gc.data.Player(scorerID); scorer != nil {
		scorer.Score += SCORE_FOR_RIGHT_ANSWER
		gc.SendActionToAll(changePlayerScoreAction(scorerID, scorer.Score))

		// 猜中者接任画手
		newLeader = scorerID
	} else {
		// 没有得分者时按连接顺序轮换，掉线的画手同样被轮换掉
		newLeader = gc.data.NextConnectedAfter(oldLeader)
	}

	gc.data.Leader = newLeader
	gc.data.Word = ""
	gc.data.WordPicker = ""

	gc.SendActionToAll(setPainterAction(newLeader))

	// 多于两人时指派选词人：新画手之后的下一个在线玩家
	if gc.data.NumberOfConnected() > 2 && newLeader != "" {
		picker := gc.data.NextConnectedAfter(newLeader)
		gc.data.Picker = picker

		gc.SendActionToAll(setNextWordPickerAction(picker))

		if picker != "" {
			variants := wordVariants(numberOfWordVariants(gc.data.Settings))
			if len(variants) > 0 {
				gc.SendActionToOne(picker, offerWordsAction(variants))
			}
		}
	} else {
		gc.data.Picker = ""
		gc.SendActionToAll(setNextWordPickerAction(""))
	}

	gc.SetState(newBeforeRoundState())
}

// 在线人数不足时结束回合并进入等待，
// 画手与选词人一并清空，下次开局重新钦定
func (rs *roundInProgressState) endRoundToWait(gc *GameContext) {
	if !gc.data.RoundInProgress {
		return
	}

	gc.data.RoundInProgress = false
	rs.cancelTimeout(gc)

	gc.SendActionToAll(endRoundAction())

	gc.data.Leader = ""
	gc.data.Picker = ""
	gc.data.Word = ""
	gc.data.WordPicker = ""

	gc.SendActionToAll(setPainterAction(""))
	gc.SendActionToAll(setNextWordPickerAction(""))

	gc.SetState(newWaitState())
}

func (rs *roundInProgressState) cancelTimeout(gc *GameContext) {
	if gc.data.RoundTimeout != nil {
		gc.data.RoundTimeout.Cancel()
		gc.data.RoundTimeout = nil
	}
}
