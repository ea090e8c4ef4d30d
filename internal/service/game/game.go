package game

import (
	"time"

	"go.uber.org/zap"
)

// 单个房间的引擎配置
type Config struct {
	// 断线重连宽限期，超时未重连的玩家会被删除
	ReconnectionTimeout time.Duration
	// 一个回合的时长
	TimeForRound time.Duration

	// 选词策略，缺省为内置词库随机
	PickWord func() string
	// 选画手策略，入参是按连接顺序排列的在线玩家 ID，
	// 缺省取第一个
	PickLeaderStrategy func(connectedIDs []string) string
}

func (c Config) withDefaults() Config {
	if c.PickWord == nil {
		c.PickWord = randomWord
	}

	if c.PickLeaderStrategy == nil {
		c.PickLeaderStrategy = func(connectedIDs []string) string {
			if len(connectedIDs) == 0 {
				return ""
			}

			return connectedIDs[0]
		}
	}

	return c
}

// 连接信息。PriorID 带上先前拿到的 ID 表示断线重连
type IntroductionInfo struct {
	Name    string
	PriorID string
}

// Game 是单个房间的会话引擎：管理玩家连接生命周期，
// 把名单变化翻译成数据更新和状态机通知。
// 所有方法都必须在房间的事件循环 goroutine 里调用
type Game struct {
	cfg  Config
	data *GameData
	ctx  *GameContext

	// 每个掉线玩家一个待删除句柄，重连时取消
	delayedDeletes map[string]*DelayedCall

	// 定时器到期事件的回流通道，由事件循环消费
	timerCh chan *DelayedCall
}

func NewGame(responder Responder, cfg Config) *Game {
	cfg = cfg.withDefaults()

	data := NewGameData()

	g := &Game{
		cfg:            cfg,
		data:           data,
		delayedDeletes: make(map[string]*DelayedCall),
		timerCh:        make(chan *DelayedCall, 64),
	}

	g.ctx = &GameContext{
		data:      data,
		responder: responder,
		state:     newLobbyState(),
		cfg:       cfg,
		schedule:  g.schedule,
	}

	return g
}

func (g *Game) Data() *GameData {
	return g.data
}

func (g *Game) Stage() string {
	return g.ctx.Stage()
}

func (g *Game) TimerCh() <-chan *DelayedCall {
	return g.timerCh
}

func (g *Game) HasPlayer(playerID string) bool {
	return g.data.Player(playerID) != nil
}

func (g *Game) schedule(fn func(), delay time.Duration) *DelayedCall {
	return delayCall(fn, delay, func(dc *DelayedCall) {
		g.timerCh <- dc
	})
}

// ConnectWithInfo 接入一个玩家并返回其 ID。
// PriorID 命中名单时执行重连：恢复在线标记、取消待删除
// 定时器、广播恢复后的记录，不新建玩家也不触发生命周期
// 通知。否则按新玩家入场处理
func (g *Game) ConnectWithInfo(info IntroductionInfo) string {
	if oldID := g.tryReconnect(info); oldID != "" {
		return oldID
	}

	newID := info.PriorID
	if newID == "" {
		newID = GenID()
	}

	g.data.AddPlayer(&Player{
		ID:   newID,
		Name: info.Name,
	})

	zap.L().Info(
		"新玩家接入",
		zap.String("player_id", newID),
		zap.String("player_name", info.Name),
	)

	// 先给新玩家完整名单，再向所有人广播新记录
	g.sendAllPlayersTo(newID)
	g.sendPlayer(newID)

	// 让新玩家补齐当前画手和全部房间历史
	g.sendSnapshotTo(newID)

	g.notifyAboutNewPlayer(newID)

	return newID
}

func (g *Game) tryReconnect(info IntroductionInfo) string {
	if info.PriorID == "" {
		return ""
	}

	player := g.data.Player(info.PriorID)
	if player == nil {
		return ""
	}

	player.Disconnected = false

	zap.L().Info(
		"玩家重连",
		zap.String("player_id", player.ID),
		zap.String("player_name", player.Name),
	)

	g.sendPlayer(player.ID)

	// 待删除定时器必须取消掉，即使它已经到期排队，
	// Run 也会因为取消而不执行
	if dc, ok := g.delayedDeletes[player.ID]; ok {
		dc.Cancel()
		delete(g.delayedDeletes, player.ID)
	}

	// 回归通知让状态机有机会重试搁置的转换，
	// 例如等待阶段因重连重新凑齐两人
	g.notifyAboutNewPlayer(player.ID)

	return player.ID
}

// DisconnectWithID 标记玩家掉线，通知状态机，
// 并武装宽限期定时器：到期仍未重连就从名单删除
func (g *Game) DisconnectWithID(playerID string) {
	player := g.data.Player(playerID)
	if player == nil {
		zap.L().Warn(
			"玩家不存在，忽略掉线事件",
			zap.String("player_id", playerID),
		)
		return
	}

	player.Disconnected = true

	zap.L().Info(
		"玩家掉线，进入重连宽限期",
		zap.String("player_id", playerID),
	)

	g.sendPlayer(playerID)
	g.notifyAboutDisconnectedPlayer(playerID)

	g.delayedDeletes[playerID] = g.schedule(func() {
		g.expirePlayer(playerID)
	}, g.cfg.ReconnectionTimeout)
}

func (g *Game) expirePlayer(playerID string) {
	delete(g.delayedDeletes, playerID)

	player := g.data.Player(playerID)
	if player == nil || !player.Disconnected {
		return
	}

	zap.L().Info(
		"宽限期结束，删除玩家",
		zap.String("player_id", playerID),
	)

	g.data.RemovePlayer(playerID)

	// 清理悬空引用，下次开局重新钦定
	if g.data.Leader == playerID {
		g.data.Leader = ""
	}
	if g.data.Picker == playerID {
		g.data.Picker = ""
	}

	g.ctx.SendActionToAll(deletePlayerAction(playerID))
	g.notifyAboutDeletedPlayer(playerID)
}

// HandleMessage 把入站动作交给当前回合状态处理。
// fromId 为 FROM_SELF 的动作是引擎自身的生命周期通知
func (g *Game) HandleMessage(fromID string, action Action) {
	var err error

	if fromID == FROM_SELF && action.Type == ACTION_DISCONNECTED_PLAYER {
		g.ctx.HandleDisconnectedPlayer(unwrapPlayerID(action))
	} else {
		err = g.ctx.HandleAction(fromID, action)
	}

	if err != nil {
		// 协议违规静默拒绝，只在调试日志留痕
		zap.L().Debug(
			"动作被拒绝",
			zap.Error(err),
			zap.String("from_id", fromID),
			zap.String("stage", g.ctx.Stage()),
			zap.String("action_type", action.Type),
		)
	}
}

// Shutdown 取消房间所有未决定时器，房间销毁时调用
func (g *Game) Shutdown() {
	for id, dc := range g.delayedDeletes {
		dc.Cancel()
		delete(g.delayedDeletes, id)
	}

	if g.data.RoundTimeout != nil {
		g.data.RoundTimeout.Cancel()
		g.data.RoundTimeout = nil
	}
}

func (g *Game) notifyAboutNewPlayer(playerID string) {
	g.HandleMessage(FROM_SELF, newPlayerAction(playerID))
}

func (g *Game) notifyAboutDisconnectedPlayer(playerID string) {
	g.HandleMessage(FROM_SELF, disconnectedPlayerAction(playerID))
}

func (g *Game) notifyAboutDeletedPlayer(playerID string) {
	g.HandleMessage(FROM_SELF, deletedPlayerAction(playerID))
}

// 向所有人广播某个玩家的当前记录
func (g *Game) sendPlayer(playerID string) {
	player := g.data.Player(playerID)
	if player == nil {
		return
	}

	g.ctx.SendActionToAll(addPlayersAction([]Player{*player}))
}

// 只发给新玩家：完整名单
func (g *Game) sendAllPlayersTo(playerID string) {
	g.ctx.SendActionToOne(playerID, addPlayersAction(g.data.PlayersSnapshot()))
}

// 只发给新玩家：当前画手与全部历史记录。
// 历史各以一条动作整体回放，来源标记为 server，
// 记录内保留原始发送者
func (g *Game) sendSnapshotTo(playerID string) {
	if g.data.Leader != "" {
		g.ctx.SendActionToOne(playerID, setPainterAction(g.data.Leader))
	}

	if chat := g.data.ChatLog(); len(chat) > 0 {
		g.ctx.SendActionToOne(
			playerID,
			addChatMessagesAction(chat).withOrigin(FROM_SERVER),
		)
	}

	if strokes := g.data.DrawLog(); len(strokes) > 0 {
		g.ctx.SendActionToOne(
			playerID,
			addDrawActionsAction(strokes).withOrigin(FROM_SERVER),
		)
	}

	if answers := g.data.AnswerLog(); len(answers) > 0 {
		g.ctx.SendActionToOne(
			playerID,
			addAnswersAction(answers).withOrigin(FROM_SERVER),
		)
	}
}
