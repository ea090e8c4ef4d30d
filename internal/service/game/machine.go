package game

import (
	"time"

	"go.uber.org/zap"
)

// 房间事件。四种互斥的变体：
// 加入、掉线、普通动作，以及由外层关闭 doneCh 表达的销毁
type Event struct {
	FromID string
	Action Action

	Join       *JoinEvent
	Disconnect *DisconnectEvent
}

type JoinEvent struct {
	Name    string
	PriorID string

	// 接入结果（玩家 ID）的回执通道
	ResultCh chan string
}

type DisconnectEvent struct {
	PlayerID string
}

// GameMachine 是房间的串行化点：传输层的入站消息和
// 定时器到期事件都汇入这里，由唯一的事件循环逐个处理，
// 保证 GameData 永远不会观察到进行到一半的转换
type GameMachine struct {
	game *Game

	reqCh  chan Event
	doneCh chan struct{}

	createdAt time.Time
}

func NewGameMachine(g *Game, doneCh chan struct{}) *GameMachine {
	return &GameMachine{
		game:      g,
		reqCh:     make(chan Event, 64),
		doneCh:    doneCh,
		createdAt: time.Now(),
	}
}

func (gm *GameMachine) ReqCh() chan<- Event {
	return gm.reqCh
}

func (gm *GameMachine) CreatedAt() time.Time {
	return gm.createdAt
}

// Start 进入事件循环，直到 doneCh 关闭。
// 应当在独立的 goroutine 中运行，一个房间一个
func (gm *GameMachine) Start() {
	for {
		select {
		case ev := <-gm.reqCh:
			gm.dispatch(ev)

		case dc := <-gm.game.TimerCh():
			// 已取消的定时器在 Run 里自行退化为空操作
			dc.Run()

		case <-gm.doneCh:
			gm.game.Shutdown()

			zap.L().Info("收到退出信号，游戏事件循环结束")

			return
		}
	}
}

func (gm *GameMachine) dispatch(ev Event) {
	switch {
	case ev.Join != nil:
		playerID := gm.game.ConnectWithInfo(IntroductionInfo{
			Name:    ev.Join.Name,
			PriorID: ev.Join.PriorID,
		})

		if ev.Join.ResultCh != nil {
			ev.Join.ResultCh <- playerID
		}

	case ev.Disconnect != nil:
		gm.game.DisconnectWithID(ev.Disconnect.PlayerID)

	default:
		zap.L().Debug(
			"接收到客户端动作",
			zap.String("from_id", ev.FromID),
			zap.String("action_type", ev.Action.Type),
		)

		gm.game.HandleMessage(ev.FromID, ev.Action)
	}
}
