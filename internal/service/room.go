package service

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"crocodile-be/internal/config"
	"crocodile-be/internal/service/dto"
	"crocodile-be/internal/service/game"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 空房间的保留时长，超过后由清理循环回收
const emptyRoomTTL = 5 * time.Minute

type RoomService struct {
	state *roomServiceState
}

type roomServiceState struct {
	mu sync.RWMutex

	rooms map[string]*roomEntry

	cleanUpDone chan struct{}
}

type roomEntry struct {
	name string

	machine   *game.GameMachine
	responder *playerChannelResponder

	doneCh chan struct{}

	createdAt time.Time

	// 最近一次加入或离开的时间戳（UnixNano），
	// 清理循环据此跳过刚刚才空置的房间
	lastActive atomic.Int64
}

func (e *roomEntry) touch() {
	e.lastActive.Store(time.Now().UnixNano())
}

func (e *roomEntry) idleFor() time.Duration {
	return time.Since(time.Unix(0, e.lastActive.Load()))
}

func NewRoomService() *RoomService {
	state := &roomServiceState{
		rooms:       make(map[string]*roomEntry),
		cleanUpDone: make(chan struct{}),
	}

	// 定期清理空置的房间
	go startCleanupLoop(state)

	return &RoomService{
		state: state,
	}
}

func startCleanupLoop(state *roomServiceState) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-state.cleanUpDone:
			return

		case <-ticker.C:
			state.mu.Lock()

			for roomID, entry := range state.rooms {
				if entry.responder.NumberOfAttached() > 0 {
					continue
				}

				if entry.idleFor() < emptyRoomTTL {
					continue
				}

				zap.S().Infof(
					"房间 %s（%s）已空置，开始清理，存活 %s",
					roomID,
					entry.name,
					time.Since(entry.createdAt),
				)

				// 关闭事件循环，循环退出时会取消所有未决定时器
				close(entry.doneCh)
				entry.responder.Close()

				delete(state.rooms, roomID)
			}

			state.mu.Unlock()
		}
	}
}

func (rs *RoomService) Close() {
	close(rs.state.cleanUpDone)

	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	for roomID, entry := range rs.state.rooms {
		close(entry.doneCh)
		entry.responder.Close()

		delete(rs.state.rooms, roomID)
	}
}

func (rs *RoomService) CreateRoom(req dto.CreateRoomRequest) (dto.CreateRoomResponse, error) {
	if req.RoomName == "" {
		return dto.CreateRoomResponse{}, errors.New("房间名称不能为空")
	}

	cfg := config.GetConfig()

	roomID := uuid.New().String()[:8]

	responder := newPlayerChannelResponder()

	g := game.NewGame(responder, game.Config{
		ReconnectionTimeout: time.Duration(cfg.ReconnectionTimeoutMs) * time.Millisecond,
		TimeForRound:        time.Duration(cfg.TimeForRoundMs) * time.Millisecond,
	})

	doneCh := make(chan struct{})
	machine := game.NewGameMachine(g, doneCh)

	entry := &roomEntry{
		name:      req.RoomName,
		machine:   machine,
		responder: responder,
		doneCh:    doneCh,
		createdAt: time.Now(),
	}
	entry.touch()

	rs.state.mu.Lock()
	rs.state.rooms[roomID] = entry
	rs.state.mu.Unlock()

	// 每个房间一个独立的事件循环 goroutine
	go machine.Start()

	zap.S().Infof("房间 %s（%s）已创建", roomID, req.RoomName)

	return dto.CreateRoomResponse{
		RoomID: roomID,
	}, nil
}

// JoinRoom 把玩家接入房间：绑定响应通道并向房间的
// 事件循环投递加入事件，返回玩家 ID 和入站事件通道。
// respCh 由调用方的写协程消费
func (rs *RoomService) JoinRoom(
	req dto.JoinRoomRequest,
	respCh chan []game.Action,
) (string, chan<- game.Event, error) {
	if req.RoomID == "" {
		return "", nil, errors.New("房间 ID 不能为空")
	}
	if req.Name == "" {
		return "", nil, errors.New("加入者名称不能为空")
	}

	rs.state.mu.RLock()
	entry := rs.state.rooms[req.RoomID]
	rs.state.mu.RUnlock()

	if entry == nil {
		return "", nil, errors.New("房间不存在")
	}

	// 事件循环处理加入事件之前就要能给这个玩家发消息
	// （名单、画手、历史回放），所以先定好 ID 再绑定通道
	playerID := req.PlayerID
	if playerID == "" {
		playerID = game.GenID()
	}

	entry.responder.Attach(playerID, respCh)

	resultCh := make(chan string, 1)

	joinEvent := game.Event{
		Join: &game.JoinEvent{
			Name:     req.Name,
			PriorID:  playerID,
			ResultCh: resultCh,
		},
	}

	zap.S().Debugf("房间 %s 收到加入请求：%s", req.RoomID, req.Name)

	reqTimer := time.NewTimer(5 * time.Second)

	select {
	case entry.machine.ReqCh() <- joinEvent:
		if !reqTimer.Stop() {
			select {
			case <-reqTimer.C:
			default:
			}
		}

	case <-reqTimer.C:
		entry.responder.Detach(playerID, respCh)

		zap.S().Warnf("房间 %s 无法及时处理加入请求，%s 发送失败", req.RoomID, req.Name)
		return "", nil, errors.New("加入房间失败")
	}

	resTimer := time.NewTimer(5 * time.Second)

	select {
	case joinedID := <-resultCh:
		if !resTimer.Stop() {
			select {
			case <-resTimer.C:
			default:
			}
		}

		entry.touch()

		zap.S().Infof("房间 %s 接纳玩家 %s（%s）", req.RoomID, req.Name, joinedID)

		return joinedID, entry.machine.ReqCh(), nil

	case <-resTimer.C:
		entry.responder.Detach(playerID, respCh)

		zap.S().Warnf("房间 %s 加入请求响应超时：%s", req.RoomID, req.Name)
		return "", nil, errors.New("加入房间失败")
	}
}

// LeaveRoom 在客户端连接断开后调用：解绑响应通道并
// 向事件循环投递掉线事件，玩家进入重连宽限期。
// 连接已被重连顶替时绑定早已换成新通道，此时什么也不做
func (rs *RoomService) LeaveRoom(roomID, playerID string, respCh chan []game.Action) {
	rs.state.mu.RLock()
	entry := rs.state.rooms[roomID]
	rs.state.mu.RUnlock()

	if entry == nil {
		return
	}

	if !entry.responder.Detach(playerID, respCh) {
		return
	}
	entry.touch()

	disconnectEvent := game.Event{
		Disconnect: &game.DisconnectEvent{
			PlayerID: playerID,
		},
	}

	select {
	case entry.machine.ReqCh() <- disconnectEvent:
	case <-time.After(5 * time.Second):
		zap.S().Warnf("房间 %s 无法及时处理掉线事件：%s", roomID, playerID)
	}
}
