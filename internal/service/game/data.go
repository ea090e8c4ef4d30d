package game

import "encoding/json"

// GameData 是房间的全部可变状态。
// 只会在房间的事件循环这一个 goroutine 里被读写，
// 回合字段（Leader、Picker、Word、RoundInProgress）
// 只由当前回合状态修改
type GameData struct {
	players map[string]*Player
	// 按连接先后排列的玩家 ID，作为选人轮换的稳定顺序
	order []string

	Leader          string
	Picker          string
	Word            string
	RoundInProgress bool

	// 本回合词语的来源玩家：画手之外唯一知道谜底的人，
	// 其提交的答案不参与判定
	WordPicker string

	// 追加式的房间历史，新玩家连入时整体回放
	chatLog   []ChatMessage
	drawLog   []DrawRecord
	answerLog []Answer

	Settings *Settings

	// 回合倒计时的句柄，结束回合的任何路径都必须取消它
	RoundTimeout *DelayedCall
}

func NewGameData() *GameData {
	return &GameData{
		players: make(map[string]*Player),
	}
}

func (gd *GameData) Player(playerID string) *Player {
	return gd.players[playerID]
}

func (gd *GameData) AddPlayer(player *Player) {
	gd.players[player.ID] = player
	gd.order = append(gd.order, player.ID)
}

func (gd *GameData) RemovePlayer(playerID string) {
	delete(gd.players, playerID)

	for i, id := range gd.order {
		if id == playerID {
			gd.order = append(gd.order[:i], gd.order[i+1:]...)
			break
		}
	}
}

func (gd *GameData) NumberOfPlayers() int {
	return len(gd.players)
}

func (gd *GameData) NumberOfConnected() int {
	count := 0

	for _, p := range gd.players {
		if !p.Disconnected {
			count++
		}
	}

	return count
}

// 按连接顺序返回在线玩家的 ID
func (gd *GameData) ConnectedIDs() []string {
	ids := make([]string, 0, len(gd.order))

	for _, id := range gd.order {
		if p := gd.players[id]; p != nil && !p.Disconnected {
			ids = append(ids, id)
		}
	}

	return ids
}

// 按连接顺序返回所有玩家记录的副本
func (gd *GameData) PlayersSnapshot() []Player {
	players := make([]Player, 0, len(gd.order))

	for _, id := range gd.order {
		if p := gd.players[id]; p != nil {
			players = append(players, *p)
		}
	}

	return players
}

// 从 playerID 在连接顺序中的位置出发，循环找到
// 下一个在线玩家；找不到则返回空字符串。
// 这是回合结束后画手与选词人轮换的依据
func (gd *GameData) NextConnectedAfter(playerID string) string {
	if len(gd.order) == 0 {
		return ""
	}

	start := -1
	for i, id := range gd.order {
		if id == playerID {
			start = i
			break
		}
	}

	// 已删除的玩家从顺序表头开始找
	for i := 1; i <= len(gd.order); i++ {
		id := gd.order[(start+i+len(gd.order))%len(gd.order)]

		if id == playerID {
			continue
		}

		if p := gd.players[id]; p != nil && !p.Disconnected {
			return id
		}
	}

	return ""
}

func (gd *GameData) AppendChatMessages(fromID string, messages []ChatMessage) {
	for _, m := range messages {
		m.From = fromID
		gd.chatLog = append(gd.chatLog, m)
	}
}

func (gd *GameData) AppendDrawActions(fromID string, strokes []json.RawMessage) {
	for _, s := range strokes {
		gd.drawLog = append(gd.drawLog, DrawRecord{Stroke: s, From: fromID})
	}
}

func (gd *GameData) AppendAnswer(answer Answer) {
	gd.answerLog = append(gd.answerLog, answer)
}

func (gd *GameData) ChatLog() []ChatMessage {
	return gd.chatLog
}

func (gd *GameData) DrawLog() []json.RawMessage {
	strokes := make([]json.RawMessage, 0, len(gd.drawLog))

	for _, r := range gd.drawLog {
		strokes = append(strokes, r.Stroke)
	}

	return strokes
}

func (gd *GameData) AnswerLog() []Answer {
	return gd.answerLog
}
