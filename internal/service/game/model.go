package game

import "encoding/json"

// 房间里的玩家。断线后的宽限期内仍然保留在名单中，
// 超时未重连才会被删除
type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	Disconnected bool   `json:"disconnected,omitempty"`
}

// 聊天记录。入站消息不带 from，引擎在落账时补上
type ChatMessage struct {
	Text string `json:"text"`
	From string `json:"from,omitempty"`
}

// 绘画记录。笔画内容对服务端不透明，原样转发
type DrawRecord struct {
	Stroke json.RawMessage
	From   string
}

// 猜词记录
type Answer struct {
	Answer string `json:"answer"`
	Right  bool   `json:"right"`
	From   string `json:"from,omitempty"`
}

// 房间配置，由首个 SetSettings 动作写入，之后不再变化
type Settings struct {
	NextPainterPickType  string `json:"next_painter_pick_type"`
	NextWordPickType     string `json:"next_word_pick_type"`
	NumberOfWordVariants int    `json:"number_of_word_variants"`
	WordBaseID           string `json:"word_base_id,omitempty"`
}
