package game

import "testing"

func TestNextConnectedAfterRotation(t *testing.T) {
	data := NewGameData()

	data.AddPlayer(&Player{ID: "a"})
	data.AddPlayer(&Player{ID: "b"})
	data.AddPlayer(&Player{ID: "c"})

	if got := data.NextConnectedAfter("a"); got != "b" {
		t.Fatalf("next after a = %q, want b", got)
	}

	// 轮换是循环的
	if got := data.NextConnectedAfter("c"); got != "a" {
		t.Fatalf("next after c = %q, want a", got)
	}

	// 掉线的玩家被跳过
	data.Player("b").Disconnected = true

	if got := data.NextConnectedAfter("a"); got != "c" {
		t.Fatalf("next after a with b disconnected = %q, want c", got)
	}

	// 起点自身掉线不影响轮换
	data.Player("a").Disconnected = true
	data.Player("b").Disconnected = false

	if got := data.NextConnectedAfter("a"); got != "b" {
		t.Fatalf("next after disconnected a = %q, want b", got)
	}
}

func TestNextConnectedAfterNoCandidates(t *testing.T) {
	data := NewGameData()

	if got := data.NextConnectedAfter("a"); got != "" {
		t.Fatalf("next in empty roster = %q, want empty", got)
	}

	data.AddPlayer(&Player{ID: "a"})

	// 唯一的候选就是起点自己
	if got := data.NextConnectedAfter("a"); got != "" {
		t.Fatalf("next after sole player = %q, want empty", got)
	}
}

func TestNextConnectedAfterRemovedPlayer(t *testing.T) {
	data := NewGameData()

	data.AddPlayer(&Player{ID: "a"})
	data.AddPlayer(&Player{ID: "b"})
	data.RemovePlayer("a")

	// 已删除的起点从顺序表头找起
	if got := data.NextConnectedAfter("a"); got != "b" {
		t.Fatalf("next after removed a = %q, want b", got)
	}
}

func TestConnectedIDsKeepConnectionOrder(t *testing.T) {
	data := NewGameData()

	data.AddPlayer(&Player{ID: "a"})
	data.AddPlayer(&Player{ID: "b"})
	data.AddPlayer(&Player{ID: "c"})

	data.Player("b").Disconnected = true

	ids := data.ConnectedIDs()

	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Fatalf("connected ids = %v, want [a c]", ids)
	}
}

func TestLogsKeepInsertionOrderAndAttribution(t *testing.T) {
	data := NewGameData()

	data.AppendChatMessages("a", []ChatMessage{{Text: "one"}, {Text: "two"}})
	data.AppendChatMessages("b", []ChatMessage{{Text: "three"}})

	chat := data.ChatLog()

	if len(chat) != 3 {
		t.Fatalf("chat log length = %d, want 3", len(chat))
	}

	if chat[0].From != "a" || chat[2].From != "b" {
		t.Fatalf("chat log attribution broken: %+v", chat)
	}

	data.AppendAnswer(Answer{Answer: "x", From: "b"})
	data.AppendAnswer(Answer{Answer: "y", From: "a"})

	answers := data.AnswerLog()

	if len(answers) != 2 || answers[0].Answer != "x" || answers[1].From != "a" {
		t.Fatalf("answer log broken: %+v", answers)
	}
}
