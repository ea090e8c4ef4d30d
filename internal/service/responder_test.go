package service

import (
	"testing"

	"crocodile-be/internal/service/game"
)

func recvOne(t *testing.T, ch chan []game.Action) []game.Action {
	t.Helper()

	select {
	case actions := <-ch:
		return actions
	default:
		t.Fatalf("通道里没有动作")
		return nil
	}
}

func TestResponderSendToAllButOneSkipsExcluded(t *testing.T) {
	r := newPlayerChannelResponder()

	chA := make(chan []game.Action, 4)
	chB := make(chan []game.Action, 4)

	r.Attach("a", chA)
	r.Attach("b", chB)

	r.SendToAllButOne("a", []game.Action{{Type: "PING"}})

	if len(chA) != 0 {
		t.Fatalf("被排除的玩家不应收到动作")
	}

	actions := recvOne(t, chB)
	if len(actions) != 1 || actions[0].Type != "PING" {
		t.Fatalf("收到的动作不对: %+v", actions)
	}
}

func TestResponderSendToMissingPlayerIsSilent(t *testing.T) {
	r := newPlayerChannelResponder()

	// 宽限期内的玩家没有绑定通道，发送应当既不恐慌也不阻塞
	r.SendToOne("ghost", []game.Action{{Type: "PING"}})
	r.SendToAll([]game.Action{{Type: "PING"}})
}

func TestResponderAttachTakeoverClosesOldChannel(t *testing.T) {
	r := newPlayerChannelResponder()

	oldCh := make(chan []game.Action, 4)
	newCh := make(chan []game.Action, 4)

	r.Attach("a", oldCh)
	r.Attach("a", newCh)

	if _, ok := <-oldCh; ok {
		t.Fatalf("旧通道应当已被关闭")
	}

	r.SendToOne("a", []game.Action{{Type: "PING"}})

	if len(newCh) != 1 {
		t.Fatalf("新通道应当收到动作")
	}
}

func TestResponderDetachGuardsAgainstStaleChannel(t *testing.T) {
	r := newPlayerChannelResponder()

	oldCh := make(chan []game.Action, 4)
	newCh := make(chan []game.Action, 4)

	r.Attach("a", oldCh)
	r.Attach("a", newCh)

	// 旧连接收尾时用旧通道解绑，不能影响新绑定
	if r.Detach("a", oldCh) {
		t.Fatalf("旧通道的解绑不应生效")
	}

	if r.NumberOfAttached() != 1 {
		t.Fatalf("新绑定不应被解除")
	}

	if !r.Detach("a", newCh) {
		t.Fatalf("当前通道的解绑应当生效")
	}

	if r.NumberOfAttached() != 0 {
		t.Fatalf("解绑后不应有剩余绑定")
	}
}
