package game

import (
	"testing"
	"time"
)

func TestDelayedCallFiresOnce(t *testing.T) {
	deliveries := make(chan *DelayedCall, 4)

	fired := 0

	dc := delayCall(func() { fired++ }, time.Millisecond, func(d *DelayedCall) {
		deliveries <- d
	})

	select {
	case d := <-deliveries:
		d.Run()
		// 重复 Run 必须是空操作
		d.Run()
	case <-time.After(time.Second):
		t.Fatalf("delayed call was not delivered")
	}

	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	_ = dc
}

func TestDelayedCallCancelPreventsFire(t *testing.T) {
	deliveries := make(chan *DelayedCall, 4)

	fired := 0

	dc := delayCall(func() { fired++ }, 5*time.Millisecond, func(d *DelayedCall) {
		deliveries <- d
	})

	dc.Cancel()
	// 重复取消必须安全
	dc.Cancel()

	time.Sleep(20 * time.Millisecond)

	select {
	case d := <-deliveries:
		// 定时器可能在取消前已经投递，Run 必须退化为空操作
		d.Run()
	default:
	}

	if fired != 0 {
		t.Fatalf("canceled call fired %d times", fired)
	}
}

func TestDelayedCallCancelWinsOverQueuedDelivery(t *testing.T) {
	deliveries := make(chan *DelayedCall, 4)

	fired := 0

	dc := delayCall(func() { fired++ }, time.Millisecond, func(d *DelayedCall) {
		deliveries <- d
	})

	// 等到期事件排队之后再取消
	d := <-deliveries

	dc.Cancel()
	d.Run()

	if fired != 0 {
		t.Fatalf("cancellation did not win over the queued delivery")
	}
}

func TestDelayedCallCancelAfterFireIsNoop(t *testing.T) {
	deliveries := make(chan *DelayedCall, 4)

	fired := 0

	dc := delayCall(func() { fired++ }, time.Millisecond, func(d *DelayedCall) {
		deliveries <- d
	})

	d := <-deliveries
	d.Run()

	dc.Cancel()

	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}
