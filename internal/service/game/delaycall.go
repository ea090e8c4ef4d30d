package game

import (
	"sync"
	"time"
)

// DelayedCall 是一个一次性的延迟回调：
// 用于断线重连宽限期和回合倒计时。
// 回调最多触发一次，Cancel 可以安全地重复调用。
//
// 到期时并不直接执行回调，而是把自身投递到房间的
// 事件通道里，由事件循环调用 Run。这样即使定时器已经
// 到期但事件尚未被处理，Cancel 依然能阻止回调执行。
type DelayedCall struct {
	mu    sync.Mutex
	fn    func()
	timer *time.Timer
	done  bool
}

func delayCall(fn func(), delay time.Duration, deliver func(*DelayedCall)) *DelayedCall {
	dc := &DelayedCall{fn: fn}

	dc.timer = time.AfterFunc(delay, func() {
		deliver(dc)
	})

	return dc
}

// Run 在房间的事件循环里被调用，已取消则什么都不做
func (dc *DelayedCall) Run() {
	dc.mu.Lock()

	if dc.done {
		dc.mu.Unlock()
		return
	}

	dc.done = true
	fn := dc.fn

	dc.mu.Unlock()

	fn()
}

func (dc *DelayedCall) Cancel() {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.done {
		return
	}

	dc.done = true
	dc.timer.Stop()
}
