package timer

import (
	"time"

	"github.com/chadrockey/ros/pkg/callbackqueue"
	"github.com/chadrockey/ros/pkg/rostime"
)

// invokeGuarded runs fn, recovering a panic so one misbehaving timer
// callback cannot take down the dispatch goroutine or poison unrelated
// timers sharing its CallbackQueue.
func invokeGuarded(fn func()) {
	defer func() {
		recover()
	}()
	fn()
}

func toStdDuration(d rostime.WallDuration) time.Duration {
	return time.Duration(d.ToSec() * float64(time.Second))
}

// queueCallback is the object pushed onto a timer's CallbackQueue for
// one firing. Grounded on TimerQueueCallback: it tracks waiting_callbacks
// around its own lifetime and re-checks removed/tracked liveness at
// drain time, since both may have changed between enqueue and drain.
type queueCallback[T any, D any] struct {
	info            *Info[T, D]
	now             func() T
	lastExpected    T
	lastReal        T
	currentExpected T
}

func newQueueCallback[T any, D any](info *Info[T, D], now func() T, lastExpected, lastReal, currentExpected T) *queueCallback[T, D] {
	info.waitingCallbacks.Add(1)
	return &queueCallback[T, D]{
		info:            info,
		now:             now,
		lastExpected:    lastExpected,
		lastReal:        lastReal,
		currentExpected: currentExpected,
	}
}

// Call invokes the timer's callback under its per-timer lock, measuring
// wall-clock latency for the next Event's LastDuration field.
func (c *queueCallback[T, D]) Call() callbackqueue.CallResult {
	defer c.info.waitingCallbacks.Add(^uint32(0)) // decrement

	info := c.info
	info.mu.Lock()
	defer info.mu.Unlock()

	info.totalCalls.Add(1)

	if info.removed {
		return callbackqueue.Invalid
	}
	if info.tracked != nil && !info.tracked.Alive() {
		return callbackqueue.Invalid
	}

	event := Event[T]{
		LastExpected:    c.lastExpected,
		LastReal:        c.lastReal,
		CurrentExpected: c.currentExpected,
		CurrentReal:     c.now(),
		LastDuration:    info.lastCallDuration,
	}

	start := rostime.NowWall()
	invokeGuarded(func() { info.callback(event) })
	end := rostime.NowWall()
	info.lastCallDuration = toStdDuration(end.Sub(start))

	info.lastReal = event.CurrentReal
	return callbackqueue.Success
}
