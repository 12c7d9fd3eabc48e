package callbackqueue

import (
	"container/list"
	"sync"
)

// DefaultCallbackQueue is a reference CallbackQueue implementation: an
// unbounded FIFO drained by CallOne/CallAvailable on a user-owned
// thread, guarded by a mutex+condition-variable pair in the same style
// as Subscription's inbox.
type DefaultCallbackQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   *list.List
	enabled bool
}

// NewDefaultCallbackQueue creates an enabled, empty queue.
func NewDefaultCallbackQueue() *DefaultCallbackQueue {
	q := &DefaultCallbackQueue{
		queue:   list.New(),
		enabled: true,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// AddCallback appends cb to the tail of the queue and wakes one drainer.
func (q *DefaultCallbackQueue) AddCallback(cb CallbackInterface) {
	q.mu.Lock()
	q.queue.PushBack(cb)
	q.mu.Unlock()
	q.cond.Signal()
}

// Enable allows callbacks to be dispatched again after Disable.
func (q *DefaultCallbackQueue) Enable() {
	q.mu.Lock()
	q.enabled = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Disable prevents further dispatch and wakes any blocked CallOne so it
// can return without invoking a callback.
func (q *DefaultCallbackQueue) Disable() {
	q.mu.Lock()
	q.enabled = false
	q.mu.Unlock()
	q.cond.Broadcast()
}

// IsEnabled reports whether the queue currently dispatches callbacks.
func (q *DefaultCallbackQueue) IsEnabled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enabled
}

// Empty reports whether the queue currently holds no callbacks.
func (q *DefaultCallbackQueue) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.Len() == 0
}

// CallOne dequeues and calls at most one callback, blocking until one
// is available or the queue is disabled. TryAgain results are re-queued
// at the tail; Invalid and Success results are discarded. Returns false
// if the queue was disabled before a callback ran.
func (q *DefaultCallbackQueue) CallOne() bool {
	q.mu.Lock()
	for q.queue.Len() == 0 && q.enabled {
		q.cond.Wait()
	}
	if !q.enabled {
		q.mu.Unlock()
		return false
	}
	front := q.queue.Front()
	q.queue.Remove(front)
	q.mu.Unlock()

	cb := front.Value.(CallbackInterface)
	if cb.Call() == TryAgain {
		q.mu.Lock()
		q.queue.PushBack(cb)
		q.mu.Unlock()
		q.cond.Signal()
	}
	return true
}

// CallAvailable dispatches every callback currently in the queue
// (a snapshot at call time), without blocking for new arrivals.
func (q *DefaultCallbackQueue) CallAvailable() int {
	q.mu.Lock()
	if !q.enabled {
		q.mu.Unlock()
		return 0
	}
	n := q.queue.Len()
	batch := make([]CallbackInterface, 0, n)
	for e := q.queue.Front(); e != nil; e = e.Next() {
		batch = append(batch, e.Value.(CallbackInterface))
	}
	q.queue.Init()
	q.mu.Unlock()

	called := 0
	var retry []CallbackInterface
	for _, cb := range batch {
		if cb.Call() == TryAgain {
			retry = append(retry, cb)
			continue
		}
		called++
	}
	if len(retry) > 0 {
		q.mu.Lock()
		for _, cb := range retry {
			q.queue.PushBack(cb)
		}
		q.mu.Unlock()
	}
	return called
}

// Clear discards every queued callback without calling it.
func (q *DefaultCallbackQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue.Init()
}

var _ CallbackQueue = (*DefaultCallbackQueue)(nil)
