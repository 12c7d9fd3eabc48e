package timer

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chadrockey/ros/pkg/callbackqueue"
)

// ErrShutdown is returned by a dispatch wait interrupted by Shutdown.
var ErrShutdown = errors.New("timer: manager shut down")

const defaultPollBound = 100 * time.Millisecond

// Seconds is satisfied by rostime.Duration and rostime.WallDuration:
// anything convertible to a plain float64 second count, which is all a
// generic sleep loop needs to turn "time remaining" into a wait.
type Seconds interface {
	ToSec() float64
}

// Point is satisfied by rostime.Time and rostime.WallTime: a clock
// domain's point type, parameterized over its own duration type D.
type Point[T any, D Seconds] interface {
	Add(D) T
	Sub(T) D
	Compare(T) int
}

// Info is one registered timer's bookkeeping, the Go analogue of the
// original TimerManager::TimerInfo. Kept as its own type (rather than a
// private field group in Manager) since queueCallback holds a pointer
// to it independent of Manager's own slice.
type Info[T any, D any] struct {
	handle uint32
	period D

	mu               sync.Mutex
	callback         func(Event[T])
	queue            callbackqueue.CallbackQueue
	lastCallDuration time.Duration
	lastExpected     T
	nextExpected     T
	lastReal         T
	removed          bool

	tracked TrackedRef

	waitingCallbacks atomic.Uint32
	totalCalls       atomic.Uint32
}

// Manager dispatches timers of one clock domain (T, D). Grounded on
// ros::TimerManager<T, D, E>: a mutex-guarded, next-deadline-sorted
// vector of timers, a single dispatcher goroutine, and a catch-up loop
// that fires every elapsed period before re-sleeping.
type Manager[T Point[T, D], D Seconds] struct {
	mu     sync.Mutex
	timers []*Info[T, D]

	idMu      sync.Mutex
	idCounter uint32

	now        func() T
	pollPeriod D

	startOnce sync.Once
	quit      chan struct{}
	quitOnce  sync.Once
}

// NewManager constructs a Manager. now reports the current time in T's
// clock domain; pollPeriod bounds how long the dispatcher sleeps when no
// timers are registered, and how often a long wait is re-checked for
// Shutdown.
func NewManager[T Point[T, D], D Seconds](now func() T, pollPeriod D) *Manager[T, D] {
	return &Manager[T, D]{now: now, pollPeriod: pollPeriod, quit: make(chan struct{})}
}

// Add registers a new timer and returns its handle. The dispatcher
// goroutine is started lazily on the first call. tracked may be nil.
func (m *Manager[T, D]) Add(period D, callback func(Event[T]), queue callbackqueue.CallbackQueue, tracked TrackedRef) uint32 {
	now := m.now()
	info := &Info[T, D]{
		period:       period,
		callback:     callback,
		queue:        queue,
		lastExpected: now,
		nextExpected: now.Add(period),
		tracked:      tracked,
	}

	m.idMu.Lock()
	info.handle = m.idCounter
	m.idCounter++
	m.idMu.Unlock()

	m.mu.Lock()
	m.timers = append(m.timers, info)
	m.sortLocked()
	m.mu.Unlock()

	m.startOnce.Do(func() { go m.dispatchLoop() })

	return info.handle
}

// Remove marks handle's timer removed and drops it from the dispatch
// set. Any TimerQueueCallback already enqueued for it will observe
// removed and become a no-op.
func (m *Manager[T, D]) Remove(handle uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, info := range m.timers {
		if info.handle == handle {
			info.mu.Lock()
			info.removed = true
			info.mu.Unlock()
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// HasPending reports whether handle's timer either has a deadline
// already due, or has a callback in flight on its queue. Returns false
// for an unknown handle or a handle whose tracked object has expired.
func (m *Manager[T, D]) HasPending(handle uint32) bool {
	m.mu.Lock()
	info := m.findLocked(handle)
	m.mu.Unlock()
	if info == nil {
		return false
	}
	if info.tracked != nil && !info.tracked.Alive() {
		return false
	}
	return info.nextExpected.Compare(m.now()) <= 0 || info.waitingCallbacks.Load() != 0
}

func (m *Manager[T, D]) findLocked(handle uint32) *Info[T, D] {
	for _, info := range m.timers {
		if info.handle == handle {
			return info
		}
	}
	return nil
}

func (m *Manager[T, D]) sortLocked() {
	sort.Slice(m.timers, func(i, j int) bool {
		return m.timers[i].nextExpected.Compare(m.timers[j].nextExpected) < 0
	})
}

// Shutdown stops the dispatcher goroutine. Safe to call more than once.
func (m *Manager[T, D]) Shutdown() {
	m.quitOnce.Do(func() { close(m.quit) })
}

func (m *Manager[T, D]) dispatchLoop() {
	for {
		select {
		case <-m.quit:
			return
		default:
		}

		var sleepEnd T
		m.mu.Lock()
		if len(m.timers) == 0 {
			sleepEnd = m.now().Add(m.pollPeriod)
		} else {
			info := m.timers[0]
			for info.nextExpected.Compare(m.now()) <= 0 {
				if info.queue != nil {
					info.queue.AddCallback(newQueueCallback(info, m.now, info.lastExpected, info.lastReal, info.nextExpected))
				}
				info.lastExpected = info.nextExpected
				info.nextExpected = info.nextExpected.Add(info.period)
				m.sortLocked()
				info = m.timers[0]
			}
			sleepEnd = info.nextExpected
		}
		m.mu.Unlock()

		if err := m.sleepUntil(sleepEnd); err != nil {
			return
		}
	}
}

// sleepUntil blocks until now() reaches deadline or Shutdown is called,
// polling in bounded slices so a distant deadline doesn't delay
// shutdown past pollPeriod (or 100ms, whichever is smaller).
func (m *Manager[T, D]) sleepUntil(deadline T) error {
	bound := defaultPollBound
	if p := time.Duration(m.pollPeriod.ToSec() * float64(time.Second)); p > 0 && p < bound {
		bound = p
	}
	for {
		now := m.now()
		if now.Compare(deadline) >= 0 {
			return nil
		}
		remaining := deadline.Sub(now)
		wait := time.Duration(remaining.ToSec() * float64(time.Second))
		if wait > bound || wait <= 0 {
			wait = bound
		}
		select {
		case <-m.quit:
			return ErrShutdown
		case <-time.After(wait):
		}
	}
}
