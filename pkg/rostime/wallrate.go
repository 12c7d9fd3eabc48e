package rostime

import "sync"

// WallRate is the WallTime-domain analogue of Rate.
type WallRate struct {
	mu            sync.Mutex
	start         WallTime
	expectedCycle WallDuration
	actualCycle   WallDuration
}

// NewWallRate constructs a WallRate targeting freq Hz.
func NewWallRate(freq float64) *WallRate {
	return &WallRate{
		start:         NowWall(),
		expectedCycle: WallDurationFromSec(1.0 / freq),
	}
}

// Sleep blocks until the next cycle deadline; see Rate.Sleep for the
// exact contract.
func (r *WallRate) Sleep() bool {
	r.mu.Lock()
	start := r.start
	expectedCycle := r.expectedCycle
	r.mu.Unlock()

	expectedEnd := start.Add(expectedCycle)
	now := NowWall()

	if now.Compare(expectedEnd) >= 0 {
		r.mu.Lock()
		r.actualCycle = now.Sub(start)
		r.start = expectedEnd
		r.mu.Unlock()
		return false
	}

	SleepUntilWall(expectedEnd)
	actualEnd := NowWall()

	r.mu.Lock()
	r.actualCycle = actualEnd.Sub(start)
	r.start = expectedEnd
	r.mu.Unlock()
	return true
}

// CycleTime returns the measured duration of the previous cycle.
func (r *WallRate) CycleTime() WallDuration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.actualCycle
}

// ExpectedCycleTime returns the configured cycle period.
func (r *WallRate) ExpectedCycleTime() WallDuration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expectedCycle
}

// Reset rebases start to the current time.
func (r *WallRate) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start = NowWall()
}
