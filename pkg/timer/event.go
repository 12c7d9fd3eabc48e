package timer

import "time"

// Event describes one timer firing, handed to the user callback. T is
// the clock's time-point type (rostime.Time for SimManager,
// rostime.WallTime for WallManager); LastDuration is always measured on
// the real wall clock regardless of T, since it profiles actual
// callback latency, not simulated time.
type Event[T any] struct {
	// LastExpected is the previous cycle's scheduled deadline.
	LastExpected T
	// LastReal is the previous cycle's actual firing time.
	LastReal T
	// CurrentExpected is this cycle's scheduled deadline.
	CurrentExpected T
	// CurrentReal is this cycle's actual firing time.
	CurrentReal T
	// LastDuration is how long the previous invocation of this timer's
	// callback took to return.
	LastDuration time.Duration
}
