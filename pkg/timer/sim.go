package timer

import "github.com/chadrockey/ros/pkg/rostime"

// SimManager dispatches timers on the simulated/wall-agnostic Time
// domain: it follows UseSimTime, so it pauses, jumps, and resumes with
// the rest of the node's simulated clock.
type SimManager = Manager[rostime.Time, rostime.Duration]

// SimEvent is the event type SimManager callbacks receive.
type SimEvent = Event[rostime.Time]

// NewSimManager constructs a SimManager polling every 100ms when idle.
func NewSimManager() *SimManager {
	return NewManager[rostime.Time, rostime.Duration](rostime.Now, rostime.DurationFromSec(0.1))
}
