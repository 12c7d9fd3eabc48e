package timer

import "github.com/chadrockey/ros/pkg/rostime"

// WallManager dispatches timers on the monotonic WallTime domain: it
// never pauses or jumps, regardless of UseSimTime.
type WallManager = Manager[rostime.WallTime, rostime.WallDuration]

// WallEvent is the event type WallManager callbacks receive.
type WallEvent = Event[rostime.WallTime]

// NewWallManager constructs a WallManager polling every 100ms when idle.
func NewWallManager() *WallManager {
	return NewManager[rostime.WallTime, rostime.WallDuration](rostime.NowWall, rostime.WallDurationFromSec(0.1))
}
