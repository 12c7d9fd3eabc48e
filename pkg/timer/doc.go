// Package timer implements a generic, clock-agnostic timer dispatcher:
// callers register a period and a callback; a single dispatcher
// goroutine per Manager wakes at the nearest deadline, catches up on
// however many periods have elapsed since the last wake (bounded only
// by the caller's own callback latency), and re-sorts the pending set
// after each catch-up step.
//
// The dispatcher is instantiated twice: SimManager runs on
// rostime.Time (may jump, may pause) and WallManager runs on
// rostime.WallTime (monotonic). Both share the same Manager[T, D]
// generic implementation; only the clock functions differ.
package timer
