package timer

import "weak"

// TrackedRef reports whether a weakly-observed external object is
// still alive. A timer with a TrackedRef silently stops firing once the
// ref reports false, mirroring pkg/subscription's identical pattern for
// callback liveness — kept as its own small type here rather than a
// shared import, since pkg/timer has no other dependency on
// pkg/subscription and the two engines are otherwise independent.
type TrackedRef interface {
	Alive() bool
}

type trackedRef[T any] struct {
	ptr weak.Pointer[T]
}

// NewTrackedRef wraps obj in a weak reference. The caller retains the
// only strong reference; once it is collected, Alive reports false.
func NewTrackedRef[T any](obj *T) TrackedRef {
	return trackedRef[T]{ptr: weak.Make(obj)}
}

func (t trackedRef[T]) Alive() bool {
	return t.ptr.Value() != nil
}
