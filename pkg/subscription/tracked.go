package subscription

import "weak"

// TrackedRef reports whether a weakly-observed external object is
// still alive. A CallbackInfo with a TrackedRef silently
// skips its callback once the ref reports false, per the weak-ownership
// contract: the callback's validity is tied to the tracked object's
// lifetime.
type TrackedRef interface {
	Alive() bool
}

// trackedRef adapts weak.Pointer[T] to TrackedRef for an arbitrary
// tracked type, so CallbackInfo doesn't need to be generic itself.
// pkg/timer has its own equivalent TrackedRef.
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
