package subscription

import (
	"fmt"

	"github.com/chadrockey/ros/pkg/callbackqueue"
)

// Helper deserializes wire bytes into a typed message and invokes the
// user's typed function with it. It encapsulates deserialization +
// dispatch so CallbackInfo stays agnostic to any particular message
// type.
type Helper interface {
	Call(bytes []byte, hdr map[string]string) error
}

// FuncHelper adapts a plain function to Helper, the legacy raw
// callback+message form.
type FuncHelper func(bytes []byte, hdr map[string]string) error

// Call invokes the wrapped function.
func (f FuncHelper) Call(bytes []byte, hdr map[string]string) error { return f(bytes, hdr) }

// CallbackInfo holds one registered callback: what to call, where to
// call it, and what governs its liveness.
type CallbackInfo struct {
	helper    Helper
	queue     callbackqueue.CallbackQueue // nil means invoke inline
	queueSize int
	tracked   TrackedRef // nil means untracked
}

// NewCallbackInfo constructs a CallbackInfo. helper must not be nil.
func NewCallbackInfo(helper Helper, queue callbackqueue.CallbackQueue, queueSize int, tracked TrackedRef) *CallbackInfo {
	return &CallbackInfo{helper: helper, queue: queue, queueSize: queueSize, tracked: tracked}
}

// invoke calls the helper directly, recovering a panic into an error so
// one misbehaving callback cannot poison the batch it was invoked in.
func (ci *CallbackInfo) invoke(bytes []byte, hdr map[string]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscription: callback panicked: %v", r)
		}
	}()
	return ci.helper.Call(bytes, hdr)
}

// deserializingCallback is the callback object pushed onto a
// CallbackInfo's target queue; it re-checks the tracked reference at
// drain time since it may have expired between enqueue and drain.
type deserializingCallback struct {
	info  *CallbackInfo
	bytes []byte
	hdr   map[string]string
}

func (c *deserializingCallback) Call() callbackqueue.CallResult {
	if c.info.tracked != nil && !c.info.tracked.Alive() {
		return callbackqueue.Invalid
	}
	if err := c.info.invoke(c.bytes, c.hdr); err != nil {
		return callbackqueue.Invalid
	}
	return callbackqueue.Success
}

var _ callbackqueue.CallbackInterface = (*deserializingCallback)(nil)
