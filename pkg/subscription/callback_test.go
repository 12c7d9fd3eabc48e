package subscription

import (
	"errors"
	"runtime"
	"testing"

	"github.com/chadrockey/ros/pkg/callbackqueue"
)

func TestFuncHelperCallInvokesFunction(t *testing.T) {
	var got string
	h := FuncHelper(func(bytes []byte, hdr map[string]string) error {
		got = string(bytes)
		return nil
	})

	if err := h.Call([]byte("hello"), nil); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if got != "hello" {
		t.Fatalf("got = %q, want %q", got, "hello")
	}
}

func TestCallbackInfoInvokeRecoversPanic(t *testing.T) {
	ci := NewCallbackInfo(FuncHelper(func(bytes []byte, hdr map[string]string) error {
		panic("boom")
	}), nil, 0, nil)

	err := ci.invoke(nil, nil)
	if err == nil {
		t.Fatal("expected invoke to convert a panic into an error")
	}
}

func TestCallbackInfoInvokePropagatesError(t *testing.T) {
	wantErr := errors.New("deserialize failed")
	ci := NewCallbackInfo(FuncHelper(func(bytes []byte, hdr map[string]string) error {
		return wantErr
	}), nil, 0, nil)

	if err := ci.invoke(nil, nil); !errors.Is(err, wantErr) {
		t.Fatalf("invoke error = %v, want %v", err, wantErr)
	}
}

func TestDeserializingCallbackSkipsWhenNotAlive(t *testing.T) {
	// Non-zero size: zero-size values all share one address that is
	// never collected, so a weak reference to one never expires.
	type target struct{ _ [64]byte }
	tracked := func() TrackedRef {
		obj := &target{}
		return NewTrackedRef(obj)
	}()
	runtime.GC()

	called := false
	ci := NewCallbackInfo(FuncHelper(func(bytes []byte, hdr map[string]string) error {
		called = true
		return nil
	}), nil, 0, tracked)

	cb := &deserializingCallback{info: ci, bytes: []byte("x")}
	if result := cb.Call(); result != callbackqueue.Invalid {
		t.Fatalf("Call() = %v, want Invalid once the tracked object is collected", result)
	}
	if called {
		t.Fatal("helper must not run once the tracked object is gone")
	}
}

func TestDeserializingCallbackRunsWhileAlive(t *testing.T) {
	type target struct{}
	obj := &target{}
	tracked := NewTrackedRef(obj)

	called := false
	ci := NewCallbackInfo(FuncHelper(func(bytes []byte, hdr map[string]string) error {
		called = true
		return nil
	}), nil, 0, tracked)

	cb := &deserializingCallback{info: ci, bytes: []byte("x")}
	if result := cb.Call(); result != callbackqueue.Success {
		t.Fatalf("Call() = %v, want Success", result)
	}
	if !called {
		t.Fatal("helper should have run while the tracked object is alive")
	}
	runtime.KeepAlive(obj)
}
