package subscription

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chadrockey/ros/pkg/tcpros"
	"github.com/chadrockey/ros/pkg/transport"
)

// memLinkFactory hands out one half of an in-memory pipe per call and
// keeps the other half so a test can act as the simulated publisher.
type memLinkFactory struct {
	mu    sync.Mutex
	peers map[string]transport.Transport
}

func newMemLinkFactory() *memLinkFactory {
	return &memLinkFactory{peers: make(map[string]transport.Transport)}
}

func (f *memLinkFactory) MakeStreamLink(addr string) (transport.Transport, error) {
	subSide, pubSide := transport.NewMemLinkPair(addr, "subscriber")
	f.mu.Lock()
	f.peers[addr] = pubSide
	f.mu.Unlock()
	return subSide, nil
}

func (f *memLinkFactory) MakeDatagramLink(addr string) (transport.Transport, error) {
	return f.MakeStreamLink(addr)
}

func (f *memLinkFactory) peerFor(addr string) transport.Transport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peers[addr]
}

func testOptions(factory LinkFactory, threaded bool) Options {
	opts := DefaultOptions()
	opts.Threaded = threaded
	opts.LinkFactory = factory
	opts.CallerID = "/tester"
	return opts
}

func acceptResult(attemptID, addr string) tcpros.Result {
	return tcpros.Result{
		AttemptID: attemptID,
		Accepted:  true,
		Transport: tcpros.TransportTCP,
		Addr:      addr,
		Header: tcpros.Header{
			MD5Sum: "abc123", Type: "std_msgs/String", CallerID: "/pub", Topic: "/chatter",
		}.ToFields(),
	}
}

func TestNegotiateConnectionPromotesLink(t *testing.T) {
	factory := newMemLinkFactory()
	sub := New("/chatter", "abc123", "std_msgs/String", testOptions(factory, false))

	sub.NegotiateConnection("http://pub:1234/", false)

	sub.pendingMu.Lock()
	pc := sub.pendingConnections["http://pub:1234/"]
	sub.pendingMu.Unlock()
	if pc == nil {
		t.Fatal("expected a pending connection to be registered")
	}

	pc.Deliver(acceptResult(pc.AttemptID(), "http://pub:1234/"))
	if !pc.Check() {
		t.Fatal("Check() should report done once a result is delivered")
	}

	sub.linksMu.Lock()
	link, ok := sub.publisherLinks["http://pub:1234/"]
	sub.linksMu.Unlock()
	if !ok {
		t.Fatal("expected publisher link to be promoted after acceptance")
	}
	t.Cleanup(func() { link.Close() })
}

func TestNegotiateConnectionRejectsSchemaMismatch(t *testing.T) {
	factory := newMemLinkFactory()
	sub := New("/chatter", "abc123", "std_msgs/String", testOptions(factory, false))

	sub.NegotiateConnection("http://pub:1234/", false)
	sub.pendingMu.Lock()
	pc := sub.pendingConnections["http://pub:1234/"]
	sub.pendingMu.Unlock()

	result := acceptResult(pc.AttemptID(), "http://pub:1234/")
	result.Header = tcpros.Header{MD5Sum: "different"}.ToFields()
	pc.Deliver(result)
	pc.Check()

	sub.linksMu.Lock()
	_, ok := sub.publisherLinks["http://pub:1234/"]
	sub.linksMu.Unlock()
	if ok {
		t.Fatal("mismatched md5sum must not be promoted to a publisher link")
	}
}

func TestPubUpdateCancelsStaleAndAddsNew(t *testing.T) {
	factory := newMemLinkFactory()
	sub := New("/chatter", "abc123", "std_msgs/String", testOptions(factory, false))

	sub.PubUpdate([]string{"http://a/", "http://b/"})

	sub.pendingMu.Lock()
	_, hasA := sub.pendingConnections["http://a/"]
	_, hasB := sub.pendingConnections["http://b/"]
	sub.pendingMu.Unlock()
	if !hasA || !hasB {
		t.Fatal("expected pending connections for both initial publishers")
	}

	sub.PubUpdate([]string{"http://b/"})

	sub.pendingMu.Lock()
	_, hasA = sub.pendingConnections["http://a/"]
	_, hasB = sub.pendingConnections["http://b/"]
	sub.pendingMu.Unlock()
	if hasA {
		t.Fatal("expected stale pending connection to have been cancelled")
	}
	if !hasB {
		t.Fatal("expected surviving pending connection to remain")
	}
}

func TestPubUpdateFiltersSelfURI(t *testing.T) {
	factory := newMemLinkFactory()
	opts := testOptions(factory, false)
	opts.SelfURI = "http://self/"
	sub := New("/chatter", "abc123", "std_msgs/String", opts)

	sub.PubUpdate([]string{"http://self/", "http://other/"})

	sub.pendingMu.Lock()
	_, hasSelf := sub.pendingConnections["http://self/"]
	_, hasOther := sub.pendingConnections["http://other/"]
	sub.pendingMu.Unlock()
	if hasSelf {
		t.Fatal("must never negotiate a connection to its own advertised URI")
	}
	if !hasOther {
		t.Fatal("expected a pending connection to the other publisher")
	}
}

func TestHandleMessageInlineDeliversToCallback(t *testing.T) {
	factory := newMemLinkFactory()
	sub := New("/chatter", "abc123", "std_msgs/String", testOptions(factory, false))

	var got atomic.Uint32
	sub.AddCallback(FuncHelper(func(bytes []byte, hdr map[string]string) error {
		got.Add(1)
		return nil
	}), nil, 0, nil)

	sub.HandleMessage(nil, []byte("hello"), nil)

	if got.Load() != 1 {
		t.Fatalf("callback invocations = %d, want 1", got.Load())
	}
}

func TestHandleMessageThreadedDrainsInbox(t *testing.T) {
	factory := newMemLinkFactory()
	sub := New("/chatter", "abc123", "std_msgs/String", testOptions(factory, true))

	done := make(chan struct{})
	sub.AddCallback(FuncHelper(func(bytes []byte, hdr map[string]string) error {
		close(done)
		return nil
	}), nil, 0, nil)

	sub.HandleMessage(nil, []byte("hello"), nil)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("threaded delivery did not reach the callback in time")
	}
	sub.Shutdown()
}

func TestHandleMessageOverflowDropsOldest(t *testing.T) {
	factory := newMemLinkFactory()
	opts := testOptions(factory, true)
	opts.MaxQueue = 1
	sub := New("/chatter", "abc123", "std_msgs/String", opts)

	// Fill the inbox directly, bypassing the worker, to observe the
	// drop policy deterministically.
	sub.inboxMu.Lock()
	sub.workerStarted = true // prevent the worker from draining concurrently
	sub.inbox = append(sub.inbox, inboxEntry{bytes: []byte("first")})
	sub.inboxMu.Unlock()

	sub.HandleMessage(nil, []byte("second"), nil)

	sub.inboxMu.Lock()
	got := len(sub.inbox)
	dropped := sub.stats.QueueFull.Load()
	last := string(sub.inbox[len(sub.inbox)-1].bytes)
	sub.inboxMu.Unlock()

	if got != 1 {
		t.Fatalf("inbox length = %d, want 1", got)
	}
	if dropped != 1 {
		t.Fatalf("QueueFull = %d, want 1", dropped)
	}
	if last != "second" {
		t.Fatalf("surviving entry = %q, want %q", last, "second")
	}
}

func TestRemoveCallbackStopsDelivery(t *testing.T) {
	factory := newMemLinkFactory()
	sub := New("/chatter", "abc123", "std_msgs/String", testOptions(factory, false))

	var got atomic.Uint32
	ci, ok := sub.AddCallback(FuncHelper(func(bytes []byte, hdr map[string]string) error {
		got.Add(1)
		return nil
	}), nil, 0, nil)
	if !ok {
		t.Fatal("AddCallback should succeed")
	}

	sub.RemoveCallback(ci)
	sub.HandleMessage(nil, []byte("hello"), nil)

	if got.Load() != 0 {
		t.Fatalf("callback invocations after removal = %d, want 0", got.Load())
	}
}

func TestDropIsIdempotentAndStopsDelivery(t *testing.T) {
	factory := newMemLinkFactory()
	sub := New("/chatter", "abc123", "std_msgs/String", testOptions(factory, false))

	var got atomic.Uint32
	sub.AddCallback(FuncHelper(func(bytes []byte, hdr map[string]string) error {
		got.Add(1)
		return nil
	}), nil, 0, nil)

	sub.Drop()
	sub.Drop() // must not panic or double-close channels

	if sub.HandleMessage(nil, []byte("hello"), nil) {
		t.Fatal("HandleMessage should report false once dropped")
	}
	if got.Load() != 0 {
		t.Fatal("dropped subscription must not deliver messages")
	}
}

func TestCallbackPanicDoesNotPoisonBatch(t *testing.T) {
	factory := newMemLinkFactory()
	sub := New("/chatter", "abc123", "std_msgs/String", testOptions(factory, false))

	sub.AddCallback(FuncHelper(func(bytes []byte, hdr map[string]string) error {
		panic("boom")
	}), nil, 0, nil)

	var got atomic.Uint32
	sub.AddCallback(FuncHelper(func(bytes []byte, hdr map[string]string) error {
		got.Add(1)
		return nil
	}), nil, 0, nil)

	sub.HandleMessage(nil, []byte("hello"), nil)

	if got.Load() != 1 {
		t.Fatal("a panicking callback must not prevent later callbacks from running")
	}
}

func TestGetStatsReflectsTraffic(t *testing.T) {
	factory := newMemLinkFactory()
	sub := New("/chatter", "abc123", "std_msgs/String", testOptions(factory, false))

	sub.HandleMessage(nil, []byte("hello"), nil)
	sub.HandleMessage(nil, []byte("world"), nil)

	snap := sub.GetStats()
	if snap.MessagesReceived != 2 {
		t.Fatalf("MessagesReceived = %d, want 2", snap.MessagesReceived)
	}
	if snap.BytesReceived != 10 {
		t.Fatalf("BytesReceived = %d, want 10", snap.BytesReceived)
	}
}
