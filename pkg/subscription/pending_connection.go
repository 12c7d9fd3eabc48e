package subscription

import (
	"sync"
	"weak"

	"github.com/chadrockey/ros/pkg/tcpros"
	"github.com/chadrockey/ros/pkg/xmlrpc"
)

// PendingState is a PendingConnection's position in its state machine:
//
//	Start --send_request--> AwaitingResult --result_ready--> {Accepted, Rejected}
//	                          |
//	                          +--parent_gone--> Cancelled
type PendingState uint8

const (
	PendingStart PendingState = iota
	PendingAwaitingResult
	PendingAccepted
	PendingRejected
	PendingCancelled
)

func (s PendingState) String() string {
	switch s {
	case PendingStart:
		return "START"
	case PendingAwaitingResult:
		return "AWAITING_RESULT"
	case PendingAccepted:
		return "ACCEPTED"
	case PendingRejected:
		return "REJECTED"
	case PendingCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// PendingConnection is an in-flight negotiation handshake with one
// publisher's directory endpoint. It owns an RPC client conceptually
// (the offer it sent) and holds only a weak reference to its parent
// Subscription, so a dropped Subscription never keeps a stalled
// handshake alive.
type PendingConnection struct {
	mu sync.Mutex

	uri    string
	parent weak.Pointer[Subscription]
	state  PendingState
	offer  tcpros.Offer
	result *tcpros.Result

	done     chan struct{}
	doneOnce sync.Once
}

func newPendingConnection(parent *Subscription, uri string, offer tcpros.Offer) *PendingConnection {
	return &PendingConnection{
		uri:    uri,
		parent: weak.Make(parent),
		state:  PendingStart,
		offer:  offer,
		done:   make(chan struct{}),
	}
}

// AttemptID returns the negotiation attempt correlation ID.
func (pc *PendingConnection) AttemptID() string {
	return pc.offer.AttemptID
}

// URI returns the publisher URI this connection is negotiating with.
func (pc *PendingConnection) URI() string {
	return pc.uri
}

// State returns the current state under the pending connection's lock.
func (pc *PendingConnection) State() PendingState {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.state
}

// AddToDispatch registers this pending connection for writable/exception
// events on the RPC dispatch loop.
func (pc *PendingConnection) AddToDispatch(disp xmlrpc.RPCDispatcher) {
	pc.mu.Lock()
	pc.state = PendingAwaitingResult
	pc.mu.Unlock()
	if disp != nil {
		disp.AddSource(pc, xmlrpc.EventWritable|xmlrpc.EventException)
	}
}

// Deliver hands the RPC result to this pending connection. It is called
// by the RPC dispatcher (or, in tests, directly) once a response
// arrives; Check then does the actual state transition and delivery.
func (pc *PendingConnection) Deliver(result tcpros.Result) {
	pc.mu.Lock()
	pc.result = &result
	pc.mu.Unlock()
	pc.doneOnce.Do(func() { close(pc.done) })
}

// Check polls for completion. If a result has arrived, it delivers the
// result to the parent Subscription and returns true so the dispatch
// loop removes this source. If the parent's weak reference has expired,
// it transitions to Cancelled and returns true without delivering.
func (pc *PendingConnection) Check() (done bool) {
	pc.mu.Lock()
	result := pc.result
	pc.mu.Unlock()
	if result == nil {
		return false
	}

	parent := pc.parent.Value()
	if parent == nil {
		pc.mu.Lock()
		pc.state = PendingCancelled
		pc.mu.Unlock()
		return true
	}

	pc.mu.Lock()
	if result.Accepted {
		pc.state = PendingAccepted
	} else {
		pc.state = PendingRejected
	}
	pc.mu.Unlock()

	parent.PendingConnectionDone(pc, *result)
	return true
}

// Wait blocks until a result has been delivered or the pending
// connection is cancelled.
func (pc *PendingConnection) Wait() {
	<-pc.done
}

// cancel transitions directly to Cancelled, used when the parent
// Subscription drops this pending connection (parent_gone) without
// waiting for an RPC result.
func (pc *PendingConnection) cancel() {
	pc.mu.Lock()
	if pc.state != PendingAccepted && pc.state != PendingRejected {
		pc.state = PendingCancelled
	}
	pc.mu.Unlock()
	pc.doneOnce.Do(func() { close(pc.done) })
}

var _ xmlrpc.DispatchSource = (*PendingConnection)(nil)
