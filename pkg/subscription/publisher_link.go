package subscription

import (
	"sync/atomic"
	"weak"

	"github.com/chadrockey/ros/pkg/negotiate"
	"github.com/chadrockey/ros/pkg/transport"
)

// PublisherLink is one live connection to one upstream publisher. It
// owns a Transport and holds only a weak reference to its parent
// Subscription, breaking the ownership cycle Subscription -> Link ->
// Subscription that a strong back-reference would otherwise form.
//
// PublisherLink lives in this package rather than pkg/transport because
// it needs weak.Pointer[Subscription]; pkg/transport supplies the
// Transport contract this type depends on, not the other way around.
type PublisherLink struct {
	uri           string
	connectionID  string
	transportKind string
	header        map[string]string

	t      transport.Transport
	framer *negotiate.Framer
	parent weak.Pointer[Subscription]

	bytesReceived    atomic.Uint64
	messagesReceived atomic.Uint64

	done chan struct{}
}

// newPublisherLink constructs a link over t. framer is nil unless the
// negotiation derived a session key for this link, in which case every
// frame read from t is opened with it before being handed to the
// parent Subscription.
func newPublisherLink(parent *Subscription, uri, connectionID, transportKind string, header map[string]string, t transport.Transport, framer *negotiate.Framer) *PublisherLink {
	return &PublisherLink{
		uri:           uri,
		connectionID:  connectionID,
		transportKind: transportKind,
		header:        header,
		t:             t,
		framer:        framer,
		parent:        weak.Make(parent),
		done:          make(chan struct{}),
	}
}

// URI returns the publisher's directory URI, this link's identity key.
func (l *PublisherLink) URI() string { return l.uri }

// start launches the read loop. Called once, immediately after
// construction, by Subscription.PendingConnectionDone.
func (l *PublisherLink) start() {
	go l.readLoop()
}

func (l *PublisherLink) readLoop() {
	defer close(l.done)
	for {
		frame, err := transport.ReadFrame(l.t)
		if err != nil {
			l.onTransportError()
			return
		}

		payload := frame
		if l.framer != nil {
			payload, err = l.framer.Open(frame)
			if err != nil {
				l.onTransportError()
				return
			}
		}

		l.bytesReceived.Add(uint64(len(payload)))
		l.messagesReceived.Add(1)

		parent := l.parent.Value()
		if parent == nil {
			l.t.Close()
			return
		}
		if !parent.HandleMessage(l, payload, l.header) {
			l.t.Close()
			return
		}
	}
}

func (l *PublisherLink) onTransportError() {
	parent := l.parent.Value()
	if parent != nil {
		parent.RemovePublisherLink(l)
	}
	l.t.Close()
}

// Close closes the underlying transport, causing the read loop to exit
// on its next Read.
func (l *PublisherLink) Close() error {
	return l.t.Close()
}
