package subscription

import (
	"github.com/chadrockey/ros/pkg/log"
	"github.com/chadrockey/ros/pkg/transport"
	"github.com/chadrockey/ros/pkg/xmlrpc"
)

// LinkFactory is the consumed "transport factories" interface: given a
// negotiated address, it produces the concrete Transport a PublisherLink
// will read from. Byte-level transport implementations are out of
// scope for this package; pkg/transport's StreamLink/DatagramLink (via
// transport.TCPFactory) are the reference implementations.
type LinkFactory interface {
	MakeStreamLink(addr string) (transport.Transport, error)
	MakeDatagramLink(addr string) (transport.Transport, error)
}

// Options configures a Subscription, grounded on the teacher's
// Options/DefaultOptions idiom.
type Options struct {
	// MaxQueue bounds the threaded inbox; 0 means unbounded.
	MaxQueue int

	// Threaded selects whether a dedicated worker goroutine drains the
	// inbox (true) or callbacks run inline on the delivering goroutine
	// (false).
	Threaded bool

	// SelfURI is this node's own advertised URI, filtered out of every
	// PubUpdate call.
	SelfURI string

	// CallerID identifies this node in the outgoing connection header.
	CallerID string

	// NodeSecretKey, if non-nil, is the pre-shared secret used to
	// derive a per-link session key via pkg/negotiate.
	NodeSecretKey []byte

	// DialOpts carries per-link dial settings. When DialOpts.Encrypt is
	// set and NodeSecretKey is non-nil, makeLink derives a session key
	// from NodeSecretKey and the offer/result nonce pair and seals the
	// resulting PublisherLink's frames with it. Either condition being
	// false leaves the link in plaintext.
	DialOpts transport.DialOptions

	// LinkFactory produces the Transport for a newly-accepted link.
	// Required for NegotiateConnection to be usable; may be nil in
	// tests that construct PublisherLinks directly.
	LinkFactory LinkFactory

	// Dispatcher registers PendingConnections with the external RPC
	// dispatch loop. May be nil in tests that drive PendingConnection
	// completion manually.
	Dispatcher xmlrpc.RPCDispatcher

	// Logger receives structured events. Defaults to log.NoopLogger{}.
	Logger log.Logger
}

// DefaultOptions returns the runtime's default Subscription
// configuration: unbounded inbox, threaded delivery, no encryption.
func DefaultOptions() Options {
	return Options{
		MaxQueue: 0,
		Threaded: true,
		Logger:   log.NoopLogger{},
	}
}
