// Package transport provides the byte-carrying channel abstraction that a
// PublisherLink sits on top of, plus two minimal reference implementations
// (a TCP-backed stream transport and a UDP-backed datagram transport) and
// the length-prefixed framing shared by both.
//
// The PublisherLink type itself lives in pkg/subscription: it needs a weak
// back-reference to its owning Subscription, and housing it alongside
// Subscription avoids a dependency cycle between this package and
// pkg/subscription while still letting pkg/transport define the Transport
// contract Subscription depends on.
package transport
