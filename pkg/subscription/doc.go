// Package subscription implements the per-topic Subscription engine and
// its supporting PendingConnection negotiation state machine and
// PublisherLink lifecycle. A Subscription reconciles a dynamically
// changing set of upstream publisher URIs pushed by a directory
// service, negotiates a connection to each new one over an out-of-band
// RPC channel, and fans incoming bytes out to registered callbacks —
// either inline or through a bounded inbox drained by a dedicated
// worker goroutine.
package subscription
