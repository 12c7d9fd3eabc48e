package stats

import "sync/atomic"

// TopicStats summarizes one Subscription's traffic since construction.
// Mirrors the original [topic, bytes_received, num_messages, dropped,
// connections[]] array shape as a typed struct.
type TopicStats struct {
	Topic string

	// BytesReceived and MessagesReceived are cumulative counters across
	// every PublisherLink this subscription has ever owned.
	BytesReceived    atomic.Uint64
	MessagesReceived atomic.Uint64

	// QueueFull is a monotonic counter of inbox oldest-drop events, the
	// resolved form of the "queue_full" overflow indicator (spec's open
	// question on latched-vs-counted semantics resolved as counted).
	QueueFull atomic.Uint64

	Connections []ConnectionInfo
}

// ConnectionInfo describes one PublisherLink. Subscription.GetStats
// lists only live links, each with Active set.
// Mirrors the original [connection_id, destination, direction,
// transport, active, transport_info] array shape.
type ConnectionInfo struct {
	ConnectionID string
	Destination  string // publisher's directory URI
	Direction    string // "in" for a subscriber-side link
	Transport    string // "TCPROS" or "UDPROS"
	Active       bool
	TransportInfo string
}

// Snapshot returns a value copy of the atomic counters, suitable for
// returning across an API boundary or serializing.
type Snapshot struct {
	Topic            string
	BytesReceived    uint64
	MessagesReceived uint64
	QueueFull        uint64
	Connections      []ConnectionInfo
}

// Snapshot reads the current counter values without blocking writers.
func (s *TopicStats) Snapshot() Snapshot {
	return Snapshot{
		Topic:            s.Topic,
		BytesReceived:    s.BytesReceived.Load(),
		MessagesReceived: s.MessagesReceived.Load(),
		QueueFull:        s.QueueFull.Load(),
		Connections:      append([]ConnectionInfo(nil), s.Connections...),
	}
}
