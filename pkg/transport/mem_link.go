package transport

import "net"

// memLink adapts an in-memory net.Pipe half into a Transport, used to
// exercise PublisherLink and Subscription in tests and the demo CLI
// without opening real sockets.
type memLink struct {
	net.Conn
	remoteURI string
}

func (m *memLink) RemoteURI() string { return m.remoteURI }

var _ Transport = (*memLink)(nil)

// NewMemLinkPair returns two connected in-memory transports, each
// tagged with the other side's identity URI.
func NewMemLinkPair(uriA, uriB string) (a, b Transport) {
	connA, connB := net.Pipe()
	return &memLink{Conn: connA, remoteURI: uriB}, &memLink{Conn: connB, remoteURI: uriA}
}
