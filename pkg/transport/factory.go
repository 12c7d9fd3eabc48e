package transport

// DialOptions carries per-link dial settings. Link factories do not
// read it; Subscription reads Encrypt to decide whether negotiate's
// AEAD framing wraps a link's frames.
type DialOptions struct {
	Encrypt bool `yaml:"encrypt"`
}

// TCPFactory dials real stream and datagram sockets. It satisfies
// pkg/subscription's LinkFactory interface structurally; nothing in
// this package needs to import pkg/subscription to provide it.
type TCPFactory struct {
	// RemoteURIFor derives the identity URI to tag a dialed transport
	// with. If nil, the dialed address is used as the URI.
	RemoteURIFor func(addr string) string
}

func (f *TCPFactory) uriFor(addr string) string {
	if f.RemoteURIFor != nil {
		return f.RemoteURIFor(addr)
	}
	return addr
}

// MakeStreamLink dials a TCP transport to addr.
func (f *TCPFactory) MakeStreamLink(addr string) (Transport, error) {
	return DialStreamLink(addr, f.uriFor(addr))
}

// MakeDatagramLink dials a UDP transport to addr.
func (f *TCPFactory) MakeDatagramLink(addr string) (Transport, error) {
	return DialDatagramLink(addr, f.uriFor(addr))
}
