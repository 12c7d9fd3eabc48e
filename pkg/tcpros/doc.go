// Package tcpros implements the connection-header wire format exchanged
// between a subscriber and publisher before message bytes start
// flowing, and the CBOR-encoded negotiation handshake payload carried
// over the out-of-band RPC channel during PendingConnection negotiation.
package tcpros
