package tcpros

import (
	"github.com/fxamacker/cbor/v2"
)

// TransportKind names the negotiated transport for a link.
type TransportKind uint8

const (
	// TransportTCP selects a stream-oriented link.
	TransportTCP TransportKind = 0
	// TransportUDP selects a datagram-oriented link.
	TransportUDP TransportKind = 1
)

func (k TransportKind) String() string {
	switch k {
	case TransportTCP:
		return "TCPROS"
	case TransportUDP:
		return "UDPROS"
	default:
		return "UNKNOWN"
	}
}

// Offer is the out-of-band negotiation request a PendingConnection
// sends to a publisher's directory endpoint.
type Offer struct {
	AttemptID       string        `cbor:"1,keyasint"`
	Topic           string        `cbor:"2,keyasint"`
	MD5Sum          string        `cbor:"3,keyasint"`
	Type            string        `cbor:"4,keyasint"`
	CallerID        string        `cbor:"5,keyasint"`
	Transport       TransportKind `cbor:"6,keyasint"`
	ProtocolVersion uint32        `cbor:"7,keyasint"`

	// Nonce seeds HKDF-derived session-key material for the resulting
	// link; Subscription uses it only when Options.DialOpts.Encrypt is set.
	Nonce []byte `cbor:"8,keyasint,omitempty"`
}

// Result is the out-of-band negotiation response a PendingConnection
// receives and hands to Subscription.PendingConnectionDone.
type Result struct {
	AttemptID string        `cbor:"1,keyasint"`
	Accepted  bool          `cbor:"2,keyasint"`
	Reason    string        `cbor:"3,keyasint,omitempty"`
	Transport TransportKind `cbor:"4,keyasint,omitempty"`
	Addr      string        `cbor:"5,keyasint,omitempty"`

	// Nonce echoes (or supplements) the offer's nonce so both sides
	// derive the same session key.
	Nonce []byte `cbor:"6,keyasint,omitempty"`

	// Header carries the publisher's connection-header fields
	// (md5sum, type, callerid, topic), letting PendingConnectionDone
	// verify schema compatibility before promoting the link.
	Header map[string]string `cbor:"7,keyasint,omitempty"`
}

// EncodeOffer serializes an Offer to CBOR bytes for the RPC dispatcher.
func EncodeOffer(o Offer) ([]byte, error) {
	return cbor.Marshal(o)
}

// DecodeOffer deserializes CBOR bytes into an Offer.
func DecodeOffer(data []byte) (Offer, error) {
	var o Offer
	err := cbor.Unmarshal(data, &o)
	return o, err
}

// EncodeResult serializes a Result to CBOR bytes.
func EncodeResult(r Result) ([]byte, error) {
	return cbor.Marshal(r)
}

// DecodeResult deserializes CBOR bytes into a Result.
func DecodeResult(data []byte) (Result, error) {
	var r Result
	err := cbor.Unmarshal(data, &r)
	return r, err
}
