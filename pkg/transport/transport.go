package transport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameLength bounds a single frame to guard against a corrupt or
// hostile length prefix causing an unbounded allocation.
const MaxFrameLength = 64 << 20 // 64 MiB

// ErrFrameTooLarge is returned by ReadFrame when the length prefix
// exceeds MaxFrameLength.
type ErrFrameTooLarge struct {
	Length uint32
}

func (e *ErrFrameTooLarge) Error() string {
	return fmt.Sprintf("transport: frame length %d exceeds max %d", e.Length, MaxFrameLength)
}

// Transport is the byte-carrying channel a PublisherLink reads from and
// writes to. Byte-level transport implementations are a thin reference
// layer here; the real wire protocol is out of scope.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error

	// RemoteURI identifies the peer this transport is connected to, the
	// same URI used as the identity key in publisher_links.
	RemoteURI() string
}

// WriteFrame writes a single length-prefixed frame: a 4-byte
// little-endian length followed by payload, matching TCPROS message
// framing.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length > MaxFrameLength {
		return nil, &ErrFrameTooLarge{Length: length}
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
