package tcpros

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrHeaderTooLarge guards against a corrupt or hostile header length
// prefix causing an unbounded allocation.
var ErrHeaderTooLarge = errors.New("tcpros: connection header exceeds max size")

// MaxHeaderLength bounds the total encoded size of a connection header.
const MaxHeaderLength = 1 << 20 // 1 MiB

// Header is the connection-header key/value record exchanged before a
// link's byte stream starts. Field names mirror the original protocol's
// well-known keys.
type Header struct {
	MD5Sum     string
	Type       string
	CallerID   string
	Topic      string
	TCPNoDelay bool
}

// ToFields returns the header as a key/value map suitable for
// encoding. Boolean fields are rendered as "0"/"1" per convention.
func (h Header) ToFields() map[string]string {
	fields := map[string]string{
		"md5sum":   h.MD5Sum,
		"type":     h.Type,
		"callerid": h.CallerID,
		"topic":    h.Topic,
	}
	if h.TCPNoDelay {
		fields["tcp_nodelay"] = "1"
	} else {
		fields["tcp_nodelay"] = "0"
	}
	return fields
}

// HeaderFromFields builds a Header from a decoded key/value map.
func HeaderFromFields(fields map[string]string) Header {
	return Header{
		MD5Sum:     fields["md5sum"],
		Type:       fields["type"],
		CallerID:   fields["callerid"],
		Topic:      fields["topic"],
		TCPNoDelay: fields["tcp_nodelay"] == "1",
	}
}

// EncodeHeader writes fields as a length-prefixed sequence of
// "key=value" entries, each itself length-prefixed, matching the
// original TCPROS connection-header wire format.
func EncodeHeader(w io.Writer, fields map[string]string) error {
	var body bytes.Buffer
	for k, v := range fields {
		entry := fmt.Sprintf("%s=%s", k, v)
		var entryLen [4]byte
		binary.LittleEndian.PutUint32(entryLen[:], uint32(len(entry)))
		body.Write(entryLen[:])
		body.WriteString(entry)
	}

	var totalLen [4]byte
	binary.LittleEndian.PutUint32(totalLen[:], uint32(body.Len()))
	if _, err := w.Write(totalLen[:]); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}

// DecodeHeader reads a connection header written by EncodeHeader.
func DecodeHeader(r io.Reader) (map[string]string, error) {
	var totalLen [4]byte
	if _, err := io.ReadFull(r, totalLen[:]); err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint32(totalLen[:])
	if length > MaxHeaderLength {
		return nil, ErrHeaderTooLarge
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	buf := bytes.NewReader(body)
	for buf.Len() > 0 {
		var entryLen [4]byte
		if _, err := io.ReadFull(buf, entryLen[:]); err != nil {
			return nil, err
		}
		n := binary.LittleEndian.Uint32(entryLen[:])
		entry := make([]byte, n)
		if _, err := io.ReadFull(buf, entry); err != nil {
			return nil, err
		}
		key, value, found := bytes.Cut(entry, []byte("="))
		if !found {
			return nil, fmt.Errorf("tcpros: malformed header entry %q", entry)
		}
		fields[string(key)] = string(value)
	}
	return fields, nil
}
