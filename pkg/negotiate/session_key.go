package negotiate

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the derived session key length, matching
// chacha20poly1305.KeySize.
const KeySize = 32

// NonceSize is the length of the random nonce exchanged in the
// negotiation handshake.
const NonceSize = 16

// ErrDerivationFailed indicates the HKDF output stream could not be
// filled, which only happens if the key size requested exceeds HKDF's
// bound for the underlying hash — never true for KeySize with SHA-256.
var ErrDerivationFailed = errors.New("negotiate: session key derivation failed")

// NewNonce generates a fresh random nonce for a negotiation offer.
func NewNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}

// DeriveSessionKey derives a per-link session key from a pre-shared
// node secret and the nonce exchanged during negotiation. Both sides of
// a link call this with the same secret and nonce and arrive at the
// same key, mirroring how the offer/result exchange in pkg/tcpros
// carries the nonce that seeds this derivation.
func DeriveSessionKey(secret, nonce []byte, topic string) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nonce, []byte("ros-link-key:"+topic))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, ErrDerivationFailed
	}
	return key, nil
}
