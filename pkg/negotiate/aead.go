package negotiate

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrCiphertextTooShort indicates an Open call received fewer bytes
// than the AEAD nonce prefix requires.
var ErrCiphertextTooShort = errors.New("negotiate: ciphertext shorter than nonce")

// Framer seals and opens link bytes with a derived session key. It
// exists only when a link's DialOptions.Encrypt is set; plaintext
// TCPROS/UDPROS links never construct one.
type Framer struct {
	aead cipherAEAD
}

type cipherAEAD interface {
	NonceSize() int
	Overhead() int
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

// NewFramer constructs a Framer from a session key derived by
// DeriveSessionKey.
func NewFramer(key []byte) (*Framer, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &Framer{aead: aead}, nil
}

// Seal encrypts plaintext, prefixing the ciphertext with a fresh random
// nonce so Open can recover it.
func (f *Framer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, f.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+f.aead.Overhead())
	out = append(out, nonce...)
	return f.aead.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts a frame produced by Seal.
func (f *Framer) Open(sealed []byte) ([]byte, error) {
	nonceSize := f.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	return f.aead.Open(nil, nonce, ciphertext, nil)
}
