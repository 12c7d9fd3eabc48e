// Package negotiate derives a per-link session key from a pre-shared
// node secret and the nonce exchanged during PendingConnection
// negotiation, and optionally frames link bytes with ChaCha20-Poly1305
// AEAD once that key is derived. Neither mechanism exists in the
// original roscpp transport; this is a modern hardening of the
// out-of-band negotiation channel, in the spirit of SROS2's later
// addition of transport security to the same design.
package negotiate
