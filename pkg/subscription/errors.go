package subscription

import "errors"

// Sentinel errors surfaced by Subscription and PendingConnection.
// Transport and negotiation failures are absorbed internally per the
// propagation policy (logged and recovered from at the next directory
// update); these sentinels exist for the narrow set of cases the core
// itself needs to distinguish, in tests and in log Context fields.
var (
	// ErrDropped names the dropped state. Operations attempted after Drop
	// report it by returning false; none of them returns this error.
	ErrDropped = errors.New("subscription: dropped")

	// ErrNilHelper indicates AddCallback was called with a nil Helper,
	// the one programmer-error case the core validates explicitly.
	ErrNilHelper = errors.New("subscription: helper must not be nil")

	// ErrSchemaMismatch indicates a publisher's advertised md5sum did
	// not match this subscription's, at negotiation completion.
	ErrSchemaMismatch = errors.New("subscription: md5 signature mismatch")

	// ErrAlreadyNegotiating indicates a URI already has a link or
	// pending connection, violating the at-most-once invariant.
	ErrAlreadyNegotiating = errors.New("subscription: uri already has a link or pending connection")
)
