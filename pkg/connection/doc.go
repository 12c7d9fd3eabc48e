// Package connection provides the exponential-backoff calculator used
// to space out repeated negotiation attempts against a single
// publisher URI.
//
// # Backoff Strategy
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//  4. Continue at 60s until successful
//  5. Reset to 1s on successful negotiation
//
// # Jitter
//
// To prevent every re-offered URI from retrying in lockstep:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
package connection
