// Package stats defines the typed introspection schema Subscription's
// GetStats/GetInfo return, mirroring the shape of the original
// getStats()/getInfo() XML-RPC arrays as Go structs instead of untyped
// RPC values.
package stats
