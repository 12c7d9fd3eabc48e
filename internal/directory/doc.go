// Package directory provides a minimal in-memory stand-in for the
// external directory service a real node would talk to over its own
// RPC protocol (spec kept that protocol out of scope). It exists only
// to give cmd/rosnode-shell and integration tests something concrete to
// drive pub_update calls from, grounded on the teacher's ticker-driven
// background loop idiom (pkg/service.DeviceService.runStaleConnectionReaper).
package directory
