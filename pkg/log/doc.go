// Package log provides structured runtime logging for the ros client
// runtime.
//
// This package defines the Logger interface and Event types for capturing
// events at multiple layers (transport, negotiation, subscription, timer).
// It is separate from operational logging (slog) - event capture provides
// a machine-readable trace of runtime activity for debugging and
// analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	opts := subscription.DefaultOptions()
//	opts.Logger = log.NewSlogAdapter(slog.Default())
//	sub := subscription.New(name, md5, datatype, opts)
//
//	// For production: write to binary file
//	logger, _ := log.NewFileLogger("/var/log/ros/node.rlog")
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Event types cover multiple layers:
//   - Transport: raw link byte/message counters (LinkEvent)
//   - Negotiation: pending-connection handshake outcome (NegotiationEvent)
//   - Subscription: inbox overflow and state changes
//   - Timer: dispatch and catch-up bookkeeping (TimerEvent)
//
// Of these, pkg/subscription emits negotiation outcomes
// (NegotiationEvent) and errors (ErrorEventData); pkg/timer emits no
// events.
//
// # File Format
//
// Log files use CBOR encoding. Filtering by topic or publisher URI is
// available through Reader/Filter for offline analysis.
package log
