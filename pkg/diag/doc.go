// Package diag is the SDK's internal diagnostic channel.
//
// Transport, credential and correlation failures are never propagated to the
// caller of a logging method; they are reported here instead. The channel is
// a thin wrapper around Uber's Zap logger writing JSON to stderr, so SDK
// self-reports are structurally separate from the records the host
// application emits.
//
// Thread Safety:
//
// All methods on Logger are safe for concurrent use by multiple goroutines.
package diag
