// Package credentials manages the lifecycle of the short-lived cloud
// credentials used by the cloud log transport.
//
// The shared CredentialSnapshot moves through three states: absent (no cloud
// operation possible), fresh (used as-is) and stale (a refresh is due).
// Staleness begins a fixed buffer window before the literal expiration so
// rotation completes while the old credentials still work.
//
// Refresh is guarded by a process-wide singleflight: concurrent callers that
// observe a stale snapshot all await the same in-flight HTTP request instead
// of issuing duplicates. A failed refresh is reported on the diagnostic
// channel and the previous snapshot stays in place; the caller's log call
// proceeds regardless. Only root loggers initiate refresh; child loggers
// delegate up their lineage.
//
// Thread Safety:
//
// All methods on Manager are safe for concurrent use by multiple goroutines.
package credentials
