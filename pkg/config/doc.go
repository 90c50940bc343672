// Package config holds the shared configuration record for the TraceRoot SDK.
//
// A single Config value is resolved by the host application (or by whatever
// configuration layer it uses) and handed to the SDK at initialization time.
// The SDK never reads configuration files itself; it treats the record as an
// opaque, process-wide object.
//
// Because credential rotation replaces the embedded CredentialSnapshot at
// runtime, the record is shared through a Cell: a mutex-guarded container
// that every logger holds by reference. Replacement of the snapshot goes
// through the Cell, and all loggers observe the update on their next read.
//
// Basic Usage:
//
//	cell := config.NewCell(config.Config{
//		ServiceName:            "my-service",
//		Environment:            "production",
//		Token:                  os.Getenv("TRACEROOT_TOKEN"),
//		EnableLogConsoleExport: true,
//		EnableLogCloudExport:   true,
//		LogLevel:               config.Info,
//	})
//
// Thread Safety:
//
// All methods on Cell are safe for concurrent use by multiple goroutines.
// CredentialSnapshot values are immutable once constructed; rotation installs
// a new snapshot rather than mutating the old one.
package config
