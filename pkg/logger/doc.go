// Package logger provides the public logging surface of the TraceRoot SDK.
//
// The package keeps a process-wide registry of named root loggers. A root
// logger owns its sink handles (console, cloud stream, optional Kafka)
// through a transport controller; child loggers derived with Child share
// those handles by reference and only add persistent key/value context.
// Lifecycle operations (Flush, credential refresh, Shutdown) always act on
// the root of a lineage; calling them on a child delegates up the parent
// chain.
//
// Core Features:
//   - Structured logging with flexible call arguments (message first or
//     metadata first, any mix of strings and maps)
//   - Trace correlation: every record carries the active span's trace and
//     span ids, and in local mode records are buffered as span events
//   - Transparent cloud credential rotation with hot-swapped transports
//   - Per-level methods Debug, Info, Warn, Error and Critical
//
// Basic Usage:
//
//	err := logger.Init(config.Config{
//		ServiceName:            "my-service",
//		Environment:            "production",
//		Token:                  os.Getenv("TRACEROOT_TOKEN"),
//		EnableLogConsoleExport: true,
//		EnableLogCloudExport:   true,
//		LogLevel:               config.Info,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer logger.Shutdown(context.Background())
//
//	lg, err := logger.GetLogger("")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	lg.Info(ctx, "user logged in", map[string]interface{}{
//		"user_id": "12345",
//		"ip":      "192.168.1.1",
//	})
//
//	// Child loggers carry persistent context on every record.
//	reqLog := lg.Child(map[string]interface{}{"request_id": "abc-123"})
//	reqLog.Debug(ctx, "processing request")
//
// Error Semantics:
//
// The logging methods never fail the caller: transport, credential and
// correlation failures are recovered internally and reported on the SDK's
// diagnostic channel. The only hard failure in the package is calling
// GetLogger before Init, which returns ErrNotInitialized.
//
// FX Module Integration:
//
// This package provides an fx module for applications using the fx
// dependency injection framework:
//
//	app := fx.New(
//		logger.FXModule,
//		// ... other modules
//	)
//	app.Run()
//
// Thread Safety:
//
// All exported functions and methods are safe for concurrent use by
// multiple goroutines.
package logger
