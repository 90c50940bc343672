// Package traceroot is the top-level entry point of the TraceRoot Go SDK.
//
// It re-exports the initialization and logger surface from pkg/logger so a
// host application only needs one import:
//
//	import "github.com/traceroot-ai/traceroot-sdk-go"
//
//	func main() {
//		if err := traceroot.Init(traceroot.Config{
//			ServiceName:            "my-service",
//			Environment:            "production",
//			Token:                  os.Getenv("TRACEROOT_TOKEN"),
//			EnableLogConsoleExport: true,
//			EnableLogCloudExport:   true,
//		}); err != nil {
//			log.Fatal(err)
//		}
//		defer traceroot.Shutdown(context.Background())
//
//		lg, _ := traceroot.GetLogger("")
//		lg.Info(ctx, "service started")
//	}
//
// The subpackages under pkg/ remain importable directly for hosts that need
// finer control over transports, credentials or metrics.
package traceroot
