package metrics

// Default address for the optional scrape server if none is specified.
const DefaultMetricsAddress = ":9090"

// Config defines the configuration structure for the SDK's self-metrics.
type Config struct {
	// Address determines the network address where the Prometheus
	// scrape server listens when EnableServer is true.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "address" key
	//   - Environment variable TRACEROOT_METRICS_ADDRESS
	//
	// Default: ":9090"
	Address string `yaml:"address" envconfig:"TRACEROOT_METRICS_ADDRESS"`

	// EnableServer starts an HTTP server exposing the SDK registry.
	// Leave false when the host application exposes its own registry and
	// registers the SDK collectors there instead.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "enable_server" key
	//   - Environment variable TRACEROOT_METRICS_ENABLE_SERVER
	EnableServer bool `yaml:"enable_server" envconfig:"TRACEROOT_METRICS_ENABLE_SERVER"`

	// ServiceName labels every metric so multiple services sharing a
	// Prometheus cluster stay distinguishable.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "service_name" key
	//   - Environment variable TRACEROOT_METRICS_SERVICE_NAME
	ServiceName string `yaml:"service_name" envconfig:"TRACEROOT_METRICS_SERVICE_NAME"`
}
