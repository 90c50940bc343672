package config

// Log levels understood by the SDK, ordered from most to least verbose.
const (
	Debug    = "debug"
	Info     = "info"
	Warn     = "warn"
	Error    = "error"
	Critical = "critical"

	// Silent is the effective level when every export channel for logs is
	// disabled. It is never set directly on a Config.
	Silent = "silent"
)

// DefaultAPIEndpoint is the base URL of the credential verification API used
// when Config.APIEndpoint is left empty.
const DefaultAPIEndpoint = "https://api.test.traceroot.ai"

// Config is the shared configuration record for the SDK. One instance exists
// per process; it is resolved externally and passed to Init.
type Config struct {
	// ServiceName identifies the service emitting logs and spans. It is
	// embedded in every cloud log record and used as the default logger name.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "service_name" key
	//   - Environment variable TRACEROOT_SERVICE_NAME
	ServiceName string `yaml:"service_name" envconfig:"TRACEROOT_SERVICE_NAME"`

	// GithubOwner, GithubRepoName and GithubCommitHash describe the source
	// revision the running binary was built from. They travel with every
	// cloud log record so logs can be tied back to code.
	GithubOwner      string `yaml:"github_owner" envconfig:"TRACEROOT_GITHUB_OWNER"`
	GithubRepoName   string `yaml:"github_repo_name" envconfig:"TRACEROOT_GITHUB_REPO_NAME"`
	GithubCommitHash string `yaml:"github_commit_hash" envconfig:"TRACEROOT_GITHUB_COMMIT_HASH"`

	// Environment is the deployment environment ("development", "staging",
	// "production", ...). It selects the cloud log group.
	Environment string `yaml:"environment" envconfig:"TRACEROOT_ENVIRONMENT"`

	// Token authenticates against the credential verification endpoint.
	Token string `yaml:"token" envconfig:"TRACEROOT_TOKEN"`

	// APIEndpoint is the base URL of the credential verification API.
	// Default: DefaultAPIEndpoint.
	APIEndpoint string `yaml:"api_endpoint" envconfig:"TRACEROOT_API_ENDPOINT"`

	// AwsRegion is the region used for the cloud log stream when the
	// credential snapshot does not carry one.
	AwsRegion string `yaml:"aws_region" envconfig:"TRACEROOT_AWS_REGION"`

	// LogLevel is the configured minimum level (Debug, Info, Warn, Error,
	// Critical). The effective level may differ; see EffectiveLogLevel.
	LogLevel string `yaml:"log_level" envconfig:"TRACEROOT_LOG_LEVEL"`

	// Per-channel export toggles. Console and cloud are independent; a
	// channel with both toggles off is effectively silent.
	EnableSpanConsoleExport bool `yaml:"enable_span_console_export" envconfig:"TRACEROOT_ENABLE_SPAN_CONSOLE_EXPORT"`
	EnableLogConsoleExport  bool `yaml:"enable_log_console_export" envconfig:"TRACEROOT_ENABLE_LOG_CONSOLE_EXPORT"`
	EnableSpanCloudExport   bool `yaml:"enable_span_cloud_export" envconfig:"TRACEROOT_ENABLE_SPAN_CLOUD_EXPORT"`
	EnableLogCloudExport    bool `yaml:"enable_log_cloud_export" envconfig:"TRACEROOT_ENABLE_LOG_CLOUD_EXPORT"`

	// EnableLogKafkaExport turns on the optional Kafka log sink. Kafka
	// delivery does not depend on cloud credentials and never rotates.
	EnableLogKafkaExport bool     `yaml:"enable_log_kafka_export" envconfig:"TRACEROOT_ENABLE_LOG_KAFKA_EXPORT"`
	KafkaBrokers         []string `yaml:"kafka_brokers" envconfig:"TRACEROOT_KAFKA_BROKERS"`
	KafkaTopic           string   `yaml:"kafka_topic" envconfig:"TRACEROOT_KAFKA_TOPIC"`

	// LocalMode keeps all telemetry on the local machine: no credential
	// refresh, no cloud sinks, and log records are buffered as span events
	// so a local collector can see them before the span closes.
	LocalMode bool `yaml:"local_mode" envconfig:"TRACEROOT_LOCAL_MODE"`
}

// levelRank orders levels for gating. Unknown levels rank as Info.
var levelRank = map[string]int{
	Debug:    0,
	Info:     1,
	Warn:     2,
	Error:    3,
	Critical: 4,
}

// LevelRank returns the ordering rank of a level name. Unknown names rank
// as Info so a misconfigured level never silences the logger.
func LevelRank(level string) int {
	if r, ok := levelRank[level]; ok {
		return r
	}
	return levelRank[Info]
}

// LogExportEnabled reports whether any log export channel is on.
func (c Config) LogExportEnabled() bool {
	return c.EnableLogConsoleExport || c.EnableLogCloudExport || c.EnableLogKafkaExport
}

// EffectiveLogLevel returns the level that actually gates log emission:
// Silent when every log channel is disabled, the configured level otherwise.
// An empty configured level defaults to Info.
func (c Config) EffectiveLogLevel() string {
	if !c.LogExportEnabled() {
		return Silent
	}
	if c.LogLevel == "" {
		return Info
	}
	return c.LogLevel
}

// CloudExportActive reports whether log records should be shipped to the
// cloud stream. Local mode always keeps telemetry local.
func (c Config) CloudExportActive() bool {
	return c.EnableLogCloudExport && !c.LocalMode
}
