package domain

// Config holds the complete Kestrel configuration.
type Config struct {
	// Server settings
	Server ServerConfig `json:"server" koanf:"server"`

	// Profile selects the deployment shape: embedded single-node stores
	// or external distributed services.
	Profile Profile `json:"profile" koanf:"profile"`

	// Engine settings
	Engine EngineConfig `json:"engine" koanf:"engine"`

	// Component configurations
	Repository RepositoryConfig `json:"repository" koanf:"repository"`
	Cache      CacheConfig      `json:"cache" koanf:"cache"`
	EventBus   EventBusConfig   `json:"eventBus" koanf:"event_bus"`
	Worker     WorkerConfig     `json:"worker" koanf:"worker"`

	// Observability
	Logging LoggingConfig `json:"logging" koanf:"logging"`
	Tracing TracingConfig `json:"tracing" koanf:"tracing"`
	Metrics MetricsConfig `json:"metrics" koanf:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host" koanf:"host"`
	Port         int    `json:"port" koanf:"port"`
	ReadTimeout  int    `json:"readTimeout" koanf:"read_timeout"`   // seconds
	WriteTimeout int    `json:"writeTimeout" koanf:"write_timeout"` // seconds
}

// EngineConfig holds evaluation engine settings.
type EngineConfig struct {
	// HistoryRetentionDays bounds the in-memory history ledger. Must not
	// be shorter than the 30-day structuring window.
	HistoryRetentionDays int `json:"historyRetentionDays" koanf:"history_retention_days"`

	// RuleWorkers bounds concurrent custom-rule evaluation.
	RuleWorkers int `json:"ruleWorkers" koanf:"rule_workers"`
}

// WorkerConfig holds async evaluation worker settings.
type WorkerConfig struct {
	Enabled     bool `json:"enabled" koanf:"enabled"`
	Concurrency int  `json:"concurrency" koanf:"concurrency"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level" koanf:"level"`   // debug, info, warn, error
	Format string `json:"format" koanf:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `json:"enabled" koanf:"enabled"`
	ServiceName string `json:"serviceName" koanf:"service_name"`
	Endpoint    string `json:"endpoint" koanf:"endpoint"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" koanf:"enabled"`
	Path    string `json:"path" koanf:"path"`
}

// Profile represents the deployment profile.
type Profile string

const (
	// ProfileStandalone runs with SQLite + in-memory cache + channels.
	ProfileStandalone Profile = "standalone"

	// ProfileDistributed runs with PostgreSQL + Redis + NATS.
	ProfileDistributed Profile = "distributed"
)

// DefaultConfig returns the standalone configuration: embedded stores, no
// external services required.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Profile: ProfileStandalone,
		Engine: EngineConfig{
			HistoryRetentionDays: 90,
			RuleWorkers:          8,
		},
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./kestrel.db",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 10000,
			LocalTTL:     300, // 5 minutes
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Worker: WorkerConfig{
			Enabled:     true,
			Concurrency: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "kestrel",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// DistributedConfig returns a configuration backed by external services.
func DistributedConfig() *Config {
	cfg := DefaultConfig()
	cfg.Profile = ProfileDistributed
	cfg.Repository = RepositoryConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "kestrel",
	}
	cfg.Cache = CacheConfig{
		Type:           "redis",
		RedisAddr:      "localhost:6379",
		EnableTwoPhase: true,
		LocalMaxSize:   1000,
	}
	cfg.EventBus = EventBusConfig{
		Type:              "nats",
		NATSUrl:           "nats://localhost:4222",
		NATSMaxReconnects: 10,
		NATSReconnectWait: 5,
	}
	cfg.Tracing.Enabled = true
	return cfg
}
