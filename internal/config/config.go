// Package config loads the Kestrel configuration by layering defaults, an
// optional YAML file, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/opencompliance/kestrel/internal/domain"
)

// EnvPrefix is the prefix for configuration environment variables.
const EnvPrefix = "KESTREL_"

// ConfigPathEnv names the env var pointing at an optional YAML file.
const ConfigPathEnv = "KESTREL_CONFIG"

// Top-level config sections, used to split env keys into section and
// field. Longer names come first so event_bus wins over a bare prefix
// match.
var sections = []string{
	"repository",
	"event_bus",
	"logging",
	"tracing",
	"metrics",
	"server",
	"engine",
	"worker",
	"cache",
}

// Load builds a Config. Order of precedence (low -> high):
//  1. profile defaults (standalone or distributed)
//  2. YAML file named by KESTREL_CONFIG
//  3. environment variables (KESTREL_SERVER_PORT, KESTREL_CACHE_TYPE, ...)
func Load() (*domain.Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	// The profile picks the default set the overrides land on.
	cfg := domain.DefaultConfig()
	if domain.Profile(k.String("profile")) == domain.ProfileDistributed {
		cfg = domain.DistributedConfig()
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps KESTREL_SERVER_PORT to server.port. Field names keep their
// underscores: KESTREL_ENGINE_RULE_WORKERS maps to engine.rule_workers.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(s, section+"_") {
			return section + "." + strings.TrimPrefix(s, section+"_")
		}
	}
	return s
}

// Validate checks configuration invariants.
func Validate(cfg *domain.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Profile {
	case domain.ProfileStandalone, domain.ProfileDistributed:
	default:
		return fmt.Errorf("unknown profile: %q", cfg.Profile)
	}

	// The structuring detector scans a 30-day window; a shorter retention
	// would silently blind it.
	if cfg.Engine.HistoryRetentionDays < 30 {
		return errors.New("engine history retention must be at least 30 days")
	}

	switch cfg.Repository.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown repository driver: %q", cfg.Repository.Driver)
	}

	switch cfg.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache type: %q", cfg.Cache.Type)
	}

	switch cfg.EventBus.Type {
	case "channel", "nats":
	default:
		return fmt.Errorf("unknown event bus type: %q", cfg.EventBus.Type)
	}

	return nil
}
