package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Supports two-phase caching: local LRU (standalone) + Redis (distributed).
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// GetEvaluation retrieves a cached evaluation result.
	GetEvaluation(ctx context.Context, correlationID string) (*EvaluationResult, error)

	// SetEvaluation caches an evaluation result for audit reads.
	SetEvaluation(ctx context.Context, result *EvaluationResult, ttl time.Duration) error

	// IncrementCounter atomically increments a counter and returns new value.
	// Used for windowed rate tracking (e.g., evaluations per identity).
	IncrementCounter(ctx context.Context, key string, window time.Duration) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string `json:"type" koanf:"type"`

	// Local LRU cache settings
	LocalMaxSize int           `json:"localMaxSize" koanf:"local_max_size"`
	LocalTTL     time.Duration `json:"localTtl" koanf:"local_ttl"`

	// Redis settings
	RedisAddr     string `json:"redisAddr" koanf:"redis_addr"`
	RedisPassword string `json:"redisPassword" koanf:"redis_password"`
	RedisDB       int    `json:"redisDb" koanf:"redis_db"`

	// Two-phase settings
	EnableTwoPhase bool `json:"enableTwoPhase" koanf:"enable_two_phase"` // If true, check local first, then Redis
}
