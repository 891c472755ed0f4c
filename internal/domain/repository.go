// Package domain defines the core interfaces and types for Kestrel.
package domain

import (
	"context"
	"time"
)

// Repository defines the interface for audit persistence.
type Repository interface {
	// Transaction records
	SaveTransaction(ctx context.Context, tx *TransactionRecord) error
	GetTransaction(ctx context.Context, txID string) (*TransactionRecord, error)
	GetTransactionsByEntity(ctx context.Context, entityID string, since time.Time) ([]*TransactionRecord, error)

	// Communication records
	SaveCommunication(ctx context.Context, comm *CommunicationRecord) error
	GetCommunication(ctx context.Context, commID string) (*CommunicationRecord, error)

	// Verification audit log
	SaveVerification(ctx context.Context, rec *VerificationRecord) error
	GetVerification(ctx context.Context, verificationID string) (*VerificationRecord, error)
	ListVerificationsByCustomer(ctx context.Context, customerID string) ([]*VerificationRecord, error)

	// Evaluation results
	SaveEvaluation(ctx context.Context, result *EvaluationResult) error
	GetEvaluation(ctx context.Context, correlationID string) (*EvaluationResult, error)
	ListEvaluationsByEntity(ctx context.Context, entityID string) ([]*EvaluationResult, error)

	// Custom rule configuration
	SaveRuleConfig(ctx context.Context, rule *RuleConfig) error
	GetRuleConfig(ctx context.Context, ruleID string) (*RuleConfig, error)
	ListRuleConfigs(ctx context.Context) ([]*RuleConfig, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string `json:"driver" koanf:"driver"`

	// SQLite specific
	SQLitePath string `json:"sqlitePath" koanf:"sqlite_path"`

	// PostgreSQL specific
	PostgresHost     string `json:"postgresHost" koanf:"postgres_host"`
	PostgresPort     int    `json:"postgresPort" koanf:"postgres_port"`
	PostgresUser     string `json:"postgresUser" koanf:"postgres_user"`
	PostgresPassword string `json:"postgresPassword" koanf:"postgres_password"`
	PostgresDB       string `json:"postgresDb" koanf:"postgres_db"`
	PostgresSSLMode  string `json:"postgresSslMode" koanf:"postgres_ssl_mode"`

	// Connection pool settings
	MaxOpenConns    int           `json:"maxOpenConns" koanf:"max_open_conns"`
	MaxIdleConns    int           `json:"maxIdleConns" koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" koanf:"conn_max_lifetime"`
}
