// Package repository provides the audit-store persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opencompliance/kestrel/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveTransaction stores a transaction record.
func (r *SQLRepository) SaveTransaction(ctx context.Context, tx *domain.TransactionRecord) error {
	if tx.ID == "" {
		return fmt.Errorf("%w: transaction id is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO transactions (
			id, amount, currency, sender_id, sender_country,
			recipient_id, recipient_country, type, purpose, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		tx.ID, tx.Amount.String(), tx.Currency,
		tx.SenderID, tx.SenderCountry,
		tx.RecipientID, tx.RecipientCountry,
		tx.Type, tx.Purpose, tx.OccurredAt,
	)
	return err
}

// GetTransaction retrieves a transaction record by ID.
func (r *SQLRepository) GetTransaction(ctx context.Context, txID string) (*domain.TransactionRecord, error) {
	query := `
		SELECT id, amount, currency, sender_id, sender_country,
			   recipient_id, recipient_country, type, purpose, occurred_at
		FROM transactions
		WHERE id = ?
	`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, r.rebind(query), txID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return tx, err
}

// GetTransactionsByEntity retrieves the transactions an identity sent or
// received since the given time, newest first.
func (r *SQLRepository) GetTransactionsByEntity(ctx context.Context, entityID string, since time.Time) ([]*domain.TransactionRecord, error) {
	query := `
		SELECT id, amount, currency, sender_id, sender_country,
			   recipient_id, recipient_country, type, purpose, occurred_at
		FROM transactions
		WHERE (sender_id = ? OR recipient_id = ?)
		  AND occurred_at >= ?
		ORDER BY occurred_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), entityID, entityID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.TransactionRecord
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.TransactionRecord, error) {
	var tx domain.TransactionRecord
	var amount string

	err := row.Scan(
		&tx.ID, &amount, &tx.Currency,
		&tx.SenderID, &tx.SenderCountry,
		&tx.RecipientID, &tx.RecipientCountry,
		&tx.Type, &tx.Purpose, &tx.OccurredAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
	}
	return &tx, nil
}

// SaveCommunication stores a communication record.
func (r *SQLRepository) SaveCommunication(ctx context.Context, comm *domain.CommunicationRecord) error {
	if comm.ID == "" {
		return fmt.Errorf("%w: communication id is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO communications (
			id, content, sender_id, recipient_id, channel, subject, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		comm.ID, comm.Content, comm.SenderID, comm.RecipientID,
		comm.Channel, comm.Subject, comm.OccurredAt,
	)
	return err
}

// GetCommunication retrieves a communication record by ID.
func (r *SQLRepository) GetCommunication(ctx context.Context, commID string) (*domain.CommunicationRecord, error) {
	query := `
		SELECT id, content, sender_id, recipient_id, channel, subject, occurred_at
		FROM communications
		WHERE id = ?
	`

	var comm domain.CommunicationRecord
	err := r.db.QueryRowContext(ctx, r.rebind(query), commID).Scan(
		&comm.ID, &comm.Content, &comm.SenderID, &comm.RecipientID,
		&comm.Channel, &comm.Subject, &comm.OccurredAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comm, nil
}

// SaveVerification stores a KYC verification audit entry.
func (r *SQLRepository) SaveVerification(ctx context.Context, rec *domain.VerificationRecord) error {
	if rec.VerificationID == "" {
		return fmt.Errorf("%w: verification id is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO verifications (
			verification_id, customer_id, risk_score, status,
			verification_level, expiry_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rec.VerificationID, rec.CustomerID, rec.RiskScore, rec.Status,
		string(rec.VerificationLevel), rec.ExpiryDate, rec.CreatedAt,
	)
	return err
}

// GetVerification retrieves a verification entry by ID.
func (r *SQLRepository) GetVerification(ctx context.Context, verificationID string) (*domain.VerificationRecord, error) {
	query := `
		SELECT verification_id, customer_id, risk_score, status,
			   verification_level, expiry_date, created_at
		FROM verifications
		WHERE verification_id = ?
	`

	rec, err := scanVerification(r.db.QueryRowContext(ctx, r.rebind(query), verificationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListVerificationsByCustomer retrieves a customer's verification history,
// newest first.
func (r *SQLRepository) ListVerificationsByCustomer(ctx context.Context, customerID string) ([]*domain.VerificationRecord, error) {
	query := `
		SELECT verification_id, customer_id, risk_score, status,
			   verification_level, expiry_date, created_at
		FROM verifications
		WHERE customer_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*domain.VerificationRecord
	for rows.Next() {
		rec, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func scanVerification(row rowScanner) (*domain.VerificationRecord, error) {
	var rec domain.VerificationRecord
	var level string
	var expiry sql.NullTime

	err := row.Scan(
		&rec.VerificationID, &rec.CustomerID, &rec.RiskScore, &rec.Status,
		&level, &expiry, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.VerificationLevel = domain.VerificationLevel(level)
	if expiry.Valid {
		rec.ExpiryDate = &expiry.Time
	}
	return &rec, nil
}

// SaveEvaluation stores an evaluation result.
func (r *SQLRepository) SaveEvaluation(ctx context.Context, result *domain.EvaluationResult) error {
	if result.CorrelationID == "" {
		return fmt.Errorf("%w: correlation id is required", ErrInvalidInput)
	}

	factors, _ := json.Marshal(result.Factors)
	recommendations, _ := json.Marshal(result.Recommendations)

	var patterns, analysis any
	if result.Patterns != nil {
		b, _ := json.Marshal(result.Patterns)
		patterns = string(b)
	}
	if result.Analysis != nil {
		b, _ := json.Marshal(result.Analysis)
		analysis = string(b)
	}

	query := `
		INSERT INTO evaluations (
			correlation_id, domain, entity_id, score, status,
			factors, recommendations, patterns,
			verification_level, expiry_date, analysis, generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		result.CorrelationID, result.Domain, result.EntityID,
		result.Score, result.Status,
		string(factors), string(recommendations), patterns,
		string(result.VerificationLevel), result.ExpiryDate, analysis,
		result.GeneratedAt,
	)
	return err
}

// GetEvaluation retrieves an evaluation result by correlation ID.
func (r *SQLRepository) GetEvaluation(ctx context.Context, correlationID string) (*domain.EvaluationResult, error) {
	query := `
		SELECT correlation_id, domain, entity_id, score, status,
			   factors, recommendations, patterns,
			   verification_level, expiry_date, analysis, generated_at
		FROM evaluations
		WHERE correlation_id = ?
	`

	result, err := scanEvaluation(r.db.QueryRowContext(ctx, r.rebind(query), correlationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return result, err
}

// ListEvaluationsByEntity retrieves the evaluations recorded for an entity,
// newest first.
func (r *SQLRepository) ListEvaluationsByEntity(ctx context.Context, entityID string) ([]*domain.EvaluationResult, error) {
	query := `
		SELECT correlation_id, domain, entity_id, score, status,
			   factors, recommendations, patterns,
			   verification_level, expiry_date, analysis, generated_at
		FROM evaluations
		WHERE entity_id = ?
		ORDER BY generated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.EvaluationResult
	for rows.Next() {
		result, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func scanEvaluation(row rowScanner) (*domain.EvaluationResult, error) {
	var result domain.EvaluationResult
	var factors, recommendations string
	var patterns, analysis, level sql.NullString
	var expiry sql.NullTime

	err := row.Scan(
		&result.CorrelationID, &result.Domain, &result.EntityID,
		&result.Score, &result.Status,
		&factors, &recommendations, &patterns,
		&level, &expiry, &analysis, &result.GeneratedAt,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(factors), &result.Factors)
	json.Unmarshal([]byte(recommendations), &result.Recommendations)
	if patterns.Valid && patterns.String != "" {
		result.Patterns = &domain.PatternSummary{}
		json.Unmarshal([]byte(patterns.String), result.Patterns)
	}
	if analysis.Valid && analysis.String != "" {
		result.Analysis = &domain.ContentAnalysis{}
		json.Unmarshal([]byte(analysis.String), result.Analysis)
	}
	if level.Valid {
		result.VerificationLevel = domain.VerificationLevel(level.String)
	}
	if expiry.Valid {
		result.ExpiryDate = &expiry.Time
	}
	return &result, nil
}

// SaveRuleConfig stores a rule configuration. Saving an existing id/version
// pair updates it in place.
func (r *SQLRepository) SaveRuleConfig(ctx context.Context, rule *domain.RuleConfig) error {
	if rule.ID == "" {
		return fmt.Errorf("%w: rule id is required", ErrInvalidInput)
	}

	bands, _ := json.Marshal(rule.Bands)

	enabled := 0
	if rule.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO rule_configs (
			id, name, description, version, expression, bands, weight, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, version) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expression = excluded.expression,
			bands = excluded.bands,
			weight = excluded.weight,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rule.ID, rule.Name, rule.Description,
		rule.Version, rule.Expression, string(bands), rule.Weight, enabled,
		now, now,
	)
	return err
}

// GetRuleConfig retrieves the latest enabled version of a rule.
func (r *SQLRepository) GetRuleConfig(ctx context.Context, ruleID string) (*domain.RuleConfig, error) {
	query := `
		SELECT id, name, description, version, expression, bands, weight, enabled
		FROM rule_configs
		WHERE id = ? AND enabled = 1
		ORDER BY version DESC
		LIMIT 1
	`

	var cfg domain.RuleConfig
	var bands string
	var enabled int

	err := r.db.QueryRowContext(ctx, r.rebind(query), ruleID).Scan(
		&cfg.ID, &cfg.Name, &cfg.Description,
		&cfg.Version, &cfg.Expression, &bands, &cfg.Weight, &enabled,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg.Enabled = enabled == 1
	json.Unmarshal([]byte(bands), &cfg.Bands)

	return &cfg, nil
}

// ListRuleConfigs retrieves all enabled rule configurations.
func (r *SQLRepository) ListRuleConfigs(ctx context.Context) ([]*domain.RuleConfig, error) {
	query := `
		SELECT id, name, description, version, expression, bands, weight, enabled
		FROM rule_configs
		WHERE enabled = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.RuleConfig
	for rows.Next() {
		var cfg domain.RuleConfig
		var bands string
		var enabled int

		if err := rows.Scan(
			&cfg.ID, &cfg.Name, &cfg.Description,
			&cfg.Version, &cfg.Expression, &bands, &cfg.Weight, &enabled,
		); err != nil {
			return nil, err
		}

		cfg.Enabled = enabled == 1
		json.Unmarshal([]byte(bands), &cfg.Bands)
		configs = append(configs, &cfg)
	}

	return configs, rows.Err()
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
