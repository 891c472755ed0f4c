package repository

// Schema definitions for the Kestrel audit store.
// Compatible with both SQLite and PostgreSQL. Amounts are stored as TEXT
// so decimal values round-trip without float drift.

const schemaTransactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    amount TEXT NOT NULL,
    currency TEXT,
    sender_id TEXT NOT NULL,
    sender_country TEXT,
    recipient_id TEXT NOT NULL,
    recipient_country TEXT,
    type TEXT NOT NULL,
    purpose TEXT,
    occurred_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_sender ON transactions(sender_id);
CREATE INDEX IF NOT EXISTS idx_transactions_recipient ON transactions(recipient_id);
CREATE INDEX IF NOT EXISTS idx_transactions_occurred ON transactions(occurred_at);
`

const schemaCommunications = `
CREATE TABLE IF NOT EXISTS communications (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    sender_id TEXT NOT NULL,
    recipient_id TEXT NOT NULL,
    channel TEXT NOT NULL,
    subject TEXT,
    occurred_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_communications_sender ON communications(sender_id);
CREATE INDEX IF NOT EXISTS idx_communications_channel ON communications(channel);
`

const schemaVerifications = `
CREATE TABLE IF NOT EXISTS verifications (
    verification_id TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL,
    risk_score REAL NOT NULL,
    status TEXT NOT NULL,
    verification_level TEXT NOT NULL,
    expiry_date TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_verifications_customer ON verifications(customer_id);
`

const schemaEvaluations = `
CREATE TABLE IF NOT EXISTS evaluations (
    correlation_id TEXT PRIMARY KEY,
    domain TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    score REAL NOT NULL,
    status TEXT NOT NULL,
    factors TEXT NOT NULL,
    recommendations TEXT NOT NULL,
    patterns TEXT,
    verification_level TEXT,
    expiry_date TIMESTAMP,
    analysis TEXT,
    generated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluations_entity ON evaluations(entity_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_domain ON evaluations(domain);
CREATE INDEX IF NOT EXISTS idx_evaluations_status ON evaluations(status);
CREATE INDEX IF NOT EXISTS idx_evaluations_generated ON evaluations(generated_at);
`

const schemaRuleConfigs = `
CREATE TABLE IF NOT EXISTS rule_configs (
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    version TEXT NOT NULL,
    expression TEXT NOT NULL,
    bands TEXT NOT NULL,
    weight REAL NOT NULL DEFAULT 1.0,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, version)
);

CREATE INDEX IF NOT EXISTS idx_rule_configs_enabled ON rule_configs(enabled);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaTransactions,
		schemaCommunications,
		schemaVerifications,
		schemaEvaluations,
		schemaRuleConfigs,
	}
}
