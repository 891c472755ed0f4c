// Package engine implements the three compliance evaluators and the shared
// aggregation, classification and recommendation logic. The engine is pure
// apart from its appends to the history ledger: persistence and event
// publication belong to the caller.
package engine

import (
	"log/slog"
	"time"

	"github.com/opencompliance/kestrel/internal/history"
	"github.com/opencompliance/kestrel/internal/patterns"
	"github.com/opencompliance/kestrel/internal/rules"
	"github.com/opencompliance/kestrel/internal/text"
)

// Engine evaluates transactions, customer profiles and communications.
type Engine struct {
	store    *history.Store
	detector *patterns.Detector
	analyzer *text.Analyzer
	rules    *rules.Engine
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules attaches a custom CEL rule engine to transaction evaluation.
func WithRules(r *rules.Engine) Option {
	return func(e *Engine) {
		e.rules = r
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine over the given history ledger. Construction fails
// only when the text analyzer's pattern tables are malformed.
func New(store *history.Store, opts ...Option) (*Engine, error) {
	analyzer, err := text.NewAnalyzer()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:    store,
		detector: patterns.NewDetector(store),
		analyzer: analyzer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// History exposes the engine's ledger for tests and callers that seed it.
func (e *Engine) History() *history.Store {
	return e.store
}

func (e *Engine) now() time.Time {
	return e.store.Now()
}
