// Package rules provides the CEL-based custom transaction rule engine.
// Operators define expressions over transaction variables; each enabled
// rule contributes score x weight to the transaction evaluation.
package rules

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/opencompliance/kestrel/internal/domain"
)

// Engine compiles and evaluates operator-defined rules. Compiled programs
// live behind an RWMutex so evaluation and hot reload never race.
type Engine struct {
	mu            sync.RWMutex
	env           *cel.Env
	compiledRules map[string]*CompiledRule
	maxWorkers    int
}

// CompiledRule holds a pre-compiled CEL program.
type CompiledRule struct {
	Config  *domain.RuleConfig
	Program cel.Program
}

// NewEngine creates a rule engine. maxWorkers bounds concurrent rule
// evaluation per transaction.
func NewEngine(maxWorkers int) (*Engine, error) {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}

	env, err := cel.NewEnv(
		cel.Variable("tx", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("currency", cel.StringType),
		cel.Variable("sender_id", cel.StringType),
		cel.Variable("sender_country", cel.StringType),
		cel.Variable("recipient_id", cel.StringType),
		cel.Variable("recipient_country", cel.StringType),
		cel.Variable("tx_type", cel.StringType),
		cel.Variable("purpose", cel.StringType),
		cel.Variable("velocity_count", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &Engine{
		env:           env,
		compiledRules: make(map[string]*CompiledRule),
		maxWorkers:    maxWorkers,
	}, nil
}

// ValidateRule compiles a rule without loading it.
func (e *Engine) ValidateRule(cfg *domain.RuleConfig) error {
	if cfg == nil {
		return fmt.Errorf("rule config is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compileRule(cfg)
	return err
}

// LoadRule compiles and loads a rule into the engine.
func (e *Engine) LoadRule(cfg *domain.RuleConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compileRule(cfg)
	if err != nil {
		return err
	}

	e.compiledRules[cfg.ID] = compiled
	return nil
}

// LoadRules compiles and loads all enabled rules.
func (e *Engine) LoadRules(configs []*domain.RuleConfig) error {
	for _, cfg := range configs {
		if cfg.Enabled {
			if err := e.LoadRule(cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

// EvaluateInput holds the transaction data exposed to rule expressions.
type EvaluateInput struct {
	Record *domain.TransactionRecord

	// VelocityCount is the number of related transactions in the
	// trailing velocity window, computed by the caller from history.
	VelocityCount int64
}

// EvaluateAll evaluates every loaded rule against the transaction.
// Rules run in parallel bounded by the worker limit; results preserve no
// particular order beyond the engine's rule map snapshot.
func (e *Engine) EvaluateAll(ctx context.Context, input *EvaluateInput) []domain.RuleResult {
	e.mu.RLock()
	rules := make([]*CompiledRule, 0, len(e.compiledRules))
	for _, rule := range e.compiledRules {
		rules = append(rules, rule)
	}
	e.mu.RUnlock()

	if len(rules) == 0 {
		return nil
	}

	amount, _ := input.Record.Amount.Float64()
	activation := map[string]any{
		"tx": map[string]any{
			"id":                input.Record.ID,
			"type":              input.Record.Type,
			"sender_id":         input.Record.SenderID,
			"recipient_id":      input.Record.RecipientID,
			"sender_country":    input.Record.SenderCountry,
			"recipient_country": input.Record.RecipientCountry,
			"amount":            amount,
			"currency":          input.Record.Currency,
			"purpose":           input.Record.Purpose,
		},
		"amount":            amount,
		"currency":          input.Record.Currency,
		"sender_id":         input.Record.SenderID,
		"sender_country":    input.Record.SenderCountry,
		"recipient_id":      input.Record.RecipientID,
		"recipient_country": input.Record.RecipientCountry,
		"tx_type":           input.Record.Type,
		"purpose":           input.Record.Purpose,
		"velocity_count":    input.VelocityCount,
	}

	results := make([]domain.RuleResult, len(rules))
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.maxWorkers)

	for i, rule := range rules {
		wg.Add(1)
		go func(idx int, r *CompiledRule) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = evaluateRule(r, activation)
		}(i, rule)
	}

	wg.Wait()
	return results
}

// evaluateRule evaluates a single rule. Evaluation errors are reported on
// the result rather than failing the whole transaction.
func evaluateRule(rule *CompiledRule, activation map[string]any) domain.RuleResult {
	result := domain.RuleResult{
		RuleID: rule.Config.ID,
		Name:   rule.Config.Name,
		Weight: rule.Config.Weight,
	}

	out, _, err := rule.Program.Eval(activation)
	if err != nil {
		result.Err = fmt.Sprintf("evaluation error: %v", err)
		return result
	}

	result.Score = toScore(out)
	result.Severity, result.Reason = matchBand(result.Score, rule.Config.Bands)
	return result
}

// toScore converts a CEL value to a numeric score.
func toScore(val ref.Val) float64 {
	switch v := val.(type) {
	case types.Bool:
		if v {
			return 1.0
		}
		return 0.0
	case types.Double:
		return float64(v)
	case types.Int:
		return float64(v)
	default:
		return 0.0
	}
}

// matchBand finds the matching band for a score. Bands are half-open
// [lower, upper); a nil limit is unbounded on that side.
func matchBand(score float64, bands []domain.RuleBand) (domain.Severity, string) {
	for _, band := range bands {
		lower := 0.0
		if band.LowerLimit != nil {
			lower = *band.LowerLimit
		}
		if score < lower {
			continue
		}
		if band.UpperLimit == nil || score < *band.UpperLimit {
			return band.Severity, band.Reason
		}
	}
	return domain.SeverityLow, ""
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiledRules)
}

// ReloadRules atomically replaces the loaded rule set. A compile failure
// leaves the previous set intact.
func (e *Engine) ReloadRules(configs []*domain.RuleConfig) error {
	newRules := make(map[string]*CompiledRule)

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		compiled, err := e.compileRule(cfg)
		if err != nil {
			return err
		}
		newRules[cfg.ID] = compiled
	}

	e.compiledRules = newRules
	return nil
}

// GetLoadedRules returns the currently loaded rule configurations.
func (e *Engine) GetLoadedRules() []*domain.RuleConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]*domain.RuleConfig, 0, len(e.compiledRules))
	for _, compiled := range e.compiledRules {
		rules = append(rules, compiled.Config)
	}
	return rules
}

// Close clears the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiledRules = make(map[string]*CompiledRule)
	return nil
}

func (e *Engine) compileRule(cfg *domain.RuleConfig) (*CompiledRule, error) {
	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile rule %s: %w", cfg.ID, issues.Err())
	}

	outputType := ast.OutputType()
	if outputType != cel.BoolType && outputType != cel.DoubleType && outputType != cel.IntType {
		return nil, fmt.Errorf("rule %s: expression must return bool, int, or double, got %s", cfg.ID, outputType)
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program for rule %s: %w", cfg.ID, err)
	}

	return &CompiledRule{Config: cfg, Program: program}, nil
}
