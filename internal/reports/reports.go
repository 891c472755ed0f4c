// Package reports aggregates stored evaluation results into compliance
// reports. The builder only reads the audit repository; it never re-scores.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/opencompliance/kestrel/internal/domain"
)

// Report type constants.
const (
	TypeSummary  = "summary"
	TypeDetailed = "detailed"
	TypeRisk     = "risk"
	TypeAudit    = "audit"
)

// ErrUnknownType is returned for an unrecognized report type.
var ErrUnknownType = fmt.Errorf("unknown report type")

// Report is a compliance report over an entity's stored evaluations.
type Report struct {
	EntityID    string    `json:"entityId"`
	Type        string    `json:"type"`
	GeneratedAt time.Time `json:"generatedAt"`

	// Common aggregates
	EvaluationCount int            `json:"evaluationCount"`
	StatusCounts    map[string]int `json:"statusCounts"`
	MaxScore        float64        `json:"maxScore"`

	// Detailed reports carry the full evaluation payloads.
	Evaluations []*domain.EvaluationResult `json:"evaluations,omitempty"`

	// Risk reports aggregate factors across evaluations.
	RiskProfile *RiskProfile `json:"riskProfile,omitempty"`

	// Audit reports list the evaluation trail plus verification history.
	AuditTrail    []AuditEntry                 `json:"auditTrail,omitempty"`
	Verifications []*domain.VerificationRecord `json:"verifications,omitempty"`
}

// RiskProfile summarizes risk factors across an entity's evaluations.
type RiskProfile struct {
	OverallLevel   string         `json:"overallLevel"`
	SeverityCounts map[string]int `json:"severityCounts"`
	TopFactors     []FactorCount  `json:"topFactors,omitempty"`
}

// FactorCount is a risk factor label with its occurrence count.
type FactorCount struct {
	Label    string          `json:"label"`
	Count    int             `json:"count"`
	Severity domain.Severity `json:"severity"`
}

// AuditEntry is one line of the audit trail.
type AuditEntry struct {
	CorrelationID string    `json:"correlationId"`
	Domain        string    `json:"domain"`
	Status        string    `json:"status"`
	Score         float64   `json:"score"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// Builder constructs reports from the audit repository.
type Builder struct {
	repo domain.Repository
	now  func() time.Time
}

// NewBuilder creates a report builder over the given repository.
func NewBuilder(repo domain.Repository) *Builder {
	return &Builder{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Build assembles a report of the given type. An entity with no stored
// evaluations yields an empty report, not an error.
func (b *Builder) Build(ctx context.Context, entityID, reportType string) (*Report, error) {
	switch reportType {
	case TypeSummary, TypeDetailed, TypeRisk, TypeAudit:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, reportType)
	}

	evals, err := b.repo.ListEvaluationsByEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}

	report := &Report{
		EntityID:        entityID,
		Type:            reportType,
		GeneratedAt:     b.now(),
		EvaluationCount: len(evals),
		StatusCounts:    make(map[string]int),
	}
	for _, ev := range evals {
		report.StatusCounts[ev.Status]++
		if ev.Score > report.MaxScore {
			report.MaxScore = ev.Score
		}
	}

	switch reportType {
	case TypeDetailed:
		report.Evaluations = evals
	case TypeRisk:
		report.RiskProfile = buildRiskProfile(evals)
	case TypeAudit:
		report.AuditTrail = buildAuditTrail(evals)
		verifications, err := b.repo.ListVerificationsByCustomer(ctx, entityID)
		if err != nil {
			return nil, fmt.Errorf("list verifications: %w", err)
		}
		report.Verifications = verifications
	}

	return report, nil
}

func buildRiskProfile(evals []*domain.EvaluationResult) *RiskProfile {
	profile := &RiskProfile{
		SeverityCounts: make(map[string]int),
	}

	counts := make(map[string]*FactorCount)
	for _, ev := range evals {
		for _, f := range ev.Factors {
			profile.SeverityCounts[string(f.Severity)]++
			fc, ok := counts[f.Label]
			if !ok {
				fc = &FactorCount{Label: f.Label, Severity: f.Severity}
				counts[f.Label] = fc
			}
			fc.Count++
		}
	}

	for _, fc := range counts {
		profile.TopFactors = append(profile.TopFactors, *fc)
	}
	sort.Slice(profile.TopFactors, func(i, j int) bool {
		if profile.TopFactors[i].Count != profile.TopFactors[j].Count {
			return profile.TopFactors[i].Count > profile.TopFactors[j].Count
		}
		return profile.TopFactors[i].Label < profile.TopFactors[j].Label
	})
	if len(profile.TopFactors) > 10 {
		profile.TopFactors = profile.TopFactors[:10]
	}

	profile.OverallLevel = overallLevel(profile.SeverityCounts)
	return profile
}

func overallLevel(severityCounts map[string]int) string {
	switch {
	case severityCounts[string(domain.SeverityCritical)] > 0:
		return "critical"
	case severityCounts[string(domain.SeverityHigh)] > 0:
		return "high"
	case severityCounts[string(domain.SeverityMedium)] > 0:
		return "medium"
	default:
		return "low"
	}
}

func buildAuditTrail(evals []*domain.EvaluationResult) []AuditEntry {
	trail := make([]AuditEntry, 0, len(evals))
	for _, ev := range evals {
		trail = append(trail, AuditEntry{
			CorrelationID: ev.CorrelationID,
			Domain:        ev.Domain,
			Status:        ev.Status,
			Score:         ev.Score,
			GeneratedAt:   ev.GeneratedAt,
		})
	}
	sort.Slice(trail, func(i, j int) bool {
		return trail[i].GeneratedAt.Before(trail[j].GeneratedAt)
	})
	return trail
}
