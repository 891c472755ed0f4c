package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opencompliance/kestrel/internal/domain"
	"github.com/opencompliance/kestrel/internal/engine"
	"github.com/opencompliance/kestrel/internal/metrics"
	"github.com/opencompliance/kestrel/internal/regulatory"
	"github.com/opencompliance/kestrel/internal/reports"
	"github.com/opencompliance/kestrel/internal/repository"
	"github.com/opencompliance/kestrel/internal/rules"
)

// evaluationCacheTTL bounds how long evaluation results stay hot for
// audit reads.
const evaluationCacheTTL = 15 * time.Minute

// Handler holds dependencies for API handlers. Handlers persist results
// and publish events; all scoring stays in the engine.
type Handler struct {
	repo       domain.Repository
	cache      domain.Cache
	bus        domain.EventBus
	engine     *engine.Engine
	ruleEngine *rules.Engine
	updates    *regulatory.Catalog
	reports    *reports.Builder
	metrics    *metrics.Metrics
	version    string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, eng *engine.Engine, ruleEngine *rules.Engine, updates *regulatory.Catalog, reportBuilder *reports.Builder, m *metrics.Metrics, version string) *Handler {
	return &Handler{
		repo:       repo,
		cache:      cache,
		bus:        bus,
		engine:     eng,
		ruleEngine: ruleEngine,
		updates:    updates,
		reports:    reportBuilder,
		metrics:    m,
		version:    version,
	}
}

// EvaluateTransaction handles POST /evaluate/transaction.
func (h *Handler) EvaluateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	rec := req.ToRecord()
	result, err := h.engine.EvaluateTransaction(ctx, rec, req.Options())
	if err != nil {
		writeEvaluationError(w, err)
		return
	}

	h.finishEvaluation(ctx, result, domain.TopicTransactionEvaluated, func(ctx context.Context) error {
		return h.repo.SaveTransaction(ctx, rec)
	})

	writeJSON(w, http.StatusOK, result)
}

// EvaluateKYC handles POST /evaluate/kyc.
func (h *Handler) EvaluateKYC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.KYCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	result, err := h.engine.EvaluateKYC(ctx, &req.CustomerProfile, req.Options())
	if err != nil {
		writeEvaluationError(w, err)
		return
	}

	h.finishEvaluation(ctx, result, domain.TopicKYCEvaluated, func(ctx context.Context) error {
		return h.repo.SaveVerification(ctx, engine.VerificationRecordFor(result))
	})

	writeJSON(w, http.StatusOK, result)
}

// EvaluateCommunication handles POST /evaluate/communication.
func (h *Handler) EvaluateCommunication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.CommunicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	rec := req.ToRecord()
	result, err := h.engine.EvaluateCommunication(ctx, rec, req.Options())
	if err != nil {
		writeEvaluationError(w, err)
		return
	}

	h.finishEvaluation(ctx, result, domain.TopicCommunicationEvaluated, func(ctx context.Context) error {
		return h.repo.SaveCommunication(ctx, rec)
	})

	writeJSON(w, http.StatusOK, result)
}

// finishEvaluation persists and publishes a completed evaluation. Audit
// failures are logged, never surfaced: the evaluation already happened and
// the caller gets its result.
func (h *Handler) finishEvaluation(ctx context.Context, result *domain.EvaluationResult, topic string, saveRecord func(context.Context) error) {
	if h.repo != nil {
		if err := saveRecord(ctx); err != nil {
			slog.Error("failed to save record", "correlation_id", result.CorrelationID, "error", err)
		}
		if err := h.repo.SaveEvaluation(ctx, result); err != nil {
			slog.Error("failed to save evaluation", "correlation_id", result.CorrelationID, "error", err)
		}
	}

	if h.cache != nil {
		if err := h.cache.SetEvaluation(ctx, result, evaluationCacheTTL); err != nil {
			slog.Warn("failed to cache evaluation", "correlation_id", result.CorrelationID, "error", err)
		}
	}

	if h.metrics != nil {
		h.metrics.ObserveEvaluation(result.Domain, result.Status, result.Score)
	}

	if h.bus != nil {
		payload, err := json.Marshal(result)
		if err != nil {
			slog.Error("failed to marshal evaluation", "correlation_id", result.CorrelationID, "error", err)
			return
		}
		if err := h.bus.Publish(ctx, topic, payload); err != nil {
			slog.Error("failed to publish evaluation", "topic", topic, "error", err)
		}
		if domain.IsAlerting(result.Status) {
			if err := h.bus.Publish(ctx, domain.TopicAlertRaised, payload); err != nil {
				slog.Error("failed to publish alert", "error", err)
			}
			if h.metrics != nil {
				h.metrics.ObserveAlert(result.Domain)
			}
		}
	}
}

func writeEvaluationError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":         verr.Error(),
			"missingFields": verr.MissingFields,
		})
		return
	}
	slog.Error("evaluation failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "evaluation failed",
	})
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// Check repository health
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	// Check cache health
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// GetEvaluation retrieves an evaluation by correlation ID, cache first.
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	evalID := chi.URLParam(r, "id")

	if h.cache != nil {
		if eval, err := h.cache.GetEvaluation(ctx, evalID); err == nil && eval != nil {
			writeJSON(w, http.StatusOK, eval)
			return
		}
	}

	if h.repo == nil {
		writeRepoUnavailable(w)
		return
	}

	eval, err := h.repo.GetEvaluation(ctx, evalID)
	if err != nil {
		writeLookupError(w, "evaluation", evalID, err)
		return
	}

	writeJSON(w, http.StatusOK, eval)
}

// GetTransaction retrieves a transaction record by ID.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeRepoUnavailable(w)
		return
	}

	txID := chi.URLParam(r, "id")
	tx, err := h.repo.GetTransaction(r.Context(), txID)
	if err != nil {
		writeLookupError(w, "transaction", txID, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// GetCommunication retrieves a communication record by ID.
func (h *Handler) GetCommunication(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeRepoUnavailable(w)
		return
	}

	commID := chi.URLParam(r, "id")
	comm, err := h.repo.GetCommunication(r.Context(), commID)
	if err != nil {
		writeLookupError(w, "communication", commID, err)
		return
	}

	writeJSON(w, http.StatusOK, comm)
}

// GetVerification retrieves a verification record by ID.
func (h *Handler) GetVerification(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeRepoUnavailable(w)
		return
	}

	verID := chi.URLParam(r, "id")
	rec, err := h.repo.GetVerification(r.Context(), verID)
	if err != nil {
		writeLookupError(w, "verification", verID, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// ListCustomerVerifications lists a customer's verification history.
func (h *Handler) ListCustomerVerifications(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeRepoUnavailable(w)
		return
	}

	customerID := chi.URLParam(r, "id")
	recs, err := h.repo.ListVerificationsByCustomer(r.Context(), customerID)
	if err != nil {
		slog.Error("failed to list verifications", "customer_id", customerID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list verifications",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"verifications": recs,
		"count":         len(recs),
	})
}

// ListEntityEvaluations lists all stored evaluations for an entity.
func (h *Handler) ListEntityEvaluations(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeRepoUnavailable(w)
		return
	}

	entityID := chi.URLParam(r, "id")
	evals, err := h.repo.ListEvaluationsByEntity(r.Context(), entityID)
	if err != nil {
		slog.Error("failed to list evaluations", "entity_id", entityID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list evaluations",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"evaluations": evals,
		"count":       len(evals),
	})
}

// ListRules returns all loaded rules from the engine.
// Rules are loaded from the database at startup and can be reloaded via POST /rules/reload.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	loadedRules := h.ruleEngine.GetLoadedRules()

	writeJSON(w, http.StatusOK, map[string]any{
		"rules": loadedRules,
		"count": len(loadedRules),
	})
}

// GetRule retrieves a rule by ID from the loaded engine rules.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	for _, rule := range h.ruleEngine.GetLoadedRules() {
		if rule.ID == ruleID {
			writeJSON(w, http.StatusOK, rule)
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "rule not found",
	})
}

// CreateRuleRequest is the request body for creating a rule.
type CreateRuleRequest struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Expression  string            `json:"expression"`
	Bands       []domain.RuleBand `json:"bands"`
	Weight      float64           `json:"weight"`
	Enabled     bool              `json:"enabled"`
}

// CreateRule creates a new rule, loads it into the engine, and saves it to
// the database.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	// Validate
	if req.ID == "" || req.Name == "" || req.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id, name, and expression are required",
		})
		return
	}

	ruleConfig := &domain.RuleConfig{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Version:     "1.0.0",
		Expression:  req.Expression,
		Bands:       req.Bands,
		Weight:      req.Weight,
		Enabled:     req.Enabled,
	}

	// Validate CEL expression by attempting to load
	if err := h.ruleEngine.LoadRule(ruleConfig); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid CEL expression: " + err.Error(),
		})
		return
	}

	if h.repo != nil {
		if err := h.repo.SaveRuleConfig(ctx, ruleConfig); err != nil {
			slog.Error("failed to save rule config", "id", ruleConfig.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to save rule",
			})
			return
		}
	}

	slog.Info("rule created", "id", ruleConfig.ID, "name", ruleConfig.Name)
	writeJSON(w, http.StatusCreated, map[string]any{
		"rule": ruleConfig,
	})
}

// ReloadRules reloads all enabled rules from the database into the engine.
// This enables hot-reloading without server restart.
func (h *Handler) ReloadRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeRepoUnavailable(w)
		return
	}

	dbRules, err := h.repo.ListRuleConfigs(ctx)
	if err != nil {
		slog.Error("failed to list rules from database", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load rules from database",
		})
		return
	}

	if err := h.ruleEngine.ReloadRules(dbRules); err != nil {
		slog.Error("failed to reload rules into engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload rules: " + err.Error(),
		})
		return
	}

	slog.Info("rules reloaded from database", "count", len(dbRules))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "rules reloaded successfully",
		"count":   len(dbRules),
	})
}

// RegulatoryUpdates handles GET /regulatory/updates with optional
// jurisdiction and category query filters.
func (h *Handler) RegulatoryUpdates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	updates := h.updates.Filter(q.Get("jurisdiction"), q.Get("category"))

	writeJSON(w, http.StatusOK, map[string]any{
		"updates": updates,
		"count":   len(updates),
	})
}

// ComplianceReport handles GET /reports/{entityId}?type=...; type defaults
// to summary.
func (h *Handler) ComplianceReport(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityId")
	reportType := r.URL.Query().Get("type")
	if reportType == "" {
		reportType = reports.TypeSummary
	}

	report, err := h.reports.Build(r.Context(), entityID, reportType)
	if err != nil {
		if errors.Is(err, reports.ErrUnknownType) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
			return
		}
		slog.Error("failed to build report", "entity_id", entityID, "type", reportType, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to build report",
		})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func writeRepoUnavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"error": "repository not available",
	})
}

func writeLookupError(w http.ResponseWriter, kind, id string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": kind + " not found",
		})
		return
	}
	slog.Error("lookup failed", "kind", kind, "id", id, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "lookup failed",
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
