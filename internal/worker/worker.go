// Package worker provides async transaction evaluation off the event bus.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/opencompliance/kestrel/internal/domain"
	"github.com/opencompliance/kestrel/internal/engine"
)

// Worker consumes transaction ingest messages, evaluates them and publishes
// the results back onto the bus. Evaluations and records are persisted to
// the audit store when one is attached.
type Worker struct {
	bus    domain.EventBus
	repo   domain.Repository
	engine *engine.Engine

	sem chan struct{}

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewWorker creates a new async worker. Concurrency bounds the number of
// evaluations in flight; values below one fall back to one.
func NewWorker(bus domain.EventBus, repo domain.Repository, eng *engine.Engine, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:    bus,
		repo:   repo,
		engine: eng,
		sem:    make(chan struct{}, concurrency),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the transaction ingest topic.
func (w *Worker) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicTransactionIngest, w.handleMessage)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("worker started",
		"topic", domain.TopicTransactionIngest,
		"concurrency", cap(w.sem),
	)
	return nil
}

func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	select {
	case w.sem <- struct{}{}:
	case <-w.ctx.Done():
		return w.ctx.Err()
	}
	defer func() { <-w.sem }()

	return w.processTransaction(ctx, msg)
}

// processTransaction evaluates one ingested transaction.
func (w *Worker) processTransaction(ctx context.Context, msg *domain.Message) error {
	start := time.Now()

	var req domain.TransactionRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		slog.Error("failed to parse transaction message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	rec := req.ToRecord()
	result, err := w.engine.EvaluateTransaction(ctx, rec, req.Options())
	if err != nil {
		slog.Error("transaction evaluation failed",
			"message_id", msg.ID,
			"transaction_id", rec.ID,
			"error", err,
		)
		return err
	}

	if w.repo != nil {
		if err := w.repo.SaveTransaction(ctx, rec); err != nil {
			slog.Error("failed to save transaction",
				"transaction_id", rec.ID,
				"error", err,
			)
		}
		if err := w.repo.SaveEvaluation(ctx, result); err != nil {
			slog.Error("failed to save evaluation",
				"correlation_id", result.CorrelationID,
				"error", err,
			)
		}
	}

	resultPayload, _ := json.Marshal(result)
	if err := w.bus.Publish(ctx, domain.TopicTransactionEvaluated, resultPayload); err != nil {
		slog.Error("failed to publish evaluation",
			"correlation_id", result.CorrelationID,
			"error", err,
		)
	}

	if domain.IsAlerting(result.Status) {
		if err := w.bus.Publish(ctx, domain.TopicAlertRaised, resultPayload); err != nil {
			slog.Error("failed to publish alert",
				"correlation_id", result.CorrelationID,
				"error", err,
			)
		}
	}

	slog.Info("transaction processed",
		"transaction_id", rec.ID,
		"correlation_id", result.CorrelationID,
		"status", result.Status,
		"score", result.Score,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() error {
	w.cancel()

	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("worker stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
