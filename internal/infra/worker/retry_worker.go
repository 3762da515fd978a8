package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/usecase"
)

const DefaultRetryInterval = 30 * time.Second

type retryProcessor interface {
	Execute(ctx context.Context) (usecase.RetrySummary, error)
}

// RetryWorker drains due CRM retries on a fixed tick.
type RetryWorker struct {
	processor    retryProcessor
	tickInterval time.Duration
	logger       *zap.Logger

	// Observe, when set, receives every non-empty batch summary.
	Observe func(usecase.RetrySummary)
}

func NewRetryWorker(processor retryProcessor, interval time.Duration, logger *zap.Logger) *RetryWorker {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryWorker{
		processor:    processor,
		tickInterval: interval,
		logger:       logger,
	}
}

func (w *RetryWorker) Start(ctx context.Context) {
	w.logger.Info("zoho retry worker started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("zoho retry worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *RetryWorker) runOnce(ctx context.Context) {
	summary, err := w.processor.Execute(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("failed to claim zoho retries", zap.Error(err))
		}
		return
	}
	if summary.Claimed == 0 {
		return
	}

	w.logger.Info("zoho retry batch processed",
		zap.Int("claimed", summary.Claimed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("requeued", summary.Requeued),
		zap.Int("dead", summary.Dead),
	)
	if w.Observe != nil {
		w.Observe(summary)
	}
}
