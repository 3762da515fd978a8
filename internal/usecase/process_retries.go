package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/entity"
)

const (
	DefaultRetryBatchSize   = 20
	DefaultRetryMaxAttempts = 5
	retryBaseDelay          = 60 * time.Second
	retryMaxDelay           = time.Hour
)

// RetryBackoff is 60s * 2^attempts, capped at one hour.
func RetryBackoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts >= 6 {
		return retryMaxDelay
	}
	d := retryBaseDelay << uint(attempts)
	if d > retryMaxDelay {
		return retryMaxDelay
	}
	return d
}

type RetrySummary struct {
	Claimed   int
	Succeeded int
	Requeued  int
	Dead      int
}

type ProcessRetriesUseCase struct {
	Leads        entity.LeadRepositoryInterface
	Integrations entity.IntegrationRepositoryInterface
	Forwarder    *CRMForwarder
	Logger       *zap.Logger
	BatchSize    int
	MaxAttempts  int
	Now          func() time.Time
}

func NewProcessRetriesUseCase(
	leads entity.LeadRepositoryInterface,
	integrations entity.IntegrationRepositoryInterface,
	forwarder *CRMForwarder,
	batchSize, maxAttempts int,
	logger *zap.Logger,
) *ProcessRetriesUseCase {
	if batchSize <= 0 {
		batchSize = DefaultRetryBatchSize
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultRetryMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessRetriesUseCase{
		Leads:        leads,
		Integrations: integrations,
		Forwarder:    forwarder,
		Logger:       logger,
		BatchSize:    batchSize,
		MaxAttempts:  maxAttempts,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

// Execute claims one batch of due retries and works through it. Rows left over
// when ctx is cancelled are handed back to the queue untouched.
func (uc *ProcessRetriesUseCase) Execute(ctx context.Context) (RetrySummary, error) {
	var summary RetrySummary

	retries, err := uc.Integrations.ClaimDueRetries(ctx, uc.Now(), uc.BatchSize)
	if err != nil {
		return summary, err
	}
	summary.Claimed = len(retries)

	store := context.WithoutCancel(ctx)
	for i, r := range retries {
		if ctx.Err() != nil {
			for _, rest := range retries[i:] {
				uc.release(store, rest)
			}
			summary.Requeued += len(retries) - i
			break
		}
		switch uc.process(ctx, r) {
		case entity.RetryStatusDone:
			summary.Succeeded++
		case entity.RetryStatusDead:
			summary.Dead++
		default:
			summary.Requeued++
		}
	}
	return summary, nil
}

// process talks to the partner under ctx; state writes use a detached context so
// a shutdown mid-call cannot strand the row in processing.
func (uc *ProcessRetriesUseCase) process(ctx context.Context, r *entity.IntegrationRetry) string {
	log := uc.Logger.With(zap.String("retry_id", r.ID), zap.String("lead_id", r.Payload.LeadID))
	store := context.WithoutCancel(ctx)

	lead, err := uc.Leads.FindByID(ctx, r.Payload.LeadID)
	if err != nil {
		if ctx.Err() != nil {
			return uc.release(store, r)
		}
		r.Attempts++
		r.LastError = err.Error()
		if errors.Is(err, entity.ErrLeadNotFound) {
			r.Status = entity.RetryStatusDead
			uc.save(store, r, log)
			uc.appendLog(store, entity.LogLevelError, "lead_push_dead", "lead no longer exists", "", r)
			return r.Status
		}
		return uc.reschedule(store, r, log)
	}

	sync := uc.Forwarder.Forward(ctx, lead)
	if sync.OK() {
		if err := uc.Leads.MarkPushed(store, lead.ID, sync.RemoteID); err != nil {
			log.Error("retry pushed lead but status update failed", zap.Error(err))
		}
		r.Attempts++
		r.Status = entity.RetryStatusDone
		r.LastError = ""
		uc.save(store, r, log)
		uc.appendLog(store, entity.LogLevelInfo, "lead_push_retried", "lead pushed on retry "+sync.RemoteID, lead.CorrelationID, r)
		log.Info("zoho retry succeeded", zap.String("zoho_lead_id", sync.RemoteID))
		return r.Status
	}

	// an interrupted call says nothing about the partner; it does not cost an attempt
	if ctx.Err() != nil {
		return uc.release(store, r)
	}

	r.Attempts++
	r.LastError = sync.Err.Error()
	return uc.reschedule(store, r, log)
}

// release puts a claimed row back in the queue, due now, with its attempt count unchanged.
func (uc *ProcessRetriesUseCase) release(ctx context.Context, r *entity.IntegrationRetry) string {
	log := uc.Logger.With(zap.String("retry_id", r.ID), zap.String("lead_id", r.Payload.LeadID))
	r.Status = entity.RetryStatusQueued
	r.NextRunAt = uc.Now()
	uc.save(ctx, r, log)
	log.Info("zoho retry released on shutdown", zap.Int("attempts", r.Attempts))
	return r.Status
}

func (uc *ProcessRetriesUseCase) reschedule(ctx context.Context, r *entity.IntegrationRetry, log *zap.Logger) string {
	if r.Attempts >= uc.MaxAttempts {
		r.Status = entity.RetryStatusDead
		uc.save(ctx, r, log)
		uc.appendLog(ctx, entity.LogLevelError, "lead_push_dead", r.LastError, "", r)
		log.Warn("zoho retry exhausted", zap.Int("attempts", r.Attempts))
		return r.Status
	}

	r.Status = entity.RetryStatusQueued
	r.NextRunAt = uc.Now().Add(RetryBackoff(r.Attempts))
	uc.save(ctx, r, log)
	log.Info("zoho retry rescheduled", zap.Int("attempts", r.Attempts), zap.Time("next_run_at", r.NextRunAt))
	return r.Status
}

func (uc *ProcessRetriesUseCase) save(ctx context.Context, r *entity.IntegrationRetry, log *zap.Logger) {
	r.UpdatedAt = uc.Now()
	if err := uc.Integrations.UpdateRetry(ctx, r); err != nil {
		log.Error("failed to update retry", zap.Error(err))
	}
}

func (uc *ProcessRetriesUseCase) appendLog(ctx context.Context, level, event, message, correlationID string, r *entity.IntegrationRetry) {
	entry := entity.NewIntegrationLog(level, integrationZoho, event, message)
	entry.LeadID = r.Payload.LeadID
	entry.CorrelationID = correlationID
	entry.Payload = map[string]any{"retryId": r.ID, "attempts": r.Attempts}
	if err := uc.Integrations.AppendLog(ctx, entry); err != nil {
		uc.Logger.Error("failed to write integration log", zap.String("retry_id", r.ID), zap.Error(err))
	}
}
