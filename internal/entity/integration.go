package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	RetryStatusQueued     = "queued"
	RetryStatusProcessing = "processing"
	RetryStatusDone       = "done"
	RetryStatusDead       = "dead"
)

const RetryTypeZohoLeadPush = "zoho_lead_push"

const (
	LogLevelInfo  = "info"
	LogLevelError = "error"
)

var ErrRetryNotFound = errors.New("integration retry not found")

// RetryPayload references the lead a queued push belongs to.
type RetryPayload struct {
	LeadID string `json:"leadId"`
}

type IntegrationRetry struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	Payload   RetryPayload `json:"payload"`
	Attempts  int          `json:"attempts"`
	Status    string       `json:"status"`
	NextRunAt time.Time    `json:"nextRunAt"`
	LastError string       `json:"lastError,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func NewLeadPushRetry(leadID, lastError string, now time.Time, delay time.Duration) *IntegrationRetry {
	return &IntegrationRetry{
		ID:        uuid.New().String(),
		Type:      RetryTypeZohoLeadPush,
		Payload:   RetryPayload{LeadID: leadID},
		Attempts:  0,
		Status:    RetryStatusQueued,
		NextRunAt: now.Add(delay),
		LastError: lastError,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IntegrationLog is append-only.
type IntegrationLog struct {
	ID            string         `json:"id"`
	Level         string         `json:"level"`
	Integration   string         `json:"integration"`
	Event         string         `json:"event"`
	Message       string         `json:"message"`
	CorrelationID string         `json:"correlationId,omitempty"`
	LeadID        string         `json:"leadId,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func NewIntegrationLog(level, integration, event, message string) *IntegrationLog {
	return &IntegrationLog{
		ID:          uuid.New().String(),
		Level:       level,
		Integration: integration,
		Event:       event,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}
}

type IntegrationRepositoryInterface interface {
	EnqueueRetry(ctx context.Context, r *IntegrationRetry) error
	AppendLog(ctx context.Context, l *IntegrationLog) error
	ClaimDueRetries(ctx context.Context, now time.Time, limit int) ([]*IntegrationRetry, error)
	UpdateRetry(ctx context.Context, r *IntegrationRetry) error
	ListRetries(ctx context.Context, status string, limit int) ([]*IntegrationRetry, error)
	Requeue(ctx context.Context, id string, now time.Time) error
}
