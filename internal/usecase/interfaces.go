package usecase

import (
	"context"

	"github.com/xavierca1/agency-leads/internal/entity"
	"github.com/xavierca1/agency-leads/internal/infra/integration/recaptcha"
	"github.com/xavierca1/agency-leads/internal/infra/queue"
)

// CRMClient creates (or updates, by dedup key) the lead in the CRM and returns its remote id.
type CRMClient interface {
	CreateLead(ctx context.Context, lead *entity.Lead) (string, error)
}

type CaptchaVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, token, remoteIP string) (*recaptcha.VerifyResult, error)
}

type QueueProducerInterface interface {
	PublishConversion(ctx context.Context, payload queue.ConversionPayload) error
	PublishLeadAlert(ctx context.Context, payload queue.LeadAlertPayload) error
}

type ConversionTagProvider interface {
	FindByEventType(ctx context.Context, eventType string) (*entity.ConversionTag, error)
}
