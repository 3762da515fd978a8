package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/entity"
	"github.com/xavierca1/agency-leads/internal/infra/queue"
)

const (
	ConversionCurrency         = "INR"
	DefaultTagLookupTimeout    = 800 * time.Millisecond
	DefaultPublishTimeout      = time.Second
	EventTypeGenerateLead      = "generate_lead"
	EventTypeBusinessWebsite   = "business_website_lead"
	EventTypeHealthcare        = "healthcare_lead"
	EventTypeMobileApp         = "mobile_app_lead"
	EventTypeEcommerce         = "ecommerce_lead"
	sourceMobileAppDevelopment = "mobile-app-development"
	sourceEcommerceDevelopment = "ecommerce-development"
)

func EventTypeForSource(source string) string {
	switch source {
	case entity.SourceBusinessWebsite:
		return EventTypeBusinessWebsite
	case entity.SourceHealthcare:
		return EventTypeHealthcare
	case sourceMobileAppDevelopment:
		return EventTypeMobileApp
	case sourceEcommerceDevelopment:
		return EventTypeEcommerce
	default:
		return EventTypeGenerateLead
	}
}

// ConversionReporter fans a stored lead out to analytics: a server-side event on the
// queue and the client-side gtag mapping returned in the response.
type ConversionReporter struct {
	Queue         QueueProducerInterface
	Tags          ConversionTagProvider
	LookupTimeout time.Duration
	// PublishTimeout bounds each broker publish so a stalled channel cannot hold the request.
	PublishTimeout time.Duration
	Logger         *zap.Logger
}

func NewConversionReporter(q QueueProducerInterface, tags ConversionTagProvider, lookupTimeout time.Duration, logger *zap.Logger) *ConversionReporter {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultTagLookupTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversionReporter{
		Queue:          q,
		Tags:           tags,
		LookupTimeout:  lookupTimeout,
		PublishTimeout: DefaultPublishTimeout,
		Logger:         logger,
	}
}

// Publish is fire-and-forget; errors are only logged.
func (r *ConversionReporter) Publish(ctx context.Context, lead *entity.Lead, eventType string) {
	if r.Queue == nil {
		return
	}
	payload := queue.ConversionPayload{
		EventType:     eventType,
		Value:         lead.ConversionValue,
		Currency:      ConversionCurrency,
		CorrelationID: lead.CorrelationID,
		LeadID:        lead.ID,
		Source:        lead.Source,
		ClientID:      gaClientID(lead.Raw),
	}
	err := publishWithin(ctx, r.PublishTimeout, func(ctx context.Context) error {
		return r.Queue.PublishConversion(ctx, payload)
	})
	if err != nil {
		r.Logger.Warn("conversion event not published",
			zap.String("correlation_id", lead.CorrelationID),
			zap.String("lead_id", lead.ID),
			zap.Error(err),
		)
	}
}

// ClientMapping returns the gtag payload for the page, or nil when no active tag
// answers within the lookup timeout.
func (r *ConversionReporter) ClientMapping(ctx context.Context, lead *entity.Lead, eventType string) *GoogleConversion {
	if r.Tags == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.LookupTimeout)
	defer cancel()

	tag, err := r.Tags.FindByEventType(ctx, eventType)
	if err != nil {
		if !errors.Is(err, entity.ErrConversionTagNotFound) {
			r.Logger.Warn("conversion tag lookup failed",
				zap.String("correlation_id", lead.CorrelationID),
				zap.String("event_type", eventType),
				zap.Error(err),
			)
		}
		return nil
	}
	if tag == nil || !tag.Active || tag.ConversionID == "" {
		return nil
	}

	return &GoogleConversion{
		EventType:     eventType,
		SendTo:        tag.SendTo(),
		Value:         lead.ConversionValue,
		Currency:      ConversionCurrency,
		TransactionID: lead.ID,
	}
}

// publishWithin waits at most timeout for publish. A producer that ignores its
// context is left running in the background and its result is dropped.
func publishWithin(parent context.Context, timeout time.Duration, publish func(context.Context) error) error {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- publish(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func gaClientID(raw map[string]any) string {
	for _, key := range []string{"gaClientId", "ga_client_id", "clientId"} {
		if v, ok := raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
