package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/entity"
	"github.com/xavierca1/agency-leads/internal/infra/queue"
	"github.com/xavierca1/agency-leads/internal/scoring"
)

const (
	DefaultMinCaptchaScore = 0.5
	DefaultFirstRetryDelay = 60 * time.Second

	integrationZoho = "zoho"
	integrationAPI  = "api"
)

type SubmitLeadUseCase struct {
	Leads        entity.LeadRepositoryInterface
	Integrations entity.IntegrationRepositoryInterface
	Forwarder    *CRMForwarder
	Captcha      CaptchaVerifier
	Conversions  *ConversionReporter
	Queue        QueueProducerInterface
	Logger       *zap.Logger

	MinCaptchaScore float64
	FirstRetryDelay time.Duration
	PublishTimeout  time.Duration
	Now             func() time.Time
}

func NewSubmitLeadUseCase(
	leads entity.LeadRepositoryInterface,
	integrations entity.IntegrationRepositoryInterface,
	forwarder *CRMForwarder,
	captcha CaptchaVerifier,
	conversions *ConversionReporter,
	q QueueProducerInterface,
	logger *zap.Logger,
) *SubmitLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmitLeadUseCase{
		Leads:           leads,
		Integrations:    integrations,
		Forwarder:       forwarder,
		Captcha:         captcha,
		Conversions:     conversions,
		Queue:           q,
		Logger:          logger,
		MinCaptchaScore: DefaultMinCaptchaScore,
		FirstRetryDelay: DefaultFirstRetryDelay,
		PublishTimeout:  DefaultPublishTimeout,
		Now:             func() time.Time { return time.Now().UTC() },
	}
}

func (uc *SubmitLeadUseCase) Execute(ctx context.Context, input SubmitLeadInput) (*SubmitLeadOutput, error) {
	if input.CorrelationID == "" {
		input.CorrelationID = uuid.New().String()
	}
	p := input.Payload
	p.normalize()

	log := uc.Logger.With(
		zap.String("correlation_id", input.CorrelationID),
		zap.String("source", p.Source),
	)

	if errs := ValidateLeadPayload(p); len(errs) > 0 {
		log.Info("lead rejected by validation", zap.Int("fields", len(errs)))
		return nil, validationFailure(errs)
	}

	raw := make(map[string]any, len(p.Raw)+2)
	for k, v := range p.Raw {
		raw[k] = v
	}

	if err := uc.checkCaptcha(ctx, p.RecaptchaToken, input.ClientIP, raw, log); err != nil {
		return nil, err
	}

	result := scoring.Score(scoring.Input{
		Source:          p.Source,
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		Message:         p.Message,
		Budget:          p.Budget,
		Campaign:        p.Campaign,
		Raw:             raw,
		HealthcareType:  p.HealthcareType,
		Organization:    p.Organization,
		Timeline:        p.Timeline,
		Requirements:    p.Requirements,
		ComplianceNeeds: p.ComplianceNeeds,
		IsUrgent:        p.IsUrgent,
		BudgetApproved:  p.BudgetApproved,
	})

	lead := entity.NewLead(p.Name, p.Email, p.Phone, p.Message)
	lead.Budget = p.Budget
	lead.Source = p.Source
	lead.Campaign = p.Campaign
	lead.LeadSource = p.LeadSource
	lead.Raw = raw
	lead.LeadScore = result.Score
	lead.QualificationLevel = result.Qualification
	lead.Priority = result.Priority
	lead.ConversionValue = result.ConversionValue
	lead.CorrelationID = input.CorrelationID

	if lead.IsHealthcare() {
		lead.Healthcare = &entity.HealthcareMetadata{
			LeadID:             lead.ID,
			HealthcareType:     p.HealthcareType,
			Organization:       p.Organization,
			Budget:             p.Budget,
			Timeline:           p.Timeline,
			ComplianceNeeds:    []string(p.ComplianceNeeds),
			Requirements:       p.Requirements,
			IsUrgent:           p.IsUrgent,
			BudgetApproved:     p.BudgetApproved,
			LeadScore:          result.Score,
			QualificationLevel: result.Qualification,
			Priority:           result.Priority,
			CreatedAt:          lead.CreatedAt,
		}
	}

	// the local row must exist before any partner is called
	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to store lead", Err: err}
	}
	log = log.With(zap.String("lead_id", lead.ID))
	log.Info("lead stored",
		zap.Int("lead_score", lead.LeadScore),
		zap.String("qualification", lead.QualificationLevel),
	)

	// bookkeeping below must survive the client hanging up
	bg := context.WithoutCancel(ctx)

	sync := uc.Forwarder.Forward(bg, lead)
	if sync.OK() {
		remoteID := sync.RemoteID
		lead.Status = entity.LeadStatusPushed
		lead.ZohoLeadID = &remoteID
		if err := uc.Leads.MarkPushed(bg, lead.ID, remoteID); err != nil {
			log.Error("lead pushed but status update failed", zap.String("zoho_lead_id", remoteID), zap.Error(err))
		}
	} else {
		lead.Status = entity.LeadStatusFailed
		uc.recordPushFailure(bg, lead, sync.Err, log)
	}

	eventType := EventTypeForSource(lead.Source)
	var google *GoogleConversion
	if uc.Conversions != nil {
		uc.Conversions.Publish(bg, lead, eventType)
		google = uc.Conversions.ClientMapping(ctx, lead, eventType)
	}

	if lead.QualificationLevel == scoring.QualificationHot || lead.Priority == scoring.PriorityHigh {
		uc.publishAlert(bg, lead, log)
	}

	return &SubmitLeadOutput{
		Success:            true,
		LeadID:             lead.ID,
		ZohoLeadID:         lead.ZohoLeadID,
		CorrelationID:      lead.CorrelationID,
		ConversionValue:    lead.ConversionValue,
		LeadScore:          lead.LeadScore,
		QualificationLevel: lead.QualificationLevel,
		Priority:           lead.Priority,
		Google:             google,
		Source:             lead.Source,
	}, nil
}

func (uc *SubmitLeadUseCase) checkCaptcha(ctx context.Context, token, clientIP string, raw map[string]any, log *zap.Logger) error {
	if uc.Captcha == nil || !uc.Captcha.Enabled() {
		return nil
	}
	if token == "" {
		log.Info("lead submitted without recaptcha token")
		return nil
	}

	res, err := uc.Captcha.Verify(ctx, token, clientIP)
	if err != nil {
		log.Warn("recaptcha verification unavailable, accepting lead", zap.Error(err))
		return nil
	}
	if !res.Success {
		log.Warn("recaptcha rejected submission", zap.Strings("error_codes", res.ErrorCodes))
		return &DomainError{Code: CodeBotCheckFailed, Message: "bot verification failed"}
	}

	if res.Score == nil {
		return nil
	}
	score := *res.Score
	raw["recaptchaScore"] = score
	if score < uc.MinCaptchaScore {
		raw["lowTrust"] = true
		log.Warn("low recaptcha score", zap.Float64("score", score))
	}
	return nil
}

func (uc *SubmitLeadUseCase) recordPushFailure(ctx context.Context, lead *entity.Lead, pushErr error, log *zap.Logger) {
	log.Warn("zoho push failed, queued for retry", zap.Error(pushErr))

	if err := uc.Leads.MarkFailed(ctx, lead.ID); err != nil {
		log.Error("failed to mark lead as failed", zap.Error(err))
	}

	retry := entity.NewLeadPushRetry(lead.ID, pushErr.Error(), uc.Now(), uc.FirstRetryDelay)
	if err := uc.Integrations.EnqueueRetry(ctx, retry); err != nil {
		log.Error("failed to enqueue zoho retry", zap.Error(err))
	}

	entry := entity.NewIntegrationLog(entity.LogLevelError, integrationZoho, "lead_push_failed", pushErr.Error())
	entry.CorrelationID = lead.CorrelationID
	entry.LeadID = lead.ID
	entry.Payload = map[string]any{"retryId": retry.ID}
	if err := uc.Integrations.AppendLog(ctx, entry); err != nil {
		log.Error("failed to write integration log", zap.Error(err))
	}
}

func (uc *SubmitLeadUseCase) publishAlert(ctx context.Context, lead *entity.Lead, log *zap.Logger) {
	if uc.Queue == nil {
		return
	}
	payload := queue.LeadAlertPayload{
		LeadID:             lead.ID,
		Name:               lead.Name,
		Email:              lead.Email,
		Phone:              lead.Phone,
		Source:             lead.Source,
		Budget:             lead.Budget,
		Message:            lead.Message,
		LeadScore:          lead.LeadScore,
		QualificationLevel: lead.QualificationLevel,
		Priority:           lead.Priority,
	}
	if lead.ZohoLeadID != nil {
		payload.ZohoLeadID = *lead.ZohoLeadID
	}
	err := publishWithin(ctx, uc.PublishTimeout, func(ctx context.Context) error {
		return uc.Queue.PublishLeadAlert(ctx, payload)
	})
	if err != nil {
		log.Warn("lead alert not published", zap.Error(err))
	}
}

// RecordFailure persists an unexpected request failure so it can be traced by correlation id.
func (uc *SubmitLeadUseCase) RecordFailure(ctx context.Context, correlationID, event string, cause error) {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	entry := entity.NewIntegrationLog(entity.LogLevelError, integrationAPI, event, msg)
	entry.CorrelationID = correlationID
	if err := uc.Integrations.AppendLog(context.WithoutCancel(ctx), entry); err != nil {
		uc.Logger.Error("failed to write integration log",
			zap.String("correlation_id", correlationID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
	}
}
