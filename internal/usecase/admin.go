package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/agency-leads/internal/entity"
	"github.com/xavierca1/agency-leads/internal/scoring"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// AdminUseCase backs the back-office endpoints.
type AdminUseCase struct {
	Leads        entity.LeadRepositoryInterface
	Integrations entity.IntegrationRepositoryInterface
	Newsletter   entity.NewsletterRepositoryInterface
}

func NewAdminUseCase(leads entity.LeadRepositoryInterface, integrations entity.IntegrationRepositoryInterface, newsletter entity.NewsletterRepositoryInterface) *AdminUseCase {
	return &AdminUseCase{Leads: leads, Integrations: integrations, Newsletter: newsletter}
}

type LeadPatch struct {
	Status             *string `json:"status"`
	Priority           *string `json:"priority"`
	QualificationLevel *string `json:"qualificationLevel"`
}

func (uc *AdminUseCase) ListLeads(ctx context.Context, f entity.LeadFilter) ([]*entity.Lead, error) {
	f.Limit = pageSize(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	leads, err := uc.Leads.List(ctx, f)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to list leads", Err: err}
	}
	return leads, nil
}

func (uc *AdminUseCase) GetLead(ctx context.Context, id string) (*entity.Lead, error) {
	if !validID(id) {
		return nil, &DomainError{Code: CodeNotFound, Message: "lead not found"}
	}
	lead, err := uc.Leads.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &DomainError{Code: CodeNotFound, Message: "lead not found"}
	}
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to load lead", Err: err}
	}
	return lead, nil
}

func (uc *AdminUseCase) UpdateLead(ctx context.Context, id string, patch LeadPatch) (*entity.Lead, error) {
	if !validID(id) {
		return nil, &DomainError{Code: CodeNotFound, Message: "lead not found"}
	}
	var fields []ValidationError
	if patch.Status != nil && !entity.IsValidLeadStatus(*patch.Status) {
		fields = append(fields, ValidationError{Field: "status", Message: "must be pending, pushed or failed"})
	}
	if patch.Priority != nil && !oneOf(*patch.Priority, scoring.PriorityHigh, scoring.PriorityMedium, scoring.PriorityLow) {
		fields = append(fields, ValidationError{Field: "priority", Message: "must be High, Medium or Low"})
	}
	if patch.QualificationLevel != nil && !oneOf(*patch.QualificationLevel, scoring.QualificationHot, scoring.QualificationWarm, scoring.QualificationCold) {
		fields = append(fields, ValidationError{Field: "qualificationLevel", Message: "must be Hot, Warm or Cold"})
	}
	if len(fields) > 0 {
		return nil, validationFailure(fields)
	}

	err := uc.Leads.Update(ctx, id, entity.LeadUpdate{
		Status:             patch.Status,
		Priority:           patch.Priority,
		QualificationLevel: patch.QualificationLevel,
	})
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &DomainError{Code: CodeNotFound, Message: "lead not found"}
	}
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to update lead", Err: err}
	}
	return uc.GetLead(ctx, id)
}

func (uc *AdminUseCase) ListRetries(ctx context.Context, status string, limit int) ([]*entity.IntegrationRetry, error) {
	if status != "" && !oneOf(status, entity.RetryStatusQueued, entity.RetryStatusProcessing, entity.RetryStatusDone, entity.RetryStatusDead) {
		return nil, validationFailure([]ValidationError{{Field: "status", Message: "unknown retry status"}})
	}
	retries, err := uc.Integrations.ListRetries(ctx, status, pageSize(limit))
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to list retries", Err: err}
	}
	return retries, nil
}

func (uc *AdminUseCase) RequeueRetry(ctx context.Context, id string) error {
	if !validID(id) {
		return &DomainError{Code: CodeNotFound, Message: "retry not found"}
	}
	err := uc.Integrations.Requeue(ctx, id, time.Now().UTC())
	if errors.Is(err, entity.ErrRetryNotFound) {
		return &DomainError{Code: CodeNotFound, Message: "retry not found"}
	}
	if err != nil {
		return &TechnicalError{Code: CodeDatabase, Message: "failed to requeue retry", Err: err}
	}
	return nil
}

func (uc *AdminUseCase) ListSubscribers(ctx context.Context, limit, offset int) ([]*entity.NewsletterSubscriber, error) {
	if offset < 0 {
		offset = 0
	}
	subs, err := uc.Newsletter.List(ctx, pageSize(limit), offset)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to list subscribers", Err: err}
	}
	return subs, nil
}

// validID guards the uuid columns; postgres rejects malformed ids with an error, not a miss.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
