package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/agency-leads/internal/entity"
)

const SubscriberStatusSubscribed = "subscribed"

type SubscribeNewsletterUseCase struct {
	Repo entity.NewsletterRepositoryInterface
}

func NewSubscribeNewsletterUseCase(repo entity.NewsletterRepositoryInterface) *SubscribeNewsletterUseCase {
	return &SubscribeNewsletterUseCase{Repo: repo}
}

func (uc *SubscribeNewsletterUseCase) Execute(ctx context.Context, input NewsletterInput) (*entity.NewsletterSubscriber, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Source = strings.ToLower(strings.TrimSpace(input.Source))

	if errs := ValidateNewsletterInput(input); len(errs) > 0 {
		return nil, validationFailure(errs)
	}

	now := time.Now().UTC()
	sub := &entity.NewsletterSubscriber{
		ID:        uuid.New().String(),
		Email:     input.Email,
		Name:      input.Name,
		Phone:     input.Phone,
		Source:    input.Source,
		Status:    SubscriberStatusSubscribed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.Repo.Upsert(ctx, sub); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to save subscriber", Err: err}
	}
	return sub, nil
}
