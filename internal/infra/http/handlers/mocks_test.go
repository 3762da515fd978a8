package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/agency-leads/internal/entity"
	"github.com/xavierca1/agency-leads/internal/usecase"
)

type MockLeadSubmitter struct {
	mock.Mock
}

func (m *MockLeadSubmitter) Execute(ctx context.Context, input usecase.SubmitLeadInput) (*usecase.SubmitLeadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SubmitLeadOutput), args.Error(1)
}

func (m *MockLeadSubmitter) RecordFailure(ctx context.Context, correlationID, event string, cause error) {
	m.Called(ctx, correlationID, event, cause)
}

type MockNewsletterSubscriber struct {
	mock.Mock
}

func (m *MockNewsletterSubscriber) Execute(ctx context.Context, input usecase.NewsletterInput) (*entity.NewsletterSubscriber, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.NewsletterSubscriber), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListLeads(ctx context.Context, f entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockAdminService) GetLead(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockAdminService) UpdateLead(ctx context.Context, id string, patch usecase.LeadPatch) (*entity.Lead, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockAdminService) ListRetries(ctx context.Context, status string, limit int) ([]*entity.IntegrationRetry, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.IntegrationRetry), args.Error(1)
}

func (m *MockAdminService) RequeueRetry(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminService) ListSubscribers(ctx context.Context, limit, offset int) ([]*entity.NewsletterSubscriber, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.NewsletterSubscriber), args.Error(1)
}
