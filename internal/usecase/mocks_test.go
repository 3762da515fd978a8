package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/agency-leads/internal/entity"
	"github.com/xavierca1/agency-leads/internal/infra/integration/recaptcha"
	"github.com/xavierca1/agency-leads/internal/infra/queue"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) MarkPushed(ctx context.Context, id, zohoLeadID string) error {
	args := m.Called(ctx, id, zohoLeadID)
	return args.Error(0)
}

func (m *MockLeadRepository) MarkFailed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, id string, upd entity.LeadUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

// MockIntegrationRepository
type MockIntegrationRepository struct {
	mock.Mock
}

func (m *MockIntegrationRepository) EnqueueRetry(ctx context.Context, r *entity.IntegrationRetry) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockIntegrationRepository) AppendLog(ctx context.Context, l *entity.IntegrationLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockIntegrationRepository) ClaimDueRetries(ctx context.Context, now time.Time, limit int) ([]*entity.IntegrationRetry, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.IntegrationRetry), args.Error(1)
}

func (m *MockIntegrationRepository) UpdateRetry(ctx context.Context, r *entity.IntegrationRetry) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockIntegrationRepository) ListRetries(ctx context.Context, status string, limit int) ([]*entity.IntegrationRetry, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.IntegrationRetry), args.Error(1)
}

func (m *MockIntegrationRepository) Requeue(ctx context.Context, id string, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

// MockCRMClient
type MockCRMClient struct {
	mock.Mock
}

func (m *MockCRMClient) CreateLead(ctx context.Context, lead *entity.Lead) (string, error) {
	args := m.Called(ctx, lead)
	return args.String(0), args.Error(1)
}

// MockCaptcha
type MockCaptcha struct {
	mock.Mock
}

func (m *MockCaptcha) Enabled() bool {
	return true
}

func (m *MockCaptcha) Verify(ctx context.Context, token, remoteIP string) (*recaptcha.VerifyResult, error) {
	args := m.Called(ctx, token, remoteIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recaptcha.VerifyResult), args.Error(1)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishConversion(ctx context.Context, payload queue.ConversionPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockQueueProducer) PublishLeadAlert(ctx context.Context, payload queue.LeadAlertPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockTagProvider
type MockTagProvider struct {
	mock.Mock
}

func (m *MockTagProvider) FindByEventType(ctx context.Context, eventType string) (*entity.ConversionTag, error) {
	args := m.Called(ctx, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ConversionTag), args.Error(1)
}

// MockNewsletterRepository
type MockNewsletterRepository struct {
	mock.Mock
}

func (m *MockNewsletterRepository) Upsert(ctx context.Context, s *entity.NewsletterSubscriber) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockNewsletterRepository) List(ctx context.Context, limit, offset int) ([]*entity.NewsletterSubscriber, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.NewsletterSubscriber), args.Error(1)
}
