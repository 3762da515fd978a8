package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	LeadStatusPending = "pending"
	LeadStatusPushed  = "pushed"
	LeadStatusFailed  = "failed"
)

const SourceHealthcare = "healthcare-software-development"
const SourceBusinessWebsite = "business-website"

var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrDuplicateLead = errors.New("lead already exists")
)

type Lead struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name,omitempty"`
	Email              string         `json:"email,omitempty"`
	Phone              string         `json:"phone,omitempty"`
	Message            string         `json:"message,omitempty"`
	Budget             string         `json:"budget,omitempty"`
	Source             string         `json:"source,omitempty"`
	Campaign           string         `json:"campaign,omitempty"`
	LeadSource         string         `json:"leadSource,omitempty"`
	Raw                map[string]any `json:"raw,omitempty"`
	Status             string         `json:"status"` // pending, pushed, failed
	ZohoLeadID         *string        `json:"zohoLeadId"`
	LeadScore          int            `json:"leadScore"`
	QualificationLevel string         `json:"qualificationLevel"`
	Priority           string         `json:"priority"`
	ConversionValue    int            `json:"conversionValue"`
	CorrelationID      string         `json:"correlationId"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`

	Healthcare *HealthcareMetadata `json:"healthcare,omitempty"`
}

// NewLead builds a pending lead. Identifier presence is checked by the intake validator.
func NewLead(name, email, phone, message string) *Lead {
	now := time.Now().UTC()
	return &Lead{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Message:   message,
		Raw:       map[string]any{},
		Status:    LeadStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *Lead) IsHealthcare() bool {
	return l.Source == SourceHealthcare
}

func IsValidLeadStatus(status string) bool {
	switch status {
	case LeadStatusPending, LeadStatusPushed, LeadStatusFailed:
		return true
	}
	return false
}

type LeadFilter struct {
	Status        string
	Source        string
	Qualification string
	Limit         int
	Offset        int
}

// LeadUpdate carries admin edits; nil fields are left untouched.
type LeadUpdate struct {
	Status             *string
	Priority           *string
	QualificationLevel *string
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	MarkPushed(ctx context.Context, id, zohoLeadID string) error
	MarkFailed(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	Update(ctx context.Context, id string, upd LeadUpdate) error
}
