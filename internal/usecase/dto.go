package usecase

import (
	"encoding/json"
	"strings"
)

// StringList accepts either a JSON array of strings or a single comma separated string.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = cleanList(list)
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = cleanList(strings.Split(single, ","))
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LeadPayload is the body of POST /api/lead.
type LeadPayload struct {
	Name           string         `json:"name" validate:"required_without_all=Phone Email"`
	Email          string         `json:"email" validate:"omitempty,leademail"`
	Phone          string         `json:"phone"`
	Message        string         `json:"message"`
	Budget         string         `json:"budget"`
	Source         string         `json:"source"`
	Campaign       string         `json:"campaign"`
	LeadSource     string         `json:"leadSource"`
	Raw            map[string]any `json:"raw"`
	RecaptchaToken string         `json:"recaptchaToken"`

	// healthcare-software-development only
	HealthcareType  string     `json:"healthcareType"`
	Organization    string     `json:"organization"`
	Timeline        string     `json:"timeline"`
	ComplianceNeeds StringList `json:"complianceNeeds"`
	Requirements    string     `json:"requirements"`
	IsUrgent        bool       `json:"isUrgent"`
	BudgetApproved  bool       `json:"budgetApproved"`
}

func (p *LeadPayload) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Message = strings.TrimSpace(p.Message)
	p.Budget = strings.TrimSpace(p.Budget)
	p.Source = strings.ToLower(strings.TrimSpace(p.Source))
	p.Campaign = strings.TrimSpace(p.Campaign)
	p.LeadSource = strings.TrimSpace(p.LeadSource)
	p.RecaptchaToken = strings.TrimSpace(p.RecaptchaToken)
	p.HealthcareType = strings.TrimSpace(p.HealthcareType)
	p.Organization = strings.TrimSpace(p.Organization)
	p.Timeline = strings.TrimSpace(p.Timeline)
	p.Requirements = strings.TrimSpace(p.Requirements)
	if p.Raw == nil {
		p.Raw = map[string]any{}
	}
}

type SubmitLeadInput struct {
	Payload       LeadPayload
	ClientIP      string
	UserAgent     string
	CorrelationID string
}

// GoogleConversion is what the landing page needs to fire the matching
// client-side gtag conversion.
type GoogleConversion struct {
	EventType     string `json:"eventType"`
	SendTo        string `json:"sendTo"`
	Value         int    `json:"value"`
	Currency      string `json:"currency"`
	TransactionID string `json:"transactionId"`
}

type SubmitLeadOutput struct {
	Success            bool              `json:"success"`
	LeadID             string            `json:"leadId"`
	ZohoLeadID         *string           `json:"zohoLeadId"`
	CorrelationID      string            `json:"correlationId"`
	ConversionValue    int               `json:"conversionValue"`
	LeadScore          int               `json:"leadScore"`
	QualificationLevel string            `json:"qualificationLevel"`
	Priority           string            `json:"priority"`
	Google             *GoogleConversion `json:"google"`

	// not serialized; used for metrics and logs
	Source string `json:"-"`
}

type NewsletterInput struct {
	Email  string `json:"email" validate:"required,leademail"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}
