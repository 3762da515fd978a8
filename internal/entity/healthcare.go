package entity

import "time"

// HealthcareMetadata is the vertical-specific child record of a healthcare lead.
type HealthcareMetadata struct {
	LeadID             string    `json:"leadId"`
	HealthcareType     string    `json:"healthcareType,omitempty"`
	Organization       string    `json:"organization,omitempty"`
	Budget             string    `json:"budget,omitempty"`
	Timeline           string    `json:"timeline,omitempty"`
	ComplianceNeeds    []string  `json:"complianceNeeds,omitempty"`
	Requirements       string    `json:"requirements,omitempty"`
	IsUrgent           bool      `json:"isUrgent"`
	BudgetApproved     bool      `json:"budgetApproved"`
	LeadScore          int       `json:"leadScore"`
	QualificationLevel string    `json:"qualificationLevel"`
	Priority           string    `json:"priority"`
	CreatedAt          time.Time `json:"createdAt"`
}
