// Package scoring computes lead qualification from the submitted form fields
// and the behavioural telemetry collected by the landing pages.
package scoring

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	QualificationHot  = "Hot"
	QualificationWarm = "Warm"
	QualificationCold = "Cold"

	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

const (
	sourceHealthcare      = "healthcare-software-development"
	sourceBusinessWebsite = "business-website"
)

var (
	emailPattern        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	indianMobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	nonDigit            = regexp.MustCompile(`\D`)
)

// Input is everything the scorer looks at. Missing values score zero.
type Input struct {
	Source   string
	Name     string
	Email    string
	Phone    string
	Message  string
	Budget   string
	Campaign string
	Raw      map[string]any

	HealthcareType  string
	Organization    string
	Timeline        string
	Requirements    string
	ComplianceNeeds []string
	IsUrgent        bool
	BudgetApproved  bool
}

type Result struct {
	Score           int
	Qualification   string
	Priority        string
	ConversionValue int
}

// Score picks the table for the source and derives tier, priority and value.
func Score(in Input) Result {
	var score int
	if in.Source == sourceHealthcare {
		score = healthcareScore(in)
	} else {
		score = genericScore(in)
	}

	return Result{
		Score:           score,
		Qualification:   Qualification(score),
		Priority:        Priority(in),
		ConversionValue: ConversionValue(score),
	}
}

func Qualification(score int) string {
	switch {
	case score >= 80:
		return QualificationHot
	case score >= 60:
		return QualificationWarm
	default:
		return QualificationCold
	}
}

func Priority(in Input) string {
	p := PriorityLow
	if in.IsUrgent && in.BudgetApproved {
		p = PriorityHigh
	} else if strings.TrimSpace(in.Budget) != "" && strings.TrimSpace(in.Timeline) != "" {
		p = PriorityMedium
	}

	if in.Source == sourceBusinessWebsite {
		idx, ok := BudgetBracket(in.Budget)
		switch {
		case ok && idx >= 4:
			p = PriorityHigh
		case ok && idx >= 2:
			p = PriorityMedium
		default:
			p = PriorityLow
		}
	}
	return p
}

func genericScore(in Input) int {
	score := contactPoints(in)
	score += BudgetPoints(in.Budget)
	score += engagementPoints(in.Raw)
	score += intentPoints(in)
	return clamp(score)
}

func contactPoints(in Input) int {
	points := 0
	if utf8.RuneCountInString(strings.TrimSpace(in.Name)) >= 2 {
		points += 5
	}
	points += PhonePoints(in.Phone)
	if ValidEmail(in.Email) {
		points += 5
	}
	return points
}

// PhonePoints gives full credit to a valid Indian mobile number and partial
// credit to anything else that was filled in.
func PhonePoints(phone string) int {
	if strings.TrimSpace(phone) == "" {
		return 0
	}
	digits := nonDigit.ReplaceAllString(phone, "")
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	if indianMobilePattern.MatchString(digits) {
		return 10
	}
	return 5
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func engagementPoints(raw map[string]any) int {
	points := 0
	if ms, ok := number(raw, "timeToForm"); ok {
		points += timeToFormPoints(ms / 1000)
	}
	if ms, ok := number(raw, "formCompletionTime"); ok {
		points += formCompletionPoints(ms / 1000)
	}
	if depth, ok := number(raw, "scrollDepth"); ok {
		points += scrollDepthPoints(depth)
	}
	return points
}

func timeToFormPoints(sec float64) int {
	switch {
	case sec >= 30 && sec <= 180:
		return 15
	case sec >= 10 && sec < 30:
		return 10
	case sec > 180 && sec <= 600:
		return 12
	case sec > 600:
		return 8
	default:
		return 3
	}
}

func formCompletionPoints(sec float64) int {
	switch {
	case sec >= 60 && sec <= 300:
		return 10
	case sec >= 30 && sec < 60:
		return 7
	case sec > 300 && sec <= 600:
		return 8
	case sec < 10:
		return 2 // filled faster than a human types
	default:
		return 5
	}
}

func scrollDepthPoints(depth float64) int {
	switch {
	case depth >= 70:
		return 10
	case depth >= 50:
		return 7
	case depth >= 30:
		return 4
	default:
		return 0
	}
}

var genericSources = map[string]bool{"website": true, "contact": true, "home": true}

func intentPoints(in Input) int {
	points := 0
	if utf8.RuneCountInString(strings.TrimSpace(in.Message)) >= 20 {
		points += 5
	}
	src := strings.ToLower(strings.TrimSpace(in.Source))
	if src != "" && !genericSources[src] {
		points += 10
	}
	if strings.TrimSpace(in.Campaign) != "" || text(in.Raw, "utm_campaign") != "" {
		points += 5
	}
	return points
}

func healthcareScore(in Input) int {
	score := 0

	if strings.TrimSpace(in.Name) != "" {
		score += 7
	}
	if strings.TrimSpace(in.Email) != "" {
		score += 7
	}
	if strings.TrimSpace(in.Phone) != "" {
		score += 6
	}

	for _, v := range []string{in.HealthcareType, in.Organization, in.Budget, in.Timeline} {
		if strings.TrimSpace(v) != "" {
			score += 10
		}
	}

	if in.IsUrgent {
		score += 10
	}
	if in.BudgetApproved {
		score += 10
	}

	reqLen := utf8.RuneCountInString(strings.TrimSpace(in.Requirements))
	switch {
	case reqLen >= 100:
		score += 10
	case reqLen >= 30:
		score += 5
	}
	if len(in.ComplianceNeeds) > 0 {
		score += 10
	}

	return clamp(score)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// number reads a numeric telemetry value; the landing pages sometimes send strings.
func number(raw map[string]any, key string) (float64, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func text(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}
