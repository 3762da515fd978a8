package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/infra/http/middleware"
	"github.com/xavierca1/agency-leads/internal/usecase"
)

func serveLead(h *LeadHandler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/lead", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	middleware.RequestID(http.HandlerFunc(h.SubmitLead)).ServeHTTP(rec, req)
	return rec
}

// TestSubmitLeadSuccess - 200 with the use case output and the caller's request id
func TestSubmitLeadSuccess(t *testing.T) {
	uc := new(MockLeadSubmitter)
	zohoID := "Z123"
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(in usecase.SubmitLeadInput) bool {
		return in.CorrelationID == "req-1" &&
			in.ClientIP == "203.0.113.7" &&
			in.Payload.Email == "asha@example.com"
	})).Return(&usecase.SubmitLeadOutput{
		Success:            true,
		LeadID:             "lead-1",
		ZohoLeadID:         &zohoID,
		CorrelationID:      "req-1",
		ConversionValue:    8000,
		LeadScore:          72,
		QualificationLevel: "Hot",
		Priority:           "High",
		Source:             "business-website",
	}, nil)

	rec := serveLead(NewLeadHandler(uc, zap.NewNop()),
		`{"name":"Asha","email":"asha@example.com","source":"business-website"}`,
		map[string]string{"X-Request-ID": "req-1", "X-Forwarded-For": "203.0.113.7, 10.0.0.1"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "lead-1", body["leadId"])
	assert.Equal(t, "Z123", body["zohoLeadId"])
	assert.Equal(t, "req-1", body["correlationId"])
	assert.Equal(t, float64(72), body["leadScore"])
	assert.Nil(t, body["google"])
	assert.NotContains(t, body, "Source")
	uc.AssertExpectations(t)
}

// TestSubmitLeadCRMDownStill200 - a null zohoLeadId is still a successful submission
func TestSubmitLeadCRMDownStill200(t *testing.T) {
	uc := new(MockLeadSubmitter)
	uc.On("Execute", mock.Anything, mock.Anything).Return(&usecase.SubmitLeadOutput{
		Success: true, LeadID: "lead-2", CorrelationID: "c", QualificationLevel: "Cold", Priority: "Low",
	}, nil)

	rec := serveLead(NewLeadHandler(uc, nil), `{"email":"a@b.co"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "zohoLeadId")
	assert.Nil(t, body["zohoLeadId"])
}

func TestSubmitLeadInvalidJSON(t *testing.T) {
	uc := new(MockLeadSubmitter)

	rec := serveLead(NewLeadHandler(uc, nil), `{"name":`, map[string]string{"X-Request-ID": "req-bad"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, usecase.CodeInvalidJSON, body.Code)
	assert.Equal(t, "req-bad", body.CorrelationID)
	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestSubmitLeadBodyTooLarge(t *testing.T) {
	uc := new(MockLeadSubmitter)
	huge := `{"message":"` + strings.Repeat("x", maxLeadBodyBytes+10) + `"}`

	rec := serveLead(NewLeadHandler(uc, nil), huge, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

// TestSubmitLeadValidationError - domain errors surface code and fields with a 400
func TestSubmitLeadValidationError(t *testing.T) {
	uc := new(MockLeadSubmitter)
	uc.On("Execute", mock.Anything, mock.Anything).Return(nil, &usecase.DomainError{
		Code:    usecase.CodeValidation,
		Message: "Validation failed",
		Fields:  []usecase.ValidationError{{Field: "email", Message: "invalid email"}},
	})

	rec := serveLead(NewLeadHandler(uc, nil), `{"email":"nope"}`, map[string]string{"X-Request-ID": "req-2"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, usecase.CodeValidation, body.Code)
	assert.Equal(t, "req-2", body.CorrelationID)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "email", body.Fields[0].Field)
	uc.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestSubmitLeadTechnicalError - 500 body has error and correlationId and a log row is attempted
func TestSubmitLeadTechnicalError(t *testing.T) {
	uc := new(MockLeadSubmitter)
	cause := &usecase.TechnicalError{Code: usecase.CodeDatabase, Message: "failed to store lead", Err: errors.New("conn refused")}
	uc.On("Execute", mock.Anything, mock.Anything).Return(nil, cause)
	uc.On("RecordFailure", mock.Anything, "req-3", "lead_submit_failed", cause).Once()

	rec := serveLead(NewLeadHandler(uc, nil), `{"email":"a@b.co"}`, map[string]string{"X-Request-ID": "req-3"})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-3", body["correlationId"])
	assert.NotEmpty(t, body["error"])
	assert.NotContains(t, body, "success")
	uc.AssertExpectations(t)
}

func TestSubmitLeadPanicBecomes500(t *testing.T) {
	uc := new(MockLeadSubmitter)
	uc.On("Execute", mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("boom") })
	uc.On("RecordFailure", mock.Anything, "req-4", "lead_submit_failed", mock.Anything).Once()

	rec := serveLead(NewLeadHandler(uc, nil), `{"email":"a@b.co"}`, map[string]string{"X-Request-ID": "req-4"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	uc.AssertExpectations(t)
}

func TestNewsletterSubscribe(t *testing.T) {
	uc := new(MockNewsletterSubscriber)
	uc.On("Execute", mock.Anything, usecase.NewsletterInput{Email: "ravi@example.com", Source: "blog"}).Return(nil, nil)
	h := NewNewsletterHandler(uc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/newsletter", bytes.NewBufferString(`{"email":"ravi@example.com","source":"blog"}`))
	rec := httptest.NewRecorder()
	h.Subscribe(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	uc.AssertExpectations(t)
}

func TestNewsletterSubscribeErrors(t *testing.T) {
	uc := new(MockNewsletterSubscriber)
	uc.On("Execute", mock.Anything, usecase.NewsletterInput{Email: "bad"}).Return(nil, &usecase.DomainError{Code: usecase.CodeValidation, Message: "Validation failed"})
	uc.On("Execute", mock.Anything, usecase.NewsletterInput{Email: "ok@example.com"}).Return(nil, &usecase.TechnicalError{Code: usecase.CodeDatabase, Message: "db"})
	h := NewNewsletterHandler(uc, nil)

	cases := []struct {
		body string
		want int
	}{
		{`{"email":`, http.StatusBadRequest},
		{`{"email":"bad"}`, http.StatusBadRequest},
		{`{"email":"ok@example.com"}`, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.Subscribe(rec, httptest.NewRequest(http.MethodPost, "/api/newsletter", strings.NewReader(tc.body)))
		assert.Equal(t, tc.want, rec.Code, tc.body)
	}
}
