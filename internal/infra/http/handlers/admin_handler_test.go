package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/agency-leads/internal/entity"
	"github.com/xavierca1/agency-leads/internal/usecase"
)

func serveAdmin(svc *MockAdminService, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	NewAdminHandler(svc, nil).Routes().ServeHTTP(rec, req)
	return rec
}

func sampleLead(id string) *entity.Lead {
	zoho := "Z-" + id
	return &entity.Lead{
		ID:                 id,
		Name:               "Asha Rao",
		Email:              "asha@example.com",
		Source:             "business-website",
		Status:             entity.LeadStatusPushed,
		ZohoLeadID:         &zoho,
		LeadScore:          72,
		QualificationLevel: "Hot",
		Priority:           "High",
		ConversionValue:    8000,
		CreatedAt:          time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

// TestAdminListLeadsFilters - query string becomes the repository filter
func TestAdminListLeadsFilters(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("ListLeads", mock.Anything, entity.LeadFilter{
		Status: "failed", Source: "healthcare-software-development", Qualification: "Hot", Limit: 20, Offset: 40,
	}).Return([]*entity.Lead{sampleLead("l1")}, nil)

	rec := serveAdmin(svc, http.MethodGet, "/leads?status=failed&source=healthcare-software-development&qualification=Hot&limit=20&offset=40", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data  []entity.Lead `json:"data"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "l1", body.Data[0].ID)
	svc.AssertExpectations(t)
}

func TestAdminListLeadsBadLimit(t *testing.T) {
	svc := new(MockAdminService)

	rec := serveAdmin(svc, http.MethodGet, "/leads?limit=abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), usecase.CodeValidation)
	svc.AssertNotCalled(t, "ListLeads", mock.Anything, mock.Anything)
}

func TestAdminGetLead(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("GetLead", mock.Anything, "l1").Return(sampleLead("l1"), nil)
	svc.On("GetLead", mock.Anything, "missing").Return(nil, &usecase.DomainError{Code: usecase.CodeNotFound, Message: "lead not found"})

	rec := serveAdmin(svc, http.MethodGet, "/leads/l1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"zohoLeadId":"Z-l1"`)

	rec = serveAdmin(svc, http.MethodGet, "/leads/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), usecase.CodeNotFound)
}

func TestAdminUpdateLead(t *testing.T) {
	svc := new(MockAdminService)
	status := entity.LeadStatusFailed
	updated := sampleLead("l1")
	updated.Status = status
	svc.On("UpdateLead", mock.Anything, "l1", usecase.LeadPatch{Status: &status}).Return(updated, nil)

	rec := serveAdmin(svc, http.MethodPatch, "/leads/l1", `{"status":"failed"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"failed"`)
	svc.AssertExpectations(t)

	rec = serveAdmin(svc, http.MethodPatch, "/leads/l1", `{"status":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestAdminExportPagesThroughLeads - export keeps reading while pages come back full
func TestAdminExportPagesThroughLeads(t *testing.T) {
	svc := new(MockAdminService)
	full := make([]*entity.Lead, exportPageSize)
	for i := range full {
		full[i] = sampleLead(fmt.Sprintf("l%d", i))
	}
	svc.On("ListLeads", mock.Anything, mock.MatchedBy(func(f entity.LeadFilter) bool {
		return f.Offset == 0 && f.Limit == exportPageSize && f.Source == "business-website"
	})).Return(full, nil).Once()
	svc.On("ListLeads", mock.Anything, mock.MatchedBy(func(f entity.LeadFilter) bool {
		return f.Offset == exportPageSize
	})).Return([]*entity.Lead{sampleLead("last")}, nil).Once()

	rec := serveAdmin(svc, http.MethodGet, "/leads/export.csv?source=business-website", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, exportPageSize+2)
	assert.True(t, strings.HasPrefix(lines[0], "id,created_at,name,email,phone,source"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "last,2026-03-14T10:00:00Z,Asha Rao,asha@example.com"))
	assert.Contains(t, lines[1], "Z-l0")
	svc.AssertExpectations(t)
}

func TestAdminExportEmptyWritesHeader(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("ListLeads", mock.Anything, mock.Anything).Return([]*entity.Lead{}, nil)

	rec := serveAdmin(svc, http.MethodGet, "/leads/export.csv", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "id,created_at,name,email,phone,source,campaign,budget,status,zoho_lead_id,lead_score,qualification_level,priority,conversion_value,correlation_id\n", rec.Body.String())
}

func TestAdminExportStorageError(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("ListLeads", mock.Anything, mock.Anything).Return(nil, &usecase.TechnicalError{Code: usecase.CodeDatabase, Message: "failed", Err: errors.New("down")})

	rec := serveAdmin(svc, http.MethodGet, "/leads/export.csv", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAdminRetries(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("ListRetries", mock.Anything, "dead", 0).Return([]*entity.IntegrationRetry{
		{ID: "r1", Type: entity.RetryTypeZohoLeadPush, Status: entity.RetryStatusDead, Attempts: 5},
	}, nil)
	svc.On("RequeueRetry", mock.Anything, "r1").Return(nil)
	svc.On("RequeueRetry", mock.Anything, "nope").Return(&usecase.DomainError{Code: usecase.CodeNotFound, Message: "retry not found"})

	rec := serveAdmin(svc, http.MethodGet, "/retries?status=dead", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = serveAdmin(svc, http.MethodPost, "/retries/r1/requeue", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"queued"`)

	rec = serveAdmin(svc, http.MethodPost, "/retries/nope/requeue", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestAdminSubscribers(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("ListSubscribers", mock.Anything, 10, 5).Return([]*entity.NewsletterSubscriber{
		{ID: "s1", Email: "ravi@example.com", Status: "subscribed"},
	}, nil)

	rec := serveAdmin(svc, http.MethodGet, "/newsletter?limit=10&offset=5", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ravi@example.com")
	svc.AssertExpectations(t)
}
