package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/infra/http/middleware"
	"github.com/xavierca1/agency-leads/internal/usecase"
)

const maxLeadBodyBytes = 64 << 10

type LeadSubmitter interface {
	Execute(ctx context.Context, input usecase.SubmitLeadInput) (*usecase.SubmitLeadOutput, error)
	RecordFailure(ctx context.Context, correlationID, event string, cause error)
}

type LeadHandler struct {
	uc     LeadSubmitter
	logger *zap.Logger
}

func NewLeadHandler(uc LeadSubmitter, logger *zap.Logger) *LeadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{uc: uc, logger: logger}
}

func (h *LeadHandler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.CorrelationID(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			h.fail(ctx, w, correlationID, fmt.Errorf("panic: %v", rec))
		}
	}()

	var payload usecase.LeadPayload
	r.Body = http.MaxBytesReader(w, r.Body, maxLeadBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Success:       false,
			Error:         "Invalid JSON",
			Code:          usecase.CodeInvalidJSON,
			CorrelationID: correlationID,
		})
		return
	}

	out, err := h.uc.Execute(ctx, usecase.SubmitLeadInput{
		Payload:       payload,
		ClientIP:      getClientIP(r),
		UserAgent:     r.UserAgent(),
		CorrelationID: correlationID,
	})
	if err != nil {
		if usecase.IsDomainError(err) {
			writeUseCaseError(w, err, correlationID)
			return
		}
		h.fail(ctx, w, correlationID, err)
		return
	}

	middleware.RecordLeadReceived(out.Source, out.QualificationLevel, out.LeadScore)
	if out.ZohoLeadID != nil {
		middleware.RecordCRMPush("pushed", 1)
	} else {
		middleware.RecordCRMPush("failed", 1)
		middleware.RecordIntegrationError("zoho")
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *LeadHandler) fail(ctx context.Context, w http.ResponseWriter, correlationID string, err error) {
	h.logger.Error("lead submission failed",
		zap.String("correlation_id", correlationID),
		zap.Error(err),
	)
	middleware.RecordIntegrationError("api")
	h.uc.RecordFailure(ctx, correlationID, "lead_submit_failed", err)
	writeUseCaseError(w, err, correlationID)
}
