package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/entity"
	"github.com/xavierca1/agency-leads/internal/infra/http/middleware"
	"github.com/xavierca1/agency-leads/internal/usecase"
)

type NewsletterSubscriber interface {
	Execute(ctx context.Context, input usecase.NewsletterInput) (*entity.NewsletterSubscriber, error)
}

type NewsletterHandler struct {
	uc     NewsletterSubscriber
	logger *zap.Logger
}

type NewsletterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func NewNewsletterHandler(uc NewsletterSubscriber, logger *zap.Logger) *NewsletterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsletterHandler{uc: uc, logger: logger}
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	correlationID := middleware.CorrelationID(r.Context())

	var req usecase.NewsletterInput
	r.Body = http.MaxBytesReader(w, r.Body, maxLeadBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Success:       false,
			Error:         "Invalid JSON",
			Code:          usecase.CodeInvalidJSON,
			CorrelationID: correlationID,
		})
		return
	}

	if _, err := h.uc.Execute(r.Context(), req); err != nil {
		if !writeUseCaseError(w, err, correlationID) {
			h.logger.Error("newsletter subscribe failed",
				zap.String("correlation_id", correlationID),
				zap.Error(err),
			)
		}
		return
	}

	writeJSON(w, http.StatusOK, NewsletterResponse{Success: true})
}
