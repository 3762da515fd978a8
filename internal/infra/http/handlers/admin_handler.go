package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jszwec/csvutil"
	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/entity"
	"github.com/xavierca1/agency-leads/internal/infra/http/middleware"
	"github.com/xavierca1/agency-leads/internal/usecase"
)

const exportPageSize = 500

type AdminService interface {
	ListLeads(ctx context.Context, f entity.LeadFilter) ([]*entity.Lead, error)
	GetLead(ctx context.Context, id string) (*entity.Lead, error)
	UpdateLead(ctx context.Context, id string, patch usecase.LeadPatch) (*entity.Lead, error)
	ListRetries(ctx context.Context, status string, limit int) ([]*entity.IntegrationRetry, error)
	RequeueRetry(ctx context.Context, id string) error
	ListSubscribers(ctx context.Context, limit, offset int) ([]*entity.NewsletterSubscriber, error)
}

type AdminHandler struct {
	svc    AdminService
	logger *zap.Logger
}

type listResponse struct {
	Data   any `json:"data"`
	Count  int `json:"count"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

type leadCSVRow struct {
	ID                 string    `csv:"id"`
	CreatedAt          time.Time `csv:"created_at"`
	Name               string    `csv:"name"`
	Email              string    `csv:"email"`
	Phone              string    `csv:"phone"`
	Source             string    `csv:"source"`
	Campaign           string    `csv:"campaign"`
	Budget             string    `csv:"budget"`
	Status             string    `csv:"status"`
	ZohoLeadID         string    `csv:"zoho_lead_id"`
	LeadScore          int       `csv:"lead_score"`
	QualificationLevel string    `csv:"qualification_level"`
	Priority           string    `csv:"priority"`
	ConversionValue    int       `csv:"conversion_value"`
	CorrelationID      string    `csv:"correlation_id"`
}

func NewAdminHandler(svc AdminService, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{svc: svc, logger: logger}
}

// Routes is mounted under /api/admin behind AdminAuth.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/leads", h.ListLeads)
	r.Get("/leads/export.csv", h.ExportLeads)
	r.Get("/leads/{id}", h.GetLead)
	r.Patch("/leads/{id}", h.UpdateLead)
	r.Get("/retries", h.ListRetries)
	r.Post("/retries/{id}/requeue", h.RequeueRetry)
	r.Get("/newsletter", h.ListSubscribers)
	return r
}

func (h *AdminHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	f, ok := h.leadFilter(w, r)
	if !ok {
		return
	}
	leads, err := h.svc.ListLeads(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: leads, Count: len(leads), Limit: f.Limit, Offset: f.Offset})
}

func (h *AdminHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.svc.GetLead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *AdminHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	var patch usecase.LeadPatch
	r.Body = http.MaxBytesReader(w, r.Body, maxLeadBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Success:       false,
			Error:         "Invalid JSON",
			Code:          usecase.CodeInvalidJSON,
			CorrelationID: middleware.CorrelationID(r.Context()),
		})
		return
	}

	lead, err := h.svc.UpdateLead(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// ExportLeads pages through every lead matching the filter and writes one CSV.
func (h *AdminHandler) ExportLeads(w http.ResponseWriter, r *http.Request) {
	f, ok := h.leadFilter(w, r)
	if !ok {
		return
	}
	f.Limit = exportPageSize
	f.Offset = 0

	var rows []leadCSVRow
	for {
		page, err := h.svc.ListLeads(r.Context(), f)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		for _, l := range page {
			rows = append(rows, toCSVRow(l))
		}
		if len(page) < exportPageSize {
			break
		}
		f.Offset += exportPageSize
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	var err error
	if len(rows) == 0 {
		err = enc.EncodeHeader(leadCSVRow{})
	} else {
		err = enc.Encode(rows)
	}
	cw.Flush()
	if err == nil {
		err = cw.Error()
	}
	if err != nil {
		h.logger.Error("lead csv export failed", zap.Error(err))
	}
}

func (h *AdminHandler) ListRetries(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	retries, err := h.svc.ListRetries(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: retries, Count: len(retries)})
}

func (h *AdminHandler) RequeueRetry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.RequeueRetry(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("retry requeued by admin", zap.String("retry_id", id))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id, "status": entity.RetryStatusQueued})
}

func (h *AdminHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}
	subs, err := h.svc.ListSubscribers(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: subs, Count: len(subs), Limit: limit, Offset: offset})
}

func (h *AdminHandler) leadFilter(w http.ResponseWriter, r *http.Request) (entity.LeadFilter, bool) {
	q := r.URL.Query()
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return entity.LeadFilter{}, false
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return entity.LeadFilter{}, false
	}
	return entity.LeadFilter{
		Status:        q.Get("status"),
		Source:        q.Get("source"),
		Qualification: q.Get("qualification"),
		Limit:         limit,
		Offset:        offset,
	}, true
}

func (h *AdminHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	correlationID := middleware.CorrelationID(r.Context())
	if !writeUseCaseError(w, err, correlationID) {
		h.logger.Error("admin request failed",
			zap.String("path", r.URL.Path),
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
	}
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "Validation failed",
			Code:    usecase.CodeValidation,
			Fields:  []usecase.ValidationError{{Field: name, Message: "must be a non-negative integer"}},
		})
		return 0, false
	}
	return n, true
}

func toCSVRow(l *entity.Lead) leadCSVRow {
	row := leadCSVRow{
		ID:                 l.ID,
		CreatedAt:          l.CreatedAt,
		Name:               l.Name,
		Email:              l.Email,
		Phone:              l.Phone,
		Source:             l.Source,
		Campaign:           l.Campaign,
		Budget:             l.Budget,
		Status:             l.Status,
		LeadScore:          l.LeadScore,
		QualificationLevel: l.QualificationLevel,
		Priority:           l.Priority,
		ConversionValue:    l.ConversionValue,
		CorrelationID:      l.CorrelationID,
	}
	if l.ZohoLeadID != nil {
		row.ZohoLeadID = *l.ZohoLeadID
	}
	return row
}
