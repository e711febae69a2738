package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/caresynapse/healthsummary/internal/api/middleware"
	"github.com/caresynapse/healthsummary/internal/notify"
	"github.com/caresynapse/healthsummary/internal/record"
	"github.com/caresynapse/healthsummary/internal/store"
	"github.com/caresynapse/healthsummary/internal/summary"
)

const (
	msgSummarized  = "AI summaries generated successfully!"
	msgPlaceholder = "AI summaries are unavailable because no API key is configured."
)

// SummaryHandler handles the summary endpoints
type SummaryHandler struct {
	store  *store.Store
	svc    *summary.Service
	notes  *notify.Center
	logger *zap.Logger
}

// NewSummaryHandler creates a new handler
func NewSummaryHandler(st *store.Store, svc *summary.Service, notes *notify.Center, logger *zap.Logger) *SummaryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryHandler{store: st, svc: svc, notes: notes, logger: logger}
}

// Routes returns the handler routes
func (h *SummaryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Post("/", h.Generate)
	r.Delete("/", h.Clear)
	return r
}

// SummaryView is the response for summary endpoints
type SummaryView struct {
	Summaries record.AiSummaries `json:"summaries"`
	HasAlerts bool               `json:"hasAlerts"`
	Available bool               `json:"available"`
}

// Get handles GET /summaries
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	sum, ok := h.store.Summaries()
	if !ok {
		jsonError(w, "no summaries generated", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.viewOf(sum))
}

// Generate handles POST /summaries
func (h *SummaryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Refresh(r.Context(), h.store)
	if err != nil {
		code, msg := errorStatus(err)
		h.logger.Warn("summary request failed",
			zap.Int("status", code),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.notes.Error(msg)
		jsonError(w, msg, code)
		return
	}

	if h.svc.Available() {
		h.notes.Success(msgSummarized)
	} else {
		h.notes.Warning(msgPlaceholder)
	}
	writeJSON(w, http.StatusOK, h.viewOf(sum))
}

// Clear handles DELETE /summaries
func (h *SummaryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.ClearSummaries()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SummaryHandler) viewOf(sum record.AiSummaries) SummaryView {
	return SummaryView{
		Summaries: sum,
		HasAlerts: sum.HasAlerts(),
		Available: h.svc.Available(),
	}
}
