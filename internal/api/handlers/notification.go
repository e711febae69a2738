package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/caresynapse/healthsummary/internal/notify"
)

// NotificationHandler exposes the current transient notification
type NotificationHandler struct {
	notes *notify.Center
	now   func() time.Time
}

// NewNotificationHandler creates a new handler
func NewNotificationHandler(notes *notify.Center) *NotificationHandler {
	return &NotificationHandler{notes: notes, now: time.Now}
}

// Routes returns the handler routes
func (h *NotificationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Delete("/", h.Dismiss)
	return r
}

// Get handles GET /notification
func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, ok := h.notes.Current(h.now())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Dismiss handles DELETE /notification
func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.notes.Dismiss()
	w.WriteHeader(http.StatusNoContent)
}
