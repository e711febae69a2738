package handlers

import (
	"net/http"

	"github.com/caresynapse/healthsummary/internal/store"
	"github.com/caresynapse/healthsummary/internal/timeline"
)

// TimelineHandler serves the record's timeline projection
type TimelineHandler struct {
	store *store.Store
}

// NewTimelineHandler creates a new handler
func NewTimelineHandler(st *store.Store) *TimelineHandler {
	return &TimelineHandler{store: st}
}

// Get handles GET /timeline. The projection is computed on every call.
func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"events": timeline.Project(h.store.Record()),
	})
}
