// Package api assembles the HTTP surface of the health summary service.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/caresynapse/healthsummary/internal/api/handlers"
	"github.com/caresynapse/healthsummary/internal/api/middleware"
	"github.com/caresynapse/healthsummary/internal/importer"
	"github.com/caresynapse/healthsummary/internal/notify"
	"github.com/caresynapse/healthsummary/internal/observability/metrics"
	"github.com/caresynapse/healthsummary/internal/store"
	"github.com/caresynapse/healthsummary/internal/summary"
)

// ServiceName identifies the service in traces and health output
const ServiceName = "healthsummary"

// Deps are the collaborators the router wires together
type Deps struct {
	Store          *store.Store
	Mapper         *importer.Mapper
	Summaries      *summary.Service
	Notes          *notify.Center
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Logger         *zap.Logger
	CORSOrigins    []string
	MaxImportBytes int64
}

// NewRouter builds the HTTP handler
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	recordHandler := handlers.NewRecordHandler(d.Store, d.Mapper, d.Notes, d.Metrics, logger, d.MaxImportBytes)
	summaryHandler := handlers.NewSummaryHandler(d.Store, d.Summaries, d.Notes, logger)
	timelineHandler := handlers.NewTimelineHandler(d.Store)
	notificationHandler := handlers.NewNotificationHandler(d.Notes)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger, d.Metrics))
	r.Use(middleware.Tracing(ServiceName))

	r.Get("/health", healthHandler)
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ready","summarizer":%t,"circuit":%q}`,
			d.Summaries.Available(), d.Summaries.BreakerState())
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(d.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/record", recordHandler.Routes())
		r.Mount("/summaries", summaryHandler.Routes())
		r.Get("/timeline", timelineHandler.Get)
		r.Mount("/notification", notificationHandler.Routes())
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","service":%q,"version":"1.0.0"}`, ServiceName)
}
