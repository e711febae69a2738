// Package handlers provides HTTP handlers for the health summary API.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/caresynapse/healthsummary/internal/api/middleware"
	"github.com/caresynapse/healthsummary/internal/importer"
	"github.com/caresynapse/healthsummary/internal/notify"
	"github.com/caresynapse/healthsummary/internal/observability/metrics"
	"github.com/caresynapse/healthsummary/internal/record"
	"github.com/caresynapse/healthsummary/internal/store"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilename  = "health-record.xlsx"
)

// Notification texts
const (
	msgSubmitted = "Health data saved locally. Proceed to generate summaries."
	msgExample   = "Example data loaded into the form."
	msgReset     = "Form has been reset."
	msgImported  = "Data imported successfully from Excel."
)

// RecordHandler handles the health record endpoints
type RecordHandler struct {
	store          *store.Store
	mapper         *importer.Mapper
	notes          *notify.Center
	metrics        *metrics.Metrics
	logger         *zap.Logger
	maxImportBytes int64
}

// NewRecordHandler creates a new handler
func NewRecordHandler(st *store.Store, mapper *importer.Mapper, notes *notify.Center, m *metrics.Metrics, logger *zap.Logger, maxImportBytes int64) *RecordHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordHandler{
		store:          st,
		mapper:         mapper,
		notes:          notes,
		metrics:        m,
		logger:         logger,
		maxImportBytes: maxImportBytes,
	}
}

// Routes returns the handler routes
func (h *RecordHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Put("/", h.Submit)
	r.Post("/reset", h.Reset)
	r.Post("/example", h.LoadExample)
	r.Post("/import", h.Import)
	r.Get("/export", h.Export)
	r.Patch("/patient", h.UpdatePatient)
	r.Post("/{section}", h.AddItem)
	r.Patch("/{section}/{id}", h.UpdateItem)
	r.Delete("/{section}/{id}", h.RemoveItem)
	return r
}

// RecordView is the current record with its summaries, if any
type RecordView struct {
	Record    record.HealthRecord `json:"record"`
	Summaries *record.AiSummaries `json:"summaries"`
	Revision  uint64              `json:"revision"`
}

// FieldUpdate sets one field
type FieldUpdate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// AddItemRequest is the body for adding an item to a section
type AddItemRequest struct {
	Fields map[string]string `json:"fields"`
}

// AddItemResponse carries the new item's identity
type AddItemResponse struct {
	ID string `json:"id"`
}

// Get handles GET /record
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view())
}

// Submit handles PUT /record
func (h *RecordHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var rec record.HealthRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.replace(rec, notify.KindSuccess, msgSubmitted)
	writeJSON(w, http.StatusOK, h.view())
}

// Reset handles POST /record/reset
func (h *RecordHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.replace(record.New(), notify.KindInfo, msgReset)
	writeJSON(w, http.StatusOK, h.view())
}

// LoadExample handles POST /record/example
func (h *RecordHandler) LoadExample(w http.ResponseWriter, r *http.Request) {
	h.replace(record.Example(), notify.KindInfo, msgExample)
	writeJSON(w, http.StatusOK, h.view())
}

// Import handles POST /record/import. The workbook is taken from the
// multipart field "file" or, for any other content type, the raw body.
func (h *RecordHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("record-handler").Start(r.Context(), "import_workbook")
	defer span.End()

	start := time.Now()
	data, err := h.readUpload(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.metrics.ObserveImport(false, time.Since(start))
			h.notes.Error("Failed to import from Excel. The file is too large.")
			jsonError(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		err = &importer.ParseError{Cause: err}
	}
	span.SetAttributes(attribute.Int("bytes", len(data)))

	var rec record.HealthRecord
	if err == nil {
		rec, err = h.mapper.Import(data)
	}
	h.metrics.ObserveImport(err == nil, time.Since(start))
	if err != nil {
		span.RecordError(err)
		h.logger.Warn("import failed",
			zap.String("request_id", middleware.GetRequestID(ctx)),
			zap.Error(err))
		h.fail(w, err)
		return
	}

	h.replace(rec, notify.KindSuccess, msgImported)
	writeJSON(w, http.StatusOK, h.view())
}

func (h *RecordHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, h.maxImportBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(body)
	}

	r.Body = body
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// Export handles GET /record/export
func (h *RecordHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.mapper.Export(&buf, h.store.Record()); err != nil {
		h.logger.Error("export failed", zap.Error(err))
		jsonError(w, "failed to export record", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exportFilename}))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// UpdatePatient handles PATCH /record/patient
func (h *RecordHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var req FieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.store.UpdatePatientField(req.Field, req.Value); err != nil {
		h.fail(w, err)
		return
	}
	h.publish()
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /record/{section}
func (h *RecordHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	section, err := record.ParseSection(chi.URLParam(r, "section"))
	if err != nil {
		h.fail(w, err)
		return
	}

	var req AddItemRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	id, err := h.store.AddItem(section, req.Fields)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.publish()
	writeJSON(w, http.StatusCreated, AddItemResponse{ID: id})
}

// UpdateItem handles PATCH /record/{section}/{id}
func (h *RecordHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	section, err := record.ParseSection(chi.URLParam(r, "section"))
	if err != nil {
		h.fail(w, err)
		return
	}

	var req FieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.store.UpdateItemField(section, chi.URLParam(r, "id"), req.Field, req.Value); err != nil {
		h.fail(w, err)
		return
	}
	h.publish()
	w.WriteHeader(http.StatusNoContent)
}

// RemoveItem handles DELETE /record/{section}/{id}
func (h *RecordHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	section, err := record.ParseSection(chi.URLParam(r, "section"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.store.RemoveItem(section, chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	h.publish()
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordHandler) replace(rec record.HealthRecord, kind notify.Kind, message string) {
	h.store.Replace(rec)
	h.notes.Post(kind, message)
	h.publish()
}

func (h *RecordHandler) view() RecordView {
	snap := h.store.Snapshot()
	v := RecordView{Record: snap.Record, Revision: snap.Revision}
	if sum, ok := h.store.Summaries(); ok {
		v.Summaries = &sum
	}
	return v
}

// publish exports the record's shape as metrics
func (h *RecordHandler) publish() {
	if h.metrics == nil {
		return
	}
	snap := h.store.Snapshot()
	counts := make(map[string]int, len(record.Sections()))
	for _, s := range record.Sections() {
		counts[string(s)] = snap.Record.Len(s)
	}
	h.metrics.SetRecordState(counts, snap.Revision)
}

func (h *RecordHandler) fail(w http.ResponseWriter, err error) {
	code, msg := errorStatus(err)
	var parseErr *importer.ParseError
	if errors.As(err, &parseErr) {
		h.notes.Error(msg)
	}
	jsonError(w, msg, code)
}
