package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresynapse/healthsummary/internal/api/handlers"
	"github.com/caresynapse/healthsummary/internal/importer"
	"github.com/caresynapse/healthsummary/internal/notify"
	"github.com/caresynapse/healthsummary/internal/observability/metrics"
	"github.com/caresynapse/healthsummary/internal/record"
	"github.com/caresynapse/healthsummary/internal/store"
	"github.com/caresynapse/healthsummary/internal/summary"
)

const generated = `{"doctorSummary":"**Subjective**","patientSummary":"Plain","alerts":["Check potassium"]}`

type stubGenerator struct {
	out string
	err error
}

func (g stubGenerator) Generate(ctx context.Context, prompt string, opts summary.Options) (string, error) {
	return g.out, g.err
}

type testServer struct {
	handler http.Handler
	store   *store.Store
	notes   *notify.Center
}

func newTestServer(t *testing.T, gen summary.Generator) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	cfg := summary.DefaultConfig()
	cfg.Metrics = m
	svc, err := summary.NewService(gen, cfg, nil)
	require.NoError(t, err)

	st := store.New(nil)
	notes := notify.NewCenter(0, 0)
	h := NewRouter(Deps{
		Store:          st,
		Mapper:         importer.NewMapper(),
		Summaries:      svc,
		Notes:          notes,
		Metrics:        m,
		Gatherer:       reg,
		CORSOrigins:    []string{"*"},
		MaxImportBytes: 1 << 20,
	})
	return &testServer{handler: h, store: st, notes: notes}
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(t *testing.T, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return s.do(t, method, path, body, "application/json")
}

func (s *testServer) notification(t *testing.T) notify.Notification {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/v1/notification", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var n notify.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	return n
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"healthsummary","version":"1.0.0"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/ready", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","summarizer":false,"circuit":"closed"}`, rec.Body.String())
}

func TestGetRecord_Initial(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/record", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[handlers.RecordView](t, rec)
	assert.Nil(t, view.Summaries)
	assert.NotEmpty(t, view.Record.PatientInfo.ID)
	assert.NotNil(t, view.Record.LabResults)
	assert.Contains(t, rec.Body.String(), `"summaries":null`)

	rec = s.do(t, http.MethodGet, "/api/v1/notification", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSubmit_ClearsSummariesAndNotifies(t *testing.T) {
	s := newTestServer(t, nil)
	s.store.SetSummaries(summary.Placeholder())

	rec := s.doJSON(t, http.MethodPut, "/api/v1/record", record.Example())
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[handlers.RecordView](t, rec)
	assert.Nil(t, view.Summaries)
	assert.Equal(t, "Jane Doe", view.Record.PatientInfo.Name)

	n := s.notification(t)
	assert.Equal(t, notify.KindSuccess, n.Kind)
	assert.Equal(t, "Health data saved locally. Proceed to generate summaries.", n.Message)
}

func TestSubmit_InvalidBody(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPut, "/api/v1/record", strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetAndExample(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/record/example", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Example data loaded into the form.", s.notification(t).Message)
	assert.Equal(t, notify.KindInfo, s.notification(t).Kind)

	rec = s.do(t, http.MethodPost, "/api/v1/record/reset", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[handlers.RecordView](t, rec).Record.PatientInfo.Name)
	assert.Equal(t, "Form has been reset.", s.notification(t).Message)

	rec = s.do(t, http.MethodDelete, "/api/v1/notification", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/notification", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestItemEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.doJSON(t, http.MethodPost, "/api/v1/record/vitals", handlers.AddItemRequest{Fields: map[string]string{"value": "72"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[handlers.AddItemResponse](t, rec).ID
	require.NotEmpty(t, id)

	rec = s.doJSON(t, http.MethodPatch, "/api/v1/record/vitals/"+id, handlers.FieldUpdate{Field: "unit", Value: "bpm"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	vitals := s.store.Record().Vitals
	require.Len(t, vitals, 1)
	assert.Equal(t, record.VitalSign{ID: id, Type: record.DefaultVitalType, Value: "72", Unit: "bpm"}, vitals[0])

	rec = s.doJSON(t, http.MethodPatch, "/api/v1/record/patient", handlers.FieldUpdate{Field: "name", Value: "Ann"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Ann", s.store.Record().PatientInfo.Name)

	rec = s.do(t, http.MethodDelete, "/api/v1/record/vitals/"+id, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.store.Record().Vitals)
}

func TestItemEndpoints_Errors(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/v1/record/allergies", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[handlers.AddItemResponse](t, rec).ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown section", http.MethodPost, "/api/v1/record/pets", nil, http.StatusBadRequest},
		{"unknown field", http.MethodPatch, "/api/v1/record/allergies/" + id, handlers.FieldUpdate{Field: "color", Value: "x"}, http.StatusBadRequest},
		{"id is not editable", http.MethodPatch, "/api/v1/record/allergies/" + id, handlers.FieldUpdate{Field: "id", Value: "x"}, http.StatusBadRequest},
		{"missing item", http.MethodDelete, "/api/v1/record/allergies/nope", nil, http.StatusNotFound},
		{"unknown patient field", http.MethodPatch, "/api/v1/record/patient", handlers.FieldUpdate{Field: "ssn", Value: "x"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.doJSON(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func exportWorkbook(t *testing.T, s *testServer) []byte {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/v1/record/export", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "health-record.xlsx")
	return rec.Body.Bytes()
}

func TestExportImport_RawBody(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/v1/record/example", nil, "")
	want := s.store.Record().WithoutIDs()
	data := exportWorkbook(t, s)
	s.do(t, http.MethodPost, "/api/v1/record/reset", nil, "")

	rec := s.do(t, http.MethodPost, "/api/v1/record/import", bytes.NewReader(data), "application/octet-stream")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, want, s.store.Record().WithoutIDs())
	assert.Equal(t, "Data imported successfully from Excel.", s.notification(t).Message)
}

func TestImport_Multipart(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/v1/record/example", nil, "")
	data := exportWorkbook(t, s)
	s.do(t, http.MethodPost, "/api/v1/record/reset", nil, "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "record.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := s.do(t, http.MethodPost, "/api/v1/record/import", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Jane Doe", s.store.Record().PatientInfo.Name)
}

func TestImport_FailureLeavesRecordIntact(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/v1/record/example", nil, "")
	s.store.SetSummaries(summary.Placeholder())
	before := s.store.Record()

	rec := s.do(t, http.MethodPost, "/api/v1/record/import", strings.NewReader("not a workbook"), "application/octet-stream")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	msg := decode[handlers.ErrorResponse](t, rec).Error
	assert.True(t, strings.HasPrefix(msg, "Failed to import from Excel. Ensure the file is valid and follows the expected format. Error: "), msg)
	assert.Equal(t, before, s.store.Record())
	_, ok := s.store.Summaries()
	assert.True(t, ok)

	n := s.notification(t)
	assert.Equal(t, notify.KindError, n.Kind)
	assert.Equal(t, msg, n.Message)
}

func TestImport_TooLarge(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/record/import", bytes.NewReader(make([]byte, 2<<20)), "application/octet-stream")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSummaries_Generate(t *testing.T) {
	s := newTestServer(t, stubGenerator{out: generated})
	s.do(t, http.MethodPost, "/api/v1/record/example", nil, "")

	rec := s.do(t, http.MethodGet, "/api/v1/summaries", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/summaries", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[handlers.SummaryView](t, rec)
	assert.True(t, view.HasAlerts)
	assert.True(t, view.Available)
	assert.Equal(t, []string{"Check potassium"}, view.Summaries.Alerts)
	assert.Equal(t, "AI summaries generated successfully!", s.notification(t).Message)

	rec = s.do(t, http.MethodGet, "/api/v1/record", nil, "")
	got := decode[handlers.RecordView](t, rec)
	require.NotNil(t, got.Summaries)
	assert.Equal(t, "Plain", got.Summaries.PatientSummary)

	rec = s.do(t, http.MethodDelete, "/api/v1/summaries", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := s.store.Summaries()
	assert.False(t, ok)
}

func TestSummaries_Placeholder(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/v1/record/example", nil, "")

	rec := s.do(t, http.MethodPost, "/api/v1/summaries", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[handlers.SummaryView](t, rec)
	assert.False(t, view.Available)
	assert.Equal(t, summary.Placeholder(), view.Summaries)
	assert.Equal(t, notify.KindWarning, s.notification(t).Kind)
}

func TestSummaries_Failures(t *testing.T) {
	tests := []struct {
		name    string
		gen     summary.Generator
		setup   func(s *testServer)
		code    int
		message string
	}{
		{
			name:    "missing patient name",
			gen:     stubGenerator{out: generated},
			setup:   func(s *testServer) {},
			code:    http.StatusUnprocessableEntity,
			message: "Patient information is incomplete. Please fill in at least the patient's name.",
		},
		{
			name:    "invalid key",
			gen:     stubGenerator{err: errors.New("API key not valid. Please pass a valid API key.")},
			setup:   func(s *testServer) { s.store.Replace(record.Example()) },
			code:    http.StatusBadGateway,
			message: "Invalid API Key for Gemini. Please check your configuration.",
		},
		{
			name:    "unexpected shape",
			gen:     stubGenerator{out: `{"doctorSummary":"S","patientSummary":"P","alerts":["x",5]}`},
			setup:   func(s *testServer) { s.store.Replace(record.Example()) },
			code:    http.StatusBadGateway,
			message: "Failed to generate summaries: AI response did not match expected structure.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.gen)
			tt.setup(s)

			rec := s.do(t, http.MethodPost, "/api/v1/summaries", nil, "")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decode[handlers.ErrorResponse](t, rec).Error)

			n := s.notification(t)
			assert.Equal(t, notify.KindError, n.Kind)
			assert.Equal(t, tt.message, n.Message)
		})
	}
}

func TestTimeline(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/v1/record/example", nil, "")

	rec := s.do(t, http.MethodGet, "/api/v1/timeline", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Events []struct {
			Date  string `json:"date"`
			Title string `json:"title"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Events)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/v1/record/example", nil, "")

	rec := s.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `record_items{section="labResults"}`)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
