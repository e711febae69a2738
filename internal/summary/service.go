// Package summary turns a health record into clinician and patient
// summaries through an external text generator.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/caresynapse/healthsummary/internal/observability/metrics"
	"github.com/caresynapse/healthsummary/internal/record"
	"github.com/caresynapse/healthsummary/internal/store"
	"github.com/caresynapse/healthsummary/pkg/circuitbreaker"
)

// ResponseFormatJSON asks the generator for a JSON document
const ResponseFormatJSON = "json"

// DefaultTemperature keeps summaries close to the data
const DefaultTemperature float32 = 0.3

// Options are passed to the generator with every prompt
type Options struct {
	ResponseFormat string
	Temperature    float32
}

// Generator is the external summarizer boundary
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Target is where Refresh reads snapshots from and writes summaries to
type Target interface {
	Snapshot() store.Snapshot
	SetSummariesFor(revision uint64, sum record.AiSummaries) error
}

// Placeholder returns the summaries used when no credential is configured
func Placeholder() record.AiSummaries {
	return record.AiSummaries{
		DoctorSummary:  "Doctor summary generation unavailable (API key missing).",
		PatientSummary: "Patient summary generation unavailable (API key missing).",
		Alerts:         []string{"Alert generation unavailable (API key missing)."},
	}
}

// Config configures a Service
type Config struct {
	Temperature float32
	Breaker     circuitbreaker.Config
	Metrics     *metrics.Metrics
}

// DefaultConfig returns the service defaults
func DefaultConfig() Config {
	return Config{
		Temperature: DefaultTemperature,
		Breaker:     circuitbreaker.DefaultConfig("summarizer"),
	}
}

// Service validates a record, calls the generator and checks its output.
// At most one call is outstanding at a time.
type Service struct {
	gen      Generator
	opts     Options
	breaker  *circuitbreaker.CircuitBreaker
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *zap.Logger
	inFlight atomic.Bool
}

// NewService creates a service. A nil generator means no credential is
// configured and every call yields Placeholder summaries.
func NewService(gen Generator, cfg Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	bcfg := cfg.Breaker
	hook := bcfg.OnStateChange
	bcfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		cfg.Metrics.SetBreakerState(name, circuitbreaker.StateValue(to))
		if hook != nil {
			hook(name, from, to)
		}
	}
	breaker, err := circuitbreaker.New(bcfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create circuit breaker: %w", err)
	}
	cfg.Metrics.SetBreakerState(breaker.Name(), circuitbreaker.StateValue(breaker.State()))

	if gen == nil {
		logger.Warn("summarizer API key not configured, summaries will be placeholders")
	}

	return &Service{
		gen: gen,
		opts: Options{
			ResponseFormat: ResponseFormatJSON,
			Temperature:    cfg.Temperature,
		},
		breaker:  breaker,
		validate: validator.New(),
		metrics:  cfg.Metrics,
		logger:   logger,
	}, nil
}

// Available reports whether a real generator is configured
func (s *Service) Available() bool {
	return s.gen != nil
}

// Busy reports whether a summarization call is outstanding
func (s *Service) Busy() bool {
	return s.inFlight.Load()
}

// BreakerState returns the state of the summarizer circuit
func (s *Service) BreakerState() circuitbreaker.State {
	return s.breaker.State()
}

// Summarize produces summaries for rec. The patient name is checked before
// anything is sent. Failures are typed: *ValidationError, *RemoteAuthError,
// *RemoteError, *MalformedResponseError, *UnexpectedResponseShapeError or
// ErrSummaryInProgress. Nothing is retried.
func (s *Service) Summarize(ctx context.Context, rec record.HealthRecord) (record.AiSummaries, error) {
	ctx, span := otel.Tracer("summary-service").Start(ctx, "summarize")
	defer span.End()

	if err := s.checkPatient(rec.PatientInfo); err != nil {
		s.metrics.ObserveSummary(metrics.OutcomeInvalid, 0)
		return record.AiSummaries{}, err
	}

	if s.gen == nil {
		s.metrics.ObserveSummary(metrics.OutcomePlaceholder, 0)
		return Placeholder(), nil
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		s.metrics.ObserveSummary(metrics.OutcomeBusy, 0)
		return record.AiSummaries{}, ErrSummaryInProgress
	}
	defer s.inFlight.Store(false)

	prompt, err := BuildPrompt(rec)
	if err != nil {
		return record.AiSummaries{}, err
	}
	span.SetAttributes(attribute.Int("prompt_bytes", len(prompt)))

	start := time.Now()
	raw, err := circuitbreaker.Execute(ctx, s.breaker, func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, prompt, s.opts)
	})
	elapsed := time.Since(start)
	if err != nil {
		err = classifyRemote(err)
		s.fail(span, err, elapsed)
		return record.AiSummaries{}, err
	}

	sum, err := ParseResponse(raw)
	if err != nil {
		s.fail(span, err, elapsed)
		return record.AiSummaries{}, err
	}

	s.metrics.ObserveSummary(metrics.OutcomeSuccess, elapsed)
	span.SetAttributes(attribute.Int("alerts", len(sum.Alerts)), attribute.Bool("has_alerts", sum.HasAlerts()))
	s.logger.Info("summaries generated",
		zap.Duration("duration", elapsed),
		zap.Int("alerts", len(sum.Alerts)))
	return sum, nil
}

// Refresh summarizes the current snapshot of target and stores the result
// only if target is still at that snapshot's revision. On any failure the
// summaries held by target are left untouched.
func (s *Service) Refresh(ctx context.Context, target Target) (record.AiSummaries, error) {
	snap := target.Snapshot()

	sum, err := s.Summarize(ctx, snap.Record)
	if err != nil {
		return record.AiSummaries{}, err
	}

	if err := target.SetSummariesFor(snap.Revision, sum); err != nil {
		if errors.Is(err, store.ErrStaleSnapshot) {
			s.metrics.ObserveSummary(metrics.OutcomeStale, 0)
		}
		return record.AiSummaries{}, err
	}
	return sum, nil
}

func (s *Service) checkPatient(p record.PatientInfo) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := s.validate.Struct(p); err != nil {
		return &ValidationError{Field: "name", Cause: ErrMissingPatientName}
	}
	return nil
}

func (s *Service) fail(span trace.Span, err error, elapsed time.Duration) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.ObserveSummary(outcomeOf(err), elapsed)
	s.logger.Error("summary generation failed",
		zap.String("outcome", outcomeOf(err)),
		zap.Duration("duration", elapsed),
		zap.Error(err))
}

func classifyRemote(err error) error {
	if strings.Contains(err.Error(), authFailureMarker) {
		return &RemoteAuthError{Cause: err}
	}
	return &RemoteError{Cause: err}
}

func outcomeOf(err error) string {
	var (
		authErr   *RemoteAuthError
		malformed *MalformedResponseError
		shape     *UnexpectedResponseShapeError
	)
	switch {
	case errors.As(err, &authErr):
		return metrics.OutcomeAuth
	case errors.As(err, &malformed):
		return metrics.OutcomeMalformed
	case errors.As(err, &shape):
		return metrics.OutcomeShape
	default:
		return metrics.OutcomeRemote
	}
}
