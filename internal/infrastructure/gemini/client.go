// Package gemini adapts the Gemini API to the summarizer boundary.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/caresynapse/healthsummary/internal/summary"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("gemini returned no text")

// Config holds client configuration
type Config struct {
	APIKey string
	Model  string
}

// Client generates text with a Gemini model
type Client struct {
	models *genai.Models
	model  string
	logger *zap.Logger
}

// New creates a client for the Gemini Developer API
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		models: c.Models,
		model:  cfg.Model,
		logger: logger.With(zap.String("model", cfg.Model)),
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt to the model and returns its raw text
func (c *Client) Generate(ctx context.Context, prompt string, opts summary.Options) (string, error) {
	ctx, span := otel.Tracer("gemini-client").Start(ctx, "generate_content")
	defer span.End()
	span.SetAttributes(attribute.String("model", c.model))

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), generateConfig(opts))
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	text := resp.Text()
	if text == "" {
		span.RecordError(ErrEmptyResponse)
		return "", ErrEmptyResponse
	}

	if u := resp.UsageMetadata; u != nil {
		c.logger.Debug("gemini usage",
			zap.Int32("prompt_tokens", u.PromptTokenCount),
			zap.Int32("response_tokens", u.CandidatesTokenCount))
	}
	return text, nil
}

func generateConfig(opts summary.Options) *genai.GenerateContentConfig {
	temperature := opts.Temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if opts.ResponseFormat == summary.ResponseFormatJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}
