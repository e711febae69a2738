package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/caresynapse/healthsummary/internal/config"
	"github.com/caresynapse/healthsummary/internal/infrastructure/gemini"
	"github.com/caresynapse/healthsummary/internal/observability/metrics"
	"github.com/caresynapse/healthsummary/internal/summary"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.IsDev() {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

// cliLogger writes warnings and errors to stderr so command output stays
// clean on stdout
func cliLogger() *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	zcfg.OutputPaths = []string{"stderr"}
	logger, err := zcfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return zap.NewNop()
	}
	return logger
}

// newSummaryService wires the Gemini client when a key is configured.
// Without one the service hands out placeholder summaries.
func newSummaryService(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (*summary.Service, error) {
	var gen summary.Generator
	if cfg.SummariesEnabled() {
		client, err := gemini.New(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}, logger)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		gen = client
	}

	scfg := summary.DefaultConfig()
	scfg.Temperature = cfg.SummaryTemperature
	scfg.Metrics = m
	svc, err := summary.NewService(gen, scfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create summary service: %w", err)
	}
	return svc, nil
}
