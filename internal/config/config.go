// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service settings
type Config struct {
	Port               int           `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	GeminiAPIKey       string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel        string        `mapstructure:"GEMINI_MODEL"`
	SummaryTemperature float32       `mapstructure:"SUMMARY_TEMPERATURE"`
	MaxImportBytes     int64         `mapstructure:"MAX_IMPORT_BYTES"`
	NotifyTTL          time.Duration `mapstructure:"NOTIFY_TTL"`
	NotifyErrorTTL     time.Duration `mapstructure:"NOTIFY_ERROR_TTL"`
	OTLPEndpoint       string        `mapstructure:"OTLP_ENDPOINT"`
	TraceSampleRate    float64       `mapstructure:"TRACE_SAMPLE_RATE"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
}

var keys = []string{
	"PORT",
	"ENV",
	"LOG_LEVEL",
	"GEMINI_API_KEY",
	"GEMINI_MODEL",
	"SUMMARY_TEMPERATURE",
	"MAX_IMPORT_BYTES",
	"NOTIFY_TTL",
	"NOTIFY_ERROR_TTL",
	"OTLP_ENDPOINT",
	"TRACE_SAMPLE_RATE",
	"CORS_ORIGINS",
}

// Load reads configuration from the environment and an optional .env file
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("SUMMARY_TEMPERATURE", 0.3)
	v.SetDefault("MAX_IMPORT_BYTES", 10<<20)
	v.SetDefault("NOTIFY_TTL", "3s")
	v.SetDefault("NOTIFY_ERROR_TTL", "5s")
	v.SetDefault("TRACE_SAMPLE_RATE", 1.0)
	v.SetDefault("CORS_ORIGINS", "*")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	_ = v.BindEnv("API_KEY")

	// a missing .env file is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = v.GetString("API_KEY")
	}
	cfg.CORSOrigins = splitOrigins(cfg.CORSOrigins)

	return cfg, nil
}

func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// IsDev reports whether the service runs in development mode
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SummariesEnabled reports whether a summarizer credential is configured
func (c *Config) SummariesEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.SummaryTemperature < 0 || c.SummaryTemperature > 2 {
		return fmt.Errorf("SUMMARY_TEMPERATURE must be within [0, 2], got %g", c.SummaryTemperature)
	}
	if c.MaxImportBytes <= 0 {
		return fmt.Errorf("MAX_IMPORT_BYTES must be positive, got %d", c.MaxImportBytes)
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATE must be within [0, 1], got %g", c.TraceSampleRate)
	}
	if c.NotifyTTL <= 0 || c.NotifyErrorTTL <= 0 {
		return fmt.Errorf("NOTIFY_TTL and NOTIFY_ERROR_TTL must be positive")
	}
	return nil
}
