// Package config loads junction settings from YAML files and TJUNCTION_*
// environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/anggasct/tjunction"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "TJUNCTION_"

var validate = validator.New()

// Config holds everything needed to build and run a junction
type Config struct {
	Name             string        `yaml:"name" validate:"required"`
	ParallelDispatch bool          `yaml:"parallel_dispatch"`
	WaitNotices      bool          `yaml:"wait_notices"`
	MaxSettleCycles  int           `yaml:"max_settle_cycles" validate:"gte=1,lte=100000"`
	Log              LogConfig     `yaml:"log"`
	Metrics          MetricsConfig `yaml:"metrics"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// MetricsConfig controls the Prometheus observer
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" validate:"required_if=Enabled true"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Name:            tjunction.DefaultName,
		MaxSettleCycles: 64,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: "tjunction",
		},
	}
}

// Load builds a configuration with priority env > file > defaults.
// An empty path or a missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return Parse(data, cfg)
}

// Parse decodes YAML onto cfg; unknown keys are rejected
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	if v, ok := lookup(EnvPrefix + "NAME"); ok && v != "" {
		cfg.Name = v
	}
	if err := envBool(lookup, "PARALLEL_DISPATCH", &cfg.ParallelDispatch); err != nil {
		return err
	}
	if err := envBool(lookup, "WAIT_NOTICES", &cfg.WaitNotices); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "MAX_SETTLE_CYCLES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return tjunction.NewConfigurationError("config", fmt.Sprintf("%sMAX_SETTLE_CYCLES: %v", EnvPrefix, err))
		}
		cfg.MaxSettleCycles = n
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvPrefix + "LOG_FORMAT"); ok && v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if err := envBool(lookup, "METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "METRICS_NAMESPACE"); ok && v != "" {
		cfg.Metrics.Namespace = v
	}
	return nil
}

func envBool(lookup lookupFunc, name string, target *bool) error {
	v, ok := lookup(EnvPrefix + name)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return tjunction.NewConfigurationError("config", fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
	}
	*target = b
	return nil
}

// Validate checks field constraints and reports the first failing fields
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			issues := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				issues = append(issues, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
			return tjunction.NewConfigurationError("config", strings.Join(issues, "; "))
		}
		return tjunction.NewConfigurationError("config", err.Error())
	}
	return nil
}

// SlogLevel maps Level to a slog level
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger writing to w in the configured format and level
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Builder returns a junction builder carrying the configured name and
// dispatch options
func (c Config) Builder() *tjunction.JunctionBuilder {
	return tjunction.NewJunction(c.Name).
		WithParallelDispatch(c.ParallelDispatch).
		WithWaitNotices(c.WaitNotices)
}
