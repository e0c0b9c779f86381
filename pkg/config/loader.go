package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	EnvGeminiKey        = "GEMINI_KEY"
	EnvAPIKey           = "API_KEY"
	EnvGeminiBaseURL    = "GEMINI_BASE_URL"
	EnvGeminiModel      = "GEMINI_MODEL"
	EnvTemperature      = "AURALEX_TEMPERATURE"
	EnvInlineLimitBytes = "AURALEX_INLINE_LIMIT_BYTES"
	EnvPollInterval     = "AURALEX_POLL_INTERVAL"
	EnvPollTimeout      = "AURALEX_POLL_TIMEOUT"
	EnvLibraryDir       = "AURALEX_LIBRARY_DIR"
	EnvStrictQuiz       = "AURALEX_STRICT_QUIZ"
	EnvLogLevel         = "LOG_LEVEL"
)

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()

		if err := decodeInto(f, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes YAML over the defaults without consulting the
// environment, and validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeInto(r, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeInto(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

// LoadDotEnv loads the given .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("config: load env files: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with any variables reported by lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvAPIKey, &cfg.Gemini.APIKey)
	str(EnvGeminiKey, &cfg.Gemini.APIKey)
	str(EnvGeminiBaseURL, &cfg.Gemini.BaseURL)
	str(EnvGeminiModel, &cfg.Gemini.Model)
	str(EnvLibraryDir, &cfg.Library.Dir)
	str(EnvLogLevel, &cfg.LogLevel)

	if v, ok := lookup(EnvTemperature); ok && strings.TrimSpace(v) != "" {
		t, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvTemperature, err))
		} else {
			cfg.Pipeline.Temperature = &t
		}
	}
	if v, ok := lookup(EnvInlineLimitBytes); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvInlineLimitBytes, err))
		} else {
			cfg.Pipeline.InlineLimitBytes = n
		}
	}
	parseDuration := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}
	parseDuration(EnvPollInterval, &cfg.Pipeline.PollInterval)
	parseDuration(EnvPollTimeout, &cfg.Pipeline.PollTimeout)

	if v, ok := lookup(EnvStrictQuiz); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvStrictQuiz, err))
		} else {
			cfg.Pipeline.StrictQuiz = b
		}
	}

	return errors.Join(errs...)
}

// Validate returns every problem found, joined.
func Validate(cfg *Config) error {
	var errs []error

	if t := cfg.Pipeline.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("pipeline.temperature %v is out of range [0, 2]", *t))
	}
	if cfg.Pipeline.InlineLimitBytes < 0 {
		errs = append(errs, fmt.Errorf("pipeline.inline_limit_bytes must not be negative, got %d", cfg.Pipeline.InlineLimitBytes))
	}
	if cfg.Pipeline.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("pipeline.poll_interval must not be negative, got %s", cfg.Pipeline.PollInterval))
	}
	if cfg.Pipeline.PollTimeout < 0 {
		errs = append(errs, fmt.Errorf("pipeline.poll_timeout must not be negative, got %s", cfg.Pipeline.PollTimeout))
	}
	if cfg.Pipeline.PollInterval > 0 && cfg.Pipeline.PollTimeout > 0 && cfg.Pipeline.PollInterval > cfg.Pipeline.PollTimeout {
		errs = append(errs, fmt.Errorf("pipeline.poll_interval %s exceeds pipeline.poll_timeout %s", cfg.Pipeline.PollInterval, cfg.Pipeline.PollTimeout))
	}
	if cfg.LogLevel != "" {
		if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
			errs = append(errs, fmt.Errorf("log_level %q is invalid", cfg.LogLevel))
		}
	}

	return errors.Join(errs...)
}
