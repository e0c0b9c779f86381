// Package config assembles runtime settings from an optional YAML file, an
// optional .env file and the process environment, in that order of
// increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/Nephrolytics-ai/auralex/pkg/model"
)

type Config struct {
	Gemini   GeminiConfig   `yaml:"gemini"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Library  LibraryConfig  `yaml:"library"`
	LogLevel string         `yaml:"log_level"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// PipelineConfig tunes a single invocation. Zero values fall back to the
// pipeline defaults.
type PipelineConfig struct {
	Temperature      *float64      `yaml:"temperature"`
	InlineLimitBytes int64         `yaml:"inline_limit_bytes"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	PollTimeout      time.Duration `yaml:"poll_timeout"`
	StrictQuiz       bool          `yaml:"strict_quiz"`
}

type LibraryConfig struct {
	Dir string `yaml:"dir"`
}

func Default() *Config {
	return &Config{
		Library:  LibraryConfig{Dir: defaultLibraryDir()},
		LogLevel: "info",
	}
}

func defaultLibraryDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".auralex", "library")
	}
	return filepath.Join(home, ".auralex", "library")
}

// GeneratorOptions converts the Gemini and pipeline sections into generator
// options. Unset values are omitted so the defaults apply.
func (c *Config) GeneratorOptions() []model.GeneratorOption {
	opts := []model.GeneratorOption{
		model.WithStrictQuiz(c.Pipeline.StrictQuiz),
	}
	if c.Gemini.APIKey != "" {
		opts = append(opts, model.WithAuthToken(c.Gemini.APIKey))
	}
	if c.Gemini.BaseURL != "" {
		opts = append(opts, model.WithURL(c.Gemini.BaseURL))
	}
	if c.Gemini.Model != "" {
		opts = append(opts, model.WithModel(c.Gemini.Model))
	}
	if c.Pipeline.Temperature != nil {
		opts = append(opts, model.WithTemperature(*c.Pipeline.Temperature))
	}
	if c.Pipeline.InlineLimitBytes > 0 {
		opts = append(opts, model.WithInlineSizeLimit(c.Pipeline.InlineLimitBytes))
	}
	if c.Pipeline.PollInterval > 0 {
		opts = append(opts, model.WithPollInterval(c.Pipeline.PollInterval))
	}
	if c.Pipeline.PollTimeout > 0 {
		opts = append(opts, model.WithPollTimeout(c.Pipeline.PollTimeout))
	}
	return opts
}
