package model

import (
	"context"
	"time"
)

// ContentGenerator performs a single schema-constrained generation call and
// returns the raw response text. Implementations must not retry.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, req GenerationRequest) (string, GenerationMetadata, error)
}

// AssetService is the remote file boundary used for payloads too large to embed.
type AssetService interface {
	UploadAsset(ctx context.Context, data []byte, mimeType string, displayName string) (RemoteAsset, error)
	GetAsset(ctx context.Context, name string) (RemoteAsset, error)
}

type GenerationMetadata map[string]string

const (
	MetadataKeyProvider          = "provider"
	MetadataKeyModel             = "model"
	MetadataKeyLatencyMs         = "latency_ms"
	MetadataKeyInputTokens       = "input_tokens"
	MetadataKeyOutputTokens      = "output_tokens"
	MetadataKeyTotalTokens       = "total_tokens"
	MetadataKeyCachedInputTokens = "cached_input_tokens"
	MetadataKeyReasoningTokens   = "reasoning_tokens"
	MetadataKeyResponseID        = "response_id"
	MetadataKeyResponseStatus    = "response_status"
	MetadataKeyTransport         = "transport"
)

type JSONSchema map[string]any

// SamplingConfig is fixed per request: low temperature, no extended reasoning.
type SamplingConfig struct {
	Temperature     float64
	DisableThinking bool
}

type GenerationRequest struct {
	Unit         TransmissionUnit
	Instructions string
	Schema       JSONSchema
	Sampling     SamplingConfig
}

const (
	DefaultInlineSizeLimit int64   = 9961472 // 9.5 MiB
	DefaultPollInterval            = 500 * time.Millisecond
	DefaultPollTimeout             = 5 * time.Minute
	DefaultTemperature     float64 = 0.2
	DefaultMIMEType                = "audio/webm"
)

type GeneratorOption interface {
	apply(*GeneratorConfig)
}

type generatorOptionFunc func(*GeneratorConfig)

func (f generatorOptionFunc) apply(cfg *GeneratorConfig) {
	f(cfg)
}

type GeneratorConfig struct {
	URL             string
	AuthToken       string
	Model           *string
	Temperature     *float64
	InlineSizeLimit int64
	PollInterval    time.Duration
	PollTimeout     time.Duration
	// StrictQuiz rejects quiz items whose correct answer does not index their options.
	StrictQuiz bool
}

func ResolveGeneratorOpts(opts ...GeneratorOption) GeneratorConfig {
	cfg := GeneratorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	if cfg.InlineSizeLimit <= 0 {
		cfg.InlineSizeLimit = DefaultInlineSizeLimit
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	return cfg
}

// ResolvedTemperature returns the configured temperature or DefaultTemperature.
func (c GeneratorConfig) ResolvedTemperature() float64 {
	if c.Temperature != nil {
		return *c.Temperature
	}
	return DefaultTemperature
}

func WithURL(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.URL = value
	})
}

func WithAuthToken(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.AuthToken = value
	})
}

func WithModel(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.Model = &value
	})
}

func WithTemperature(value float64) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.Temperature = &value
	})
}

func WithInlineSizeLimit(value int64) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.InlineSizeLimit = value
	})
}

func WithPollInterval(value time.Duration) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.PollInterval = value
	})
}

// WithPollTimeout bounds how long an uploaded asset may stay in processing.
func WithPollTimeout(value time.Duration) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.PollTimeout = value
	})
}

func WithStrictQuiz(value bool) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.StrictQuiz = value
	})
}
