// Package pipeline turns an audio payload into validated study material:
// it chooses between inline and uploaded transport, builds a schema
// constrained generation request, validates the structured response and maps
// every failure to a fixed set of user-facing error kinds.
//
// A Pipeline holds no per-invocation state and takes no locks. Concurrent
// calls to Process run independently; serializing them is the caller's job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nephrolytics-ai/auralex/pkg/logging"
	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/observe"
	"github.com/Nephrolytics-ai/auralex/pkg/utils"
	"github.com/google/uuid"
)

const (
	transportEmbedded = "embedded"
	transportRemote   = "remote"
	transportNone     = "none"
)

type Pipeline struct {
	cfg       model.GeneratorConfig
	assets    model.AssetService
	generator model.ContentGenerator
	metrics   *observe.Metrics
	encoder   *Encoder
}

func New(assets model.AssetService, generator model.ContentGenerator, opts ...model.GeneratorOption) (*Pipeline, error) {
	if assets == nil {
		return nil, utils.WrapIfNotNil(errors.New("asset service is required"))
	}
	if generator == nil {
		return nil, utils.WrapIfNotNil(errors.New("content generator is required"))
	}

	p := &Pipeline{
		cfg:       model.ResolveGeneratorOpts(opts...),
		assets:    assets,
		generator: generator,
	}
	p.SetMetrics(observe.DefaultMetrics())
	return p, nil
}

// SetMetrics replaces the metrics sink. Not safe to call concurrently with Process.
func (p *Pipeline) SetMetrics(metrics *observe.Metrics) {
	if metrics == nil {
		return
	}
	p.metrics = metrics
	p.encoder = NewEncoder(p.cfg.InlineSizeLimit, NewUploader(p.assets, p.cfg, metrics))
}

// Process runs one invocation. On failure the returned error is always a
// *Error holding the classified kind and message.
func (p *Pipeline) Process(
	ctx context.Context,
	payload model.AudioPayload,
	options model.ProcessingOptions,
) (content model.GeneratedContent, err error) {
	start := time.Now()
	ctx = logging.WithField(ctx, "run_id", uuid.NewString())
	log := logging.NewLogger(ctx)
	transport := transportNone

	defer func() {
		if r := recover(); r != nil {
			utils.PrintStack(fmt.Sprintf("pipeline panic: %v", r), log)
			content = model.GeneratedContent{}
			err = p.fail(ctx, fmt.Errorf("pipeline panic: %v", r), transport, start)
		}
	}()

	log.Infof(
		"pipeline start size=%d mime=%q options=%+v inline_limit=%d",
		payload.Size(),
		payload.MIMEType,
		options,
		p.cfg.InlineSizeLimit,
	)

	content, transport, err = p.run(ctx, payload, options)
	if err != nil {
		return model.GeneratedContent{}, p.fail(ctx, err, transport, start)
	}

	p.metrics.RecordRun(ctx, "ok", transport, time.Since(start))
	log.Infof(
		"pipeline done title=%q confidence=%v transport=%s latency_ms=%d",
		content.Title,
		content.ConfidenceScore,
		transport,
		time.Since(start).Milliseconds(),
	)
	return content, nil
}

func (p *Pipeline) run(
	ctx context.Context,
	payload model.AudioPayload,
	options model.ProcessingOptions,
) (model.GeneratedContent, string, error) {
	log := logging.NewLogger(ctx)

	stageStart := time.Now()
	unit, err := p.encoder.Encode(ctx, payload)
	p.metrics.RecordStage(ctx, observe.StageEncode, time.Since(stageStart))
	if err != nil {
		return model.GeneratedContent{}, transportNone, utils.WrapIfNotNil(err)
	}
	transport := transportName(unit)

	req, err := BuildRequest(unit, options, p.cfg)
	if err != nil {
		return model.GeneratedContent{}, transport, utils.WrapIfNotNil(err)
	}

	text, meta, err := generateText(ctx, p.generator, req, p.metrics)
	if err != nil {
		return model.GeneratedContent{}, transport, utils.WrapIfNotNil(err)
	}
	log.Debugf("generation metadata=%v", meta)

	stageStart = time.Now()
	content, err := ParseContent(text, p.cfg.StrictQuiz)
	p.metrics.RecordStage(ctx, observe.StageValidate, time.Since(stageStart))
	if err != nil {
		return model.GeneratedContent{}, transport, utils.WrapIfNotNil(err)
	}
	return content, transport, nil
}

func (p *Pipeline) fail(ctx context.Context, err error, transport string, start time.Time) error {
	classified := Classify(err)
	logging.NewLogger(ctx).Errorf("error: kind=%s cause=%v", classified.Kind, classified.Cause)
	p.metrics.RecordError(ctx, classified.Kind.String())
	p.metrics.RecordRun(ctx, "error", transport, time.Since(start))
	return &Error{Kind: classified.Kind, Message: classified.Message}
}

func transportName(unit model.TransmissionUnit) string {
	switch unit.(type) {
	case model.Embedded:
		return transportEmbedded
	case model.RemoteReference:
		return transportRemote
	default:
		return transportNone
	}
}
