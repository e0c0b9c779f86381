package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/observe"
	"github.com/Nephrolytics-ai/auralex/pkg/utils"
)

// generateText performs the single generation attempt of an invocation.
func generateText(
	ctx context.Context,
	generator model.ContentGenerator,
	req model.GenerationRequest,
	metrics *observe.Metrics,
) (string, model.GenerationMetadata, error) {
	start := time.Now()
	defer func() { metrics.RecordStage(ctx, observe.StageGenerate, time.Since(start)) }()

	text, meta, err := generator.GenerateContent(ctx, req)
	if err != nil {
		return "", meta, utils.WrapIfNotNil(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", meta, model.NewFailure(model.FailureNoResponse, errors.New("generation returned no text"))
	}
	return text, meta, nil
}
