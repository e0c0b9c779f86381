package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/Nephrolytics-ai/auralex/pkg/logging"
	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/utils"
	"google.golang.org/genai"
)

func (s *Service) GenerateContent(
	ctx context.Context,
	req model.GenerationRequest,
) (string, model.GenerationMetadata, error) {
	start := time.Now()
	modelName := resolveGenerationModelName(s.cfg)
	meta := initMetadata(modelName)
	defer setLatencyMetadata(meta, start)

	log := logging.NewLogger(ctx)
	media, transport, err := mediaPart(req.Unit)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	meta[model.MetadataKeyTransport] = transport

	contents := []*genai.Content{
		genai.NewContentFromParts(
			[]*genai.Part{
				media,
				genai.NewPartFromText(req.Instructions),
			},
			genai.RoleUser,
		),
	}
	config := buildGenerateContentConfig(req)

	log.Infof(
		"gemini.GenerateContent model=%q transport=%s temperature=%v thinking_disabled=%v schema=%v",
		modelName,
		transport,
		req.Sampling.Temperature,
		req.Sampling.DisableThinking,
		len(req.Schema) > 0,
	)

	response, err := s.models.GenerateContent(ctx, modelName, contents, config)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(mapError(err))
	}

	applyGenerateMetadata(meta, response)
	if response == nil {
		return "", meta, nil
	}
	return response.Text(), meta, nil
}

func mediaPart(unit model.TransmissionUnit) (*genai.Part, string, error) {
	switch u := unit.(type) {
	case model.Embedded:
		data, err := base64.StdEncoding.DecodeString(u.Base64Data)
		if err != nil {
			return nil, "", model.NewFailure(model.FailureUploadStructure, fmt.Errorf("embedded audio is not valid base64: %w", err))
		}
		return &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: u.MIMEType,
				Data:     data,
			},
		}, "embedded", nil
	case model.RemoteReference:
		return genai.NewPartFromURI(u.URI, u.MIMEType), "remote", nil
	case nil:
		return nil, "", errors.New("transmission unit is required")
	default:
		return nil, "", fmt.Errorf("unsupported transmission unit %T", unit)
	}
}

func buildGenerateContentConfig(req model.GenerationRequest) *genai.GenerateContentConfig {
	temperature := float32(req.Sampling.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	}
	if len(req.Schema) > 0 {
		config.ResponseJsonSchema = map[string]any(req.Schema)
	}
	if req.Sampling.DisableThinking {
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr[int32](0),
		}
	}
	return config
}
