package gemini

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/Nephrolytics-ai/auralex/pkg/logging"
	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/utils"
	"google.golang.org/genai"
)

func (s *Service) UploadAsset(
	ctx context.Context,
	data []byte,
	mimeType string,
	displayName string,
) (model.RemoteAsset, error) {
	log := logging.NewLogger(ctx)
	if strings.TrimSpace(displayName) == "" {
		displayName = defaultDisplayName
	}

	log.Infof("gemini.UploadAsset size=%d mime=%q display_name=%q", len(data), mimeType, displayName)
	file, err := s.files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		log.Errorf("error: %v", err)
		return model.RemoteAsset{}, utils.WrapIfNotNil(mapError(err))
	}
	if file == nil {
		err = model.NewFailure(model.FailureUploadStructure, errors.New("upload returned no file"))
		log.Errorf("error: %v", err)
		return model.RemoteAsset{}, err
	}

	asset := toRemoteAsset(file)
	log.Debugf("gemini.UploadAsset name=%q state=%s", asset.Name, asset.State)
	return asset, nil
}

func (s *Service) GetAsset(ctx context.Context, name string) (model.RemoteAsset, error) {
	log := logging.NewLogger(ctx)
	file, err := s.files.Get(ctx, name, nil)
	if err != nil {
		log.Errorf("error: %v", err)
		return model.RemoteAsset{}, utils.WrapIfNotNil(mapError(err))
	}
	if file == nil {
		err = model.NewFailure(model.FailureUploadStructure, errors.New("file lookup returned nothing"))
		log.Errorf("error: %v", err)
		return model.RemoteAsset{}, err
	}
	return toRemoteAsset(file), nil
}

func toRemoteAsset(file *genai.File) model.RemoteAsset {
	return model.RemoteAsset{
		Name:     file.Name,
		URI:      file.URI,
		MIMEType: file.MIMEType,
		State:    mapFileState(file.State),
	}
}

// Only PROCESSING and FAILED hold the asset back; every other state,
// including an unspecified one, is usable.
func mapFileState(state genai.FileState) model.AssetState {
	switch state {
	case genai.FileStateProcessing:
		return model.AssetStateProcessing
	case genai.FileStateFailed:
		return model.AssetStateFailed
	default:
		return model.AssetStateReady
	}
}
