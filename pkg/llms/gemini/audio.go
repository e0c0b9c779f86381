package gemini

import (
	"context"
	"errors"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nephrolytics-ai/auralex/pkg/logging"
	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/utils"
)

// LoadAudioFile reads an audio file into a payload. An empty mimeType is
// resolved from the file extension.
func LoadAudioFile(ctx context.Context, filePath string, mimeType string) (model.AudioPayload, error) {
	log := logging.NewLogger(ctx)
	if strings.TrimSpace(filePath) == "" {
		return model.AudioPayload{}, utils.WrapIfNotNil(errors.New("file path is required"))
	}

	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		resolved, err := ResolveAudioMIMEType(filePath)
		if err != nil {
			log.Errorf("error: %v", err)
			return model.AudioPayload{}, utils.WrapIfNotNil(err)
		}
		mimeType = resolved
	}

	audioBytes, err := os.ReadFile(filePath)
	if err != nil {
		log.Errorf("error: %v", err)
		return model.AudioPayload{}, utils.WrapIfNotNil(err)
	}

	return model.AudioPayload{
		Data:     audioBytes,
		MIMEType: mimeType,
		Name:     filepath.Base(filePath),
	}, nil
}

func ResolveAudioMIMEType(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filePath)))
	if ext == "" {
		return "", utils.WrapIfNotNil(errors.New("audio file extension is required to determine mime type"))
	}

	switch ext {
	case ".wav":
		return "audio/wav", nil
	case ".mp3":
		return "audio/mpeg", nil
	case ".m4a", ".mp4":
		return "audio/mp4", nil
	case ".webm":
		return "audio/webm", nil
	case ".ogg", ".opus":
		return "audio/ogg", nil
	case ".flac":
		return "audio/flac", nil
	case ".aac":
		return "audio/aac", nil
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "", utils.WrapIfNotNil(errors.New("unsupported audio file extension: " + ext))
	}

	// Strip parameters such as "; charset=utf-8".
	mimeType = strings.TrimSpace(strings.Split(mimeType, ";")[0])
	if !strings.HasPrefix(mimeType, "audio/") {
		return "", utils.WrapIfNotNil(errors.New("unsupported audio mime type: " + mimeType))
	}
	return mimeType, nil
}
