package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"

	"github.com/Nephrolytics-ai/auralex/pkg/logging"
	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/utils"
)

type assetUploader interface {
	Upload(ctx context.Context, payload model.AudioPayload) (model.RemoteReference, error)
}

// Encoder picks the transport for a payload: inline below the size limit,
// uploaded otherwise. Oversized inline payloads are left for the remote
// service to reject.
type Encoder struct {
	inlineSizeLimit int64
	uploader        assetUploader
}

func NewEncoder(inlineSizeLimit int64, uploader assetUploader) *Encoder {
	if inlineSizeLimit <= 0 {
		inlineSizeLimit = model.DefaultInlineSizeLimit
	}
	return &Encoder{inlineSizeLimit: inlineSizeLimit, uploader: uploader}
}

func (e *Encoder) Encode(ctx context.Context, payload model.AudioPayload) (model.TransmissionUnit, error) {
	log := logging.NewLogger(ctx)
	if payload.Size() < e.inlineSizeLimit {
		log.Debugf("encoding payload inline size=%d limit=%d", payload.Size(), e.inlineSizeLimit)
		return embed(payload), nil
	}

	log.Debugf("uploading payload size=%d limit=%d", payload.Size(), e.inlineSizeLimit)
	ref, err := e.uploader.Upload(ctx, payload)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	return ref, nil
}

func embed(payload model.AudioPayload) model.Embedded {
	if mimeType, data, ok := splitDataURL(payload.Data); ok {
		if strings.TrimSpace(payload.MIMEType) != "" || mimeType == "" {
			mimeType = resolveMIMEType(payload)
		}
		return model.Embedded{MIMEType: mimeType, Base64Data: data}
	}

	return model.Embedded{
		MIMEType:   resolveMIMEType(payload),
		Base64Data: base64.StdEncoding.EncodeToString(payload.Data),
	}
}

// splitDataURL handles payloads captured as "data:<type>;base64,<data>" text.
func splitDataURL(data []byte) (string, string, bool) {
	if !bytes.HasPrefix(data, []byte("data:")) {
		return "", "", false
	}
	header, encoded, found := bytes.Cut(data, []byte(","))
	if !found || !bytes.HasSuffix(header, []byte(";base64")) {
		return "", "", false
	}
	mimeType := strings.TrimSuffix(strings.TrimPrefix(string(header), "data:"), ";base64")
	return mimeType, string(encoded), true
}

func resolveMIMEType(payload model.AudioPayload) string {
	if mimeType := strings.TrimSpace(payload.MIMEType); mimeType != "" {
		return mimeType
	}
	return model.DefaultMIMEType
}
