package gemini

import (
	"context"
	"errors"
	"net"

	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"google.golang.org/genai"
)

// mapError turns genai and transport errors into model.Failure values.
// Context errors and anything unrecognized pass through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return model.NewRemoteFailure(apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return model.NewRemoteFailure(apiErrPtr.Code, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return model.NewFailure(model.FailureTransport, err)
	}
	return err
}
