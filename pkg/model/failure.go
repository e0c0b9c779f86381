package model

import (
	"errors"
	"fmt"
)

// FailureCode tags a failure with the pipeline condition that produced it.
type FailureCode string

const (
	FailureRemote            FailureCode = "remote"
	FailureTransport         FailureCode = "transport"
	FailureUploadStructure   FailureCode = "upload_structure"
	FailureRemoteProcessing  FailureCode = "remote_processing"
	FailureProcessingTimeout FailureCode = "processing_timeout"
	FailureNoResponse        FailureCode = "no_response"
	FailureMalformedOutput   FailureCode = "malformed_output"
)

// Failure is a structured error raised inside the pipeline. StatusCode holds the
// remote status when the failure came back from the remote service.
type Failure struct {
	Code       FailureCode
	StatusCode int
	Err        error
}

func NewFailure(code FailureCode, err error) *Failure {
	return &Failure{Code: code, Err: err}
}

func NewRemoteFailure(statusCode int, err error) *Failure {
	return &Failure{Code: FailureRemote, StatusCode: statusCode, Err: err}
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", f.Code, f.StatusCode, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Code, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure finds the first Failure in err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
