package pipeline

import (
	"errors"
	"net"
	"slices"

	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/utils"
)

// Kind is the user-facing failure category of a pipeline invocation.
type Kind int

const (
	KindUnclassified Kind = iota
	KindPayloadTooLarge
	KindAuthFailure
	KindNetworkFailure
	KindUploadStructureFailure
	KindRemoteProcessingFailure
	KindEmptyOrInvalidResponse
	KindRequestEntityTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindAuthFailure:
		return "auth_failure"
	case KindNetworkFailure:
		return "network_failure"
	case KindUploadStructureFailure:
		return "upload_structure_failure"
	case KindRemoteProcessingFailure:
		return "remote_processing_failure"
	case KindEmptyOrInvalidResponse:
		return "empty_or_invalid_response"
	case KindRequestEntityTooLarge:
		return "request_entity_too_large"
	default:
		return "unclassified"
	}
}

// Message is the stable text shown to users for this kind.
func (k Kind) Message() string {
	switch k {
	case KindPayloadTooLarge:
		return "The audio file is too complex or large for a single pass. Please try a shorter clip (under 20 minutes) or a smaller file size."
	case KindAuthFailure:
		return "Access denied. Please check your API Key configuration."
	case KindNetworkFailure:
		return "Network connection lost. Please check your internet connection."
	case KindUploadStructureFailure:
		return "We couldn't upload this specific file format. Please try converting it to a standard MP3 or WAV file."
	case KindRemoteProcessingFailure:
		return "The server failed to process the audio file. It might be corrupted."
	case KindEmptyOrInvalidResponse:
		return "The AI couldn't generate a valid analysis. The audio might be silent, unclear, or in an unsupported language."
	case KindRequestEntityTooLarge:
		return "File is too large. Please upload a file smaller than 50MB."
	default:
		return "An unexpected error occurred. Please try again."
	}
}

// Error is what a pipeline invocation returns on failure. It carries only the
// classified message; technical detail is logged where the failure is caught.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Classification pairs the user-facing result with the original failure.
type Classification struct {
	Kind    Kind
	Message string
	Cause   error
}

type classificationRule struct {
	kind      Kind
	codes     []model.FailureCode
	statuses  []int
	transport bool
	markers   []string
}

// Order matters: the first matching rule wins.
var classificationRules = []classificationRule{
	{
		kind:     KindPayloadTooLarge,
		statuses: []int{400},
		markers:  []string{"400", "Payload", "Too Large"},
	},
	{
		kind:     KindAuthFailure,
		statuses: []int{401, 403},
		markers:  []string{"403", "API_KEY"},
	},
	{
		kind:      KindNetworkFailure,
		codes:     []model.FailureCode{model.FailureTransport},
		transport: true,
		markers:   []string{"Failed to fetch", "Network"},
	},
	{
		kind:    KindUploadStructureFailure,
		codes:   []model.FailureCode{model.FailureUploadStructure},
		markers: []string{"UPLOAD_FAILED_STRUCTURE", "reading 'uri'"},
	},
	{
		kind:    KindRemoteProcessingFailure,
		codes:   []model.FailureCode{model.FailureRemoteProcessing, model.FailureProcessingTimeout},
		markers: []string{"SERVER_PROCESSING_FAILED"},
	},
	{
		kind:    KindEmptyOrInvalidResponse,
		codes:   []model.FailureCode{model.FailureNoResponse, model.FailureMalformedOutput},
		markers: []string{"NO_RESPONSE", "JSON"},
	},
	{
		kind:     KindRequestEntityTooLarge,
		statuses: []int{413},
		markers:  []string{"413"},
	},
}

// Classify maps any failure to exactly one Kind. Structured failures are
// matched on their code and status; anything else falls back to markers in
// the error text.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: KindUnclassified, Message: KindUnclassified.Message()}
	}

	var classified *Error
	if errors.As(err, &classified) {
		return Classification{Kind: classified.Kind, Message: classified.Message, Cause: err}
	}

	failure, structured := model.AsFailure(err)
	for _, rule := range classificationRules {
		if rule.matches(err, failure, structured) {
			return Classification{Kind: rule.kind, Message: rule.kind.Message(), Cause: err}
		}
	}
	return Classification{Kind: KindUnclassified, Message: KindUnclassified.Message(), Cause: err}
}

func (r classificationRule) matches(err error, failure *model.Failure, structured bool) bool {
	if structured {
		if slices.Contains(r.codes, failure.Code) {
			return true
		}
		return failure.StatusCode != 0 && slices.Contains(r.statuses, failure.StatusCode)
	}
	if r.transport && isTransportError(err) {
		return true
	}
	return utils.ContainsAnyErrorSubstring(err, r.markers...)
}

func isTransportError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}
