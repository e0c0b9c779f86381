package model

// AudioPayload is a captured or uploaded recording. Data must not be modified
// once the payload is handed to the pipeline.
type AudioPayload struct {
	Data     []byte
	MIMEType string
	// Name is used as the display name of uploaded assets.
	Name string
}

func (p AudioPayload) Size() int64 {
	return int64(len(p.Data))
}

// ProcessingOptions selects the optional output sections requested from the model.
type ProcessingOptions struct {
	KeyTakeaways  bool `json:"keyTakeaways"`
	CoreArguments bool `json:"coreArguments"`
	Examples      bool `json:"examples"`
	DeepDiveNotes bool `json:"deepDiveNotes"`
	Quiz          bool `json:"quiz"`
}

// AllSections enables every optional section.
func AllSections() ProcessingOptions {
	return ProcessingOptions{
		KeyTakeaways:  true,
		CoreArguments: true,
		Examples:      true,
		DeepDiveNotes: true,
		Quiz:          true,
	}
}
