package model

// GeneratedContent is the validated study material produced by one pipeline run.
type GeneratedContent struct {
	Title           string     `json:"title" jsonschema:"description=A descriptive academic title"`
	ConfidenceScore float64    `json:"confidenceScore" jsonschema:"description=Self-evaluated confidence from 0 to 100,minimum=0,maximum=100"`
	AccuracyNote    string     `json:"accuracyNote" jsonschema:"description=Brief assessment of extraction quality"`
	Summary         []string   `json:"summary" jsonschema:"description=Key takeaways"`
	Theses          []string   `json:"theses" jsonschema:"description=Core arguments or claims"`
	Examples        []string   `json:"examples" jsonschema:"description=Real-world applications or case studies"`
	RunningNotes    string     `json:"runningNotes" jsonschema:"description=Deep-dive study notes in Markdown"`
	Quiz            []QuizItem `json:"quiz"`
}

type QuizItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	// CorrectAnswer is the zero-based index into Options.
	CorrectAnswer int    `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// Valid reports whether the item has options and CorrectAnswer indexes one of them.
func (q QuizItem) Valid() bool {
	return len(q.Options) > 0 && q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
}
