package pipeline

import (
	"strings"
	"testing"

	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/stretchr/testify/suite"
)

type PromptSuite struct {
	suite.Suite
}

func TestPromptSuite(t *testing.T) {
	suite.Run(t, new(PromptSuite))
}

func (s *PromptSuite) TestBaseInstructionAlwaysPresent() {
	instructions := BuildInstructions(model.ProcessingOptions{})

	s.True(strings.HasPrefix(instructions, baseInstruction))
	s.Contains(instructions, "Do not wrap it in markdown code blocks")
	s.Contains(instructions, "background knowledge")
	s.Contains(instructions, "'confidenceScore'")
	s.Contains(instructions, "'accuracyNote'")
	s.Contains(instructions, "'title'")
}

func (s *PromptSuite) TestDisabledSectionsAreNotMentioned() {
	instructions := strings.ToLower(BuildInstructions(model.ProcessingOptions{Quiz: true, DeepDiveNotes: true}))

	s.NotContains(instructions, "summary")
	s.NotContains(instructions, "theses")
	s.NotContains(instructions, "examples")
	s.Contains(instructions, "'quiz'")
	s.Contains(instructions, "'runningnotes'")
}

func (s *PromptSuite) TestEachFlagAddsItsClause() {
	cases := []struct {
		opts   model.ProcessingOptions
		clause string
	}{
		{model.ProcessingOptions{KeyTakeaways: true}, keyTakeawaysClause},
		{model.ProcessingOptions{CoreArguments: true}, coreArgumentsClause},
		{model.ProcessingOptions{Examples: true}, examplesClause},
		{model.ProcessingOptions{DeepDiveNotes: true}, deepDiveNotesClause},
		{model.ProcessingOptions{Quiz: true}, quizClause},
	}
	for _, tc := range cases {
		instructions := BuildInstructions(tc.opts)
		s.Contains(instructions, tc.clause)
		s.Equal(len(BuildInstructions(model.ProcessingOptions{}))+len(tc.clause), len(instructions))
	}
}

func (s *PromptSuite) TestQuizClauseSpecifiesItemShape() {
	instructions := BuildInstructions(model.ProcessingOptions{Quiz: true})
	for _, field := range []string{"'question'", "'options'", "'correctAnswer'", "'explanation'"} {
		s.Contains(instructions, field)
	}
}

func (s *PromptSuite) TestInstructionsAreDeterministic() {
	opts := model.AllSections()
	s.Equal(BuildInstructions(opts), BuildInstructions(opts))
}

func (s *PromptSuite) TestSchemaRequiresAllTopLevelFields() {
	schema, err := ResponseSchema()
	s.Require().NoError(err)

	s.Equal("object", schema["type"])
	s.ElementsMatch(
		[]any{"title", "confidenceScore", "accuracyNote", "summary", "theses", "examples", "runningNotes", "quiz"},
		schema["required"],
	)
	s.Equal(false, schema["additionalProperties"])
	s.NotContains(schema, "$schema")
}

func (s *PromptSuite) TestSchemaFullySpecifiesQuizItems() {
	schema, err := ResponseSchema()
	s.Require().NoError(err)

	props := schema["properties"].(map[string]any)
	quiz := props["quiz"].(map[string]any)
	s.Equal("array", quiz["type"])

	items := quiz["items"].(map[string]any)
	s.ElementsMatch([]any{"question", "options", "correctAnswer", "explanation"}, items["required"])

	itemProps := items["properties"].(map[string]any)
	s.Equal("integer", itemProps["correctAnswer"].(map[string]any)["type"])
}

func (s *PromptSuite) TestSchemaBoundsConfidence() {
	schema, err := ResponseSchema()
	s.Require().NoError(err)

	confidence := schema["properties"].(map[string]any)["confidenceScore"].(map[string]any)
	s.Equal("number", confidence["type"])
	s.EqualValues(0, confidence["minimum"])
	s.EqualValues(100, confidence["maximum"])
}

func (s *PromptSuite) TestSchemaDoesNotDependOnOptions() {
	_, withNone, err := BuildPrompt(model.ProcessingOptions{})
	s.Require().NoError(err)
	_, withAll, err := BuildPrompt(model.AllSections())
	s.Require().NoError(err)
	s.Equal(withNone, withAll)
}

func (s *PromptSuite) TestBuildRequestUsesDeterministicSampling() {
	unit := model.Embedded{MIMEType: "audio/wav", Base64Data: "AAAA"}

	req, err := BuildRequest(unit, model.AllSections(), model.ResolveGeneratorOpts())
	s.Require().NoError(err)
	s.Equal(unit, req.Unit)
	s.Equal(model.DefaultTemperature, req.Sampling.Temperature)
	s.True(req.Sampling.DisableThinking)
	s.NotEmpty(req.Schema)

	req, err = BuildRequest(unit, model.AllSections(), model.ResolveGeneratorOpts(model.WithTemperature(0.3)))
	s.Require().NoError(err)
	s.Equal(0.3, req.Sampling.Temperature)
}
