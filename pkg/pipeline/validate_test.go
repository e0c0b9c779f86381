package pipeline

import (
	"testing"

	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/stretchr/testify/suite"
)

type ValidateSuite struct {
	suite.Suite
}

func TestValidateSuite(t *testing.T) {
	suite.Run(t, new(ValidateSuite))
}

func (s *ValidateSuite) TestRepairsInvalidConfidenceAndMissingTheses() {
	raw := `{"title":"T","confidenceScore":"bad","accuracyNote":"x","summary":[],"examples":[],"runningNotes":"","quiz":[]}`

	content, err := ParseContent(raw, false)
	s.Require().NoError(err)
	s.Equal(model.GeneratedContent{
		Title:           "T",
		ConfidenceScore: 0,
		AccuracyNote:    "Could not verify accuracy.",
		Summary:         []string{},
		Theses:          []string{},
		Examples:        []string{},
		RunningNotes:    "",
		Quiz:            []model.QuizItem{},
	}, content)
}

func (s *ValidateSuite) TestCodeFencedResponseMatchesUnwrapped() {
	plain, err := ParseContent(validResponse, false)
	s.Require().NoError(err)

	fenced, err := ParseContent("```json\n"+validResponse+"\n```", false)
	s.Require().NoError(err)
	s.Equal(plain, fenced)

	bare, err := ParseContent("```\n"+validResponse+"```  ", false)
	s.Require().NoError(err)
	s.Equal(plain, bare)
}

func (s *ValidateSuite) TestValidResponsePassesThrough() {
	content, err := ParseContent(validResponse, false)
	s.Require().NoError(err)

	s.Equal("Intro to Entropy", content.Title)
	s.Equal(87.0, content.ConfidenceScore)
	s.Equal("Clear audio.", content.AccuracyNote)
	s.Equal([]string{"Isolated systems tend toward equilibrium"}, content.Theses)
	s.Require().Len(content.Quiz, 1)
	s.Equal(1, content.Quiz[0].CorrectAnswer)
}

func (s *ValidateSuite) TestUnparseableTextIsMalformed() {
	_, err := ParseContent("The audio was too quiet to analyze.", false)
	s.assertMalformed(err)
}

func (s *ValidateSuite) TestNonObjectIsMalformed() {
	_, err := ParseContent("null", false)
	s.assertMalformed(err)

	_, err = ParseContent(`["a"]`, false)
	s.assertMalformed(err)
}

func (s *ValidateSuite) TestMissingRequiredFieldIsMalformed() {
	for _, raw := range []string{
		`{"confidenceScore":50,"accuracyNote":"x","summary":[],"theses":[],"examples":[],"runningNotes":"","quiz":[]}`,
		`{"title":"T","confidenceScore":50,"accuracyNote":"x","theses":[],"examples":[],"runningNotes":"","quiz":[]}`,
		`{"title":"T","confidenceScore":50,"accuracyNote":"x","summary":[],"theses":[],"examples":[],"runningNotes":"","quiz":null}`,
		`{"title":"T","confidenceScore":50,"summary":[],"theses":[],"examples":[],"runningNotes":"","quiz":[]}`,
	} {
		_, err := ParseContent(raw, false)
		s.assertMalformed(err)
	}
}

func (s *ValidateSuite) TestWrongFieldTypeIsMalformed() {
	raw := `{"title":42,"confidenceScore":50,"accuracyNote":"x","summary":[],"theses":[],"examples":[],"runningNotes":"","quiz":[]}`
	_, err := ParseContent(raw, false)
	s.assertMalformed(err)
}

func (s *ValidateSuite) TestMissingConfidenceToleratesMissingNote() {
	raw := `{"title":"T","summary":[],"theses":null,"examples":[],"runningNotes":"","quiz":[]}`

	content, err := ParseContent(raw, false)
	s.Require().NoError(err)
	s.Equal(0.0, content.ConfidenceScore)
	s.Equal(UnverifiedAccuracyNote, content.AccuracyNote)
	s.Equal([]string{}, content.Theses)
}

func (s *ValidateSuite) TestOutOfRangeConfidenceIsUnverified() {
	raw := `{"title":"T","confidenceScore":140,"accuracyNote":"great","summary":[],"theses":[],"examples":[],"runningNotes":"","quiz":[]}`

	content, err := ParseContent(raw, false)
	s.Require().NoError(err)
	s.Equal(0.0, content.ConfidenceScore)
	s.Equal(UnverifiedAccuracyNote, content.AccuracyNote)
}

func (s *ValidateSuite) TestNormalizeIsIdempotent() {
	inputs := []model.GeneratedContent{
		{Title: "A", ConfidenceScore: 55, AccuracyNote: "ok", Theses: []string{"t"}},
		{Title: "B", ConfidenceScore: -3, AccuracyNote: "bad"},
		{},
	}
	for _, in := range inputs {
		once := Normalize(in)
		s.Equal(once, Normalize(once))
	}

	parsed, err := ParseContent(validResponse, false)
	s.Require().NoError(err)
	s.Equal(parsed, Normalize(parsed))
}

// The default validator does not bounds-check correctAnswer; QuizItem.Valid
// is how consumers detect the out-of-range case.
func (s *ValidateSuite) TestOutOfRangeCorrectAnswerAcceptedByDefault() {
	raw := `{"title":"T","confidenceScore":70,"accuracyNote":"x","summary":[],"theses":[],"examples":[],"runningNotes":"",
		"quiz":[{"question":"Q","options":["a","b"],"correctAnswer":2,"explanation":"e"}]}`

	content, err := ParseContent(raw, false)
	s.Require().NoError(err)
	s.Require().Len(content.Quiz, 1)
	s.Equal(2, content.Quiz[0].CorrectAnswer)
	s.False(content.Quiz[0].Valid())
}

func (s *ValidateSuite) TestStrictQuizRejectsInvalidItems() {
	for _, quiz := range []string{
		`[{"question":"Q","options":["a","b"],"correctAnswer":2,"explanation":"e"}]`,
		`[{"question":"Q","options":[],"correctAnswer":0,"explanation":"e"}]`,
	} {
		raw := `{"title":"T","confidenceScore":70,"accuracyNote":"x","summary":[],"theses":[],"examples":[],"runningNotes":"","quiz":` + quiz + `}`
		_, err := ParseContent(raw, true)
		s.assertMalformed(err)
	}

	_, err := ParseContent(validResponse, true)
	s.NoError(err)
}

func (s *ValidateSuite) assertMalformed(err error) {
	s.Require().Error(err)
	failure, ok := model.AsFailure(err)
	s.Require().True(ok)
	s.Equal(model.FailureMalformedOutput, failure.Code)
}
