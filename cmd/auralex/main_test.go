package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionFlagsDefaultToAllSections(t *testing.T) {
	assert.Equal(t, model.AllSections(), sectionFlags{}.options())
}

func TestSectionFlagsDisableSections(t *testing.T) {
	opts := sectionFlags{noQuiz: true, noExamples: true}.options()
	assert.Equal(t, model.ProcessingOptions{KeyTakeaways: true, CoreArguments: true, DeepDiveNotes: true}, opts)
}

func TestWriteJSONUsesCamelCaseFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, model.GeneratedContent{Title: "T", ConfidenceScore: 75}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "T", decoded["title"])
	assert.Equal(t, 75.0, decoded["confidenceScore"])
}
