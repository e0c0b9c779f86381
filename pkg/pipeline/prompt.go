package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/utils"
	"github.com/invopop/jsonschema"
)

const baseInstruction = "Analyze the audio content with academic rigor and stay faithful to what is said. " +
	"Do not invent claims, but do integrate relevant background knowledge (definitions, historical context, related theories) where it completes the picture. " +
	"Respond with a single JSON object only. Do not wrap it in markdown code blocks and do not add any text before or after it. " +
	"Return empty values for sections that are not requested below. English only."

const (
	keyTakeawaysClause  = " 'summary': Provide 5-7 detailed key takeaways, focusing on the most substantial insights."
	coreArgumentsClause = " 'theses': Extract 3-5 core arguments, hypotheses, or central claims. Articulate them with academic precision."
	examplesClause      = " 'examples': Provide 3 detailed real-world applications or case studies mentioned or inferred, explaining why they are relevant."
	deepDiveNotesClause = " 'runningNotes': Write a comprehensive deep-dive study guide (approx 600-800 words). Expand on the concepts with definitions and context. " +
		"Use Markdown formatting (## Headers, - Bullet points, **Bold** terms) to structure the notes."
	quizClause = " 'quiz': Generate 5 challenging multiple choice questions that test synthesis and application, not just recall. " +
		"Each item has 'question', 'options' (4 choices), 'correctAnswer' (zero-based index into options) and 'explanation'."
	confidenceClause = " 'confidenceScore': Rate your confidence (0-100) based on audio clarity and content completeness."
	accuracyClause   = " 'accuracyNote': A brief assessment of extraction quality."
	titleClause      = " 'title': A descriptive, academic title."
)

// BuildInstructions returns the instruction text for the requested sections.
// It is deterministic for a given set of options.
func BuildInstructions(opts model.ProcessingOptions) string {
	var b strings.Builder
	b.WriteString(baseInstruction)
	if opts.KeyTakeaways {
		b.WriteString(keyTakeawaysClause)
	}
	if opts.CoreArguments {
		b.WriteString(coreArgumentsClause)
	}
	if opts.Examples {
		b.WriteString(examplesClause)
	}
	if opts.DeepDiveNotes {
		b.WriteString(deepDiveNotesClause)
	}
	if opts.Quiz {
		b.WriteString(quizClause)
	}
	b.WriteString(confidenceClause)
	b.WriteString(accuracyClause)
	b.WriteString(titleClause)
	return b.String()
}

// ResponseSchema reflects GeneratedContent into the JSON schema sent with every
// request. Every top-level field is required regardless of the options so the
// parse path never branches.
func ResponseSchema() (model.JSONSchema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&model.GeneratedContent{})

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	var schemaMap model.JSONSchema
	err = json.Unmarshal(schemaJSON, &schemaMap)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	delete(schemaMap, "$schema")
	delete(schemaMap, "$id")
	return schemaMap, nil
}

// BuildPrompt pairs the instruction text with the response schema.
func BuildPrompt(opts model.ProcessingOptions) (string, model.JSONSchema, error) {
	schema, err := ResponseSchema()
	if err != nil {
		return "", nil, utils.WrapIfNotNil(err)
	}
	return BuildInstructions(opts), schema, nil
}

func BuildRequest(unit model.TransmissionUnit, opts model.ProcessingOptions, cfg model.GeneratorConfig) (model.GenerationRequest, error) {
	instructions, schema, err := BuildPrompt(opts)
	if err != nil {
		return model.GenerationRequest{}, utils.WrapIfNotNil(err)
	}
	return model.GenerationRequest{
		Unit:         unit,
		Instructions: instructions,
		Schema:       schema,
		Sampling: model.SamplingConfig{
			Temperature:     cfg.ResolvedTemperature(),
			DisableThinking: true,
		},
	}, nil
}
