package service

import (
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/pkg/llmjson"
)

// Schema verdicts recorded with every generated result.
const (
	schemaValid   = "valid"
	schemaInvalid = "invalid"
	schemaSkipped = "skipped"
)

const stringArray = `{"type": "array", "items": {"type": "string"}}`

var generationSchemas = map[dto.ResultKind]*jsonschema.Schema{
	dto.KindLearningPlan: jsonschema.MustCompileString("learning_plan.json", `{
		"type": "object",
		"required": ["title", "days"],
		"properties": {
			"title": {"type": "string"},
			"overview": {"type": "string"},
			"days": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["day", "title", "subtopics"],
					"properties": {
						"day": {"type": "integer", "minimum": 1},
						"title": {"type": "string"},
						"subtopics": `+stringArray+`,
						"objectives": `+stringArray+`
					}
				}
			}
		}
	}`),
	dto.KindDetailedContent: jsonschema.MustCompileString("detailed_content.json", `{
		"type": "object",
		"required": ["content"],
		"properties": {
			"content": {"type": "string", "minLength": 1},
			"keyPoints": `+stringArray+`,
			"examples": `+stringArray+`,
			"practicalApplications": `+stringArray+`
		}
	}`),
	dto.KindQuizQuestions: jsonschema.MustCompileString("quiz_questions.json", `{
		"type": "object",
		"required": ["questions"],
		"properties": {
			"questions": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["question"],
					"properties": {
						"question": {"type": "string"},
						"type": {"type": "string"},
						"options": `+stringArray+`,
						"answer": {"type": "string"},
						"explanation": {"type": "string"}
					}
				}
			}
		}
	}`),
	dto.KindGrading: jsonschema.MustCompileString("grading.json", `{
		"type": "object",
		"required": ["score", "feedback"],
		"properties": {
			"score": {"type": "number", "minimum": 0, "maximum": 10},
			"feedback": {"type": "string"},
			"strengths": `+stringArray+`,
			"improvements": `+stringArray+`
		}
	}`),
	dto.KindTutorAnswer: jsonschema.MustCompileString("tutor_answer.json", `{
		"type": "object",
		"required": ["answer"],
		"properties": {
			"answer": {"type": "string", "minLength": 1},
			"followUpQuestions": `+stringArray+`,
			"references": `+stringArray+`
		}
	}`),
}

// schemaVerdict checks a decoded object against the schema for kind. Objects
// salvaged by field extraction are not checked.
func schemaVerdict(kind dto.ResultKind, obj llmjson.Object, source llmjson.Source) (string, error) {
	if source != llmjson.SourceStrict && source != llmjson.SourceEmbedded {
		return schemaSkipped, nil
	}
	schema, ok := generationSchemas[kind]
	if !ok {
		return schemaSkipped, nil
	}
	if err := schema.Validate(map[string]any(obj)); err != nil {
		return schemaInvalid, err
	}
	return schemaValid, nil
}
