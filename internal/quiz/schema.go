package quiz

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// requiredFields are the keys every question candidate must carry.
var requiredFields = []string{"id", "question_text", "options", "correct_answer", "explanation", "difficulty"}

// questionSchema describes the shape of one candidate in the model's
// "questions" array. Option count and answer letter are checked separately
// so they can be reported (or repaired) individually.
var questionSchema = map[string]any{
	"type":     "object",
	"required": requiredFields,
	"properties": map[string]any{
		"id":            map[string]any{"type": []any{"string", "integer"}},
		"question_text": map[string]any{"type": "string"},
		"options": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"explanation": map[string]any{"type": "string"},
		"difficulty":  map[string]any{"type": "string"},
	},
}

const questionSchemaURL = "quizbot://question.json"

var compileQuestionSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	// Round-trip through JSON so the compiler sees plain decoded values.
	raw, err := json.Marshal(questionSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal question schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal question schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(questionSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add question schema: %w", err)
	}
	compiled, err := c.Compile(questionSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile question schema: %w", err)
	}
	return compiled, nil
})

// validateCandidate checks a decoded candidate against questionSchema.
func validateCandidate(candidate any) error {
	compiled, err := compileQuestionSchema()
	if err != nil {
		return err
	}
	return compiled.Validate(candidate)
}
