package content

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/abdallah-7amza/MED-Portal-NUB/internal/flashcards"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/quiz"
)

// quizFileSchema validates the questions/{year}/{branch}/{lesson}.json
// format before unmarshalling. Both sections are optional: a lesson may
// ship MCQs, flashcards, both, or neither.
const quizFileSchema = `{
  "type": "object",
  "properties": {
    "mcqs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question", "options", "correct"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "options": {"type": "array", "items": {"type": "string"}, "minItems": 2},
          "correct": {"type": "integer", "minimum": 0},
          "explanation": {"type": "string"}
        }
      }
    },
    "flashcards": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["front", "back"],
        "properties": {
          "front": {"type": "string", "minLength": 1},
          "back": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var quizSchema = gojsonschema.NewStringLoader(quizFileSchema)

type quizFile struct {
	MCQs       []quiz.Question   `json:"mcqs"`
	Flashcards []flashcards.Card `json:"flashcards"`
}

// parseQuizFile validates and decodes a lesson's quiz/flashcard JSON.
// Any violation makes the whole file malformed: a quiz that is partially
// trusted cannot be scored coherently.
func parseQuizFile(data []byte) ([]quiz.Question, []flashcards.Card, error) {
	result, err := gojsonschema.Validate(quizSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("quiz file is not valid JSON: %w", err)
	}
	if !result.Valid() {
		return nil, nil, fmt.Errorf("quiz file violates schema: %v", result.Errors())
	}

	var file quizFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("decode quiz file: %w", err)
	}

	// The schema bounds correct at 0 but cannot compare it to the option
	// count per question.
	for i, q := range file.MCQs {
		if q.Correct >= len(q.Options) {
			return nil, nil, fmt.Errorf("question %d: correct index %d out of range (%d options)",
				i, q.Correct, len(q.Options))
		}
	}

	return file.MCQs, file.Flashcards, nil
}
