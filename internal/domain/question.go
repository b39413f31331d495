package domain

// QuestionType tags the expected answer format of a clarification
// question. The set is closed; unknown values coerce to QuestionText.
type QuestionType string

const (
	QuestionText   QuestionType = "text"
	QuestionDate   QuestionType = "date"
	QuestionNumber QuestionType = "number"
	QuestionURL    QuestionType = "url"
)

// ValidQuestionType reports whether t belongs to the closed type set.
func ValidQuestionType(t QuestionType) bool {
	switch t {
	case QuestionText, QuestionDate, QuestionNumber, QuestionURL:
		return true
	}
	return false
}

// Question is a requested clarification. Callers key submitted answers
// by ID, so IDs must be unique within one response.
type Question struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Placeholder string       `json:"placeholder"`
	Type        QuestionType `json:"type"`
	Required    bool         `json:"required"`
}

const (
	// MaxQuestions caps any emitted question list.
	MaxQuestions = 10
	// MaxFallbackQuestions caps the heuristic fallback question list.
	MaxFallbackQuestions = 8
	// MaxQuestionIDLen bounds question identifiers.
	MaxQuestionIDLen = 64
	// MaxQuestionTextLen bounds labels and placeholders.
	MaxQuestionTextLen = 300
)
