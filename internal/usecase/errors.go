package usecase

import (
	"errors"
	"fmt"

	"notice-orchestrator/internal/domain"
)

// MinMatterLength is the minimum trimmed prompt length accepted by the
// drafting endpoints.
const MinMatterLength = 20

// ErrPromptTooShort rejects matter descriptions below MinMatterLength.
var ErrPromptTooShort = errors.New("prompt too short")

// ClarificationNeededError is a protocol step, not a failure: the
// single-shot generation path needs answers before it will draft.
type ClarificationNeededError struct {
	Questions []domain.Question
}

func (e *ClarificationNeededError) Error() string {
	return fmt.Sprintf("clarification needed before drafting (%d questions)", len(e.Questions))
}
