package usecase

import (
	"fmt"
	"strings"

	"notice-orchestrator/internal/domain"
)

// RawQuestion is the untrusted question shape parsed from LLM output.
// Required is a pointer so an absent field can default to true.
type RawQuestion struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Required    *bool  `json:"required"`
	Type        string `json:"type"`
}

// SanitizeQuestions normalizes untrusted question lists into the closed
// Question contract. Malformed entries are repaired with synthesized
// defaults rather than dropped; the result is capped at
// domain.MaxQuestions and identifiers are unique within the list.
func SanitizeQuestions(raw []RawQuestion) []domain.Question {
	out := make([]domain.Question, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, r := range raw {
		if len(out) >= domain.MaxQuestions {
			break
		}

		id := slugify(r.ID)
		if id == "" {
			id = fmt.Sprintf("question_%d", len(out)+1)
		}
		id = uniqueID(id, seen)
		seen[id] = struct{}{}

		label := strings.TrimSpace(r.Label)
		if label == "" {
			label = fmt.Sprintf("Additional detail %d", len(out)+1)
		}

		required := true
		if r.Required != nil {
			required = *r.Required
		}

		qt := domain.QuestionType(strings.ToLower(strings.TrimSpace(r.Type)))
		if !domain.ValidQuestionType(qt) {
			qt = domain.QuestionText
		}

		out = append(out, domain.Question{
			ID:          id,
			Label:       truncate(label, domain.MaxQuestionTextLen),
			Placeholder: truncate(strings.TrimSpace(r.Placeholder), domain.MaxQuestionTextLen),
			Type:        qt,
			Required:    required,
		})
	}

	return out
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return truncate(strings.Trim(b.String(), "_"), domain.MaxQuestionIDLen)
}

func uniqueID(id string, seen map[string]struct{}) string {
	if _, dup := seen[id]; !dup {
		return id
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf("_%d", n)
		candidate := truncate(id, domain.MaxQuestionIDLen-len(suffix)) + suffix
		if _, dup := seen[candidate]; !dup {
			return candidate
		}
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func capStrings(values []string, maxEntries, maxLen int) []string {
	var out []string
	for _, v := range values {
		if len(out) >= maxEntries {
			break
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, truncate(v, maxLen))
	}
	return out
}
