package usecase_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"notice-orchestrator/internal/domain"
	"notice-orchestrator/internal/usecase"
)

func boolPtr(b bool) *bool { return &b }

func TestSanitizeQuestions(t *testing.T) {
	t.Run("caps list at maximum", func(t *testing.T) {
		raw := make([]usecase.RawQuestion, 15)
		for i := range raw {
			raw[i] = usecase.RawQuestion{ID: fmt.Sprintf("q%d", i), Label: "Label"}
		}

		out := usecase.SanitizeQuestions(raw)

		assert.Len(t, out, domain.MaxQuestions)
	})

	t.Run("synthesizes missing id and label", func(t *testing.T) {
		out := usecase.SanitizeQuestions([]usecase.RawQuestion{{}})

		assert.Equal(t, "question_1", out[0].ID)
		assert.Equal(t, "Additional detail 1", out[0].Label)
	})

	t.Run("slugifies ids", func(t *testing.T) {
		out := usecase.SanitizeQuestions([]usecase.RawQuestion{
			{ID: "  Invoice Number!! ", Label: "Invoice number"},
		})

		assert.Equal(t, "invoice_number", out[0].ID)
	})

	t.Run("deduplicates ids", func(t *testing.T) {
		out := usecase.SanitizeQuestions([]usecase.RawQuestion{
			{ID: "amount", Label: "Amount owed"},
			{ID: "amount", Label: "Amount claimed"},
			{ID: "amount", Label: "Amount paid"},
		})

		assert.Equal(t, "amount", out[0].ID)
		assert.Equal(t, "amount_2", out[1].ID)
		assert.Equal(t, "amount_3", out[2].ID)
	})

	t.Run("required defaults to true", func(t *testing.T) {
		out := usecase.SanitizeQuestions([]usecase.RawQuestion{
			{ID: "a", Label: "A"},
			{ID: "b", Label: "B", Required: boolPtr(false)},
		})

		assert.True(t, out[0].Required)
		assert.False(t, out[1].Required)
	})

	t.Run("unknown type falls back to text", func(t *testing.T) {
		out := usecase.SanitizeQuestions([]usecase.RawQuestion{
			{ID: "a", Label: "A", Type: "dropdown"},
			{ID: "b", Label: "B", Type: "Date"},
		})

		assert.Equal(t, domain.QuestionText, out[0].Type)
		assert.Equal(t, domain.QuestionDate, out[1].Type)
	})

	t.Run("truncates long labels and placeholders", func(t *testing.T) {
		long := strings.Repeat("x", 500)
		out := usecase.SanitizeQuestions([]usecase.RawQuestion{
			{ID: "a", Label: long, Placeholder: long},
		})

		assert.Len(t, []rune(out[0].Label), domain.MaxQuestionTextLen)
		assert.Len(t, []rune(out[0].Placeholder), domain.MaxQuestionTextLen)
	})

	t.Run("truncates long ids", func(t *testing.T) {
		out := usecase.SanitizeQuestions([]usecase.RawQuestion{
			{ID: strings.Repeat("a", 100), Label: "A"},
		})

		assert.Len(t, out[0].ID, domain.MaxQuestionIDLen)
	})
}
