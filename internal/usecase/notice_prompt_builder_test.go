package usecase_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"notice-orchestrator/internal/domain"
	"notice-orchestrator/internal/usecase"
)

func TestNoticePromptBuilder_ContextBlock(t *testing.T) {
	builder := usecase.NewNoticePromptBuilder()

	t.Run("empty hits yield empty block", func(t *testing.T) {
		assert.Equal(t, "", builder.ContextBlock(nil))
	})

	t.Run("hits are numbered with source labels", func(t *testing.T) {
		block := builder.ContextBlock([]domain.Hit{
			{Document: "first passage", SourceLabel: "tenancy-act"},
			{Document: "second passage", Source: "/docs/contract.pdf"},
			{Document: "third passage"},
		})

		assert.Contains(t, block, "[1] Source: tenancy-act\nfirst passage")
		assert.Contains(t, block, "[2] Source: /docs/contract.pdf\nsecond passage")
		assert.Contains(t, block, "[3] Source: unknown\nthird passage")
	})
}

func TestNoticePromptBuilder_NoticeTemplate(t *testing.T) {
	builder := usecase.NewNoticePromptBuilder()
	today := "29 August 2026"

	t.Run("blank details render literal placeholders", func(t *testing.T) {
		tpl := builder.NoticeTemplate(domain.UserDetails{}, today)

		assert.Contains(t, tpl, "Date: 29 August 2026")
		assert.Contains(t, tpl, "<Your Name / Firm>")
		assert.Contains(t, tpl, "<Recipient Name / Entity>")
		assert.Contains(t, tpl, "<Address>")
		assert.Contains(t, tpl, "<Jurisdiction>")
		assert.Contains(t, tpl, "30 days from receipt (Standard)")
	})

	t.Run("provided details appear verbatim", func(t *testing.T) {
		tpl := builder.NoticeTemplate(domain.UserDetails{
			SenderName:    "A. Advocate",
			RecipientName: "B. Builder Ltd",
			Jurisdiction:  "Maharashtra",
			Deadline:      "15 days",
			Urgency:       "High",
		}, today)

		assert.Contains(t, tpl, "A. Advocate")
		assert.Contains(t, tpl, "B. Builder Ltd")
		assert.Contains(t, tpl, "Maharashtra")
		assert.Contains(t, tpl, "15 days (High)")
		assert.NotContains(t, tpl, "<Your Name / Firm>")
	})

	t.Run("section order is fixed", func(t *testing.T) {
		tpl := builder.NoticeTemplate(domain.UserDetails{}, today)
		sections := []string{
			"Date:", "From:", "To:", "Subject:", "Background / Facts:",
			"Legal Basis:", "Demands / Relief Sought:", "Response Timeline:",
			"Consequences of Non-Compliance:", "Disclaimer:", "Signature:", "Jurisdiction:",
		}

		last := -1
		for _, section := range sections {
			idx := strings.Index(tpl, section)
			assert.Greater(t, idx, last, "section %q out of order", section)
			last = idx
		}
	})
}

func TestNoticePromptBuilder_BuildSingleShot(t *testing.T) {
	builder := usecase.NewNoticePromptBuilder()
	today := "29 August 2026"

	t.Run("is deterministic", func(t *testing.T) {
		hits := []domain.Hit{{Document: "passage", SourceLabel: "act"}}
		details := domain.UserDetails{SenderName: "A"}
		answers := map[string]string{"b_key": "2", "a_key": "1", "c_key": "3"}

		first := builder.BuildSingleShot("the matter", hits, details, answers, today)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, builder.BuildSingleShot("the matter", hits, details, answers, today))
		}
	})

	t.Run("no hits renders explicit marker", func(t *testing.T) {
		prompt := builder.BuildSingleShot("the matter", nil, domain.UserDetails{}, nil, today)

		assert.Contains(t, prompt, usecase.NoContextMarker)
	})

	t.Run("answers sorted by key", func(t *testing.T) {
		prompt := builder.BuildSingleShot("the matter", nil, domain.UserDetails{},
			map[string]string{"zeta": "z", "alpha": "a"}, today)

		assert.Less(t, strings.Index(prompt, "- alpha: a"), strings.Index(prompt, "- zeta: z"))
	})

	t.Run("embeds the output template", func(t *testing.T) {
		prompt := builder.BuildSingleShot("the matter", nil, domain.UserDetails{}, nil, today)

		assert.Contains(t, prompt, "FORMAT STRICTLY LIKE THIS")
		assert.Contains(t, prompt, builder.NoticeTemplate(domain.UserDetails{}, today))
	})
}

func TestNoticePromptBuilder_BuildController(t *testing.T) {
	builder := usecase.NewNoticePromptBuilder()
	today := "29 August 2026"

	prompt := builder.BuildController("the matter", nil, domain.UserDetails{},
		map[string]string{"invoice_number": "INV-1"}, today)

	assert.Contains(t, prompt, `"stage":"ask"`)
	assert.Contains(t, prompt, `"stage":"draft"`)
	assert.Contains(t, prompt, "- invoice_number: INV-1")
	assert.Contains(t, prompt, usecase.NoContextMarker)
	assert.Contains(t, prompt, builder.NoticeTemplate(domain.UserDetails{}, today))
}
