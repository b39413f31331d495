package usecase

import (
	"fmt"
	"sort"
	"strings"

	"notice-orchestrator/internal/domain"
)

// NoticeDateLayout renders the current date the way the notice
// template expects it, e.g. "02 January 2006".
const NoticeDateLayout = "02 January 2006"

// NoContextMarker is substituted for the context block when retrieval
// returned nothing, so the model is told explicitly instead of being
// handed an empty section.
const NoContextMarker = "No relevant context was retrieved."

// Literal placeholder fallbacks used when a user detail is blank. The
// model is instructed to keep these verbatim rather than invent values.
const (
	placeholderSender        = "<Your Name>"
	placeholderSenderFirm    = "<Your Name / Firm>"
	placeholderRecipient     = "<Recipient Name>"
	placeholderRecipientFull = "<Recipient Name / Entity>"
	placeholderAddress       = "<Address>"
	placeholderJurisdiction  = "<Jurisdiction>"
	defaultDeadline          = "30 days from receipt"
	defaultUrgency           = "Standard"
)

// NoticePromptBuilder deterministically assembles the prompts sent to
// the LLM and the notice output template. It is a pure function of its
// inputs: the same (hits, details, answers, today) tuple always yields
// byte-identical text.
type NoticePromptBuilder struct{}

func NewNoticePromptBuilder() *NoticePromptBuilder {
	return &NoticePromptBuilder{}
}

// ContextBlock renders retrieved hits as a numbered source list.
// Returns the empty string when there are no hits.
func (b *NoticePromptBuilder) ContextBlock(hits []domain.Hit) string {
	if len(hits) == 0 {
		return ""
	}
	parts := make([]string, 0, len(hits))
	for i, h := range hits {
		src := h.SourceLabel
		if src == "" {
			src = h.Source
		}
		if src == "" {
			src = "unknown"
		}
		parts = append(parts, fmt.Sprintf("[%d] Source: %s\n%s", i+1, src, h.Document))
	}
	return strings.Join(parts, "\n\n")
}

// NoticeTemplate renders the exact output template the LLM must follow.
// The section list and order are fixed; blank details render as literal
// placeholders. This template is shared verbatim between the
// single-shot prompt, the controller prompt, and the planner's draft
// guidance, and must stay identical across all three.
func (b *NoticePromptBuilder) NoticeTemplate(d domain.UserDetails, today string) string {
	sender := strings.TrimSpace(d.SenderName)
	recipient := strings.TrimSpace(d.RecipientName)
	senderAddr := orPlaceholder(d.SenderAddress, placeholderAddress)
	recipientAddr := orPlaceholder(d.RecipientAddress, placeholderAddress)
	deadline := orPlaceholder(d.Deadline, defaultDeadline)
	urgency := orPlaceholder(d.Urgency, defaultUrgency)
	jurisdiction := orPlaceholder(d.Jurisdiction, placeholderJurisdiction)

	var sb strings.Builder
	sb.WriteString("Date: " + today + "\n\n")
	sb.WriteString("From:\n")
	sb.WriteString(orPlaceholder(sender, placeholderSenderFirm) + "\n")
	sb.WriteString(senderAddr + "\n")
	sb.WriteString("<Contact>\n\n")
	sb.WriteString("To:\n")
	sb.WriteString(orPlaceholder(recipient, placeholderRecipientFull) + "\n")
	sb.WriteString(recipientAddr + "\n\n")
	sb.WriteString("Subject: <Concise subject>\n\n")
	sb.WriteString("Background / Facts:\n<...>\n\n")
	sb.WriteString("Legal Basis:\n")
	sb.WriteString("- Cite provisions as: Act Name — Section X (\"short quote if applicable\")\n")
	sb.WriteString("- Explain why each applies.\n\n")
	sb.WriteString("Demands / Relief Sought:\n<...>\n\n")
	sb.WriteString("Response Timeline:\n")
	sb.WriteString(deadline + " (" + urgency + ")\n\n")
	sb.WriteString("Consequences of Non-Compliance:\n<...>\n\n")
	sb.WriteString("Disclaimer:\n<...>\n\n")
	sb.WriteString("Signature:\n")
	sb.WriteString(orPlaceholder(sender, placeholderSender) + "\n")
	sb.WriteString("<Designation>\n\n")
	sb.WriteString("Jurisdiction:\n")
	sb.WriteString(jurisdiction + "\n")
	return sb.String()
}

// BuildSingleShot assembles the direct drafting prompt used by the
// generate-notice path.
func (b *NoticePromptBuilder) BuildSingleShot(matter string, hits []domain.Hit, d domain.UserDetails, clarifications map[string]string, today string) string {
	var sb strings.Builder
	sb.WriteString("You are a meticulous legal assistant. Using ONLY the context below, draft a formal, professional legal notice. ")
	sb.WriteString("If context is insufficient for any claim, state assumptions explicitly.\n\n")

	sb.WriteString("=== CONTEXT START ===\n")
	sb.WriteString(b.contextOrMarker(hits))
	sb.WriteString("\n=== CONTEXT END ===\n\n")

	b.writeDetails(&sb, d, today)
	b.writeKnownFacts(&sb, clarifications)

	sb.WriteString("QUERY (Matter Description):\n")
	sb.WriteString(strings.TrimSpace(matter))
	sb.WriteString("\n\n")

	sb.WriteString("REQUIREMENTS:\n")
	sb.WriteString("- Write in clear, formal legal language appropriate to the stated jurisdiction.\n")
	sb.WriteString("- Use the names above verbatim in the From and To sections.\n")
	sb.WriteString("- If Jurisdiction is provided, include a line mentioning the applicable jurisdiction.\n")
	sb.WriteString("- In Legal Basis, prefer precise statutory citations from context (Act name and section numbers), quote short relevant fragments when helpful, and avoid fabricating citations.\n")
	sb.WriteString("- In Response Timeline, reflect the provided Response Deadline and optionally reference the Urgency.\n")
	sb.WriteString("- Output exactly the sections of the template below, in the same order, with the same headings.\n\n")

	sb.WriteString("CONSTRAINTS:\n")
	sb.WriteString("- Avoid inventing sections not supported by context.\n")
	sb.WriteString("- If statutes are unclear in the context, say: 'Based on available context, specific statutory citation is not determinable.'\n")
	sb.WriteString("- Do not add extra commentary outside the sections.\n\n")

	sb.WriteString("FORMAT STRICTLY LIKE THIS (no extra commentary outside sections):\n\n")
	sb.WriteString(b.NoticeTemplate(d, today))
	return sb.String()
}

// BuildController assembles the ask-or-draft controller prompt used by
// the dynamic-draft path. The model must reply with exactly one of two
// JSON shapes; everything else is rejected downstream.
func (b *NoticePromptBuilder) BuildController(matter string, hits []domain.Hit, d domain.UserDetails, answers map[string]string, today string) string {
	var sb strings.Builder
	sb.WriteString("You are a meticulous legal assistant drafting formal legal notices. ")
	sb.WriteString("First decide whether you have enough facts to draft; if essential facts are missing and not present in the known facts below, ask for them instead of inventing content.\n\n")

	sb.WriteString("=== CONTEXT START ===\n")
	sb.WriteString(b.contextOrMarker(hits))
	sb.WriteString("\n=== CONTEXT END ===\n\n")

	b.writeDetails(&sb, d, today)
	b.writeKnownFacts(&sb, answers)

	sb.WriteString("MATTER DESCRIPTION:\n")
	sb.WriteString(strings.TrimSpace(matter))
	sb.WriteString("\n\n")

	sb.WriteString("You MUST reply with ONLY one JSON object and no other text, in exactly one of these two shapes:\n\n")
	sb.WriteString(`{"stage":"ask","rationale":"why more information is needed","missing_fields":["field"],"questions":[{"id":"slug","label":"question text","placeholder":"example answer","required":true,"type":"text|date|number|url"}]}`)
	sb.WriteString("\n\nor\n\n")
	sb.WriteString(`{"stage":"draft","notice":"the full notice text","used_answers":{"question_id":"value you relied on"}}`)
	sb.WriteString("\n\n")
	sb.WriteString("Choose \"ask\" only when essential facts (amounts, dates, parties, obligations) are missing from both the matter description and the known facts. ")
	sb.WriteString("Never ask about facts already provided. At most " + fmt.Sprintf("%d", domain.MaxQuestions) + " questions.\n")
	sb.WriteString("When you choose \"draft\", the notice value must follow this template exactly, keeping placeholder tokens for anything still unknown:\n\n")
	sb.WriteString(b.NoticeTemplate(d, today))
	return sb.String()
}

func (b *NoticePromptBuilder) contextOrMarker(hits []domain.Hit) string {
	block := b.ContextBlock(hits)
	if strings.TrimSpace(block) == "" {
		return NoContextMarker
	}
	return block
}

func (b *NoticePromptBuilder) writeDetails(sb *strings.Builder, d domain.UserDetails, today string) {
	sb.WriteString("=== USER PROVIDED DETAILS (USE EXACTLY AS GIVEN WHERE APPLICABLE) ===\n")
	sb.WriteString("Sender Name: " + orPlaceholder(d.SenderName, placeholderSender) + "\n")
	sb.WriteString("Recipient Name: " + orPlaceholder(d.RecipientName, placeholderRecipient) + "\n")
	sb.WriteString("Jurisdiction: " + orPlaceholder(d.Jurisdiction, placeholderJurisdiction) + "\n")
	sb.WriteString("Response Deadline: " + orPlaceholder(d.Deadline, defaultDeadline) + "\n")
	sb.WriteString("Urgency: " + orPlaceholder(d.Urgency, defaultUrgency) + "\n")
	sb.WriteString("Current Date: " + today + "\n\n")
}

// writeKnownFacts renders caller-supplied answers sorted by question
// identifier so the assembled prompt is deterministic.
func (b *NoticePromptBuilder) writeKnownFacts(sb *strings.Builder, answers map[string]string) {
	if len(answers) == 0 {
		return
	}
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("=== KNOWN FACTS (PROVIDED BY THE CALLER, USE VERBATIM) ===\n")
	for _, k := range keys {
		sb.WriteString("- " + k + ": " + strings.TrimSpace(answers[k]) + "\n")
	}
	sb.WriteString("\n")
}

func orPlaceholder(value, fallback string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return fallback
	}
	return v
}
