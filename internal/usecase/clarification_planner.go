package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"notice-orchestrator/internal/domain"
)

const plannerMaxTokens = 1024

// PlanInput carries everything the planner needs to tailor its
// follow-up questions to the matter at hand.
type PlanInput struct {
	Matter  string
	Hits    []domain.Hit
	Details domain.UserDetails
	K       int
}

// ClarificationPlanner produces follow-up questions for an
// underspecified matter. Plan never fails: when the LLM call errors or
// returns unusable JSON, a deterministic keyword-matched question set
// is substituted.
type ClarificationPlanner interface {
	Plan(ctx context.Context, input PlanInput) []domain.Question
}

type llmClarificationPlanner struct {
	llm     domain.LLMClient
	builder *NoticePromptBuilder
	log     *slog.Logger
}

func NewClarificationPlanner(llm domain.LLMClient, builder *NoticePromptBuilder, log *slog.Logger) ClarificationPlanner {
	return &llmClarificationPlanner{llm: llm, builder: builder, log: log}
}

type plannedQuestions struct {
	Questions []RawQuestion `json:"questions"`
}

func (p *llmClarificationPlanner) Plan(ctx context.Context, input PlanInput) []domain.Question {
	prompt := p.buildPrompt(input)

	resp, err := p.llm.Chat(ctx, []domain.Message{
		{Role: "system", Content: "You are a legal intake assistant. You output only JSON."},
		{Role: "user", Content: prompt},
	}, plannerMaxTokens)
	if err != nil {
		p.log.Warn("clarification planning failed, using heuristic questions", "error", err)
		return FallbackQuestions(input.Matter)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		p.log.Warn("clarification planner got empty reply, using heuristic questions")
		return FallbackQuestions(input.Matter)
	}

	parsed, ok := parsePlannedQuestions(resp.Text)
	if !ok || len(parsed.Questions) == 0 {
		p.log.Warn("clarification planner reply unusable, using heuristic questions")
		return FallbackQuestions(input.Matter)
	}

	return SanitizeQuestions(parsed.Questions)
}

// parsePlannedQuestions tries the raw reply first, then the last
// balanced JSON object embedded in it.
func parsePlannedQuestions(raw string) (*plannedQuestions, bool) {
	trimmed := strings.TrimSpace(raw)

	var out plannedQuestions
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return &out, true
	}

	embedded, found := ExtractTrailingJSON(trimmed)
	if !found {
		return nil, false
	}
	if err := json.Unmarshal([]byte(embedded), &out); err != nil {
		return nil, false
	}
	return &out, true
}

func (p *llmClarificationPlanner) buildPrompt(input PlanInput) string {
	var sb strings.Builder
	sb.WriteString("A caller wants a formal legal notice drafted but the matter description below may be missing essential facts. ")
	sb.WriteString("List the clarification questions a careful lawyer would ask before drafting.\n\n")

	sb.WriteString("MATTER DESCRIPTION:\n")
	sb.WriteString(strings.TrimSpace(input.Matter))
	sb.WriteString("\n\n")

	sb.WriteString("=== CONTEXT START ===\n")
	sb.WriteString(p.builder.contextOrMarker(input.Hits))
	sb.WriteString("\n=== CONTEXT END ===\n\n")

	sb.WriteString("ALREADY KNOWN (do not ask about these):\n")
	sb.WriteString("Sender Name: " + orPlaceholder(input.Details.SenderName, "unknown") + "\n")
	sb.WriteString("Recipient Name: " + orPlaceholder(input.Details.RecipientName, "unknown") + "\n")
	sb.WriteString("Jurisdiction: " + orPlaceholder(input.Details.Jurisdiction, "unknown") + "\n")
	sb.WriteString("Response Deadline: " + orPlaceholder(input.Details.Deadline, "unknown") + "\n")
	sb.WriteString("Urgency: " + orPlaceholder(input.Details.Urgency, "unknown") + "\n\n")

	sb.WriteString("GUIDANCE (examples, not hard rules): for invoice or payment disputes ask about invoice numbers, amounts and due dates; ")
	sb.WriteString("for lease matters ask about the property, rent and the breach; for copyright or trademark matters ask about the protected work or mark and the infringing use; ")
	sb.WriteString("for contract matters ask about the agreement date and the breached obligation; for harassment matters ask about incidents, dates and evidence.\n\n")

	sb.WriteString(fmt.Sprintf("Reply with ONLY a JSON object, no other text, at most %d questions:\n", domain.MaxQuestions))
	sb.WriteString(`{"questions":[{"id":"slug_identifier","label":"the question","placeholder":"example answer","required":true,"type":"text|date|number|url"}]}`)
	sb.WriteString("\n")
	return sb.String()
}

// matterCategory pairs trigger keywords with a fixed question template.
type matterCategory struct {
	keywords  []string
	questions []domain.Question
}

var matterCategories = []matterCategory{
	{
		keywords: []string{"invoice", "unpaid", "payment due", "owed", "outstanding amount"},
		questions: []domain.Question{
			{ID: "invoice_number", Label: "Invoice number", Placeholder: "INV-2024-0042", Type: domain.QuestionText, Required: true},
			{ID: "invoice_amount", Label: "Total amount outstanding", Placeholder: "45000", Type: domain.QuestionNumber, Required: true},
			{ID: "invoice_date", Label: "Date the invoice was issued", Placeholder: "2024-01-15", Type: domain.QuestionDate, Required: true},
			{ID: "due_date", Label: "Date payment fell due", Placeholder: "2024-02-15", Type: domain.QuestionDate, Required: true},
			{ID: "goods_or_services", Label: "Goods or services the invoice covers", Placeholder: "Consulting services for Q1", Type: domain.QuestionText, Required: true},
		},
	},
	{
		keywords: []string{"lease", "rent", "tenant", "landlord", "evict"},
		questions: []domain.Question{
			{ID: "property_address", Label: "Full address of the leased property", Placeholder: "12 Main Street, Apartment 4", Type: domain.QuestionText, Required: true},
			{ID: "lease_start_date", Label: "Lease start date", Placeholder: "2023-06-01", Type: domain.QuestionDate, Required: true},
			{ID: "monthly_rent", Label: "Monthly rent amount", Placeholder: "1800", Type: domain.QuestionNumber, Required: true},
			{ID: "breach_description", Label: "What term of the lease was breached", Placeholder: "Rent unpaid since March", Type: domain.QuestionText, Required: true},
			{ID: "arrears_amount", Label: "Total arrears, if any", Placeholder: "5400", Type: domain.QuestionNumber, Required: false},
		},
	},
	{
		keywords: []string{"copyright", "dmca", "pirat", "plagiar"},
		questions: []domain.Question{
			{ID: "work_title", Label: "Title of the protected work", Placeholder: "Photograph series 'Harbour'", Type: domain.QuestionText, Required: true},
			{ID: "registration_number", Label: "Copyright registration number, if registered", Placeholder: "REG-123456", Type: domain.QuestionText, Required: false},
			{ID: "infringing_url", Label: "Where the infringing copy appears", Placeholder: "https://example.com/copy", Type: domain.QuestionURL, Required: true},
			{ID: "first_noticed_date", Label: "When the infringement was first noticed", Placeholder: "2024-03-10", Type: domain.QuestionDate, Required: true},
		},
	},
	{
		keywords: []string{"trademark", "brand name", "logo", "passing off"},
		questions: []domain.Question{
			{ID: "mark_name", Label: "The trademark or brand name", Placeholder: "ACME", Type: domain.QuestionText, Required: true},
			{ID: "registration_number", Label: "Trademark registration number, if registered", Placeholder: "TM-987654", Type: domain.QuestionText, Required: false},
			{ID: "infringing_use", Label: "How the mark is being misused", Placeholder: "Similar logo on competing goods", Type: domain.QuestionText, Required: true},
			{ID: "first_use_date", Label: "When the infringing use began", Placeholder: "2024-01-01", Type: domain.QuestionDate, Required: true},
		},
	},
	{
		keywords: []string{"contract", "agreement", "breach", "deliverable"},
		questions: []domain.Question{
			{ID: "contract_date", Label: "Date the contract was signed", Placeholder: "2023-09-20", Type: domain.QuestionDate, Required: true},
			{ID: "breached_clause", Label: "Which clause or obligation was breached", Placeholder: "Clause 7: delivery within 30 days", Type: domain.QuestionText, Required: true},
			{ID: "breach_description", Label: "What happened, in brief", Placeholder: "Goods never delivered", Type: domain.QuestionText, Required: true},
			{ID: "loss_amount", Label: "Estimated loss suffered", Placeholder: "120000", Type: domain.QuestionNumber, Required: false},
		},
	},
	{
		keywords: []string{"harass", "defam", "threat", "stalk", "abuse"},
		questions: []domain.Question{
			{ID: "incidents_description", Label: "Describe the incidents", Placeholder: "Repeated threatening messages", Type: domain.QuestionText, Required: true},
			{ID: "first_incident_date", Label: "Date of the first incident", Placeholder: "2024-02-01", Type: domain.QuestionDate, Required: true},
			{ID: "evidence_available", Label: "Evidence available (messages, witnesses, recordings)", Placeholder: "Screenshots of messages", Type: domain.QuestionText, Required: true},
			{ID: "police_report", Label: "Police report number, if filed", Placeholder: "FIR 123/2024", Type: domain.QuestionText, Required: false},
		},
	},
}

// genericQuestions is the template used when no category keyword matches.
var genericQuestions = []domain.Question{
	{ID: "incident_date", Label: "When did the events take place", Placeholder: "2024-03-01", Type: domain.QuestionDate, Required: true},
	{ID: "parties_involved", Label: "Who are the parties involved", Placeholder: "Sender, recipient, any third parties", Type: domain.QuestionText, Required: true},
	{ID: "desired_outcome", Label: "What outcome do you want from the notice", Placeholder: "Payment of dues within 30 days", Type: domain.QuestionText, Required: true},
	{ID: "amount_claimed", Label: "Amount claimed, if any", Placeholder: "25000", Type: domain.QuestionNumber, Required: false},
	{ID: "supporting_documents", Label: "Supporting documents you hold", Placeholder: "Contract, emails, receipts", Type: domain.QuestionText, Required: false},
}

// FallbackQuestions returns the deterministic heuristic question set
// for a matter description, keyword-matched per category and capped at
// domain.MaxFallbackQuestions.
func FallbackQuestions(matter string) []domain.Question {
	lower := strings.ToLower(matter)

	var out []domain.Question
	seen := make(map[string]struct{})
	for _, cat := range matterCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				for _, q := range cat.questions {
					if _, dup := seen[q.ID]; dup {
						continue
					}
					seen[q.ID] = struct{}{}
					out = append(out, q)
				}
				break
			}
		}
	}
	if len(out) == 0 {
		out = append(out, genericQuestions...)
	}
	if len(out) > domain.MaxFallbackQuestions {
		out = out[:domain.MaxFallbackQuestions]
	}
	return out
}
