package domain

// Stage is the two-valued outcome of a drafting decision.
type Stage string

const (
	StageAsk   Stage = "ask"
	StageDraft Stage = "draft"
)

// UserDetails carries the fixed, caller-supplied notice fields. Empty
// fields are rendered with literal placeholder fallbacks by the prompt
// builder, never invented.
type UserDetails struct {
	SenderName       string
	SenderAddress    string
	RecipientName    string
	RecipientAddress string
	Jurisdiction     string
	Deadline         string
	Urgency          string
}

// Decision is the drafting controller's tagged union: exactly one of
// Ask or Draft is populated, matching Stage.
type Decision struct {
	Stage Stage
	Ask   *AskOutcome
	Draft *DraftOutcome
}

// AskOutcome requests more information from the caller.
type AskOutcome struct {
	Rationale     string
	MissingFields []string
	Questions     []Question
}

// DraftOutcome carries the generated notice text.
type DraftOutcome struct {
	Notice      string
	UsedAnswers map[string]string
}
