package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"notice-orchestrator/internal/domain"
)

const (
	maxRationaleLen    = 500
	maxMissingFields   = 12
	maxMissingFieldLen = 64
	defaultDraftTokens = 4096
)

// DraftNoticeInput drives one ask-or-draft controller invocation. The
// controller holds no state between calls: Answers must carry the full
// accumulated answer set every turn.
type DraftNoticeInput struct {
	Matter    string
	Details   domain.UserDetails
	Answers   map[string]string
	K         int
	MaxTokens int
}

// DraftNoticeOutput pairs the decision with the context hits that
// informed it.
type DraftNoticeOutput struct {
	Decision domain.Decision
	Hits     []domain.Hit
}

// DraftNoticeUsecase is the drafting controller: in one LLM round-trip
// it decides whether to ask follow-up questions or draft the notice,
// and turns the model's unreliable JSON reply into a strict two-state
// contract. It is the single place where LLM output-shape tolerance and
// fallback policy live.
type DraftNoticeUsecase interface {
	Execute(ctx context.Context, input DraftNoticeInput) (*DraftNoticeOutput, error)
}

type draftNoticeUsecase struct {
	retrieve  RetrieveContextUsecase
	builder   *NoticePromptBuilder
	llm       domain.LLMClient
	planner   ClarificationPlanner
	maxTokens int
	log       *slog.Logger
	now       func() time.Time
}

func NewDraftNoticeUsecase(
	retrieve RetrieveContextUsecase,
	builder *NoticePromptBuilder,
	llm domain.LLMClient,
	planner ClarificationPlanner,
	maxTokens int,
	log *slog.Logger,
) DraftNoticeUsecase {
	if maxTokens <= 0 {
		maxTokens = defaultDraftTokens
	}
	return &draftNoticeUsecase{
		retrieve:  retrieve,
		builder:   builder,
		llm:       llm,
		planner:   planner,
		maxTokens: maxTokens,
		log:       log,
		now:       time.Now,
	}
}

// controllerReply is the union of both JSON shapes the controller
// prompt allows; Stage discriminates.
type controllerReply struct {
	Stage         string            `json:"stage"`
	Rationale     string            `json:"rationale"`
	MissingFields []string          `json:"missing_fields"`
	Questions     []RawQuestion     `json:"questions"`
	Notice        string            `json:"notice"`
	UsedAnswers   map[string]string `json:"used_answers"`
}

func (u *draftNoticeUsecase) Execute(ctx context.Context, input DraftNoticeInput) (*DraftNoticeOutput, error) {
	if len(strings.TrimSpace(input.Matter)) < MinMatterLength {
		return nil, ErrPromptTooShort
	}

	hits := u.retrieve.Execute(ctx, RetrieveContextInput{Query: input.Matter, K: input.K})

	today := u.now().Format(NoticeDateLayout)
	prompt := u.builder.BuildController(input.Matter, hits, input.Details, input.Answers, today)

	maxTokens := input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = u.maxTokens
	}

	resp, err := u.llm.Chat(ctx, []domain.Message{{Role: "user", Content: prompt}}, maxTokens)
	if err != nil {
		return u.askFallback(ctx, input, hits, fmt.Sprintf("llm call failed: %v", err)), nil
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return u.askFallback(ctx, input, hits, "llm returned an empty reply"), nil
	}
	if !resp.Done {
		u.log.Warn("controller reply truncated by token budget", "max_tokens", maxTokens)
	}

	reply, ok := parseControllerReply(resp.Text)
	if !ok {
		return u.askFallback(ctx, input, hits, "llm reply was not parseable as JSON"), nil
	}

	switch strings.ToLower(strings.TrimSpace(reply.Stage)) {
	case string(domain.StageDraft):
		notice := strings.TrimSpace(reply.Notice)
		if notice == "" {
			// A draft with no text is a failure, never an empty 200.
			return u.askFallback(ctx, input, hits, "llm chose draft but returned an empty notice"), nil
		}
		return &DraftNoticeOutput{
			Hits: hits,
			Decision: domain.Decision{
				Stage: domain.StageDraft,
				Draft: &domain.DraftOutcome{
					Notice:      notice,
					UsedAnswers: reply.UsedAnswers,
				},
			},
		}, nil

	case string(domain.StageAsk):
		ask := &domain.AskOutcome{
			Rationale:     truncate(strings.TrimSpace(reply.Rationale), maxRationaleLen),
			MissingFields: capStrings(reply.MissingFields, maxMissingFields, maxMissingFieldLen),
			Questions:     SanitizeQuestions(reply.Questions),
		}
		if ask.Rationale == "" && len(ask.Questions) == 0 {
			// An ask carrying neither questions nor a rationale gives
			// the caller nothing to act on.
			return u.askFallback(ctx, input, hits, "llm chose ask but gave no questions or rationale"), nil
		}
		return &DraftNoticeOutput{
			Hits: hits,
			Decision: domain.Decision{
				Stage: domain.StageAsk,
				Ask:   ask,
			},
		}, nil

	default:
		// Ambiguous control signal: never silently draft. Ask with an
		// empty question list and a diagnostic rationale.
		u.log.Warn("controller got unrecognized stage", "stage", reply.Stage)
		return &DraftNoticeOutput{
			Hits: hits,
			Decision: domain.Decision{
				Stage: domain.StageAsk,
				Ask: &domain.AskOutcome{
					Rationale: truncate(fmt.Sprintf("unrecognized stage %q in model reply; additional information is required before drafting", reply.Stage), maxRationaleLen),
					Questions: []domain.Question{},
				},
			},
		}, nil
	}
}

// askFallback degrades any controller failure into a well-formed Ask
// using the planner's independently produced questions, so the endpoint
// never hard-fails on unusable LLM output.
func (u *draftNoticeUsecase) askFallback(ctx context.Context, input DraftNoticeInput, hits []domain.Hit, reason string) *DraftNoticeOutput {
	u.log.Warn("drafting controller degraded to ask", "reason", reason)
	questions := u.planner.Plan(ctx, PlanInput{
		Matter:  input.Matter,
		Hits:    hits,
		Details: input.Details,
		K:       input.K,
	})
	return &DraftNoticeOutput{
		Hits: hits,
		Decision: domain.Decision{
			Stage: domain.StageAsk,
			Ask: &domain.AskOutcome{
				Rationale: truncate(reason, maxRationaleLen),
				Questions: questions,
			},
		},
	}
}

func parseControllerReply(raw string) (*controllerReply, bool) {
	trimmed := strings.TrimSpace(raw)

	var reply controllerReply
	if err := json.Unmarshal([]byte(trimmed), &reply); err == nil {
		return &reply, true
	}

	embedded, found := ExtractTrailingJSON(trimmed)
	if !found {
		return nil, false
	}
	if err := json.Unmarshal([]byte(embedded), &reply); err != nil {
		return nil, false
	}
	return &reply, true
}
