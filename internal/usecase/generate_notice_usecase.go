package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"notice-orchestrator/internal/domain"
)

// GenerateNoticeInput drives the single-shot generation path, with
// optional pre-supplied clarification answers.
type GenerateNoticeInput struct {
	Matter         string
	Details        domain.UserDetails
	Clarifications map[string]string
	K              int
	MaxTokens      int
}

// GenerateNoticeOutput is the drafted notice plus the hits it was
// grounded on and the date used in the template.
type GenerateNoticeOutput struct {
	Notice string
	Hits   []domain.Hit
	Date   string
}

// GenerateNoticeUsecase drafts a notice in one direct LLM prompt. When
// the matter is underspecified and no clarifications were supplied, it
// returns ClarificationNeededError instead of fabricating content.
type GenerateNoticeUsecase interface {
	Execute(ctx context.Context, input GenerateNoticeInput) (*GenerateNoticeOutput, error)
}

type generateNoticeUsecase struct {
	gap       *GapDetector
	planner   ClarificationPlanner
	retrieve  RetrieveContextUsecase
	builder   *NoticePromptBuilder
	llm       domain.LLMClient
	maxTokens int
	log       *slog.Logger
	now       func() time.Time
}

func NewGenerateNoticeUsecase(
	gap *GapDetector,
	planner ClarificationPlanner,
	retrieve RetrieveContextUsecase,
	builder *NoticePromptBuilder,
	llm domain.LLMClient,
	maxTokens int,
	log *slog.Logger,
) GenerateNoticeUsecase {
	if maxTokens <= 0 {
		maxTokens = defaultDraftTokens
	}
	return &generateNoticeUsecase{
		gap:       gap,
		planner:   planner,
		retrieve:  retrieve,
		builder:   builder,
		llm:       llm,
		maxTokens: maxTokens,
		log:       log,
		now:       time.Now,
	}
}

func (u *generateNoticeUsecase) Execute(ctx context.Context, input GenerateNoticeInput) (*GenerateNoticeOutput, error) {
	matter := strings.TrimSpace(input.Matter)
	if len(matter) < MinMatterLength {
		return nil, ErrPromptTooShort
	}

	hits := u.retrieve.Execute(ctx, RetrieveContextInput{Query: matter, K: input.K})

	// Cheap deterministic pre-filter gating the expensive planner.
	if len(input.Clarifications) == 0 && u.gap.NeedsClarification(matter) {
		questions := u.planner.Plan(ctx, PlanInput{
			Matter:  matter,
			Hits:    hits,
			Details: input.Details,
			K:       input.K,
		})
		if len(questions) > 0 {
			return nil, &ClarificationNeededError{Questions: questions}
		}
	}

	today := u.now().Format(NoticeDateLayout)
	prompt := u.builder.BuildSingleShot(matter, hits, input.Details, input.Clarifications, today)

	maxTokens := input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = u.maxTokens
	}

	resp, err := u.llm.Chat(ctx, []domain.Message{
		{Role: "system", Content: "You are a meticulous legal assistant. Draft professional legal notices based on provided context and queries."},
		{Role: "user", Content: prompt},
	}, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("llm generation failed: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, errors.New("llm returned an empty notice")
	}
	if !resp.Done {
		u.log.Warn("notice truncated by token budget", "max_tokens", maxTokens)
	}

	return &GenerateNoticeOutput{
		Notice: strings.TrimSpace(resp.Text),
		Hits:   hits,
		Date:   today,
	}, nil
}
