package notice_http

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"notice-orchestrator/internal/domain"
	"notice-orchestrator/internal/usecase"
)

// Closed vocabulary of machine-readable response codes. Protocol steps
// ("resubmit with more information") must be distinguishable from
// genuine failures by these values alone.
const (
	CodePromptTooShort     = "prompt_too_short"
	CodeNeedsClarification = "needs_clarification"
	CodeNeedInfo           = "need_info"
)

type Handler struct {
	ingest    usecase.IngestDocumentUsecase
	retrieve  usecase.RetrieveContextUsecase
	generate  usecase.GenerateNoticeUsecase
	draft     usecase.DraftNoticeUsecase
	planner   usecase.ClarificationPlanner
	gap       *usecase.GapDetector
	repo      domain.ChunkRepository
	uploadDir string
}

func NewHandler(
	ingest usecase.IngestDocumentUsecase,
	retrieve usecase.RetrieveContextUsecase,
	generate usecase.GenerateNoticeUsecase,
	draft usecase.DraftNoticeUsecase,
	planner usecase.ClarificationPlanner,
	gap *usecase.GapDetector,
	repo domain.ChunkRepository,
	uploadDir string,
) *Handler {
	return &Handler{
		ingest:    ingest,
		retrieve:  retrieve,
		generate:  generate,
		draft:     draft,
		planner:   planner,
		gap:       gap,
		repo:      repo,
		uploadDir: uploadDir,
	}
}

// Register attaches all routes to the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/ingest-path", h.IngestPath)
	e.POST("/ingest-file", h.IngestFile)
	e.POST("/clarify", h.Clarify)
	e.POST("/generate-notice", h.GenerateNotice)
	e.POST("/dynamic-draft", h.DynamicDraft)
	e.GET("/stats", h.Stats)
}

type hitJSON struct {
	ID       string          `json:"id"`
	Document string          `json:"document"`
	Metadata hitMetadataJSON `json:"metadata"`
	Score    float32         `json:"score"`
}

type hitMetadataJSON struct {
	Source      string `json:"source"`
	SourceLabel string `json:"source_label"`
}

func toHitJSON(hits []domain.Hit) []hitJSON {
	out := make([]hitJSON, 0, len(hits))
	for _, hit := range hits {
		out = append(out, hitJSON{
			ID:       hit.ChunkID.String(),
			Document: hit.Document,
			Metadata: hitMetadataJSON{
				Source:      hit.Source,
				SourceLabel: hit.SourceLabel,
			},
			Score: hit.Score,
		})
	}
	return out
}

type ingestPathRequest struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// IngestPath ingests a document already on the server's filesystem.
// (POST /ingest-path)
func (h *Handler) IngestPath(c echo.Context) error {
	var req ingestPathRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"status": "error", "error": "invalid request"})
	}

	count, source, err := h.ingest.Ingest(c.Request().Context(), req.Path, req.Label)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"status": "error", "error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"chunks": count,
		"source": source,
	})
}

// IngestFile stores an uploaded document and ingests the stored copy.
// (POST /ingest-file)
func (h *Handler) IngestFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"status": "error", "error": "missing file"})
	}
	label := c.FormValue("label")

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"status": "error", "error": err.Error()})
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
	}

	dest := filepath.Join(h.uploadDir, filepath.Base(fileHeader.Filename))
	dst, err := os.Create(dest)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
	}
	if err := dst.Close(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
	}

	count, source, err := h.ingest.Ingest(c.Request().Context(), dest, label)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"chunks": count,
		"source": source,
	})
}

type clarifyRequest struct {
	Prompt        string `json:"prompt"`
	SenderName    string `json:"senderName"`
	RecipientName string `json:"recipientName"`
	Jurisdiction  string `json:"jurisdiction"`
	Deadline      string `json:"deadline"`
	Urgency       string `json:"urgency"`
	K             int    `json:"k"`
}

// Clarify runs the gap pre-check and, when flagged, plans follow-up
// questions. (POST /clarify)
func (h *Handler) Clarify(c echo.Context) error {
	var req clarifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if !h.gap.NeedsClarification(req.Prompt) {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"needed":    false,
			"questions": []domain.Question{},
		})
	}

	ctx := c.Request().Context()
	hits := h.retrieve.Execute(ctx, usecase.RetrieveContextInput{Query: req.Prompt, K: req.K})
	questions := h.planner.Plan(ctx, usecase.PlanInput{
		Matter: req.Prompt,
		Hits:   hits,
		Details: domain.UserDetails{
			SenderName:    req.SenderName,
			RecipientName: req.RecipientName,
			Jurisdiction:  req.Jurisdiction,
			Deadline:      req.Deadline,
			Urgency:       req.Urgency,
		},
		K: req.K,
	})

	return c.JSON(http.StatusOK, map[string]interface{}{
		"needed":    true,
		"questions": questions,
	})
}

type generateNoticeRequest struct {
	Prompt         string            `json:"prompt"`
	SenderName     string            `json:"senderName"`
	RecipientName  string            `json:"recipientName"`
	Jurisdiction   string            `json:"jurisdiction"`
	Deadline       string            `json:"deadline"`
	Urgency        string            `json:"urgency"`
	K              int               `json:"k"`
	MaxTokens      int               `json:"max_tokens"`
	Clarifications map[string]string `json:"clarifications"`
}

// GenerateNotice drafts a notice in a single shot, optionally seeded
// with pre-supplied clarification answers. (POST /generate-notice)
func (h *Handler) GenerateNotice(c echo.Context) error {
	var req generateNoticeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	details := domain.UserDetails{
		SenderName:    req.SenderName,
		RecipientName: req.RecipientName,
		Jurisdiction:  req.Jurisdiction,
		Deadline:      req.Deadline,
		Urgency:       req.Urgency,
	}

	output, err := h.generate.Execute(c.Request().Context(), usecase.GenerateNoticeInput{
		Matter:         req.Prompt,
		Details:        details,
		Clarifications: req.Clarifications,
		K:              req.K,
		MaxTokens:      req.MaxTokens,
	})
	if err != nil {
		var needsClarification *usecase.ClarificationNeededError
		switch {
		case errors.Is(err, usecase.ErrPromptTooShort):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"code":  CodePromptTooShort,
				"error": "prompt must be at least 20 characters",
			})
		case errors.As(err, &needsClarification):
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"code":      CodeNeedsClarification,
				"questions": needsClarification.Questions,
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notice":  output.Notice,
		"context": toHitJSON(output.Hits),
		"metadata": map[string]string{
			"senderName":    req.SenderName,
			"recipientName": req.RecipientName,
			"jurisdiction":  req.Jurisdiction,
			"deadline":      req.Deadline,
			"urgency":       req.Urgency,
			"date":          output.Date,
		},
	})
}

type dynamicDraftRequest struct {
	Prompt           string            `json:"prompt"`
	SenderName       string            `json:"senderName"`
	RecipientName    string            `json:"recipientName"`
	SenderAddress    string            `json:"senderAddress"`
	RecipientAddress string            `json:"recipientAddress"`
	Jurisdiction     string            `json:"jurisdiction"`
	Deadline         string            `json:"deadline"`
	Urgency          string            `json:"urgency"`
	Answers          map[string]string `json:"answers"`
	K                int               `json:"k"`
	MaxTokens        int               `json:"max_tokens"`
}

// DynamicDraft runs the stateless ask-or-draft controller. Callers
// resubmit with the accumulated answers until the controller drafts.
// (POST /dynamic-draft)
func (h *Handler) DynamicDraft(c echo.Context) error {
	var req dynamicDraftRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	output, err := h.draft.Execute(c.Request().Context(), usecase.DraftNoticeInput{
		Matter: req.Prompt,
		Details: domain.UserDetails{
			SenderName:       req.SenderName,
			SenderAddress:    req.SenderAddress,
			RecipientName:    req.RecipientName,
			RecipientAddress: req.RecipientAddress,
			Jurisdiction:     req.Jurisdiction,
			Deadline:         req.Deadline,
			Urgency:          req.Urgency,
		},
		Answers:   req.Answers,
		K:         req.K,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrPromptTooShort) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"code":  CodePromptTooShort,
				"error": "prompt must be at least 20 characters",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if output.Decision.Stage == domain.StageAsk {
		ask := output.Decision.Ask
		missing := ask.MissingFields
		if missing == nil {
			missing = []string{}
		}
		questions := ask.Questions
		if questions == nil {
			questions = []domain.Question{}
		}
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"code":           CodeNeedInfo,
			"rationale":      ask.Rationale,
			"missing_fields": missing,
			"questions":      questions,
		})
	}

	draft := output.Decision.Draft
	usedAnswers := draft.UsedAnswers
	if usedAnswers == nil {
		usedAnswers = map[string]string{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notice":  draft.Notice,
		"context": toHitJSON(output.Hits),
		"metadata": map[string]interface{}{
			"senderName":       req.SenderName,
			"recipientName":    req.RecipientName,
			"senderAddress":    req.SenderAddress,
			"recipientAddress": req.RecipientAddress,
			"jurisdiction":     req.Jurisdiction,
			"deadline":         req.Deadline,
			"urgency":          req.Urgency,
			"used_answers":     usedAnswers,
		},
	})
}

// Stats reports approximate index size; best-effort, a store error is
// reported in the body rather than failing the request. (GET /stats)
func (h *Handler) Stats(c echo.Context) error {
	count, err := h.repo.CountChunks(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "error", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"approx_samples": count,
		"db":             "pgvector",
	})
}
