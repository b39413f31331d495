package notice_http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notice-orchestrator/internal/adapter/notice_http"
	"notice-orchestrator/internal/domain"
	"notice-orchestrator/internal/usecase"
)

type stubIngestor struct {
	count    int
	source   string
	err      error
	gotPath  string
	gotLabel string
}

func (s *stubIngestor) Ingest(ctx context.Context, path, label string) (int, string, error) {
	s.gotPath = path
	s.gotLabel = label
	if s.err != nil {
		return 0, path, s.err
	}
	return s.count, s.source, nil
}

type stubRetriever struct {
	hits []domain.Hit
}

func (s *stubRetriever) Execute(ctx context.Context, input usecase.RetrieveContextInput) []domain.Hit {
	return s.hits
}

type stubGenerator struct {
	out *usecase.GenerateNoticeOutput
	err error
}

func (s *stubGenerator) Execute(ctx context.Context, input usecase.GenerateNoticeInput) (*usecase.GenerateNoticeOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

type stubDrafter struct {
	out *usecase.DraftNoticeOutput
	err error
	got usecase.DraftNoticeInput
}

func (s *stubDrafter) Execute(ctx context.Context, input usecase.DraftNoticeInput) (*usecase.DraftNoticeOutput, error) {
	s.got = input
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

type stubPlanner struct {
	questions []domain.Question
}

func (s *stubPlanner) Plan(ctx context.Context, input usecase.PlanInput) []domain.Question {
	return s.questions
}

type stubRepo struct {
	count int64
	err   error
}

func (r *stubRepo) BulkInsertChunks(ctx context.Context, chunks []domain.Chunk) error { return nil }

func (r *stubRepo) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.SearchResult, error) {
	return nil, nil
}

func (r *stubRepo) HasChunks(ctx context.Context) (bool, error) { return r.count > 0, r.err }

func (r *stubRepo) CountChunks(ctx context.Context) (int64, error) { return r.count, r.err }

type handlerDeps struct {
	ingest    *stubIngestor
	retriever *stubRetriever
	generator *stubGenerator
	drafter   *stubDrafter
	planner   *stubPlanner
	repo      *stubRepo
	uploadDir string
}

func newTestHandler(t *testing.T, deps handlerDeps) *echo.Echo {
	t.Helper()
	if deps.ingest == nil {
		deps.ingest = &stubIngestor{}
	}
	if deps.retriever == nil {
		deps.retriever = &stubRetriever{}
	}
	if deps.generator == nil {
		deps.generator = &stubGenerator{}
	}
	if deps.drafter == nil {
		deps.drafter = &stubDrafter{}
	}
	if deps.planner == nil {
		deps.planner = &stubPlanner{}
	}
	if deps.repo == nil {
		deps.repo = &stubRepo{}
	}
	if deps.uploadDir == "" {
		deps.uploadDir = t.TempDir()
	}

	e := echo.New()
	handler := notice_http.NewHandler(
		deps.ingest, deps.retriever, deps.generator, deps.drafter,
		deps.planner, usecase.NewGapDetector(), deps.repo, deps.uploadDir,
	)
	handler.Register(e)
	return e
}

func postJSON(e *echo.Echo, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const wellFormedMatter = "My landlord has refused to return my security deposit of 1200 euros despite the lease ending on 1 March 2026 and the apartment being returned in good condition."

func TestIngestPath(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		ingest := &stubIngestor{count: 7, source: "/abs/doc.pdf"}
		e := newTestHandler(t, handlerDeps{ingest: ingest})

		rec := postJSON(e, "/ingest-path", map[string]string{"path": "doc.pdf", "label": "contract"})

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, float64(7), body["chunks"])
		assert.Equal(t, "contract", ingest.gotLabel)
	})

	t.Run("missing document is 404", func(t *testing.T) {
		ingest := &stubIngestor{err: domain.ErrDocumentNotFound}
		e := newTestHandler(t, handlerDeps{ingest: ingest})

		rec := postJSON(e, "/ingest-path", map[string]string{"path": "missing.pdf"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("other failure is 500", func(t *testing.T) {
		ingest := &stubIngestor{err: errors.New("db down")}
		e := newTestHandler(t, handlerDeps{ingest: ingest})

		rec := postJSON(e, "/ingest-path", map[string]string{"path": "doc.pdf"})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestIngestFile(t *testing.T) {
	t.Run("stores upload and ingests stored copy", func(t *testing.T) {
		uploadDir := t.TempDir()
		ingest := &stubIngestor{count: 2, source: "stored"}
		e := newTestHandler(t, handlerDeps{ingest: ingest, uploadDir: uploadDir})

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "lease.txt")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("lease text"))
		require.NoError(t, mw.WriteField("label", "lease"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/ingest-file", &buf)
		req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, filepath.Join(uploadDir, "lease.txt"), ingest.gotPath)
		assert.Equal(t, "lease", ingest.gotLabel)

		saved, err := os.ReadFile(filepath.Join(uploadDir, "lease.txt"))
		require.NoError(t, err)
		assert.Equal(t, "lease text", string(saved))
	})

	t.Run("missing file part is 400", func(t *testing.T) {
		e := newTestHandler(t, handlerDeps{})

		req := httptest.NewRequest(http.MethodPost, "/ingest-file", strings.NewReader(""))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestClarify(t *testing.T) {
	t.Run("well-formed matter needs nothing", func(t *testing.T) {
		e := newTestHandler(t, handlerDeps{})

		rec := postJSON(e, "/clarify", map[string]interface{}{"prompt": wellFormedMatter})

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["needed"])
		assert.Empty(t, body["questions"])
	})

	t.Run("underspecified matter returns planned questions", func(t *testing.T) {
		planner := &stubPlanner{questions: []domain.Question{
			{ID: "desired_outcome", Label: "What outcome", Type: domain.QuestionText, Required: true},
		}}
		e := newTestHandler(t, handlerDeps{planner: planner})

		rec := postJSON(e, "/clarify", map[string]interface{}{"prompt": "Dispute with my landlord"})

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["needed"])
		questions := body["questions"].([]interface{})
		require.Len(t, questions, 1)
		assert.Equal(t, "desired_outcome", questions[0].(map[string]interface{})["id"])
	})
}

func TestGenerateNotice(t *testing.T) {
	t.Run("prompt too short is 400 with code", func(t *testing.T) {
		generator := &stubGenerator{err: usecase.ErrPromptTooShort}
		e := newTestHandler(t, handlerDeps{generator: generator})

		rec := postJSON(e, "/generate-notice", map[string]string{"prompt": "short"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "prompt_too_short", decodeBody(t, rec)["code"])
	})

	t.Run("clarification needed is 422 with questions", func(t *testing.T) {
		generator := &stubGenerator{err: &usecase.ClarificationNeededError{
			Questions: []domain.Question{{ID: "q1", Label: "Q1", Type: domain.QuestionText, Required: true}},
		}}
		e := newTestHandler(t, handlerDeps{generator: generator})

		rec := postJSON(e, "/generate-notice", map[string]string{"prompt": wellFormedMatter})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "needs_clarification", body["code"])
		assert.Len(t, body["questions"], 1)
	})

	t.Run("success returns notice, context and metadata", func(t *testing.T) {
		generator := &stubGenerator{out: &usecase.GenerateNoticeOutput{
			Notice: "Subject: Legal Notice",
			Hits:   []domain.Hit{{Document: "passage", SourceLabel: "tenancy"}},
			Date:   "29 August 2026",
		}}
		e := newTestHandler(t, handlerDeps{generator: generator})

		rec := postJSON(e, "/generate-notice", map[string]string{
			"prompt":     wellFormedMatter,
			"senderName": "A. Advocate",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Subject: Legal Notice", body["notice"])
		hits := body["context"].([]interface{})
		require.Len(t, hits, 1)
		hit := hits[0].(map[string]interface{})
		assert.Equal(t, "passage", hit["document"])
		metadata := body["metadata"].(map[string]interface{})
		assert.Equal(t, "A. Advocate", metadata["senderName"])
		assert.Equal(t, "29 August 2026", metadata["date"])
	})

	t.Run("other failure is 500", func(t *testing.T) {
		generator := &stubGenerator{err: errors.New("llm down")}
		e := newTestHandler(t, handlerDeps{generator: generator})

		rec := postJSON(e, "/generate-notice", map[string]string{"prompt": wellFormedMatter})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestDynamicDraft(t *testing.T) {
	t.Run("ask decision is 422 need_info", func(t *testing.T) {
		drafter := &stubDrafter{out: &usecase.DraftNoticeOutput{
			Decision: domain.Decision{
				Stage: domain.StageAsk,
				Ask: &domain.AskOutcome{
					Rationale:     "missing amounts",
					MissingFields: []string{"invoice_amount"},
					Questions:     []domain.Question{{ID: "invoice_amount", Label: "Amount", Type: domain.QuestionNumber, Required: true}},
				},
			},
		}}
		e := newTestHandler(t, handlerDeps{drafter: drafter})

		rec := postJSON(e, "/dynamic-draft", map[string]string{"prompt": wellFormedMatter})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "need_info", body["code"])
		assert.Equal(t, "missing amounts", body["rationale"])
		assert.Len(t, body["missing_fields"], 1)
		assert.Len(t, body["questions"], 1)
	})

	t.Run("draft decision is 200 with used answers", func(t *testing.T) {
		drafter := &stubDrafter{out: &usecase.DraftNoticeOutput{
			Decision: domain.Decision{
				Stage: domain.StageDraft,
				Draft: &domain.DraftOutcome{
					Notice:      "Subject: Legal Notice",
					UsedAnswers: map[string]string{"invoice_amount": "45000"},
				},
			},
		}}
		e := newTestHandler(t, handlerDeps{drafter: drafter})

		rec := postJSON(e, "/dynamic-draft", map[string]interface{}{
			"prompt":  wellFormedMatter,
			"answers": map[string]string{"invoice_amount": "45000"},
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Subject: Legal Notice", body["notice"])
		metadata := body["metadata"].(map[string]interface{})
		used := metadata["used_answers"].(map[string]interface{})
		assert.Equal(t, "45000", used["invoice_amount"])
	})

	t.Run("answers are forwarded to the controller", func(t *testing.T) {
		drafter := &stubDrafter{out: &usecase.DraftNoticeOutput{
			Decision: domain.Decision{
				Stage: domain.StageDraft,
				Draft: &domain.DraftOutcome{Notice: "n"},
			},
		}}
		e := newTestHandler(t, handlerDeps{drafter: drafter})

		postJSON(e, "/dynamic-draft", map[string]interface{}{
			"prompt":  wellFormedMatter,
			"answers": map[string]string{"due_date": "2026-03-01"},
		})

		assert.Equal(t, map[string]string{"due_date": "2026-03-01"}, drafter.got.Answers)
	})

	t.Run("prompt too short is 400 with code", func(t *testing.T) {
		drafter := &stubDrafter{err: usecase.ErrPromptTooShort}
		e := newTestHandler(t, handlerDeps{drafter: drafter})

		rec := postJSON(e, "/dynamic-draft", map[string]string{"prompt": "short"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "prompt_too_short", decodeBody(t, rec)["code"])
	})
}

func TestStats(t *testing.T) {
	t.Run("reports count", func(t *testing.T) {
		e := newTestHandler(t, handlerDeps{repo: &stubRepo{count: 42}})

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(42), body["approx_samples"])
		assert.Equal(t, "pgvector", body["db"])
	})

	t.Run("store failure stays 200 with error body", func(t *testing.T) {
		e := newTestHandler(t, handlerDeps{repo: &stubRepo{err: errors.New("db down")}})

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "error", decodeBody(t, rec)["status"])
	})
}
