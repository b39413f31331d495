package worker

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"notice-orchestrator/internal/domain"
	"notice-orchestrator/internal/usecase"
)

const (
	ingestTimeout    = 10 * time.Minute
	maxParallelFiles = 2
)

// AutoIngestWorker seeds an empty index from a directory of reference
// documents at startup. When the index already holds chunks it does
// nothing, so restarts do not duplicate the corpus.
type AutoIngestWorker struct {
	repo   domain.ChunkRepository
	ingest usecase.IngestDocumentUsecase
	dir    string
	logger *slog.Logger
}

func NewAutoIngestWorker(
	repo domain.ChunkRepository,
	ingest usecase.IngestDocumentUsecase,
	dir string,
	logger *slog.Logger,
) *AutoIngestWorker {
	return &AutoIngestWorker{
		repo:   repo,
		ingest: ingest,
		dir:    dir,
		logger: logger,
	}
}

// Run performs one seeding pass. Best-effort throughout: a file that
// fails to ingest is logged and skipped, and an unreadable directory is
// not an error.
func (w *AutoIngestWorker) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, ingestTimeout)
	defer cancel()

	populated, err := w.repo.HasChunks(ctx)
	if err != nil {
		w.logger.Error("Auto-ingest skipped: index check failed", "error", err)
		return
	}
	if populated {
		w.logger.Info("Auto-ingest skipped: index already populated")
		return
	}

	files, err := w.listDocuments()
	if err != nil {
		w.logger.Warn("Auto-ingest skipped: cannot read corpus directory", "dir", w.dir, "error", err)
		return
	}
	if len(files) == 0 {
		w.logger.Info("Auto-ingest: no documents found", "dir", w.dir)
		return
	}

	w.logger.Info("Auto-ingest starting", "dir", w.dir, "files", len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)

	for _, path := range files {
		path := path
		g.Go(func() error {
			count, source, err := w.ingest.Ingest(gctx, path, "")
			if err != nil {
				w.logger.Warn("Auto-ingest: file skipped", "path", path, "error", err)
				return nil
			}
			w.logger.Info("Auto-ingest: file indexed", "source", source, "chunks", count)
			return nil
		})
	}

	_ = g.Wait()
	w.logger.Info("Auto-ingest finished")
}

func (w *AutoIngestWorker) listDocuments() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf", ".txt", ".md":
			files = append(files, filepath.Join(w.dir, entry.Name()))
		}
	}
	return files, nil
}
