package extract

import (
	"path/filepath"
	"strings"

	"notice-orchestrator/internal/domain"
)

// DocumentExtractor dispatches to a format-specific extractor by file
// extension. PDF gets the PDF extractor; everything else is treated as
// plain text.
type DocumentExtractor struct {
	pdf  *PDFExtractor
	text *TextExtractor
}

func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{
		pdf:  NewPDFExtractor(),
		text: NewTextExtractor(),
	}
}

func (e *DocumentExtractor) ExtractPages(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return e.pdf.ExtractPages(path)
	}
	return e.text.ExtractPages(path)
}

var _ domain.PageExtractor = (*DocumentExtractor)(nil)
