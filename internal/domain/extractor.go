package domain

// PageExtractor extracts plain text from a document, page-wise. Pages
// that yield no extractable text may be returned as empty strings;
// callers skip them.
type PageExtractor interface {
	ExtractPages(path string) ([]string, error)
}
