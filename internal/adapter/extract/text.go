package extract

import (
	"fmt"
	"os"
	"strings"
)

// TextExtractor reads plain-text documents. Form feeds delimit pages,
// matching how text converted from paged formats is commonly laid out;
// files without form feeds are a single page.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) ExtractPages(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.Split(string(data), "\f"), nil
}
