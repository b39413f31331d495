package domain

import "strings"

// DefaultMaxChunkWords bounds chunk size for word-based chunking.
const DefaultMaxChunkWords = 250

// WordChunker splits text into bounded-size word chunks. Splitting
// happens on whitespace boundaries only, never mid-word, and the word
// sequence of the input is preserved exactly across the output chunks.
type WordChunker struct {
	maxWords int
}

// NewWordChunker creates a chunker with the given word bound.
// Non-positive bounds fall back to DefaultMaxChunkWords.
func NewWordChunker(maxWords int) *WordChunker {
	if maxWords <= 0 {
		maxWords = DefaultMaxChunkWords
	}
	return &WordChunker{maxWords: maxWords}
}

// MaxWords returns the configured per-chunk word bound.
func (c *WordChunker) MaxWords() int {
	return c.maxWords
}

// Chunk splits text into chunks of at most maxWords words each.
// Empty or whitespace-only input yields nil.
func (c *WordChunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); i += c.maxWords {
		end := i + c.maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
