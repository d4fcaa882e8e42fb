package services

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText splits text on paragraph boundaries, falling back to sentences for
// oversized paragraphs and to hard rune cuts for oversized sentences. Each chunk
// after the first starts with the last overlap runes of its predecessor.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	c := &chunkBuilder{maxSize: maxChunkSize, overlap: overlap}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= maxChunkSize {
			c.add(para, "\n\n")
			continue
		}

		for _, sentence := range splitIntoSentences(para) {
			for _, piece := range splitByRunes(sentence, maxChunkSize-overlap-1) {
				c.add(piece, " ")
			}
		}
	}

	return c.finish()
}

type chunkBuilder struct {
	maxSize int
	overlap int
	chunks  []string
	current strings.Builder
	// carried is true while current holds only overlap from the previous chunk.
	carried bool
}

func (c *chunkBuilder) add(part, sep string) {
	currentLen := utf8.RuneCountInString(c.current.String())
	if currentLen > 0 && currentLen+len(sep)+utf8.RuneCountInString(part) > c.maxSize {
		c.flush()
	}

	if c.current.Len() > 0 {
		c.current.WriteString(sep)
	}
	c.current.WriteString(part)
	c.carried = false
}

func (c *chunkBuilder) flush() {
	if c.carried {
		c.current.Reset()
		c.carried = false
		return
	}

	prev := c.current.String()
	c.chunks = append(c.chunks, prev)
	c.current.Reset()

	if c.overlap > 0 {
		if overlapText := strings.TrimSpace(getLastNChars(prev, c.overlap)); overlapText != "" {
			c.current.WriteString(overlapText)
			c.carried = true
		}
	}
}

func (c *chunkBuilder) finish() []string {
	if c.current.Len() > 0 && !c.carried {
		c.chunks = append(c.chunks, c.current.String())
	}
	return c.chunks
}

func splitIntoSentences(text string) []string {
	var result []string
	start := 0

	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				result = append(result, s)
			}
			start = i + 1
		}
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		result = append(result, s)
	}
	return result
}

func splitByRunes(text string, size int) []string {
	if size <= 0 {
		size = 1
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var parts []string
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

func getLastNChars(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
