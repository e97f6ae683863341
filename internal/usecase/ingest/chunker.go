package ingest

import "strings"

// Chunker splits a description into sentence-aligned chunks.
// Sentences are appended until maxChars would be exceeded; a single
// sentence longer than maxChars becomes its own chunk.
type Chunker struct {
	maxChars int
}

// NewChunker creates a chunker. maxChars <= 0 defaults to 500.
func NewChunker(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = 500
	}
	return &Chunker{maxChars: maxChars}
}

// Split breaks text into chunks. Empty or whitespace-only text yields none.
func (c *Chunker) Split(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var b strings.Builder
	for _, s := range sentences {
		if b.Len() > 0 && b.Len()+1+len(s) > c.maxChars {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// splitSentences cuts on sentence-final punctuation followed by whitespace.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// end of sentence only when followed by whitespace or end of text
		if i+1 < len(runes) && !isSpace(runes[i+1]) {
			continue
		}
		s := strings.TrimSpace(string(runes[start : i+1]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
