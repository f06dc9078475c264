// Package chunking splits extracted material text into overlapping
// windows sized for the embedding model.
package chunking

import "strings"

type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 900
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Split first groups paragraphs into blocks that fit the chunk size, so
// short documents keep paragraph boundaries intact, and only falls back
// to a sliding rune window for blocks longer than one chunk.
func (s *Splitter) Split(text string) []string {
	var out []string
	for _, block := range s.packParagraphs(text) {
		if len([]rune(block)) <= s.ChunkSize {
			out = append(out, block)
			continue
		}
		out = append(out, s.splitWindow(block)...)
	}
	return out
}

func (s *Splitter) packParagraphs(text string) []string {
	var blocks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if block := strings.TrimSpace(current.String()); block != "" {
			blocks = append(blocks, block)
		}
		current.Reset()
		currentLen = 0
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		paraLen := len([]rune(paragraph))
		if currentLen > 0 && currentLen+paraLen+2 > s.ChunkSize {
			flush()
		}
		if currentLen > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(paragraph)
		currentLen += paraLen
	}
	flush()
	return blocks
}

func (s *Splitter) splitWindow(text string) []string {
	runes := []rune(text)
	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
