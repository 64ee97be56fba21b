package services

import (
	"fmt"
	"strings"
)

// DocumentProcessor splits raw document text into overlapping chunks sized
// for embedding.
type DocumentProcessor struct {
	chunkSize    int
	chunkOverlap int
}

// NewDocumentProcessor validates the chunking parameters. Overlap must stay
// below the chunk size or the window could never advance.
func NewDocumentProcessor(chunkSize, chunkOverlap int) (*DocumentProcessor, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", chunkOverlap, chunkSize)
	}
	return &DocumentProcessor{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// ChunkText splits text into chunks of at most chunkSize runes, consecutive
// chunks sharing chunkOverlap runes. A chunk ends early at the last period
// or newline in its window when that break sits at or past the window
// midpoint. Every chunk is emitted with surrounding whitespace trimmed.
func (p *DocumentProcessor) ChunkText(text string) []string {
	runes := []rune(text)
	textLen := len(runes)

	var chunks []string
	start := 0
	for start < textLen {
		end := start + p.chunkSize
		upper := end
		if upper > textLen {
			upper = textLen
		}
		window := runes[start:upper]

		if end < textLen {
			breakPoint := -1
			for i := len(window) - 1; i >= 0; i-- {
				if window[i] == '.' || window[i] == '\n' {
					breakPoint = i
					break
				}
			}
			// Take the break only when it sits at or past the midpoint and
			// the next start still moves forward.
			if breakPoint >= 0 && breakPoint*2 >= p.chunkSize && breakPoint+1 > p.chunkOverlap {
				window = window[:breakPoint+1]
				end = start + breakPoint + 1
			}
		}

		chunks = append(chunks, strings.TrimSpace(string(window)))
		if end >= textLen {
			break
		}
		start = end - p.chunkOverlap
	}
	return chunks
}
