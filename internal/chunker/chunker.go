// Package chunker splits extracted document text into overlapping
// fixed-size windows for embedding and retrieval.
//
// Splitting is a pure function of its inputs: the same text and parameters
// always produce the same chunk sequence, which keeps ingestion
// reproducible and retrieval tests deterministic.
package chunker

import (
	"errors"
	"fmt"
)

// ErrInvalidParams indicates chunk size/overlap are misconfigured.
// A window whose start does not advance (overlap >= size) would otherwise
// loop forever.
var ErrInvalidParams = errors.New("invalid chunking parameters")

// Split cuts text into consecutive windows of size characters. Each window
// starts size-overlap characters after the previous one, so consecutive
// chunks share exactly overlap characters. The final chunk may be shorter
// than size.
//
// Empty text yields a nil slice and no error: a document with no
// extractable text is a valid, empty knowledge base.
//
// Split indexes by bytes; for the ASCII-dominant text produced by PDF
// extraction this matches character windows.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidParams, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidParams, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap (%d) must be smaller than size (%d)", ErrInvalidParams, overlap, size)
	}

	if len(text) == 0 {
		return nil, nil
	}

	step := size - overlap
	chunks := make([]string, 0, (len(text)+step-1)/step)

	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}

	return chunks, nil
}
