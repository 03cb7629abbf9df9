package ingest

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text into chunks of at most Size runes. It prefers paragraph
// breaks, then line breaks, then spaces, and only splits words as a last
// resort. Consecutive chunks share up to Overlap runes.
type Splitter struct {
	Size    int
	Overlap int
}

func (s Splitter) validate() error {
	if s.Size <= 0 {
		return errors.New("chunk size must be positive")
	}
	if s.Overlap < 0 || s.Overlap >= s.Size {
		return errors.New("chunk overlap must be in [0, chunk size)")
	}
	return nil
}

// Split returns the chunks of text in document order.
func (s Splitter) Split(text string) ([]string, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.Size),
		textsplitter.WithChunkOverlap(s.Overlap),
		textsplitter.WithSeparators(defaultSeparators),
		textsplitter.WithLenFunc(utf8.RuneCountInString),
	)

	pieces, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	chunks := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if piece != "" {
			chunks = append(chunks, piece)
		}
	}
	return chunks, nil
}
