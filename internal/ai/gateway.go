// Package ai defines the boundary between the interview engine and the
// language-model and embedding services it consumes.
package ai

import "context"

// Generator is the Language Model Gateway. System carries the policy the
// model must follow and may be empty; message is the user turn.
//
// An empty string with a nil error is a valid gateway result: callers decide
// whether empty text is a failure.
type Generator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Embedder turns text chunks into embedding vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
