package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeEmbedModels struct {
	calls   [][]string
	fail    []error
	dropOne bool
}

func (f *fakeEmbedModels) EmbedContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	texts := make([]string, 0, len(contents))
	for _, c := range contents {
		texts = append(texts, c.Parts[0].Text)
	}
	f.calls = append(f.calls, texts)

	if len(f.fail) > 0 {
		err := f.fail[0]
		f.fail = f.fail[1:]
		return nil, err
	}

	resp := &genai.EmbedContentResponse{}
	for i := range texts {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: []float32{float32(len(f.calls)), float32(i)}})
	}
	if f.dropOne {
		resp.Embeddings = resp.Embeddings[1:]
	}
	return resp, nil
}

func TestEmbedderBatchesAndPreservesOrder(t *testing.T) {
	models := &fakeEmbedModels{}
	e := &Embedder{models: models, model: "text-embedding-004", logger: zap.NewNop()}

	texts := make([]string, maxEmbedBatch+5)
	for i := range texts {
		texts[i] = "chunk"
	}

	vectors, err := e.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(models.calls) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(models.calls))
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	last := vectors[len(vectors)-1]
	if last[0] != 2 || last[1] != 4 {
		t.Fatalf("unexpected last vector: %v", last)
	}
}

func TestEmbedderRetriesTemporaryErrors(t *testing.T) {
	noSleep(t)

	models := &fakeEmbedModels{fail: []error{genai.APIError{Code: http.StatusServiceUnavailable}}}
	e := &Embedder{models: models, model: "m", maxRetries: 2, logger: zap.NewNop()}

	if _, err := e.Embed(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models.calls) != 2 {
		t.Fatalf("expected retry, got %d calls", len(models.calls))
	}
}

func TestEmbedderRejectsMismatchedCounts(t *testing.T) {
	models := &fakeEmbedModels{dropOne: true}
	e := &Embedder{models: models, model: "m", logger: zap.NewNop()}

	_, err := e.Embed(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error for mismatched embedding count")
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error kind: %v", err)
	}
}
