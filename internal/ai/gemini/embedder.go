package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hh-interviewer/internal/logger"
)

const (
	defaultEmbeddingModel = "text-embedding-004"
	// Gemini rejects batch embedding requests above this size.
	maxEmbedBatch = 100
)

type embedModels interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// EmbedderConfig tunes the Embedder.
type EmbedderConfig struct {
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// Embedder produces document embeddings with a Gemini embedding model.
type Embedder struct {
	models     embedModels
	model      string
	maxRetries int
	timeout    time.Duration
	logger     *zap.Logger
}

func NewEmbedder(client *genai.Client, cfg EmbedderConfig, log *zap.Logger) (*Embedder, error) {
	if client == nil {
		return nil, errors.New("genai client is required")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultEmbeddingModel
	}

	return &Embedder{
		models:     client.Models,
		model:      model,
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.Timeout,
		logger:     logger.WithCommonFields(log, providerName, model),
	}, nil
}

// Embed returns one vector per text, preserving input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e == nil || e.models == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := min(start+maxEmbedBatch, len(texts))
		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	config := &genai.EmbedContentConfig{TaskType: "RETRIEVAL_DOCUMENT"}

	var resp *genai.EmbedContentResponse
	r := retrier{maxAttempts: e.maxRetries, timeout: e.timeout, logger: logger.OrNop(e.logger)}
	err := r.do(ctx, "embed", func(callCtx context.Context) error {
		var err error
		resp, err = e.models.EmbedContent(callCtx, e.model, contents, config)
		return err
	})
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", got, len(texts))
	}

	vectors := make([][]float32, 0, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini returned empty embedding at index %d", i)
		}
		vectors = append(vectors, emb.Values)
	}

	return vectors, nil
}
