// Package ingest turns a résumé file into an indexed collection of chunks.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/index"
	"github.com/spigell/hh-interviewer/internal/logger"
)

const (
	DefaultChunkSize        = 1000
	DefaultChunkOverlap     = 200
	DefaultEmbedConcurrency = 4
	defaultEmbedBatch       = 16
)

// Stage is a single step of the ingestion pipeline.
type Stage interface {
	Name() string
	Apply(ctx context.Context, job *Job) (Step, error)
}

// Step describes the result of executing a stage.
type Step struct {
	Input  int
	Output int
}

// Job carries one document through the stages.
type Job struct {
	DocumentID string
	Path       string

	Text   string
	Pieces []string
	Chunks []index.Chunk
}

// Config controls chunking and embedding.
type Config struct {
	ChunkSize        int
	ChunkOverlap     int
	EmbedConcurrency int
}

// Deps aggregates the gateways used by the stages.
type Deps struct {
	Embedder ai.Embedder
	Index    index.Gateway
	Logger   *zap.Logger
}

// Pipeline runs load, split, embed and index in order.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

func NewPipeline(cfg Config, deps Deps) (*Pipeline, error) {
	if deps.Embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if deps.Index == nil {
		return nil, errors.New("index gateway is required")
	}

	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap == 0 && cfg.ChunkSize > DefaultChunkOverlap {
		cfg.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = DefaultEmbedConcurrency
	}

	splitter := Splitter{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}
	if err := splitter.validate(); err != nil {
		return nil, err
	}

	return &Pipeline{
		stages: []Stage{
			loadStage{},
			splitStage{splitter: splitter},
			embedStage{embedder: deps.Embedder, concurrency: cfg.EmbedConcurrency, batch: defaultEmbedBatch},
			indexStage{gateway: deps.Index},
		},
		logger: logger.OrNop(deps.Logger),
	}, nil
}

// Run ingests the file at path into the collection documentID and returns
// the number of indexed chunks.
func (p *Pipeline) Run(ctx context.Context, documentID, path string) (int, error) {
	job := &Job{DocumentID: documentID, Path: path}
	return Run(ctx, p.logger, p.stages, job)
}

// Run executes the supplied stages sequentially over job.
func Run(ctx context.Context, log *zap.Logger, stages []Stage, job *Job) (int, error) {
	log = logger.OrNop(log)

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		info, err := stage.Apply(ctx, job)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", stage.Name(), err)
		}

		log.Info("ingest step",
			zap.String("name", stage.Name()),
			zap.String(logger.FieldDocumentID, job.DocumentID),
			zap.Int("input", info.Input),
			zap.Int("output", info.Output),
		)
	}

	return len(job.Chunks), nil
}
