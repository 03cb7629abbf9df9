package ingest

import (
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/index"
)

type loadStage struct{}

func (loadStage) Name() string { return "load" }

func (loadStage) Apply(_ context.Context, job *Job) (Step, error) {
	text, err := Load(job.Path)
	if err != nil {
		return Step{}, err
	}
	job.Text = text
	return Step{Input: 1, Output: utf8.RuneCountInString(text)}, nil
}

type splitStage struct {
	splitter Splitter
}

func (splitStage) Name() string { return "split" }

func (s splitStage) Apply(_ context.Context, job *Job) (Step, error) {
	pieces, err := s.splitter.Split(job.Text)
	if err != nil {
		return Step{}, err
	}
	if len(pieces) == 0 {
		return Step{}, ErrEmptyDocument
	}
	job.Pieces = pieces
	return Step{Input: utf8.RuneCountInString(job.Text), Output: len(pieces)}, nil
}

type embedStage struct {
	embedder    ai.Embedder
	concurrency int
	batch       int
}

func (embedStage) Name() string { return "embed" }

// Apply embeds the pieces in batches, at most concurrency batches at a time.
// Each batch writes only its own slots so chunk order is preserved.
func (s embedStage) Apply(ctx context.Context, job *Job) (Step, error) {
	chunks := make([]index.Chunk, len(job.Pieces))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for start := 0; start < len(job.Pieces); start += s.batch {
		end := min(start+s.batch, len(job.Pieces))
		g.Go(func() error {
			vectors, err := s.embedder.Embed(gctx, job.Pieces[start:end])
			if err != nil {
				return err
			}
			if len(vectors) != end-start {
				return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), end-start)
			}
			for i, vec := range vectors {
				chunks[start+i] = index.Chunk{Content: job.Pieces[start+i], Embedding: vec}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Step{}, err
	}

	job.Chunks = chunks
	return Step{Input: len(job.Pieces), Output: len(chunks)}, nil
}

type indexStage struct {
	gateway index.Gateway
}

func (indexStage) Name() string { return "index" }

func (s indexStage) Apply(ctx context.Context, job *Job) (Step, error) {
	if err := s.gateway.ReplaceCollection(ctx, job.DocumentID, job.Chunks); err != nil {
		return Step{}, err
	}
	return Step{Input: len(job.Chunks), Output: len(job.Chunks)}, nil
}
