package interview

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/logger"
)

// ChunkSource is the read side of the Embedding Index Gateway. A missing
// collection yields an empty slice, not an error.
type ChunkSource interface {
	FetchAllChunks(ctx context.Context, collectionID string) ([]string, error)
}

// Retriever assembles the résumé context for a document.
type Retriever struct {
	source ChunkSource
	logger *zap.Logger
}

func NewRetriever(source ChunkSource, log *zap.Logger) *Retriever {
	return &Retriever{source: source, logger: logger.OrNop(log)}
}

// RetrieveContext joins every indexed chunk of documentID with newlines,
// keeping the index order.
func (r *Retriever) RetrieveContext(ctx context.Context, documentID string) (string, error) {
	chunks, err := r.source.FetchAllChunks(ctx, documentID)
	if err != nil {
		return "", err
	}

	if len(chunks) == 0 {
		return "", &NotIndexedError{DocumentID: documentID}
	}

	r.logger.Debug("retrieved document context",
		zap.String(logger.FieldDocumentID, documentID),
		zap.Int("chunks", len(chunks)),
	)

	return strings.Join(chunks, "\n"), nil
}
