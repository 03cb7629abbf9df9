package index

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS resume_chunks (
	collection TEXT    NOT NULL,
	ordinal    INTEGER NOT NULL,
	content    TEXT    NOT NULL,
	embedding  REAL[],
	PRIMARY KEY (collection, ordinal)
)`

// Postgres is a shared index for several interviewer instances.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create chunks table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) FetchAllChunks(ctx context.Context, collectionID string) ([]string, error) {
	if collectionID == "" {
		return nil, ErrEmptyCollectionID
	}

	rows, err := p.pool.Query(ctx,
		`SELECT content FROM resume_chunks WHERE collection = $1 ORDER BY ordinal`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}
	contents, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}
	if contents == nil {
		contents = []string{}
	}
	return contents, nil
}

func (p *Postgres) ReplaceCollection(ctx context.Context, collectionID string, chunks []Chunk) error {
	if collectionID == "" {
		return ErrEmptyCollectionID
	}

	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM resume_chunks WHERE collection = $1`, collectionID); err != nil {
			return fmt.Errorf("delete chunks: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"resume_chunks"},
			[]string{"collection", "ordinal", "content", "embedding"},
			pgx.CopyFromSlice(len(chunks), func(i int) ([]any, error) {
				return []any{collectionID, i, chunks[i].Content, chunks[i].Embedding}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace collection %q: %w", collectionID, err)
	}
	return nil
}
