package index

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type chunkRow struct {
	ID         uint                         `gorm:"primaryKey"`
	Collection string                       `gorm:"uniqueIndex:idx_chunk_ordinal;not null"`
	Ordinal    int                          `gorm:"uniqueIndex:idx_chunk_ordinal"`
	Content    string                       `gorm:"not null"`
	Embedding  datatypes.JSONSlice[float32] `gorm:"type:json"`
}

func (chunkRow) TableName() string { return "resume_chunks" }

// SQLite keeps the index next to the interview records.
type SQLite struct {
	db *gorm.DB
}

func NewSQLite(db *gorm.DB) (*SQLite, error) {
	if err := db.AutoMigrate(&chunkRow{}); err != nil {
		return nil, fmt.Errorf("auto migrate chunks: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) FetchAllChunks(ctx context.Context, collectionID string) ([]string, error) {
	if collectionID == "" {
		return nil, ErrEmptyCollectionID
	}

	var contents []string
	if err := s.db.WithContext(ctx).Model(&chunkRow{}).
		Where("collection = ?", collectionID).
		Order("ordinal ASC").
		Pluck("content", &contents).Error; err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}
	if contents == nil {
		contents = []string{}
	}
	return contents, nil
}

func (s *SQLite) ReplaceCollection(ctx context.Context, collectionID string, chunks []Chunk) error {
	if collectionID == "" {
		return ErrEmptyCollectionID
	}

	rows := make([]chunkRow, 0, len(chunks))
	for i, c := range chunks {
		rows = append(rows, chunkRow{
			Collection: collectionID,
			Ordinal:    i,
			Content:    c.Content,
			Embedding:  datatypes.JSONSlice[float32](c.Embedding),
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ?", collectionID).Delete(&chunkRow{}).Error; err != nil {
			return fmt.Errorf("delete chunks: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace collection %q: %w", collectionID, err)
	}
	return nil
}
