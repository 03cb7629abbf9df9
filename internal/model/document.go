package model

import "time"

// DocumentStatus tracks whether a résumé has been indexed.
type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "pending"
	DocumentStatusIndexed DocumentStatus = "indexed"
)

// Document is an uploaded résumé. Its ID doubles as the embedding collection ID.
type Document struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Name      string         `json:"name"`
	Path      string         `json:"path"`
	Status    DocumentStatus `gorm:"index" json:"status"`
	Chunks    int            `json:"chunks"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Indexed reports whether the document can back an interview.
func (d Document) Indexed() bool { return d.Status == DocumentStatusIndexed }
