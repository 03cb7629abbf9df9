// Package storage persists documents, interviews, turns and analyses in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/spigell/hh-interviewer/internal/model"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrAnalysisExists  = errors.New("analysis already exists")
	ErrOutstandingTurn = errors.New("interview already has an unanswered question")
	ErrEmptyResponse   = errors.New("response must not be empty")
)

// Store wraps the GORM connection.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at dbPath and migrates the schema.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	return New(db)
}

// New migrates the schema on an existing connection. The index package shares
// the same connection for the local embedding index.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&model.Document{}, &model.Interview{}, &model.Turn{}, &model.Analysis{}); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB { return s.db }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// CreateDocument stores a new pending document, assigning an ID when empty.
func (s *Store) CreateDocument(ctx context.Context, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = model.DocumentStatusPending
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// MarkDocumentIndexed records that chunks of the document are in the index.
func (s *Store) MarkDocumentIndexed(ctx context.Context, id string, chunks int) error {
	tx := s.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Updates(map[string]any{
		"status": model.DocumentStatusIndexed,
		"chunks": chunks,
	})
	if tx.Error != nil {
		return fmt.Errorf("mark document indexed: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("mark document %q indexed: %w", id, ErrNotFound)
	}
	return nil
}

// GetDocument returns the document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, notFound("get document", err)
	}
	return &doc, nil
}

// CreateInterview opens a NOT_STARTED interview over documentID.
func (s *Store) CreateInterview(ctx context.Context, documentID string) (*model.Interview, error) {
	iv := &model.Interview{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		State:      model.InterviewNotStarted,
	}
	if err := s.db.WithContext(ctx).Create(iv).Error; err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}
	return iv, nil
}

// GetInterview returns the interview by ID.
func (s *Store) GetInterview(ctx context.Context, id string) (*model.Interview, error) {
	var iv model.Interview
	if err := s.db.WithContext(ctx).First(&iv, "id = ?", id).Error; err != nil {
		return nil, notFound("get interview", err)
	}
	return &iv, nil
}

// UpdateInterview persists the lifecycle fields of iv.
func (s *Store) UpdateInterview(ctx context.Context, iv *model.Interview) error {
	return updateInterview(s.db.WithContext(ctx), iv)
}

func updateInterview(db *gorm.DB, iv *model.Interview) error {
	tx := db.Model(&model.Interview{}).Where("id = ?", iv.ID).Updates(map[string]any{
		"state":      iv.State,
		"started_at": iv.StartedAt,
		"ended_at":   iv.EndedAt,
	})
	if tx.Error != nil {
		return fmt.Errorf("update interview: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("update interview %q: %w", iv.ID, ErrNotFound)
	}
	return nil
}

// ListTurns returns the transcript of an interview in question order.
func (s *Store) ListTurns(ctx context.Context, interviewID string) ([]model.Turn, error) {
	var turns []model.Turn
	if err := s.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("position ASC").
		Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	return turns, nil
}

// AppendTurn adds an unanswered question at the end of the transcript. It
// fails with ErrOutstandingTurn while a previous question is unanswered.
func (s *Store) AppendTurn(ctx context.Context, interviewID, question string) (*model.Turn, error) {
	turn := &model.Turn{
		ID:          uuid.NewString(),
		InterviewID: interviewID,
		Question:    question,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var outstanding int64
		if err := tx.Model(&model.Turn{}).
			Where("interview_id = ? AND response = ?", interviewID, "").
			Count(&outstanding).Error; err != nil {
			return fmt.Errorf("count outstanding turns: %w", err)
		}
		if outstanding > 0 {
			return ErrOutstandingTurn
		}

		var total int64
		if err := tx.Model(&model.Turn{}).Where("interview_id = ?", interviewID).Count(&total).Error; err != nil {
			return fmt.Errorf("count turns: %w", err)
		}
		turn.Position = int(total)

		if err := tx.Create(turn).Error; err != nil {
			return fmt.Errorf("create turn: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("append turn: %w", err)
	}

	return turn, nil
}

// AnswerTurn fills the response of an outstanding turn. Answered turns are
// never overwritten.
func (s *Store) AnswerTurn(ctx context.Context, turnID, response string) error {
	if strings.TrimSpace(response) == "" {
		return ErrEmptyResponse
	}

	tx := s.db.WithContext(ctx).Model(&model.Turn{}).
		Where("id = ? AND response = ?", turnID, "").
		Update("response", response)
	if tx.Error != nil {
		return fmt.Errorf("answer turn: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("answer turn %q: %w", turnID, ErrNotFound)
	}
	return nil
}

// CompleteInterview stores the analysis and the COMPLETED interview in one
// transaction, so a failure leaves neither. A second completion fails with
// ErrAnalysisExists.
func (s *Store) CompleteInterview(ctx context.Context, iv *model.Interview, scorecard datatypes.JSON) (*model.Analysis, error) {
	var analysis *model.Analysis
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if analysis, err = s.saveAnalysis(tx, iv.ID, scorecard); err != nil {
			return err
		}
		return updateInterview(tx, iv)
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

func (s *Store) saveAnalysis(tx *gorm.DB, interviewID string, scorecard datatypes.JSON) (*model.Analysis, error) {
	var existing int64
	if err := tx.Model(&model.Analysis{}).Where("interview_id = ?", interviewID).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check analysis: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("save analysis for %q: %w", interviewID, ErrAnalysisExists)
	}

	analysis := &model.Analysis{InterviewID: interviewID, Scorecard: scorecard, CreatedAt: s.now()}
	if err := tx.Create(analysis).Error; err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	return analysis, nil
}

// GetAnalysis returns the stored analysis of an interview.
func (s *Store) GetAnalysis(ctx context.Context, interviewID string) (*model.Analysis, error) {
	var analysis model.Analysis
	if err := s.db.WithContext(ctx).First(&analysis, "interview_id = ?", interviewID).Error; err != nil {
		return nil, notFound("get analysis", err)
	}
	return &analysis, nil
}

func notFound(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
