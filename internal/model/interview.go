package model

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// InterviewState is the lifecycle of an interview. It only moves forward.
type InterviewState string

const (
	InterviewNotStarted InterviewState = "NOT_STARTED"
	InterviewStarted    InterviewState = "STARTED"
	InterviewCompleted  InterviewState = "COMPLETED"
)

var ErrInvalidTransition = errors.New("invalid interview state transition")

// Interview is one mock interview over a Document.
type Interview struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	DocumentID string         `gorm:"index" json:"document_id"`
	State      InterviewState `json:"state"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	EndedAt    *time.Time     `json:"ended_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Transition moves the interview to the next state, stamping the start or
// end time. Staying in the current state is a no-op.
func (i *Interview) Transition(to InterviewState, now time.Time) error {
	if i.State == to {
		return nil
	}

	switch {
	case i.State == InterviewNotStarted && to == InterviewStarted:
		i.StartedAt = &now
	case i.State == InterviewStarted && to == InterviewCompleted:
		i.EndedAt = &now
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.State, to)
	}

	i.State = to
	return nil
}

// Turn is one question and the candidate's reply. An empty Response marks
// the outstanding question.
type Turn struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	InterviewID string    `gorm:"uniqueIndex:idx_turn_position" json:"interview_id"`
	Position    int       `gorm:"uniqueIndex:idx_turn_position" json:"position"`
	Question    string    `json:"question"`
	Response    string    `json:"response"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Outstanding reports whether the turn still waits for an answer.
func (t Turn) Outstanding() bool { return t.Response == "" }

// Analysis is the scorecard of a completed interview. It is written once.
type Analysis struct {
	InterviewID string         `gorm:"primaryKey" json:"interview_id"`
	Scorecard   datatypes.JSON `json:"scorecard"`
	CreatedAt   time.Time      `json:"created_at"`
}
