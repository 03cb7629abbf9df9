// Package events publishes interview lifecycle notifications.
package events

import (
	"context"
	"time"
)

const (
	TypeInterviewStarted = "interview.started"
	TypeTurnAsked        = "interview.turn.asked"
	TypeTurnAnswered     = "interview.turn.answered"
	TypeInterviewDone    = "interview.completed"
)

// Event is the JSON payload of a notification.
type Event struct {
	Type        string         `json:"type"`
	InterviewID string         `json:"interview_id"`
	DocumentID  string         `json:"document_id,omitempty"`
	Position    *int           `json:"position,omitempty"`
	Phase       string         `json:"phase,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close()                               {}
