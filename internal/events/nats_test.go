package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	messages []published
	err      error
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, published{subject: subject, data: data})
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestNATSPublish(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	pub := newNATS(conn, "mock.interviews.", nil)

	position := 3
	event := Event{
		Type:        TypeTurnAsked,
		InterviewID: "iv-1",
		Position:    &position,
		Phase:       "TECHNICAL",
		OccurredAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	if len(conn.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(conn.messages))
	}
	msg := conn.messages[0]
	if msg.subject != "mock.interviews.interview.turn.asked" {
		t.Fatalf("unexpected subject: %s", msg.subject)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.data, &decoded); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if decoded["interview_id"] != "iv-1" || decoded["position"] != float64(3) {
		t.Fatalf("unexpected payload: %s", msg.data)
	}
	if _, ok := decoded["document_id"]; ok {
		t.Fatalf("empty document id must be omitted: %s", msg.data)
	}

	pub.Close()
	if !conn.closed {
		t.Fatalf("expected connection to be closed")
	}
}

func TestNATSDefaultPrefix(t *testing.T) {
	t.Parallel()

	pub := newNATS(&fakeConn{}, "", nil)
	if got := pub.Subject(TypeInterviewDone); got != "hh.interviewer.interview.completed" {
		t.Fatalf("unexpected subject: %s", got)
	}
}

func TestNATSPublishErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection closed")
	pub := newNATS(&fakeConn{err: boom}, "x", nil)
	if err := pub.Publish(context.Background(), Event{Type: TypeInterviewStarted}); !errors.Is(err, boom) {
		t.Fatalf("expected connection error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.Publish(ctx, Event{Type: TypeInterviewStarted}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	var pub Publisher = Nop{}
	if err := pub.Publish(context.Background(), Event{Type: TypeInterviewStarted}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pub.Close()
}
