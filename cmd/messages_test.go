package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/ingest"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/session"
	"github.com/spigell/hh-interviewer/internal/storage"
)

func TestUserMessageDistinguishesErrorKinds(t *testing.T) {
	t.Parallel()

	errs := []error{
		fmt.Errorf("next question: %w", &interview.NotIndexedError{DocumentID: "doc"}),
		fmt.Errorf("finalize analysis: %w", &interview.MalformedAnalysisError{Reason: "bad"}),
		&interview.EmptyGenerationError{Operation: "next_question"},
		fmt.Errorf("classify reply: %w", &ai.GatewayTimeoutError{Op: "generate"}),
		&ai.GatewayError{Op: "generate", Err: errors.New("503")},
		session.ErrInterviewCompleted,
		session.ErrInterviewNotStarted,
		session.ErrNoOutstandingQuestion,
		session.ErrEmptyReply,
		fmt.Errorf("get interview: %w", storage.ErrNotFound),
		ingest.ErrUnsupportedFormat,
		ingest.ErrEmptyDocument,
	}

	seen := make(map[string]error, len(errs))
	for _, err := range errs {
		msg := userMessage(err)
		if prev, ok := seen[msg]; ok {
			t.Fatalf("%v and %v share the message %q", prev, err, msg)
		}
		seen[msg] = err
	}
}

func TestUserMessageFallback(t *testing.T) {
	t.Parallel()

	if got := userMessage(errors.New("disk full")); got != "Error: disk full" {
		t.Fatalf("unexpected fallback message: %q", got)
	}
}
