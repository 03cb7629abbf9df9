package interview

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spigell/hh-interviewer/internal/ai"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		expect bool
	}{
		{name: "empty generation", err: &EmptyGenerationError{Operation: "next_question"}, expect: true},
		{name: "gateway", err: fmt.Errorf("classify: %w", &ai.GatewayError{Op: "generate", Err: errors.New("unavailable")}), expect: true},
		{name: "timeout", err: &ai.GatewayTimeoutError{Op: "generate", Timeout: time.Second}, expect: true},
		{name: "rejected request", err: fmt.Errorf("next question: %w", errors.New("gemini generate: Error 401, Message: API key not valid")), expect: false},
		{name: "not indexed", err: &NotIndexedError{DocumentID: "doc"}, expect: false},
		{name: "malformed", err: &MalformedAnalysisError{Reason: "not json"}, expect: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRetryable(tc.err); got != tc.expect {
				t.Fatalf("expected %v, got %v", tc.expect, got)
			}
		})
	}
}
