package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/hh-interviewer/internal/ai"
)

func newTestQuestionGenerator(gen *stubGenerator, chunks *stubChunks) *QuestionGenerator {
	ladder, _ := defaultLadder()
	return NewQuestionGenerator(gen, NewRetriever(chunks, nil), ladder, nil)
}

func TestGenerateNextQuestionRapportSkipsRetrieval(t *testing.T) {
	gen := newStubGenerator("  Where did you grow up?\n")
	chunks := &stubChunks{}

	got, err := newTestQuestionGenerator(gen, chunks).GenerateNextQuestion(context.Background(), "doc", turns(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "Where did you grow up?" {
		t.Fatalf("unexpected question: %q", got)
	}
	if chunks.calls != 0 {
		t.Fatalf("expected no retrieval in rapport phase, got %d calls", chunks.calls)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("expected a single generate call, got %d", len(gen.calls))
	}
	if gen.calls[0].message != NextQuestionDirective {
		t.Fatalf("unexpected directive: %q", gen.calls[0].message)
	}
	if !strings.Contains(gen.calls[0].system, "Q2: question") {
		t.Fatalf("expected rapport policy to carry the transcript, got:\n%s", gen.calls[0].system)
	}
}

func TestGenerateNextQuestionEmptyTranscriptPlaceholder(t *testing.T) {
	gen := newStubGenerator("Tell me about yourself.")

	if _, err := newTestQuestionGenerator(gen, &stubChunks{}).GenerateNextQuestion(context.Background(), "doc", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gen.calls[0].system, emptyTranscript) {
		t.Fatalf("expected placeholder for empty transcript")
	}
}

func TestGenerateNextQuestionTechnicalUsesContext(t *testing.T) {
	gen := newStubGenerator("How did you shard the queue in Atlas?")
	chunks := &stubChunks{chunks: map[string][]string{"doc": {"Built Atlas, a sharded queue in Go"}}}

	got, err := newTestQuestionGenerator(gen, chunks).GenerateNextQuestion(context.Background(), "doc", turns(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "How did you shard the queue in Atlas?" {
		t.Fatalf("unexpected question: %q", got)
	}
	if chunks.calls != 1 {
		t.Fatalf("expected one retrieval, got %d", chunks.calls)
	}
	system := gen.calls[0].system
	if !strings.Contains(system, "Built Atlas, a sharded queue in Go") {
		t.Fatalf("expected résumé context in policy")
	}
	if strings.Contains(system, "{{") {
		t.Fatalf("policy has unreplaced placeholders:\n%s", system)
	}
}

func TestGenerateNextQuestionNotIndexedSkipsGeneration(t *testing.T) {
	gen := newStubGenerator("unused")

	_, err := newTestQuestionGenerator(gen, &stubChunks{}).GenerateNextQuestion(context.Background(), "doc", turns(5))

	var notIndexed *NotIndexedError
	if !errors.As(err, &notIndexed) {
		t.Fatalf("expected NotIndexedError, got %v", err)
	}
	if len(gen.calls) != 0 {
		t.Fatalf("expected no generate call, got %d", len(gen.calls))
	}
}

func TestGenerateNextQuestionEmptyOutput(t *testing.T) {
	gen := newStubGenerator("   \n\t")

	_, err := newTestQuestionGenerator(gen, &stubChunks{}).GenerateNextQuestion(context.Background(), "doc", nil)

	var empty *EmptyGenerationError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyGenerationError, got %v", err)
	}
	if empty.Operation != "next_question" {
		t.Fatalf("unexpected operation: %q", empty.Operation)
	}
	if !IsRetryable(err) {
		t.Fatalf("empty generation should be retryable")
	}
}

func TestGenerateNextQuestionGatewayError(t *testing.T) {
	timeout := &ai.GatewayTimeoutError{Op: "generate"}
	gen := (&stubGenerator{}).failWith(timeout)

	_, err := newTestQuestionGenerator(gen, &stubChunks{}).GenerateNextQuestion(context.Background(), "doc", nil)
	if !errors.Is(err, timeout) {
		t.Fatalf("expected timeout to propagate, got %v", err)
	}
}
