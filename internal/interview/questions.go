package interview

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/logger"
)

// QuestionGenerator produces the next interview question. Topic ordering
// inside a phase is only instructed to the model; the deterministic part is
// the phase choice itself.
type QuestionGenerator struct {
	generator ai.Generator
	retriever *Retriever
	ladder    Ladder
	logger    *zap.Logger
}

func NewQuestionGenerator(generator ai.Generator, retriever *Retriever, ladder Ladder, log *zap.Logger) *QuestionGenerator {
	return &QuestionGenerator{
		generator: generator,
		retriever: retriever,
		ladder:    ladder,
		logger:    logger.OrNop(log),
	}
}

// GenerateNextQuestion returns one question for the interview over
// documentID given the transcript so far. It does not persist anything.
func (q *QuestionGenerator) GenerateNextQuestion(ctx context.Context, documentID string, transcript []Turn) (string, error) {
	phase := SelectPhase(len(transcript))

	var policy string
	switch phase {
	case PhaseRapport:
		policy = buildRapportPolicy(transcript)
	case PhaseTechnical:
		resume, err := q.retriever.RetrieveContext(ctx, documentID)
		if err != nil {
			return "", err
		}
		policy = buildTechnicalPolicy(resume, transcript, q.ladder)
	default:
		return "", fmt.Errorf("unknown interview phase %q", phase)
	}

	q.logger.Debug("generating next question",
		zap.String(logger.FieldDocumentID, documentID),
		zap.Stringer("phase", phase),
		zap.Int("transcript_length", len(transcript)),
		zap.Int("policy_length", utf8.RuneCountInString(policy)),
	)

	raw, err := q.generator.GenerateContent(ctx, policy, NextQuestionDirective)
	if err != nil {
		return "", err
	}

	question := strings.TrimSpace(raw)
	if question == "" {
		return "", &EmptyGenerationError{Operation: "next_question"}
	}

	return question, nil
}
