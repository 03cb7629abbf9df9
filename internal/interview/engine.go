// Package interview is the dialogue orchestration engine of a mock technical
// interview: it picks the next question, tells answers from clarification
// requests and scores the finished transcript.
//
// The engine keeps no per-interview state and takes no locks. Callers must
// serialize NextQuestion and reply handling for a single interview so that at
// most one question is outstanding at a time.
package interview

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/logger"
)

// Deps are the gateways the engine consumes.
type Deps struct {
	Generator ai.Generator
	Chunks    ChunkSource
	// Ladder overrides the embedded example question ladder when set.
	Ladder *Ladder
}

// Engine exposes the interview operations to the caller layer.
type Engine struct {
	questions  *QuestionGenerator
	classifier *ReplyClassifier
	analysis   *AnalysisSynthesizer
	logger     *zap.Logger
}

func New(deps Deps, log *zap.Logger) (*Engine, error) {
	if deps.Generator == nil {
		return nil, errors.New("language model gateway is required")
	}
	if deps.Chunks == nil {
		return nil, errors.New("embedding index gateway is required")
	}

	var ladder Ladder
	if deps.Ladder != nil {
		ladder = *deps.Ladder
	} else {
		var err error
		ladder, err = defaultLadder()
		if err != nil {
			return nil, err
		}
	}

	log = logger.OrNop(log)
	retriever := NewRetriever(deps.Chunks, log)

	return &Engine{
		questions:  NewQuestionGenerator(deps.Generator, retriever, ladder, log),
		classifier: NewReplyClassifier(deps.Generator, log),
		analysis:   NewAnalysisSynthesizer(deps.Generator, log),
		logger:     log,
	}, nil
}

// StartOrResumePhaseFor recomputes the phase of an interview from its
// transcript length. Nothing is stored.
func (e *Engine) StartOrResumePhaseFor(interviewID string, transcriptLength int) Phase {
	phase := SelectPhase(transcriptLength)
	e.logger.Info("interview phase",
		zap.String(logger.FieldInterviewID, interviewID),
		zap.Stringer("phase", phase),
		zap.Int("transcript_length", transcriptLength),
	)
	return phase
}

// NextQuestion generates the next question for the interview over documentID.
func (e *Engine) NextQuestion(ctx context.Context, documentID string, transcript []Turn) (string, error) {
	question, err := e.questions.GenerateNextQuestion(ctx, documentID, transcript)
	if err != nil {
		return "", fmt.Errorf("next question: %w", err)
	}
	return question, nil
}

// Classify labels the candidate's reply to question.
func (e *Engine) Classify(ctx context.Context, question, reply string) (Classification, error) {
	classification, err := e.classifier.ClassifyReply(ctx, question, reply)
	if err != nil {
		return Classification{}, fmt.Errorf("classify reply: %w", err)
	}
	return classification, nil
}

// FinalizeAnalysis scores a completed transcript.
func (e *Engine) FinalizeAnalysis(ctx context.Context, transcript []Turn) (Scorecard, error) {
	scorecard, err := e.analysis.SynthesizeAnalysis(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("finalize analysis: %w", err)
	}
	return scorecard, nil
}
