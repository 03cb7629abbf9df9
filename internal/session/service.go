// Package session drives interviews on top of the stateless interview engine:
// it persists turns, enforces the lifecycle and serializes work per interview.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/spigell/hh-interviewer/internal/events"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/model"
)

var (
	ErrInterviewCompleted    = errors.New("interview is already completed")
	ErrInterviewNotStarted   = errors.New("interview has not started")
	ErrNoOutstandingQuestion = errors.New("no question is waiting for an answer")
	ErrDocumentNotIndexed    = errors.New("document is not indexed yet")
	ErrEmptyReply            = errors.New("reply must not be empty")
)

// Store is the persistence the service needs.
type Store interface {
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	CreateInterview(ctx context.Context, documentID string) (*model.Interview, error)
	GetInterview(ctx context.Context, id string) (*model.Interview, error)
	UpdateInterview(ctx context.Context, iv *model.Interview) error
	ListTurns(ctx context.Context, interviewID string) ([]model.Turn, error)
	AppendTurn(ctx context.Context, interviewID, question string) (*model.Turn, error)
	AnswerTurn(ctx context.Context, turnID, response string) error
	CompleteInterview(ctx context.Context, iv *model.Interview, scorecard datatypes.JSON) (*model.Analysis, error)
	GetAnalysis(ctx context.Context, interviewID string) (*model.Analysis, error)
}

// Engine is the dialogue engine.
type Engine interface {
	StartOrResumePhaseFor(interviewID string, transcriptLength int) interview.Phase
	NextQuestion(ctx context.Context, documentID string, transcript []interview.Turn) (string, error)
	Classify(ctx context.Context, question, reply string) (interview.Classification, error)
	FinalizeAnalysis(ctx context.Context, transcript []interview.Turn) (interview.Scorecard, error)
}

// Question is the question currently put to the candidate.
type Question struct {
	TurnID   string
	Position int
	Text     string
	Phase    interview.Phase
}

// ReplyResult tells the caller what happened to a reply. When the candidate
// asked for clarification Rephrased holds the new wording and the question
// stays outstanding.
type ReplyResult struct {
	Label     interview.Label
	Rephrased string
	Recorded  bool
}

type Service struct {
	store     Store
	engine    Engine
	publisher events.Publisher
	logger    *zap.Logger
	locks     *keyedMutex
	now       func() time.Time
}

func NewService(store Store, engine Engine, publisher events.Publisher, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		store:     store,
		engine:    engine,
		publisher: publisher,
		logger:    logger.OrNop(log),
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// Open creates a NOT_STARTED interview over an indexed document.
func (s *Service) Open(ctx context.Context, documentID string) (*model.Interview, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.Indexed() {
		return nil, fmt.Errorf("open interview for %q: %w", documentID, ErrDocumentNotIndexed)
	}

	iv, err := s.store.CreateInterview(ctx, documentID)
	if err != nil {
		return nil, err
	}

	logger.WithInterview(s.logger, iv.ID, documentID).Info("interview opened")
	return iv, nil
}

// Start moves a NOT_STARTED interview to STARTED and reports the phase it
// resumes in. Starting a STARTED interview only recomputes the phase.
func (s *Service) Start(ctx context.Context, interviewID string) (interview.Phase, error) {
	unlock := s.locks.Lock(interviewID)
	defer unlock()

	iv, turns, err := s.load(ctx, interviewID)
	if err != nil {
		return "", err
	}
	if err := s.start(ctx, iv); err != nil {
		return "", err
	}
	return s.engine.StartOrResumePhaseFor(iv.ID, len(turns)), nil
}

// Ask returns the outstanding question, or generates and stores a new one.
// It never leaves two unanswered questions.
func (s *Service) Ask(ctx context.Context, interviewID string) (Question, error) {
	unlock := s.locks.Lock(interviewID)
	defer unlock()

	iv, turns, err := s.load(ctx, interviewID)
	if err != nil {
		return Question{}, err
	}
	if err := s.start(ctx, iv); err != nil {
		return Question{}, err
	}

	if last, ok := outstanding(turns); ok {
		return Question{
			TurnID:   last.ID,
			Position: last.Position,
			Text:     last.Question,
			Phase:    interview.SelectPhase(last.Position),
		}, nil
	}

	text, err := s.engine.NextQuestion(ctx, iv.DocumentID, transcript(turns))
	if err != nil {
		return Question{}, err
	}

	turn, err := s.store.AppendTurn(ctx, iv.ID, text)
	if err != nil {
		return Question{}, err
	}

	phase := interview.SelectPhase(len(turns))
	s.publish(ctx, events.Event{
		Type:        events.TypeTurnAsked,
		InterviewID: iv.ID,
		DocumentID:  iv.DocumentID,
		Position:    &turn.Position,
		Phase:       phase.String(),
	})

	return Question{TurnID: turn.ID, Position: turn.Position, Text: turn.Question, Phase: phase}, nil
}

// Reply handles the candidate's reply to the outstanding question.
func (s *Service) Reply(ctx context.Context, interviewID, reply string) (ReplyResult, error) {
	if strings.TrimSpace(reply) == "" {
		return ReplyResult{}, ErrEmptyReply
	}

	unlock := s.locks.Lock(interviewID)
	defer unlock()

	iv, turns, err := s.load(ctx, interviewID)
	if err != nil {
		return ReplyResult{}, err
	}
	if iv.State == model.InterviewCompleted {
		return ReplyResult{}, ErrInterviewCompleted
	}

	turn, ok := outstanding(turns)
	if !ok {
		return ReplyResult{}, ErrNoOutstandingQuestion
	}

	classification, err := s.engine.Classify(ctx, turn.Question, reply)
	if err != nil {
		return ReplyResult{}, err
	}

	if classification.IsClarification() {
		logger.WithInterview(s.logger, iv.ID, iv.DocumentID).Info("question rephrased",
			zap.Int("position", turn.Position),
		)
		return ReplyResult{Label: classification.Label, Rephrased: classification.Rephrased}, nil
	}

	if err := s.store.AnswerTurn(ctx, turn.ID, reply); err != nil {
		return ReplyResult{}, err
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeTurnAnswered,
		InterviewID: iv.ID,
		DocumentID:  iv.DocumentID,
		Position:    &turn.Position,
	})

	return ReplyResult{Label: classification.Label, Recorded: true}, nil
}

// End scores the interview and completes it. Ending a completed interview
// returns the stored scorecard. When scoring fails the interview stays
// STARTED so End can be retried.
func (s *Service) End(ctx context.Context, interviewID string) (interview.Scorecard, error) {
	unlock := s.locks.Lock(interviewID)
	defer unlock()

	iv, turns, err := s.load(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	switch iv.State {
	case model.InterviewCompleted:
		return s.analysis(ctx, iv.ID)
	case model.InterviewNotStarted:
		return nil, ErrInterviewNotStarted
	}

	scorecard, err := s.engine.FinalizeAnalysis(ctx, transcript(turns))
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(scorecard)
	if err != nil {
		return nil, fmt.Errorf("encode scorecard: %w", err)
	}

	completed := *iv
	if err := completed.Transition(model.InterviewCompleted, s.now()); err != nil {
		return nil, err
	}
	if _, err := s.store.CompleteInterview(ctx, &completed, datatypes.JSON(payload)); err != nil {
		return nil, err
	}

	logger.WithInterview(s.logger, iv.ID, iv.DocumentID).Info("interview completed",
		zap.Int("turns", len(turns)),
	)
	s.publish(ctx, events.Event{
		Type:        events.TypeInterviewDone,
		InterviewID: iv.ID,
		DocumentID:  iv.DocumentID,
		Data:        map[string]any{"turns": len(turns)},
	})

	return scorecard, nil
}

// Analysis returns the stored scorecard of a completed interview.
func (s *Service) Analysis(ctx context.Context, interviewID string) (interview.Scorecard, error) {
	return s.analysis(ctx, interviewID)
}

// Transcript returns the turns of an interview in order.
func (s *Service) Transcript(ctx context.Context, interviewID string) ([]model.Turn, error) {
	return s.store.ListTurns(ctx, interviewID)
}

func (s *Service) analysis(ctx context.Context, interviewID string) (interview.Scorecard, error) {
	stored, err := s.store.GetAnalysis(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	var scorecard interview.Scorecard
	if err := json.Unmarshal(stored.Scorecard, &scorecard); err != nil {
		return nil, fmt.Errorf("decode stored scorecard: %w", err)
	}
	return scorecard, nil
}

func (s *Service) load(ctx context.Context, interviewID string) (*model.Interview, []model.Turn, error) {
	iv, err := s.store.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, nil, err
	}
	turns, err := s.store.ListTurns(ctx, interviewID)
	if err != nil {
		return nil, nil, err
	}
	return iv, turns, nil
}

func (s *Service) start(ctx context.Context, iv *model.Interview) error {
	switch iv.State {
	case model.InterviewCompleted:
		return ErrInterviewCompleted
	case model.InterviewStarted:
		return nil
	}

	if err := iv.Transition(model.InterviewStarted, s.now()); err != nil {
		return err
	}
	if err := s.store.UpdateInterview(ctx, iv); err != nil {
		return err
	}

	logger.WithInterview(s.logger, iv.ID, iv.DocumentID).Info("interview started")
	s.publish(ctx, events.Event{
		Type:        events.TypeInterviewStarted,
		InterviewID: iv.ID,
		DocumentID:  iv.DocumentID,
	})
	return nil
}

// publish never fails the caller: events are notifications only.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed",
			zap.String("type", event.Type),
			zap.String(logger.FieldInterviewID, event.InterviewID),
			zap.Error(err),
		)
	}
}

func outstanding(turns []model.Turn) (model.Turn, bool) {
	if len(turns) == 0 {
		return model.Turn{}, false
	}
	last := turns[len(turns)-1]
	return last, last.Outstanding()
}

func transcript(turns []model.Turn) []interview.Turn {
	out := make([]interview.Turn, 0, len(turns))
	for _, t := range turns {
		out = append(out, interview.Turn{Question: t.Question, Response: t.Response})
	}
	return out
}
