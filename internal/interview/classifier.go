package interview

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/utils"
)

// Label is the kind of a candidate reply.
type Label string

const (
	LabelAnswer        Label = "ANSWER"
	LabelClarification Label = "CLARIFICATION_REQUEST"
)

// Classification is the outcome of ClassifyReply. Rephrased is set only for
// LabelClarification.
type Classification struct {
	Label     Label
	Rephrased string
}

// IsClarification reports whether the candidate asked for the question to be clarified.
func (c Classification) IsClarification() bool { return c.Label == LabelClarification }

// ReplyClassifier separates answers from clarification requests.
type ReplyClassifier struct {
	generator ai.Generator
	logger    *zap.Logger
}

func NewReplyClassifier(generator ai.Generator, log *zap.Logger) *ReplyClassifier {
	return &ReplyClassifier{generator: generator, logger: logger.OrNop(log)}
}

// ClassifyReply labels reply to question. Answers cost one model call;
// clarification requests cost a second call that rephrases the question
// without seeing the reply. Unrecognized labels count as answers so the
// interview keeps moving.
func (c *ReplyClassifier) ClassifyReply(ctx context.Context, question, reply string) (Classification, error) {
	raw, err := c.generator.GenerateContent(ctx, classifyPolicy, buildClassifyMessage(question, reply))
	if err != nil {
		return Classification{}, err
	}

	label, known := parseLabel(raw)
	if !known {
		c.logger.Warn("unrecognized reply classification, treating as answer",
			zap.String("label", utils.TruncateForLog(raw, 80)),
		)
	}

	if label != LabelClarification {
		return Classification{Label: LabelAnswer}, nil
	}

	rephrased, err := c.generator.GenerateContent(ctx, rephrasePolicy, buildRephraseMessage(question))
	if err != nil {
		return Classification{}, err
	}

	rephrased = strings.TrimSpace(rephrased)
	if rephrased == "" {
		return Classification{}, &EmptyGenerationError{Operation: "rephrase"}
	}

	// The candidate already heard the original wording.
	if strings.EqualFold(utils.SingleLine(rephrased), utils.SingleLine(question)) {
		rephrased = "Let me put it another way: " + strings.TrimSpace(question)
	}

	c.logger.Debug("candidate asked for clarification",
		zap.String("question", utils.TruncateForLog(question, 120)),
		zap.String("rephrased", utils.TruncateForLog(rephrased, 120)),
	)

	return Classification{Label: LabelClarification, Rephrased: rephrased}, nil
}

func parseLabel(raw string) (Label, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.Trim(normalized, "\"'`*.:!- \n\t")
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	normalized = utils.SingleLine(normalized)

	switch normalized {
	case "answer":
		return LabelAnswer, true
	case "clarification", "clarification request":
		return LabelClarification, true
	default:
		return LabelAnswer, false
	}
}
