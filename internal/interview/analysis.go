package interview

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/utils"
)

//go:embed prompts/scorecard.schema.json
var scorecardSchema string

// MetricNames is the fixed scorecard schema, in display order.
var MetricNames = []string{
	"Correctness",
	"Clarity",
	"Relevance",
	"Detail",
	"Efficiency",
	"Creativity",
	"Communication",
}

const (
	MinScore = 1
	MaxScore = 10
)

// Metric is one scored dimension of the analysis.
type Metric struct {
	Score   int    `json:"score" mapstructure:"score"`
	Comment string `json:"comment" mapstructure:"comment"`
}

// Scorecard maps every name in MetricNames to its Metric.
type Scorecard map[string]Metric

// Validate checks that every metric is present with an in-range score.
func (s Scorecard) Validate() error {
	for _, name := range MetricNames {
		metric, ok := s[name]
		if !ok {
			return fmt.Errorf("metric %q is missing", name)
		}
		if metric.Score < MinScore || metric.Score > MaxScore {
			return fmt.Errorf("metric %q score %d is outside [%d,%d]", name, metric.Score, MinScore, MaxScore)
		}
	}
	return nil
}

var (
	fence = regexp.MustCompile("(?s)```(.*?)```")
)

var compiledScorecardSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(scorecardSchema))
})

// AnalysisSynthesizer scores a completed interview.
type AnalysisSynthesizer struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewAnalysisSynthesizer(generator ai.Generator, log *zap.Logger) *AnalysisSynthesizer {
	return &AnalysisSynthesizer{generator: generator, logger: logger.OrNop(log), maxLogLen: 200}
}

// SynthesizeAnalysis asks the model for a scorecard over the whole
// transcript. Output that does not fit the schema is reported as
// *MalformedAnalysisError and never partially returned.
func (a *AnalysisSynthesizer) SynthesizeAnalysis(ctx context.Context, transcript []Turn) (Scorecard, error) {
	prompt := buildAnalysisPrompt(transcript)

	a.logger.Debug("requesting interview analysis",
		zap.Int("transcript_length", len(transcript)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	raw, err := a.generator.GenerateContent(ctx, analysisSystem, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("analysis response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return ParseScorecard(raw)
}

// ParseScorecard extracts and validates a scorecard from raw model output.
func ParseScorecard(raw string) (Scorecard, error) {
	payload := extractFenced(raw)
	if payload == "" {
		return nil, &MalformedAnalysisError{Reason: "empty response", Raw: raw}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, &MalformedAnalysisError{Reason: "response is not a JSON object", Raw: raw, Err: err}
	}

	schema, err := compiledScorecardSchema()
	if err != nil {
		return nil, fmt.Errorf("load scorecard schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, &MalformedAnalysisError{Reason: "schema validation failed", Raw: raw, Err: err}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			problems = append(problems, field+": "+desc.Description())
		}
		return nil, &MalformedAnalysisError{Reason: strings.Join(problems, "; "), Raw: raw}
	}

	scorecard := make(Scorecard, len(MetricNames))
	for _, name := range MetricNames {
		var metric Metric
		if err := mapstructure.Decode(data[name], &metric); err != nil {
			return nil, &MalformedAnalysisError{Reason: fmt.Sprintf("decode metric %q", name), Raw: raw, Err: err}
		}
		metric.Comment = strings.TrimSpace(metric.Comment)
		scorecard[name] = metric
	}

	if err := scorecard.Validate(); err != nil {
		return nil, &MalformedAnalysisError{Reason: "invalid scorecard", Raw: raw, Err: err}
	}

	return scorecard, nil
}

// extractFenced returns the body of the first fenced block without its
// language tag, or the trimmed raw text when there is none.
func extractFenced(raw string) string {
	if match := fence.FindStringSubmatch(raw); len(match) == 2 {
		body := match[1]
		// Drop a language tag such as ```json on the opening line.
		if idx := strings.Index(body, "\n"); idx >= 0 {
			first := strings.TrimSpace(body[:idx])
			if first != "" && !strings.ContainsAny(first, " {[") {
				body = body[idx+1:]
			}
		} else if tag, rest, ok := strings.Cut(body, "{"); ok && strings.EqualFold(strings.TrimSpace(tag), "json") {
			body = "{" + rest
		}
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(raw)
}
