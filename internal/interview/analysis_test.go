package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func scorecardJSON(override map[string]string) string {
	parts := make([]string, 0, len(MetricNames))
	for i, name := range MetricNames {
		value := fmt.Sprintf(`{"score": %d, "comment": "comment for %s"}`, i+3, name)
		if v, ok := override[name]; ok {
			if v == "" {
				continue
			}
			value = v
		}
		parts = append(parts, fmt.Sprintf("%q: %s", name, value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func TestParseScorecardValid(t *testing.T) {
	t.Parallel()

	body := scorecardJSON(nil)
	cases := map[string]string{
		"raw":           body,
		"json fence":    "Here is the analysis:\n```json\n" + body + "\n```\nGood luck!",
		"generic fence": "```\n" + body + "\n```",
		"tagged fence":  "```text\n" + body + "\n```",
		"first fence":   "```\n" + body + "\n```\nEarlier draft:\n```json\n{\"Clarity\": 1}\n```",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			scorecard, err := ParseScorecard(raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(scorecard) != len(MetricNames) {
				t.Fatalf("expected %d metrics, got %d", len(MetricNames), len(scorecard))
			}
			if got := scorecard["Correctness"]; got.Score != 3 || got.Comment != "comment for Correctness" {
				t.Fatalf("unexpected Correctness metric: %+v", got)
			}
			if got := scorecard["Communication"].Score; got != 9 {
				t.Fatalf("unexpected Communication score: %d", got)
			}
		})
	}
}

func TestParseScorecardMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":           "",
		"not json":        "The candidate did well overall.",
		"missing metric":  scorecardJSON(map[string]string{"Creativity": ""}),
		"string score":    scorecardJSON(map[string]string{"Clarity": `{"score": "seven", "comment": "ok"}`}),
		"fraction score":  scorecardJSON(map[string]string{"Clarity": `{"score": 7.5, "comment": "ok"}`}),
		"score too high":  scorecardJSON(map[string]string{"Detail": `{"score": 11, "comment": "ok"}`}),
		"score too low":   scorecardJSON(map[string]string{"Detail": `{"score": 0, "comment": "ok"}`}),
		"array":           "[1, 2, 3]",
		"missing comment": scorecardJSON(map[string]string{"Efficiency": `{"score": 6}`}),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			scorecard, err := ParseScorecard(raw)
			if scorecard != nil {
				t.Fatalf("expected no partial scorecard, got %+v", scorecard)
			}

			var malformed *MalformedAnalysisError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedAnalysisError, got %T: %v", err, err)
			}
			if malformed.Raw != raw {
				t.Fatalf("expected raw output to be kept")
			}
			if IsRetryable(err) {
				t.Fatalf("malformed analysis must not be retryable")
			}
		})
	}
}

func TestParseScorecardDropsUnknownMetrics(t *testing.T) {
	t.Parallel()

	raw := strings.TrimSuffix(scorecardJSON(map[string]string{"Relevance": `{"score": 5, "comment": "  on topic "}`}), "}") +
		`, "Humor": {"score": 5, "comment": "ok"}}`

	scorecard, err := ParseScorecard(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := scorecard["Humor"]; ok {
		t.Fatalf("expected unknown metric to be dropped")
	}
	if got := scorecard["Relevance"]; got.Score != 5 || got.Comment != "on topic" {
		t.Fatalf("unexpected Relevance metric: %+v", got)
	}
}

func TestSynthesizeAnalysisPrompt(t *testing.T) {
	gen := newStubGenerator("```json\n" + scorecardJSON(nil) + "\n```")
	transcript := []Turn{{Question: "What is a closure?", Response: "A function with its scope."}}

	scorecard, err := NewAnalysisSynthesizer(gen, nil).SynthesizeAnalysis(context.Background(), transcript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := scorecard.Validate(); err != nil {
		t.Fatalf("expected valid scorecard: %v", err)
	}

	if len(gen.calls) != 1 {
		t.Fatalf("expected one generate call, got %d", len(gen.calls))
	}
	prompt := gen.calls[0].message
	if !strings.Contains(prompt, "Q1: What is a closure?\nA1: A function with its scope.") {
		t.Fatalf("expected formatted transcript in prompt:\n%s", prompt)
	}
	for _, name := range MetricNames {
		if !strings.Contains(prompt, name) {
			t.Fatalf("prompt does not mention metric %q", name)
		}
	}
	if strings.Contains(prompt, "{{") {
		t.Fatalf("prompt has unreplaced placeholders")
	}
}

func TestScorecardValidate(t *testing.T) {
	t.Parallel()

	full := Scorecard{}
	for _, name := range MetricNames {
		full[name] = Metric{Score: MaxScore, Comment: "ok"}
	}
	if err := full.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	full["Efficiency"] = Metric{Score: MaxScore + 1}
	if err := full.Validate(); err == nil {
		t.Fatalf("expected out-of-range score to fail")
	}

	delete(full, "Efficiency")
	if err := full.Validate(); err == nil {
		t.Fatalf("expected missing metric to fail")
	}
}
