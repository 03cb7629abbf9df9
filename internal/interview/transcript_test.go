package interview

import "testing"

func TestFormatTranscript(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		turns  []Turn
		expect string
	}{
		{name: "empty", turns: nil, expect: ""},
		{
			name:   "unanswered last turn",
			turns:  []Turn{{Question: "Where did you study?", Response: "Delft"}, {Question: "Why software?"}},
			expect: "Q1: Where did you study?\nA1: Delft\nQ2: Why software?\nA2: ",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatTranscript(tc.turns); got != tc.expect {
				t.Fatalf("unexpected transcript:\n%q\nexpected:\n%q", got, tc.expect)
			}
		})
	}
}

func TestFormatTranscriptIsDeterministicAndOrderSensitive(t *testing.T) {
	a := Turn{Question: "What is a goroutine?", Response: "A lightweight thread."}
	b := Turn{Question: "What is a channel?", Response: "A typed pipe."}

	first := FormatTranscript([]Turn{a, b})
	if again := FormatTranscript([]Turn{a, b}); again != first {
		t.Fatalf("expected identical output for identical input")
	}

	if swapped := FormatTranscript([]Turn{b, a}); swapped == first {
		t.Fatalf("expected different output when turn order differs")
	}
}
