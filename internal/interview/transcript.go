package interview

import (
	"strconv"
	"strings"
)

// Turn is one question/response pair. Response is empty until answered.
type Turn struct {
	Question string
	Response string
}

// Answered reports whether the candidate has responded to the turn.
func (t Turn) Answered() bool { return t.Response != "" }

// FormatTranscript renders turns as the canonical Q/A history shared by all
// prompts:
//
//	Q1: <question>
//	A1: <response>
func FormatTranscript(turns []Turn) string {
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		n := strconv.Itoa(i + 1)
		b.WriteString("Q" + n + ": " + turn.Question + "\n")
		b.WriteString("A" + n + ": " + turn.Response)
	}
	return b.String()
}
