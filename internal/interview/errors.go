package interview

import (
	"errors"
	"fmt"

	"github.com/spigell/hh-interviewer/internal/ai"
)

// NotIndexedError means no indexed content exists for a document. It is a
// data problem and must not be retried.
type NotIndexedError struct {
	DocumentID string
}

func (e *NotIndexedError) Error() string {
	return fmt.Sprintf("document %q has no indexed content", e.DocumentID)
}

// EmptyGenerationError means the model produced no usable text.
type EmptyGenerationError struct {
	Operation string
}

func (e *EmptyGenerationError) Error() string {
	return fmt.Sprintf("%s: model returned no usable text", e.Operation)
}

// MalformedAnalysisError means the analysis response did not match the
// scorecard schema. No partial scorecard accompanies it.
type MalformedAnalysisError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *MalformedAnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed analysis: %s: %v", e.Reason, e.Err)
	}
	return "malformed analysis: " + e.Reason
}

func (e *MalformedAnalysisError) Unwrap() error { return e.Err }

// IsRetryable reports whether the caller may retry the operation that
// produced err a bounded number of times.
func IsRetryable(err error) bool {
	var emptyErr *EmptyGenerationError
	if errors.As(err, &emptyErr) {
		return true
	}

	var notIndexed *NotIndexedError
	var malformed *MalformedAnalysisError
	if errors.As(err, &notIndexed) || errors.As(err, &malformed) {
		return false
	}

	return ai.IsRetryable(err)
}
