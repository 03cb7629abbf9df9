package cmd

import (
	"errors"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/ingest"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/session"
	"github.com/spigell/hh-interviewer/internal/storage"
)

// userMessage turns an error into something a candidate can act on. The
// technical detail stays in the logs.
func userMessage(err error) string {
	var (
		notIndexed *interview.NotIndexedError
		malformed  *interview.MalformedAnalysisError
		empty      *interview.EmptyGenerationError
		timeout    *ai.GatewayTimeoutError
		gateway    *ai.GatewayError
	)

	switch {
	case errors.As(err, &notIndexed), errors.Is(err, session.ErrDocumentNotIndexed):
		return "Your résumé is not indexed yet. Run the ingest command for it again."
	case errors.As(err, &malformed):
		return "The interview analysis could not be produced. Your answers are saved; end the interview again to retry."
	case errors.As(err, &empty):
		return "The interviewer had nothing to say this time. Please try again."
	case errors.As(err, &timeout):
		return "The interviewer is taking too long to respond. Please try again in a moment."
	case errors.As(err, &gateway):
		return "The interviewer is temporarily unavailable. Please try again later."
	case errors.Is(err, session.ErrInterviewCompleted):
		return "This interview is already finished. Use the analysis command to see the results."
	case errors.Is(err, session.ErrInterviewNotStarted):
		return "This interview has not started yet, so there is nothing to analyse."
	case errors.Is(err, session.ErrNoOutstandingQuestion):
		return "There is no open question to answer."
	case errors.Is(err, session.ErrEmptyReply):
		return "Please type an answer."
	case errors.Is(err, storage.ErrNotFound):
		return "Nothing was found for that ID."
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return "This file type is not supported. Use a .pdf, .docx, .txt or .md résumé."
	case errors.Is(err, ingest.ErrEmptyDocument):
		return "The résumé file has no text."
	default:
		return "Error: " + err.Error()
	}
}
