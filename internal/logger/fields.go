package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared across packages.
const (
	FieldProvider    = "ai_provider"
	FieldModel       = "ai_model"
	FieldInterviewID = "interview_id"
	FieldDocumentID  = "document_id"
)

// StringFields turns key/value pairs into zap string fields. Blank keys or
// values are skipped, and a trailing key without a value is ignored.
func StringFields(pairs ...string) []zap.Field {
	result := make([]zap.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key := strings.TrimSpace(pairs[i])
		value := strings.TrimSpace(pairs[i+1])
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields attaches fields to logger, replacing a nil logger with a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// CommonFields describes the AI provider and model of a gateway.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(FieldProvider, provider, FieldModel, model)
}

// WithCommonFields scopes logger to an AI provider and model.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// WithInterview scopes logger to one interview and the résumé behind it.
func WithInterview(logger *zap.Logger, interviewID, documentID string) *zap.Logger {
	return WithFields(logger, StringFields(FieldInterviewID, interviewID, FieldDocumentID, documentID)...)
}
