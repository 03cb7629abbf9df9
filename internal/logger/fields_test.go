package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		pairs  []string
		expect map[string]string
	}{
		{name: "trimmed", pairs: []string{"  provider  ", "  Gemini  "}, expect: map[string]string{"provider": "Gemini"}},
		{name: "blank value", pairs: []string{"ignored", "   "}, expect: map[string]string{}},
		{name: "blank key", pairs: []string{"   ", "value"}, expect: map[string]string{}},
		{name: "dangling key", pairs: []string{"a", "1", "b"}, expect: map[string]string{"a": "1"}},
		{name: "empty", expect: map[string]string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fields := StringFields(tc.pairs...)
			if len(fields) != len(tc.expect) {
				t.Fatalf("expected %d fields, got %d", len(tc.expect), len(fields))
			}
			for _, f := range fields {
				if tc.expect[f.Key] != f.String {
					t.Fatalf("unexpected field %s=%q", f.Key, f.String)
				}
			}
		})
	}
}

func TestScopedLoggers(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	WithCommonFields(log, "gemini", "gemini-2.5-flash").Info("generate")
	WithInterview(log, "iv-1", "").Debug("asked")
	WithFields(log).Info("bare")

	entries := observed.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	ai := entries[0].ContextMap()
	if ai[FieldProvider] != "gemini" || ai[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("unexpected ai fields: %v", ai)
	}

	iv := entries[1].ContextMap()
	if iv[FieldInterviewID] != "iv-1" {
		t.Fatalf("expected interview id field, got %v", iv)
	}
	if _, ok := iv[FieldDocumentID]; ok {
		t.Fatalf("expected empty document id to be omitted")
	}

	if len(entries[2].Context) != 0 {
		t.Fatalf("expected no fields, got %v", entries[2].Context)
	}
}

func TestScopedLoggersAcceptNil(t *testing.T) {
	t.Parallel()

	for _, log := range []*zap.Logger{
		WithFields(nil, zap.String("k", "v")),
		WithCommonFields(nil, "gemini", "m"),
		WithInterview(nil, "iv", "doc"),
	} {
		if log == nil {
			t.Fatalf("expected a no-op logger")
		}
		log.Info("does not panic")
	}
}
