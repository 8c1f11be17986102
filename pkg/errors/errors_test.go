package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeMissingField, "field does not resolve")

	if err.Code != CodeMissingField {
		t.Errorf("Expected code %s, got %s", CodeMissingField, err.Code)
	}
	if !strings.Contains(err.Error(), string(CodeMissingField)) {
		t.Errorf("Expected code in message, got %q", err.Error())
	}
	if len(err.StackTrace) == 0 {
		t.Error("Expected captured stack trace")
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, CodeWriteFailed, "failed to write output")

	if !stderrors.Is(err, cause) {
		t.Error("Expected wrapped error to match cause via errors.Is")
	}
	if got := GetCode(err); got != CodeWriteFailed {
		t.Errorf("Expected CodeWriteFailed, got %s", got)
	}
}

func TestWrap_Nil(t *testing.T) {
	if err := Wrap(nil, CodeUnknown, "nothing"); err != nil {
		t.Errorf("Expected nil for nil cause, got %v", err)
	}
}

func TestWithContext(t *testing.T) {
	err := New(CodeInvalidTimestamp, "failed to parse timestamp").
		WithContext("row", 42).
		WithContext("value", "garbage")

	if err.Context["row"] != 42 {
		t.Errorf("Expected row 42 in context, got %v", err.Context["row"])
	}
	if err.Context["value"] != "garbage" {
		t.Errorf("Expected value in context, got %v", err.Context["value"])
	}
}

func TestMissingField(t *testing.T) {
	err := MissingField("sesion_key", []string{"session_key", "action"})

	if !IsConfiguration(err) {
		t.Error("Expected configuration error classification")
	}
	if err.Context["field"] != "sesion_key" {
		t.Errorf("Expected offending field in context, got %v", err.Context["field"])
	}
}

func TestInvalidTimestamp(t *testing.T) {
	err := InvalidTimestamp("not-a-date", 7)

	if !IsParse(err) {
		t.Error("Expected parse error classification")
	}
	if IsConfiguration(err) {
		t.Error("Parse error misclassified as configuration error")
	}
	if err.Context["row"] != 7 {
		t.Errorf("Expected row 7 in context, got %v", err.Context["row"])
	}
}

func TestIsCode_ThroughWrapping(t *testing.T) {
	inner := InvalidTimestamp("x", 1)
	outer := Wrap(inner, CodeParseFailed, "normalization failed")

	// As finds the outermost *Error first.
	if got := GetCode(outer); got != CodeParseFailed {
		t.Errorf("Expected outer code, got %s", got)
	}
	if !stderrors.Is(outer, inner) {
		t.Error("Expected inner error reachable via errors.Is")
	}
}

func TestGetCode_ForeignError(t *testing.T) {
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Errorf("Expected CodeUnknown for foreign error, got %s", got)
	}
}

func TestMultiError(t *testing.T) {
	var m MultiError

	if m.Combined() != nil {
		t.Error("Expected nil for empty MultiError")
	}

	m.Add(nil)
	if m.HasErrors() {
		t.Error("Adding nil should not record an error")
	}

	first := New(CodeParseFailed, "row 1")
	m.Add(first)
	if m.Combined() != first {
		t.Error("Single error should be returned unwrapped")
	}

	m.Add(New(CodeParseFailed, "row 2"))
	combined := m.Combined()
	if combined == nil {
		t.Fatal("Expected combined error")
	}
	if !strings.Contains(combined.Error(), "2 errors occurred") {
		t.Errorf("Expected combined message, got %q", combined.Error())
	}
}
