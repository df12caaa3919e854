package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidParameter, "stroke %v mm outside [12, 20]", 25.0)
	if !strings.Contains(err.Error(), "INVALID_PARAMETER") {
		t.Errorf("Error() should contain code, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "25") {
		t.Errorf("Error() should contain formatted args, got %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeStore, cause, "write snapshot")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() should include cause, got %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeLayoutOverlap, "crank vs flywheel"), ErrCodeLayoutOverlap, true},
		{"different code", New(ErrCodeLayoutOverlap, "crank vs flywheel"), ErrCodeUnitMismatch, false},
		{"wrapped in fmt", fmt.Errorf("layout: %w", New(ErrCodeLayoutOverlap, "pair")), ErrCodeLayoutOverlap, true},
		{"plain error", stderrors.New("boom"), ErrCodeInternal, false},
	}

	for _, tt := range tests {
		if got := Is(tt.err, tt.code); got != tt.want {
			t.Errorf("%s: Is() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeCyclicDependency, "a <-> b")); got != ErrCodeCyclicDependency {
		t.Errorf("GetCode = %q, want CYCLIC_DEPENDENCY", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodePhysicallyInvalid, "compression ratio 0.8 must exceed 1")
	if msg := UserMessage(err); strings.Contains(msg, "PHYSICALLY_INVALID") {
		t.Errorf("UserMessage should strip the code prefix, got %q", msg)
	}
	if msg := UserMessage(stderrors.New("plain")); msg != "plain" {
		t.Errorf("UserMessage on plain error = %q", msg)
	}
}

func TestFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"catalog unavailable", New(ErrCodeCatalogUnavailable, "no machines.toml"), false},
		{"overlap", New(ErrCodeLayoutOverlap, "pair"), true},
		{"plain error", stderrors.New("boom"), true},
	}

	for _, tt := range tests {
		if got := Fatal(tt.err); got != tt.want {
			t.Errorf("%s: Fatal() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
