package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelcast/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "tts", "synthesize", "piper failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"tts", "synthesize", "piper failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapTagsDeadlineAsTimeout(t *testing.T) {
	err := services.Wrap(services.ErrExternalTool, "whisperx", "transcribe", "", fmt.Errorf("run: %w", context.DeadlineExceeded))
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
	if !services.IsTimeout(err) {
		t.Fatal("expected IsTimeout to report true")
	}
	if services.Kind(err) != "timeout" {
		t.Fatalf("unexpected kind %q", services.Kind(err))
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient", services.Wrap(services.ErrTransient, "tts", "", "", errors.New("io")), true},
		{"external tool", services.Wrap(services.ErrExternalTool, "tts", "", "", nil), true},
		{"validation", services.Wrap(services.ErrValidation, "tts", "", "empty text", nil), false},
		{"configuration", services.Wrap(services.ErrConfiguration, "tts", "", "no model", nil), false},
		{"canceled", fmt.Errorf("stop: %w", context.Canceled), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Retryable(tt.err); got != tt.want {
				t.Fatalf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
