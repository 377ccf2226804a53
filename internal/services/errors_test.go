package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"lyricsync/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrDecodeFailure, "whisperx", "decode", "ffmpeg failed", base)
	if !errors.Is(err, services.ErrDecodeFailure) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"whisperx", "decode", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want services.Kind
	}{
		{"nil", nil, ""},
		{"invalid", services.Wrap(services.ErrInvalidInput, "api", "upload", "no file", nil), services.KindInvalidInput},
		{"media", services.Wrap(services.ErrUnsupportedMedia, "", "", "", nil), services.KindUnsupportedMedia},
		{"decode", services.Wrap(services.ErrDecodeFailure, "", "", "", nil), services.KindDecodeFailure},
		{"quota", services.Wrap(services.ErrQuotaExceeded, "", "", "", nil), services.KindQuotaExceeded},
		{"busy", services.Wrap(services.ErrAlreadyInProgress, "", "", "", nil), services.KindAlreadyInProgress},
		{"unmarked", errors.New("mystery"), services.KindProviderUnavailable},
		{"double wrapped", fmt.Errorf("outer: %w", services.Wrap(services.ErrQuotaExceeded, "", "", "", nil)), services.KindQuotaExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyTimeout(t *testing.T) {
	err := services.Classify("player", "transcribe", context.DeadlineExceeded)
	if !errors.Is(err, services.ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable marker, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline to be retained, got %v", err)
	}
	if msg := services.UserMessage(err); !strings.Contains(msg, "did not respond in time") {
		t.Fatalf("unexpected user message %q", msg)
	}
}

func TestClassifyKeepsExistingMarker(t *testing.T) {
	original := services.Wrap(services.ErrDecodeFailure, "whisperx", "decode", "", nil)
	if got := services.Classify("player", "transcribe", original); got != original {
		t.Fatalf("expected marked error to pass through unchanged, got %v", got)
	}
}

func TestUserMessageIsSingleLine(t *testing.T) {
	for _, marker := range []error{
		services.ErrInvalidInput,
		services.ErrUnsupportedMedia,
		services.ErrDecodeFailure,
		services.ErrQuotaExceeded,
		services.ErrProviderUnavailable,
		services.ErrAlreadyInProgress,
	} {
		msg := services.UserMessage(services.Wrap(marker, "x", "y", "z", nil))
		if msg == "" || strings.Contains(msg, "\n") {
			t.Fatalf("unexpected message for %v: %q", marker, msg)
		}
	}
}
