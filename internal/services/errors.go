package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Failure markers. Every error surfaced by a provider or the player session
// wraps exactly one of these.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedMedia    = errors.New("unsupported media")
	ErrDecodeFailure       = errors.New("decode failure")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrAlreadyInProgress   = errors.New("already in progress")
)

// Kind is the stable name of a failure class, used in API payloads.
type Kind string

const (
	KindInvalidInput        Kind = "InvalidInput"
	KindUnsupportedMedia    Kind = "UnsupportedMedia"
	KindDecodeFailure       Kind = "DecodeFailure"
	KindQuotaExceeded       Kind = "QuotaExceeded"
	KindProviderUnavailable Kind = "ProviderUnavailable"
	KindAlreadyInProgress   Kind = "AlreadyInProgress"
)

var markerKinds = []struct {
	marker error
	kind   Kind
}{
	{ErrInvalidInput, KindInvalidInput},
	{ErrUnsupportedMedia, KindUnsupportedMedia},
	{ErrDecodeFailure, KindDecodeFailure},
	{ErrQuotaExceeded, KindQuotaExceeded},
	{ErrAlreadyInProgress, KindAlreadyInProgress},
	{ErrProviderUnavailable, KindProviderUnavailable},
}

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrProviderUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf classifies err. Caller deadlines count as provider unavailability;
// anything unmarked does too, since it originated outside the taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, mk := range markerKinds {
		if errors.Is(err, mk.marker) {
			return mk.kind
		}
	}
	return KindProviderUnavailable
}

// Classify ensures err carries a marker. Context deadline errors become
// ErrProviderUnavailable timeouts; errors that already carry a marker are
// returned unchanged.
func Classify(component, operation string, err error) error {
	if err == nil {
		return nil
	}
	for _, mk := range markerKinds {
		if errors.Is(err, mk.marker) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(ErrProviderUnavailable, component, operation, "timed out", err)
	}
	return Wrap(ErrProviderUnavailable, component, operation, "", err)
}

// UserMessage renders the single notification shown when a transcription
// attempt fails.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case KindInvalidInput:
		return "No audio file was supplied, or the file is empty."
	case KindUnsupportedMedia:
		return "This audio format is not supported for transcription."
	case KindDecodeFailure:
		return "The audio file could not be decoded."
	case KindQuotaExceeded:
		return "The transcription service quota has been reached. Try again later."
	case KindAlreadyInProgress:
		return "A transcription is already running for this player."
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			return "The transcription service did not respond in time."
		}
		return "The transcription service is unavailable."
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
