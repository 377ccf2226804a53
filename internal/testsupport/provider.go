package testsupport

import (
	"context"
	"sync"

	"lyricsync/internal/transcript"
	"lyricsync/internal/transcription"
)

// TranscribeFunc is the behavior of a StubProvider.
type TranscribeFunc func(ctx context.Context, audio transcription.Audio, opts transcription.Options) (transcript.Transcript, error)

// StubProvider is a transcription.Provider driven by a function. It counts
// calls and remembers the last options it received.
type StubProvider struct {
	ProviderName string
	Fn           TranscribeFunc

	mu    sync.Mutex
	calls int
	last  transcription.Options
}

// NewStubProvider returns a provider that answers every request with result.
func NewStubProvider(result transcript.Transcript) *StubProvider {
	return &StubProvider{
		ProviderName: "stub",
		Fn: func(context.Context, transcription.Audio, transcription.Options) (transcript.Transcript, error) {
			return result.Clone(), nil
		},
	}
}

// Name implements transcription.Provider.
func (p *StubProvider) Name() string {
	if p.ProviderName == "" {
		return "stub"
	}
	return p.ProviderName
}

// Transcribe implements transcription.Provider.
func (p *StubProvider) Transcribe(ctx context.Context, audio transcription.Audio, opts transcription.Options) (transcript.Transcript, error) {
	p.mu.Lock()
	p.calls++
	p.last = opts
	fn := p.Fn
	p.mu.Unlock()
	if fn == nil {
		return transcript.Transcript{}, nil
	}
	return fn(ctx, audio, opts)
}

// Calls returns the number of Transcribe invocations.
func (p *StubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// LastOptions returns the options of the most recent call.
func (p *StubProvider) LastOptions() transcription.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// SampleTranscript is the three-line transcript used across tests.
func SampleTranscript() transcript.Transcript {
	return transcript.Transcript{Segments: []transcript.Segment{
		{Start: 0, Text: "Hello"},
		{Start: 4.2, Text: "world"},
		{Start: 9.8, Text: "again"},
	}}
}
