package align

import (
	"sync"

	"lyricsync/internal/transcript"
)

// Cursor tracks the active line for one player. It is safe for concurrent
// use.
type Cursor struct {
	mu         sync.Mutex
	transcript transcript.Transcript
	generation uint64

	cached     bool
	cachedGen  uint64
	cachedAt   float64
	cachedOK   bool
	cachedLine Active
}

// Install replaces the transcript wholesale with a normalized copy of t, so
// lookups hold even when a provider returns unsorted or blank segments. Any
// cached result is discarded before Install returns.
func (c *Cursor) Install(t transcript.Transcript) {
	normalized := transcript.Normalize(t)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = normalized
	c.generation++
	c.cached = false
}

// Clear removes the transcript, for example when the selected track changes.
func (c *Cursor) Clear() {
	c.Install(transcript.Transcript{})
}

// Transcript returns a copy of the installed transcript.
func (c *Cursor) Transcript() transcript.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Clone()
}

// Generation increments on every Install or Clear.
func (c *Cursor) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// At returns the active line for the clock value. Repeated calls with the
// same clock and transcript reuse the previous result.
func (c *Cursor) At(current float64) (Active, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached && c.cachedGen == c.generation && c.cachedAt == current {
		return c.cachedLine, c.cachedOK
	}
	line, ok := ActiveAt(c.transcript, current)
	// NaN never equals itself, so such lookups are simply never cached.
	c.cached = true
	c.cachedGen = c.generation
	c.cachedAt = current
	c.cachedLine = line
	c.cachedOK = ok
	return line, ok
}
