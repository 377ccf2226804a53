package whisperx

import (
	"math"

	"lyricsync/internal/media/ffmpeg"
)

// PlanWindows splits a source of the given duration into clips of window
// seconds, each starting window-stride seconds after the previous one. The
// final clip ends at duration. An unknown duration (zero) or one that fits
// in a single window yields one clip covering the whole source.
func PlanWindows(duration, window, stride float64) []ffmpeg.Clip {
	if window <= 0 || math.IsNaN(window) {
		window = DefaultWindowSeconds
	}
	if stride < 0 || stride >= window || math.IsNaN(stride) {
		stride = 0
	}
	if duration <= window || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return []ffmpeg.Clip{{Start: 0, Duration: 0}}
	}
	step := window - stride
	clips := make([]ffmpeg.Clip, 0, int(math.Ceil((duration-stride)/step)))
	for i := 0; ; i++ {
		start := float64(i) * step
		if start+window >= duration {
			clips = append(clips, ffmpeg.Clip{Start: start, Duration: duration - start})
			return clips
		}
		clips = append(clips, ffmpeg.Clip{Start: start, Duration: window})
	}
}
