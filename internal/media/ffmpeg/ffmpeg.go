package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultSampleRate is the rate Whisper-family models are trained on.
const DefaultSampleRate = 16000

// Command is the default ffmpeg binary name.
const Command = "ffmpeg"

// Clip selects a time range of the source. A zero Duration means "to the
// end of the source".
type Clip struct {
	Start    float64
	Duration float64
}

// DecodeArgs returns arguments that decode the first audio stream of source
// into 16-bit mono PCM WAV at sampleRate, optionally limited to clip.
func DecodeArgs(source, dest string, sampleRate int, clip Clip) []string {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
	}
	if clip.Start > 0 {
		args = append(args, "-ss", formatSeconds(clip.Start))
	}
	if clip.Duration > 0 {
		args = append(args, "-t", formatSeconds(clip.Duration))
	}
	args = append(args,
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		dest,
	)
	return args
}

// Decode runs ffmpeg with DecodeArgs.
func Decode(ctx context.Context, binary, source, dest string, sampleRate int, clip Clip) error {
	if strings.TrimSpace(binary) == "" {
		binary = Command
	}
	cmd := exec.CommandContext(ctx, binary, DecodeArgs(source, dest, sampleRate, clip)...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg decode: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}
