package whisperx

import "lyricsync/internal/transcription"

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the WhisperX model to use (e.g., "large-v3-turbo").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote VAD.
	HFToken string
	// WindowSeconds is the length of each transcribed slice.
	WindowSeconds float64
	// StrideSeconds is the overlap between consecutive slices. It also
	// serves as the start-time tolerance when merging duplicates.
	StrideSeconds float64
	// SampleRate is the PCM rate windows are decoded to.
	SampleRate int
	// WorkDir is the parent of per-request temp directories. Empty uses
	// the system temp directory.
	WorkDir       string
	FFmpegBinary  string
	FFprobeBinary string
}

// WhisperX configuration constants.
const (
	DefaultModel         = "large-v3"
	DefaultWindowSeconds = 30.0
	DefaultStrideSeconds = 5.0
	CUDAIndexURL         = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL         = "https://pypi.org/simple"
	BatchSize            = "4"
	ChunkSize            = "15"
	VADOnset             = "0.08"
	VADOffset            = "0.07"
	BeamSize             = "10"
	BestOf               = "10"
	Temperature          = "0.0"
	Patience             = "1.0"
	SegmentResolution    = "sentence"
	OutputFormat         = "json"
	CPUDevice            = "cpu"
	CUDADevice           = "cuda"
	CPUComputeType       = "float32"
	VADMethodPyannote    = "pyannote"
	VADMethodSilero      = "silero"
)

// UVXCommand is the launcher used to run WhisperX.
const UVXCommand = "uvx"

// SupportedFormats lists the containers accepted for local transcription.
// ffmpeg decodes all of them.
var SupportedFormats = transcription.NewFormatSet(
	"aac", "aiff", "flac", "m4a", "mp3", "mp4", "mpeg", "mpga",
	"oga", "ogg", "opus", "wav", "webm", "wma",
)
