package whisperx

// Config selects the WhisperX model and runtime used for narration clips.
type Config struct {
	Model       string
	Language    string // blank lets WhisperX detect the language
	CUDAEnabled bool
	VADMethod   string // silero or pyannote
	HFToken     string // pyannote only
}

const (
	DefaultModel      = "large-v3"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"

	UVXCommand    = "uvx"
	FFmpegCommand = "ffmpeg"

	cudaIndexURL = "https://download.pytorch.org/whl/cu128"
	pypiIndexURL = "https://pypi.org/simple"
)

// Narration clips are short single-speaker recordings, so decoding is greedy
// with word-level JSON output and a chunk long enough to hold a whole scene.
var decodeFlags = []string{
	"--output_format", "json",
	"--segment_resolution", "sentence",
	"--batch_size", "8",
	"--chunk_size", "30",
	"--beam_size", "5",
	"--temperature", "0.0",
}

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel
}

func (c Config) vadMethod() string {
	if c.VADMethod == VADMethodPyannote {
		return VADMethodPyannote
	}
	return VADMethodSilero
}

// indexArgs points uvx at the CUDA wheel index when GPU decoding is enabled.
func (c Config) indexArgs() []string {
	if c.CUDAEnabled {
		return []string{"--index-url", cudaIndexURL, "--extra-index-url", pypiIndexURL}
	}
	return []string{"--index-url", pypiIndexURL}
}

func (c Config) deviceArgs() []string {
	if c.CUDAEnabled {
		return []string{"--device", "cuda"}
	}
	return []string{"--device", "cpu", "--compute_type", "float32"}
}
