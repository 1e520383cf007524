package whisperx

// Config selects the model and hardware used for transcription.
type Config struct {
	Model       string
	CUDAEnabled bool
	// VADMethod is "silero" (default) or "pyannote".
	VADMethod string
	// HFToken is forwarded only for pyannote, which needs gated model access.
	HFToken string
}

const (
	DefaultModel      = "large-v3-turbo"
	VADMethodSilero   = "silero"
	VADMethodPyannote = "pyannote"

	UVXCommand    = "uvx"
	FFmpegCommand = "ffmpeg"
)

const (
	pypiIndex  = "https://pypi.org/simple"
	torchIndex = "https://download.pytorch.org/whl/cu128"
)

// decodeFlags tune WhisperX for long single-speaker talks: larger chunks and
// sentence segments keep the joined text readable for summarization.
var decodeFlags = []string{
	"--batch_size", "8",
	"--chunk_size", "30",
	"--beam_size", "5",
	"--temperature", "0.0",
	"--segment_resolution", "sentence",
	"--output_format", "json",
}

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel
}

func (c Config) vadArgs() []string {
	method := c.VADMethod
	if method == "" {
		method = VADMethodSilero
	}
	args := []string{"--vad_method", method}
	if method == VADMethodPyannote && c.HFToken != "" {
		args = append(args, "--hf_token", c.HFToken)
	}
	return args
}

// indexArgs are uvx flags, so they precede the tool name.
func (c Config) indexArgs() []string {
	if c.CUDAEnabled {
		return []string{"--index-url", torchIndex, "--extra-index-url", pypiIndex}
	}
	return []string{"--index-url", pypiIndex}
}

func (c Config) deviceArgs() []string {
	if c.CUDAEnabled {
		return []string{"--device", "cuda"}
	}
	return []string{"--device", "cpu", "--compute_type", "float32"}
}
