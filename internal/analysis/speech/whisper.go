package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/media"
)

// Whisper CLI invocation constants.
const (
	uvxCommand    = "uvx"
	pypiIndexURL  = "https://pypi.org/simple"
	cudaIndexURL  = "https://download.pytorch.org/whl/cu126"
	defaultModel  = "base"
	cpuDevice     = "cpu"
	cudaDevice    = "cuda"
	cpuCompute    = "int8"
	whisperFormat = "json"
)

// WhisperConfig controls the local whisperx transcription backend.
type WhisperConfig struct {
	Model       string
	CUDAEnabled bool
	WorkDir     string
}

// WhisperEngine runs whisperx through uvx and parses its JSON output.
type WhisperEngine struct {
	cfg    WhisperConfig
	runner media.CommandRunner
}

// NewWhisperEngine constructs the local engine. A nil runner executes the
// real binaries.
func NewWhisperEngine(cfg WhisperConfig, runner media.CommandRunner) *WhisperEngine {
	if runner == nil {
		runner = media.Run
	}
	return &WhisperEngine{cfg: cfg, runner: runner}
}

// Model returns the configured model name for logging.
func (e *WhisperEngine) Model() string {
	if e.cfg.Model != "" {
		return e.cfg.Model
	}
	return defaultModel
}

// Transcribe runs whisperx on the extracted audio file and loads the word
// aligned transcript from its JSON output.
func (e *WhisperEngine) Transcribe(ctx context.Context, audioPath, language string) (Transcript, error) {
	if strings.TrimSpace(audioPath) == "" {
		return Transcript{}, fmt.Errorf("whisper transcribe: audio path required")
	}
	outputDir := e.cfg.WorkDir
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Transcript{}, fmt.Errorf("whisper transcribe: ensure output dir: %w", err)
	}

	args := e.buildArgs(audioPath, outputDir, language)
	if _, err := e.runner(ctx, uvxCommand, args...); err != nil {
		return Transcript{}, fmt.Errorf("whisperx: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	transcript, err := LoadTranscript(jsonPath)
	if err != nil {
		return Transcript{}, fmt.Errorf("whisperx output: %w", err)
	}
	if transcript.Language == "" {
		transcript.Language = language
	}
	return transcript, nil
}

func (e *WhisperEngine) buildArgs(source, outputDir, language string) []string {
	args := make([]string, 0, 24)

	if e.cfg.CUDAEnabled {
		args = append(args, "--index-url", cudaIndexURL, "--extra-index-url", pypiIndexURL)
	} else {
		args = append(args, "--index-url", pypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", e.Model(),
		"--output_dir", outputDir,
		"--output_format", whisperFormat,
	)

	if language != "" {
		args = append(args, "--language", language)
	}

	if e.cfg.CUDAEnabled {
		args = append(args, "--device", cudaDevice)
	} else {
		args = append(args, "--device", cpuDevice, "--compute_type", cpuCompute)
	}

	return args
}

// whisperPayload mirrors the whisperx JSON output structure.
type whisperPayload struct {
	Language string `json:"language"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Words []struct {
			Word  string  `json:"word"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Score float64 `json:"score"`
		} `json:"words"`
	} `json:"segments"`
}

// LoadTranscript parses a whisperx JSON file into a Transcript.
func LoadTranscript(jsonPath string) (Transcript, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return Transcript{}, err
	}
	return ParseTranscript(data)
}

// ParseTranscript decodes whisperx JSON output.
func ParseTranscript(data []byte) (Transcript, error) {
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Transcript{}, fmt.Errorf("parse whisperx json: %w", err)
	}
	transcript := Transcript{Language: payload.Language}
	for _, seg := range payload.Segments {
		segment := Segment{Text: seg.Text, Start: seg.Start, End: seg.End}
		for _, word := range seg.Words {
			segment.Words = append(segment.Words, Word{
				Word:       word.Word,
				Start:      word.Start,
				End:        word.End,
				Confidence: word.Score,
			})
		}
		transcript.Segments = append(transcript.Segments, segment)
	}
	return transcript, nil
}
