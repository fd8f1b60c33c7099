package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/media"
	"clipforge/internal/services"
)

// ExtractAudio writes the source's audio as a mono 16kHz WAV file suitable
// for transcription. A nil runner executes the real ffmpeg binary.
func ExtractAudio(ctx context.Context, ffmpegBinary, source, dest string, runner media.CommandRunner) error {
	if runner == nil {
		runner = media.Run
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("extract audio: ensure dest dir: %w", err)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	if _, err := runner(ctx, ffmpegBinary, args...); err != nil {
		return fmt.Errorf("ffmpeg extract: %w", err)
	}
	return nil
}

// Extractor drives audio extraction plus a transcription engine as one unit.
type Extractor struct {
	engine       Engine
	ffmpegBinary string
	runner       media.CommandRunner
	workDir      string
}

// NewExtractor wires an engine with the ffmpeg binary used for extraction.
func NewExtractor(engine Engine, ffmpegBinary, workDir string, runner media.CommandRunner) *Extractor {
	return &Extractor{
		engine:       engine,
		ffmpegBinary: ffmpegBinary,
		runner:       runner,
		workDir:      workDir,
	}
}

// Extract produces the transcript for the video, or an empty transcript when
// the source carries no audio streams.
func (e *Extractor) Extract(ctx context.Context, source media.Source, language string) (Transcript, error) {
	if !source.HasAudio() {
		return Transcript{}, nil
	}

	workDir := e.workDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	baseName := strings.TrimSuffix(filepath.Base(source.Path), filepath.Ext(source.Path))
	audioPath := filepath.Join(workDir, baseName+".wav")
	defer os.Remove(audioPath)

	if err := ExtractAudio(ctx, e.ffmpegBinary, source.Path, audioPath, e.runner); err != nil {
		return Transcript{}, services.Wrap(services.ErrExtractor, "speech", "extract", "audio extraction failed", err)
	}
	transcript, err := e.engine.Transcribe(ctx, audioPath, NormalizeLanguage(language))
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrExtractor, "speech", "transcribe", "transcription failed", err)
	}
	return transcript, nil
}
