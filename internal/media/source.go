package media

import (
	"context"
	"os"
	"strings"

	"clipforge/internal/media/ffprobe"
	"clipforge/internal/services"
)

// Source summarizes the probed properties of an input video file.
type Source struct {
	Path         string  `json:"path"`
	Duration     float64 `json:"duration_s"`
	FrameRate    float64 `json:"frame_rate"`
	SampleRate   int     `json:"sample_rate"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	VideoStreams int     `json:"video_streams"`
	AudioStreams int     `json:"audio_streams"`
}

// HasAudio reports whether the container carries at least one audio stream.
func (s Source) HasAudio() bool {
	return s.AudioStreams > 0
}

// Probe inspects the file at path and validates it is a usable video source.
// A nil runner uses the real ffprobe binary.
func Probe(ctx context.Context, binary, path string, runner ffprobe.Runner) (Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Source{}, services.Wrap(services.ErrInput, "probe", "validate", "source path is empty", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return Source{}, services.Wrap(services.ErrInput, "probe", "stat", "source file is not accessible", err)
	}

	result, err := ffprobe.Inspect(ctx, binary, path, runner)
	if err != nil {
		return Source{}, services.Wrap(services.ErrInput, "probe", "inspect", "ffprobe inspection failed", err)
	}
	if result.VideoStreamCount() == 0 {
		return Source{}, services.Wrap(services.ErrInput, "probe", "inspect", "source has no video streams", nil)
	}

	width, height := result.Dimensions()
	return Source{
		Path:         path,
		Duration:     result.DurationSeconds(),
		FrameRate:    result.FrameRate(),
		SampleRate:   result.SampleRate(),
		Width:        width,
		Height:       height,
		VideoStreams: result.VideoStreamCount(),
		AudioStreams: result.AudioStreamCount(),
	}, nil
}
