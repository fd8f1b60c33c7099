// Package motion measures per-second visual activity by sampling
// inter-frame luma deltas through ffmpeg's signalstats filter.
package motion

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"clipforge/internal/analysis"
	"clipforge/internal/media"
	"clipforge/internal/services"
)

// Config controls sampling density and spike handling.
type Config struct {
	SampleFPS       float64
	ClampPercentile float64
}

func (c Config) sampleFPS() float64 {
	if c.SampleFPS <= 0 {
		return 5
	}
	return c.SampleFPS
}

func (c Config) clampPercentile() float64 {
	if c.ClampPercentile <= 0 || c.ClampPercentile >= 100 {
		return 95
	}
	return c.ClampPercentile
}

// Extractor computes the normalized motion signal for a video.
type Extractor struct {
	cfg          Config
	ffmpegBinary string
	runner       media.CommandRunner
}

// NewExtractor builds a motion extractor. A nil runner executes the real
// ffmpeg binary.
func NewExtractor(cfg Config, ffmpegBinary string, runner media.CommandRunner) *Extractor {
	if runner == nil {
		runner = media.Run
	}
	return &Extractor{cfg: cfg, ffmpegBinary: ffmpegBinary, runner: runner}
}

// Extract runs ffmpeg's signalstats over a downsampled copy of the video and
// returns one normalized motion value per second of content.
func (e *Extractor) Extract(ctx context.Context, source media.Source) (analysis.Signal, error) {
	filter := fmt.Sprintf(
		"fps=%s,scale=320:180,signalstats,metadata=mode=print:key=lavfi.signalstats.YDIF:file=-",
		strconv.FormatFloat(e.cfg.sampleFPS(), 'g', -1, 64),
	)
	args := []string{
		"-hide_banner",
		"-nostats",
		"-i", source.Path,
		"-an",
		"-vf", filter,
		"-f", "null", "-",
	}
	output, err := e.runner(ctx, e.ffmpegBinary, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrExtractor, "motion", "signalstats", "ffmpeg motion pass failed", err)
	}
	frames := ParseFrames(string(output))
	return Normalize(frames, source.Duration, e.cfg.clampPercentile()), nil
}

// Frame is one sampled frame's luma delta reading.
type Frame struct {
	PTS  float64
	YDIF float64
}

// ParseFrames reads the metadata=print output emitted by the signalstats
// filter. Lines come in pairs: a frame header carrying pts_time, then the
// lavfi.signalstats.YDIF value for that frame.
func ParseFrames(output string) []Frame {
	var frames []Frame
	current := math.NaN()

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if idx := strings.Index(line, "pts_time:"); idx >= 0 {
			field := line[idx+len("pts_time:"):]
			if end := strings.IndexAny(field, " \t"); end >= 0 {
				field = field[:end]
			}
			if pts, err := strconv.ParseFloat(field, 64); err == nil {
				current = pts
			}
			continue
		}
		if value, ok := strings.CutPrefix(line, "lavfi.signalstats.YDIF="); ok {
			ydif, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil || math.IsNaN(current) {
				continue
			}
			frames = append(frames, Frame{PTS: current, YDIF: ydif})
		}
	}
	return frames
}

// Normalize buckets the sampled frames into one value per second, clamps the
// upper tail so cuts do not dominate, and min-max scales into [0, 1].
func Normalize(frames []Frame, duration float64, clampPercentile float64) analysis.Signal {
	seconds := int(math.Ceil(duration))
	if seconds <= 0 {
		return nil
	}

	sums := make([]float64, seconds)
	counts := make([]int, seconds)
	for _, frame := range frames {
		bucket := int(frame.PTS)
		if bucket < 0 || bucket >= seconds {
			continue
		}
		sums[bucket] += frame.YDIF
		counts[bucket]++
	}

	raw := make([]float64, seconds)
	for i := range raw {
		if counts[i] > 0 {
			raw[i] = sums[i] / float64(counts[i])
		}
	}

	clamped := analysis.PercentileClamp(raw, clampPercentile)
	scaled := analysis.NormalizeMinMax(clamped)

	signal := make(analysis.Signal, seconds)
	for i := range scaled {
		signal[i] = analysis.Sample{T: float64(i), Value: scaled[i]}
	}
	return signal
}
