// Package audioenergy measures per-second loudness and flags statistical
// peaks using ffmpeg's astats filter over one-second analysis frames.
package audioenergy

import (
	"bufio"
	"context"
	"math"
	"strconv"
	"strings"

	"clipforge/internal/analysis"
	"clipforge/internal/media"
	"clipforge/internal/services"
)

// Config controls peak detection sensitivity.
type Config struct {
	// PeakSigma is how many standard deviations above the mean a second's
	// energy must sit before it counts as a peak.
	PeakSigma float64
}

func (c Config) peakSigma() float64 {
	if c.PeakSigma <= 0 {
		return 1.2
	}
	return c.PeakSigma
}

// Result carries the normalized energy signal plus the peak annotations
// scoring consumes.
type Result struct {
	Energy   analysis.Signal
	Peaks    []bool
	Strength []float64
	Mean     float64
	StdDev   float64
}

// PeakFractionInWindow returns the fraction of seconds inside [start, end)
// flagged as peaks, or 0 when the window holds no samples. A window that is
// loud throughout scores near 1 even when each second only just clears the
// threshold.
func (r Result) PeakFractionInWindow(start, end float64) float64 {
	total := 0
	flagged := 0
	for i, sample := range r.Energy {
		if sample.T < start || sample.T >= end {
			continue
		}
		total++
		if i < len(r.Peaks) && r.Peaks[i] {
			flagged++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(flagged) / float64(total)
}

// Extractor computes the audio energy profile for a video.
type Extractor struct {
	cfg          Config
	ffmpegBinary string
	runner       media.CommandRunner
}

// NewExtractor builds an audio energy extractor. A nil runner executes the
// real ffmpeg binary.
func NewExtractor(cfg Config, ffmpegBinary string, runner media.CommandRunner) *Extractor {
	if runner == nil {
		runner = media.Run
	}
	return &Extractor{cfg: cfg, ffmpegBinary: ffmpegBinary, runner: runner}
}

// Extract resamples the audio to 16kHz, groups it into one-second frames,
// and reads the per-frame RMS level from astats. Sources without audio yield
// an all-zero profile.
func (e *Extractor) Extract(ctx context.Context, source media.Source) (Result, error) {
	if !source.HasAudio() {
		return Silent(source.Duration), nil
	}

	filter := "aresample=16000," +
		"asetnsamples=n=16000," +
		"astats=metadata=1:reset=1," +
		"ametadata=mode=print:key=lavfi.astats.Overall.RMS_level:file=-"
	args := []string{
		"-hide_banner",
		"-nostats",
		"-i", source.Path,
		"-vn",
		"-af", filter,
		"-f", "null", "-",
	}
	output, err := e.runner(ctx, e.ffmpegBinary, args...)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExtractor, "audio", "astats", "ffmpeg loudness pass failed", err)
	}

	levels := ParseRMSLevels(string(output))
	return Detect(levels, source.Duration, e.cfg.peakSigma()), nil
}

// ParseRMSLevels reads the RMS_level values printed by ametadata. Levels are
// reported in dBFS; silent frames print "-inf".
func ParseRMSLevels(output string) []float64 {
	var levels []float64
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		value, ok := strings.CutPrefix(line, "lavfi.astats.Overall.RMS_level=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "-inf" || value == "nan" {
			levels = append(levels, math.Inf(-1))
			continue
		}
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			levels = append(levels, parsed)
		}
	}
	return levels
}

// Silent returns an all-zero profile spanning the given duration.
func Silent(duration float64) Result {
	seconds := int(math.Ceil(duration))
	if seconds <= 0 {
		return Result{}
	}
	result := Result{
		Energy:   make(analysis.Signal, seconds),
		Peaks:    make([]bool, seconds),
		Strength: make([]float64, seconds),
	}
	for i := range result.Energy {
		result.Energy[i] = analysis.Sample{T: float64(i)}
	}
	return result
}

// Detect converts per-second dBFS readings into linear energy, min-max
// scales them, and flags seconds sitting peakSigma standard deviations above
// the mean. Strength records how far past the threshold each peak reaches.
func Detect(levelsDB []float64, duration float64, peakSigma float64) Result {
	seconds := int(math.Ceil(duration))
	if seconds <= 0 {
		seconds = len(levelsDB)
	}
	if seconds == 0 {
		return Result{}
	}

	linear := make([]float64, seconds)
	for i := 0; i < seconds && i < len(levelsDB); i++ {
		if !math.IsInf(levelsDB[i], -1) {
			linear[i] = math.Pow(10, levelsDB[i]/20)
		}
	}

	mean := analysis.Mean(linear)
	stddev := analysis.StdDev(linear)
	threshold := mean + peakSigma*stddev

	peaks := make([]bool, seconds)
	strength := make([]float64, seconds)
	if stddev > 0 {
		for i, v := range linear {
			if v <= threshold {
				continue
			}
			peaks[i] = true
			strength[i] = analysis.Clamp01((v - threshold) / (peakSigma * stddev))
		}
	}

	scaled := analysis.NormalizeMinMax(linear)
	energy := make(analysis.Signal, seconds)
	for i := range scaled {
		energy[i] = analysis.Sample{T: float64(i), Value: scaled[i]}
	}

	return Result{
		Energy:   energy,
		Peaks:    peaks,
		Strength: strength,
		Mean:     mean,
		StdDev:   stddev,
	}
}
