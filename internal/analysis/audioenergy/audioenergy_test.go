package audioenergy

import (
	"context"
	"math"
	"strings"
	"testing"

	"clipforge/internal/analysis"
	"clipforge/internal/media"
)

const astatsOutput = `frame:0    pts:0       pts_time:0
lavfi.astats.Overall.RMS_level=-30.5
frame:1    pts:16000   pts_time:1
lavfi.astats.Overall.RMS_level=-28.0
frame:2    pts:32000   pts_time:2
lavfi.astats.Overall.RMS_level=-inf
frame:3    pts:48000   pts_time:3
lavfi.astats.Overall.RMS_level=-5.0
`

func TestParseRMSLevels(t *testing.T) {
	levels := ParseRMSLevels(astatsOutput)
	if len(levels) != 4 {
		t.Fatalf("expected 4 levels, got %d", len(levels))
	}
	if levels[0] != -30.5 {
		t.Fatalf("unexpected first level: %v", levels[0])
	}
	if !math.IsInf(levels[2], -1) {
		t.Fatalf("silent frame should parse as -inf, got %v", levels[2])
	}
}

func TestDetectFlagsLoudSecond(t *testing.T) {
	// Mostly quiet with one loud burst at second 3.
	levels := []float64{-30, -29, -31, -5, -30, -30, -30, -30}
	result := Detect(levels, 8, 1.2)
	if len(result.Energy) != 8 {
		t.Fatalf("expected 8 samples, got %d", len(result.Energy))
	}
	if !result.Peaks[3] {
		t.Fatal("loud second should be flagged as a peak")
	}
	if result.Strength[3] <= 0 {
		t.Fatalf("peak strength should be positive, got %v", result.Strength[3])
	}
	for i, peak := range result.Peaks {
		if i != 3 && peak {
			t.Fatalf("quiet second %d should not be a peak", i)
		}
	}
	if result.Energy[3].Value != 1 {
		t.Fatalf("loudest second should scale to 1, got %v", result.Energy[3].Value)
	}
}

func TestDetectUniformSignalHasNoPeaks(t *testing.T) {
	levels := []float64{-20, -20, -20, -20}
	result := Detect(levels, 4, 1.2)
	for i, peak := range result.Peaks {
		if peak {
			t.Fatalf("uniform signal flagged peak at %d", i)
		}
	}
}

func TestDetectBelowThresholdNeverFlagged(t *testing.T) {
	levels := []float64{-30, -29, -28, -30, -29, -28, -30, -29}
	result := Detect(levels, 8, 1.2)
	threshold := result.Mean + 1.2*result.StdDev
	for i, sample := range result.Energy {
		_ = sample
		linear := math.Pow(10, levels[i]/20)
		if linear <= threshold && result.Peaks[i] {
			t.Fatalf("second %d below threshold but flagged", i)
		}
	}
}

func TestSilentProfile(t *testing.T) {
	result := Silent(5)
	if len(result.Energy) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(result.Energy))
	}
	for i, sample := range result.Energy {
		if sample.Value != 0 {
			t.Fatalf("silent sample %d should be 0, got %v", i, sample.Value)
		}
		if result.Peaks[i] {
			t.Fatalf("silent second %d flagged as peak", i)
		}
	}
}

func TestPeakFractionInWindow(t *testing.T) {
	levels := []float64{-30, -29, -31, -5, -30, -30, -30, -30}
	result := Detect(levels, 8, 1.2)
	if got := result.PeakFractionInWindow(2, 5); got != 1.0/3.0 {
		t.Fatalf("window with 1 of 3 seconds flagged should report 1/3, got %v", got)
	}
	if got := result.PeakFractionInWindow(4, 8); got != 0 {
		t.Fatalf("quiet window should report 0, got %v", got)
	}
	if got := result.PeakFractionInWindow(100, 104); got != 0 {
		t.Fatalf("window past the signal should report 0, got %v", got)
	}
}

func TestPeakFractionCountsFlaggedSecondsNotStrength(t *testing.T) {
	// Every second flagged, each only just clearing the threshold.
	result := Result{
		Energy:   analysis.Signal{{T: 0, Value: 1}, {T: 1, Value: 1}, {T: 2, Value: 1}, {T: 3, Value: 1}},
		Peaks:    []bool{true, true, true, true},
		Strength: []float64{0.01, 0.01, 0.01, 0.01},
	}
	if got := result.PeakFractionInWindow(0, 4); got != 1 {
		t.Fatalf("fully flagged window should report 1, got %v", got)
	}
}

func TestExtractorSkipsSilentSource(t *testing.T) {
	extractor := NewExtractor(Config{}, "ffmpeg", func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatal("runner should not be invoked for a source without audio")
		return nil, nil
	})
	source := media.Source{Path: "input.mp4", Duration: 4, VideoStreams: 1}
	result, err := extractor.Extract(context.Background(), source)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(result.Energy) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(result.Energy))
	}
}

func TestExtractorBuildsFilter(t *testing.T) {
	var captured []string
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		captured = append([]string{name}, args...)
		return []byte(astatsOutput), nil
	}
	extractor := NewExtractor(Config{PeakSigma: 1.2}, "ffmpeg", runner)
	source := media.Source{Path: "input.mp4", Duration: 4, VideoStreams: 1, AudioStreams: 1}
	if _, err := extractor.Extract(context.Background(), source); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	joined := strings.Join(captured, " ")
	for _, want := range []string{"aresample=16000", "asetnsamples=n=16000", "astats=metadata=1:reset=1", "RMS_level"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in args: %s", want, joined)
		}
	}
}
