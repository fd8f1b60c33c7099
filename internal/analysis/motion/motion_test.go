package motion

import (
	"context"
	"math"
	"strings"
	"testing"

	"clipforge/internal/media"
)

const signalstatsOutput = `frame:0    pts:0      pts_time:0
lavfi.signalstats.YDIF=1.5
frame:1    pts:3200   pts_time:0.2
lavfi.signalstats.YDIF=2.5
frame:2    pts:16000  pts_time:1.0
lavfi.signalstats.YDIF=8.0
frame:3    pts:19200  pts_time:1.2
lavfi.signalstats.YDIF=12.0
frame:4    pts:32000  pts_time:2.0
lavfi.signalstats.YDIF=0.0
`

func TestParseFrames(t *testing.T) {
	frames := ParseFrames(signalstatsOutput)
	if len(frames) != 5 {
		t.Fatalf("expected 5 frames, got %d", len(frames))
	}
	if frames[0].PTS != 0 || frames[0].YDIF != 1.5 {
		t.Fatalf("unexpected first frame: %+v", frames[0])
	}
	if frames[3].PTS != 1.2 || frames[3].YDIF != 12.0 {
		t.Fatalf("unexpected fourth frame: %+v", frames[3])
	}
}

func TestParseFramesIgnoresGarbage(t *testing.T) {
	frames := ParseFrames("random log line\nlavfi.signalstats.YDIF=nope\n")
	if len(frames) != 0 {
		t.Fatalf("expected no frames, got %d", len(frames))
	}
}

func TestNormalizeBucketsPerSecond(t *testing.T) {
	frames := ParseFrames(signalstatsOutput)
	signal := Normalize(frames, 3, 100)
	if len(signal) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(signal))
	}
	// Second 1 averages 8 and 12, the most active second.
	if signal[1].Value != 1 {
		t.Fatalf("busiest second should scale to 1, got %v", signal[1].Value)
	}
	if signal[2].Value != 0 {
		t.Fatalf("still second should scale to 0, got %v", signal[2].Value)
	}
	if signal[0].Value <= 0 || signal[0].Value >= 1 {
		t.Fatalf("middle second should fall between, got %v", signal[0].Value)
	}
}

func TestNormalizeClampsSpikes(t *testing.T) {
	var frames []Frame
	for i := 0; i < 20; i++ {
		frames = append(frames, Frame{PTS: float64(i), YDIF: 2})
	}
	frames[10].YDIF = 500

	clamped := Normalize(frames, 20, 95)
	unclamped := Normalize(frames, 20, 100)

	// Without the clamp the steady seconds collapse toward zero.
	if unclamped[0].Value >= clamped[0].Value {
		t.Fatalf("clamp should lift steady seconds: clamped=%v unclamped=%v",
			clamped[0].Value, unclamped[0].Value)
	}
}

func TestNormalizeEmptyDuration(t *testing.T) {
	if signal := Normalize(nil, 0, 95); signal != nil {
		t.Fatalf("expected nil signal for zero duration, got %v", signal)
	}
}

func TestExtractorBuildsFilter(t *testing.T) {
	var captured []string
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		captured = append([]string{name}, args...)
		return []byte(signalstatsOutput), nil
	}
	extractor := NewExtractor(Config{SampleFPS: 5, ClampPercentile: 95}, "ffmpeg", runner)
	source := media.Source{Path: "input.mp4", Duration: 3}
	signal, err := extractor.Extract(context.Background(), source)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(signal) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(signal))
	}
	joined := strings.Join(captured, " ")
	if !strings.Contains(joined, "fps=5,scale=320:180,signalstats") {
		t.Fatalf("filter chain missing from args: %s", joined)
	}
	if !strings.Contains(joined, "-f null") {
		t.Fatalf("null muxer missing from args: %s", joined)
	}
}

func TestSignalValuesBounded(t *testing.T) {
	frames := ParseFrames(signalstatsOutput)
	for _, sample := range Normalize(frames, 3, 95) {
		if sample.Value < 0 || sample.Value > 1 || math.IsNaN(sample.Value) {
			t.Fatalf("sample out of range: %+v", sample)
		}
	}
}
