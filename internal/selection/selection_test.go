package selection

import (
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/scoring"
	"clipforge/internal/segment"
)

func scoredWindow(start, end float64, features scoring.Features) scoring.ScoredWindow {
	return scoring.ScoredWindow{
		Window:   segment.Window{Start: start, End: end},
		Features: features,
		Score:    scoring.Combine(config.DefaultWeights(), features),
	}
}

func defaultOptions() Options {
	return Options{
		MaxCandidates:    20,
		MinScore:         0,
		FreshnessPenalty: 0.5,
		Weights:          config.DefaultWeights(),
	}
}

func TestSelectNonOverlapping(t *testing.T) {
	windows := []scoring.ScoredWindow{
		scoredWindow(0, 10, scoring.Features{SpeechHook: 1, SceneFreshness: 1}),
		scoredWindow(5, 15, scoring.Features{SpeechHook: 0.9, SceneFreshness: 1}),
		scoredWindow(20, 30, scoring.Features{SpeechHook: 0.8, SceneFreshness: 1}),
	}
	candidates := Select(windows, defaultOptions())
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	for i, a := range candidates {
		for j, b := range candidates {
			if i != j && a.Window.Intersects(b.Window) {
				t.Fatalf("selected windows overlap: %+v and %+v", a.Window, b.Window)
			}
		}
	}
	if candidates[0].Window.Start != 0 {
		t.Fatalf("strongest window should win, got %+v", candidates[0].Window)
	}
}

func TestSelectDeterministic(t *testing.T) {
	windows := []scoring.ScoredWindow{
		scoredWindow(0, 10, scoring.Features{Motion: 0.6, SceneFreshness: 1}),
		scoredWindow(3, 13, scoring.Features{SpeechHook: 0.5, SceneFreshness: 1}),
		scoredWindow(15, 25, scoring.Features{AudioPeak: 0.7, SceneFreshness: 1}),
		scoredWindow(18, 28, scoring.Features{Motion: 0.4, SceneFreshness: 1}),
	}
	first := Select(windows, defaultOptions())
	for run := 0; run < 5; run++ {
		again := Select(windows, defaultOptions())
		if len(again) != len(first) {
			t.Fatalf("run %d returned %d candidates, first returned %d", run, len(again), len(first))
		}
		for i := range first {
			if first[i].Window != again[i].Window {
				t.Fatalf("run %d diverged at %d: %+v vs %+v", run, i, first[i].Window, again[i].Window)
			}
		}
	}
}

func TestSelectTieBreaksShorterThenEarlier(t *testing.T) {
	features := scoring.Features{SpeechHook: 0.5, SceneFreshness: 1}
	windows := []scoring.ScoredWindow{
		scoredWindow(40, 55, features),
		scoredWindow(20, 30, features),
		scoredWindow(0, 10, features),
	}
	candidates := Select(windows, Options{
		MaxCandidates:    1,
		FreshnessPenalty: 0.5,
		Weights:          config.DefaultWeights(),
	})
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	// Equal scores and equal durations break toward the earlier start.
	if candidates[0].Window.Start != 0 {
		t.Fatalf("tie should break to earliest window, got %+v", candidates[0].Window)
	}
}

func TestSelectKeepsTieBreakOrderInOutput(t *testing.T) {
	features := scoring.Features{SpeechHook: 0.5, SceneFreshness: 1}
	windows := []scoring.ScoredWindow{
		scoredWindow(60, 75, features),
		scoredWindow(40, 50, features),
		scoredWindow(0, 10, features),
	}
	candidates := Select(windows, defaultOptions())
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	// All scores are equal, so the returned order is shorter first, then
	// earlier start among equal durations.
	wantStarts := []float64{0, 40, 60}
	for i, want := range wantStarts {
		if candidates[i].Window.Start != want {
			t.Fatalf("candidate %d should start at %v, got %+v", i, want, candidates[i].Window)
		}
	}
}

func TestSelectHonorsQuota(t *testing.T) {
	var windows []scoring.ScoredWindow
	for i := 0; i < 10; i++ {
		start := float64(i * 20)
		windows = append(windows, scoredWindow(start, start+10, scoring.Features{Motion: 0.5, SceneFreshness: 1}))
	}
	opts := defaultOptions()
	opts.MaxCandidates = 3
	candidates := Select(windows, opts)
	if len(candidates) != 3 {
		t.Fatalf("expected quota of 3, got %d", len(candidates))
	}
}

func TestSelectMinScoreFloor(t *testing.T) {
	windows := []scoring.ScoredWindow{
		scoredWindow(0, 10, scoring.Features{SpeechHook: 1, SceneFreshness: 1}),
		scoredWindow(20, 30, scoring.Features{SceneFreshness: 1}),
	}
	opts := defaultOptions()
	opts.MinScore = 0.3
	candidates := Select(windows, opts)
	if len(candidates) != 1 {
		t.Fatalf("expected weak window filtered out, got %d candidates", len(candidates))
	}
}

func TestFreshnessDiscountDemotesCrowdedWindow(t *testing.T) {
	// The middle window overlaps the strongest one heavily; the isolated
	// window has a slightly lower raw score but keeps full freshness.
	strong := scoredWindow(0, 10, scoring.Features{SpeechHook: 1, SceneFreshness: 1})
	crowded := scoredWindow(2, 12, scoring.Features{SpeechHook: 0.95, SceneFreshness: 1})
	isolated := scoredWindow(30, 40, scoring.Features{SpeechHook: 0.9, SceneFreshness: 1})

	opts := defaultOptions()
	opts.MaxCandidates = 2
	candidates := Select([]scoring.ScoredWindow{strong, crowded, isolated}, opts)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.Window.Start == 2 {
			t.Fatal("crowded window should lose to the isolated one")
		}
	}
}

func TestCandidateMetadata(t *testing.T) {
	windows := []scoring.ScoredWindow{
		scoredWindow(4, 14, scoring.Features{SpeechHook: 0.5, SceneFreshness: 1}),
	}
	candidates := Select(windows, defaultOptions())
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.ID == "" {
		t.Fatal("candidate needs an ID")
	}
	if c.ThumbSeconds != 9 {
		t.Fatalf("thumbnail should sit at the midpoint, got %v", c.ThumbSeconds)
	}
	if c.Score <= 0 {
		t.Fatalf("score should survive selection, got %v", c.Score)
	}
}

func TestSelectEmptyInput(t *testing.T) {
	if got := Select(nil, defaultOptions()); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}
