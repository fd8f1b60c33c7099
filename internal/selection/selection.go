// Package selection turns the scored candidate windows into the final
// deterministic, non-overlapping clip list.
package selection

import (
	"sort"

	"github.com/google/uuid"

	"clipforge/internal/analysis"
	"clipforge/internal/config"
	"clipforge/internal/scoring"
	"clipforge/internal/segment"
)

// Candidate is one selected clip recommendation.
type Candidate struct {
	ID           string           `json:"id"`
	Window       segment.Window   `json:"window"`
	Score        float64          `json:"score"`
	Features     scoring.Features `json:"features"`
	ThumbSeconds float64          `json:"thumb_s"`
}

// Options controls how many candidates survive and how aggressively overlap
// with stronger windows is penalized.
type Options struct {
	MaxCandidates    int
	MinScore         float64
	FreshnessPenalty float64
	Weights          config.Weights
}

// Select ranks the scored windows and greedily accepts non-overlapping
// winners. Before ranking, each window's scene freshness is discounted by
// its worst overlap with any strictly higher-scoring window, so a strong
// moment surrounded by stronger neighbors falls in the order instead of
// crowding the output. Ties break toward the shorter window, then the
// earlier start, which keeps the output stable across runs.
func Select(windows []scoring.ScoredWindow, opts Options) []Candidate {
	if len(windows) == 0 || opts.MaxCandidates <= 0 {
		return nil
	}

	ranked := discountFreshness(windows, opts)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		di, dj := ranked[i].Duration(), ranked[j].Duration()
		if di != dj {
			return di < dj
		}
		return ranked[i].Start < ranked[j].Start
	})

	var accepted []scoring.ScoredWindow
	for _, window := range ranked {
		if len(accepted) >= opts.MaxCandidates {
			break
		}
		if window.Score < opts.MinScore {
			break
		}
		if overlapsAny(window.Window, accepted) {
			continue
		}
		accepted = append(accepted, window)
	}

	candidates := make([]Candidate, 0, len(accepted))
	for _, window := range accepted {
		candidates = append(candidates, Candidate{
			ID:           uuid.NewString(),
			Window:       window.Window,
			Score:        window.Score,
			Features:     window.Features,
			ThumbSeconds: window.Midpoint(),
		})
	}
	return candidates
}

// discountFreshness rescores every window after reducing its scene
// freshness by the largest overlap fraction it shares with a strictly
// higher raw-scoring window.
func discountFreshness(windows []scoring.ScoredWindow, opts Options) []scoring.ScoredWindow {
	penalty := opts.FreshnessPenalty
	if penalty < 0 {
		penalty = 0
	}

	out := make([]scoring.ScoredWindow, len(windows))
	copy(out, windows)

	for i := range out {
		worst := 0.0
		for j := range windows {
			if i == j || windows[j].Score <= windows[i].Score {
				continue
			}
			if frac := out[i].OverlapFraction(windows[j].Window); frac > worst {
				worst = frac
			}
		}
		out[i].Features.SceneFreshness = analysis.Clamp01(1 - penalty*worst)
		out[i].Score = scoring.Combine(opts.Weights, out[i].Features)
	}
	return out
}

func overlapsAny(window segment.Window, accepted []scoring.ScoredWindow) bool {
	for _, other := range accepted {
		if window.Intersects(other.Window) {
			return true
		}
	}
	return false
}
