// Package segment generates the dense set of overlapping candidate windows
// that scoring evaluates against the per-second feature signals.
package segment

import (
	"math"
	"sort"
)

// Window is a half-open [Start, End) span of the source video, in seconds.
type Window struct {
	Start float64 `json:"start_s"`
	End   float64 `json:"end_s"`
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 {
	return w.End - w.Start
}

// Midpoint returns the center of the window.
func (w Window) Midpoint() float64 {
	return (w.Start + w.End) / 2
}

// Overlap returns the length of the intersection with other, or 0.
func (w Window) Overlap(other Window) float64 {
	start := math.Max(w.Start, other.Start)
	end := math.Min(w.End, other.End)
	if end <= start {
		return 0
	}
	return end - start
}

// OverlapFraction returns the overlap with other as a fraction of the
// shorter window's duration.
func (w Window) OverlapFraction(other Window) float64 {
	overlap := w.Overlap(other)
	if overlap == 0 {
		return 0
	}
	shorter := math.Min(w.Duration(), other.Duration())
	if shorter <= 0 {
		return 0
	}
	return overlap / shorter
}

// Intersects reports whether the two half-open windows share any span.
func (w Window) Intersects(other Window) bool {
	return w.Start < other.End && other.Start < w.End
}

// Params controls candidate window generation.
type Params struct {
	MinDuration    float64
	MaxDuration    float64
	TargetDuration float64
	Step           float64
}

// Generate emits candidate windows every Step seconds, trying the target,
// minimum, and maximum durations at each start. Windows running past the end
// of the video are pulled back when they still satisfy the minimum, and
// dropped otherwise. A video shorter than the minimum yields no windows.
func Generate(duration float64, params Params) []Window {
	if duration < params.MinDuration || params.MinDuration <= 0 {
		return nil
	}
	step := params.Step
	if step <= 0 {
		step = 1
	}

	durations := candidateDurations(params)
	seen := make(map[Window]struct{})
	var windows []Window

	for start := 0.0; start < duration; start += step {
		for _, d := range durations {
			end := start + d
			if end > duration {
				end = duration
			}
			if end-start < params.MinDuration {
				continue
			}
			window := Window{Start: start, End: end}
			if _, dup := seen[window]; dup {
				continue
			}
			seen[window] = struct{}{}
			windows = append(windows, window)
		}
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Start != windows[j].Start {
			return windows[i].Start < windows[j].Start
		}
		return windows[i].End < windows[j].End
	})
	return windows
}

func candidateDurations(params Params) []float64 {
	unique := make(map[float64]struct{})
	var durations []float64
	for _, d := range []float64{params.TargetDuration, params.MinDuration, params.MaxDuration} {
		if d <= 0 {
			continue
		}
		if _, dup := unique[d]; dup {
			continue
		}
		unique[d] = struct{}{}
		durations = append(durations, d)
	}
	return durations
}

// Quota returns how many candidates a video of the given duration should
// produce: perMinute per minute of content, rounded up, capped at max.
func Quota(duration, perMinute float64, max int) int {
	if duration <= 0 || perMinute <= 0 {
		return 0
	}
	quota := int(math.Ceil(duration / 60 * perMinute))
	if quota < 1 {
		quota = 1
	}
	if max > 0 && quota > max {
		quota = max
	}
	return quota
}
