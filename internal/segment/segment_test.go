package segment

import (
	"math"
	"testing"
)

var defaultParams = Params{MinDuration: 7, MaxDuration: 15, TargetDuration: 10, Step: 3}

func TestGenerateWindowBounds(t *testing.T) {
	windows := Generate(60, defaultParams)
	if len(windows) == 0 {
		t.Fatal("expected windows for a 60s video")
	}
	for _, w := range windows {
		d := w.Duration()
		if d < defaultParams.MinDuration-1e-9 || d > defaultParams.MaxDuration+1e-9 {
			t.Fatalf("window duration out of bounds: %+v", w)
		}
		if w.Start < 0 || w.End > 60+1e-9 {
			t.Fatalf("window outside video: %+v", w)
		}
	}
}

func TestGenerateSortedAndUnique(t *testing.T) {
	windows := Generate(60, defaultParams)
	seen := make(map[Window]struct{})
	for i, w := range windows {
		if _, dup := seen[w]; dup {
			t.Fatalf("duplicate window: %+v", w)
		}
		seen[w] = struct{}{}
		if i > 0 {
			prev := windows[i-1]
			if w.Start < prev.Start || (w.Start == prev.Start && w.End < prev.End) {
				t.Fatalf("windows out of order at %d: %+v then %+v", i, prev, w)
			}
		}
	}
}

func TestGenerateClipsTail(t *testing.T) {
	// Late starts get pulled back to the end of the video when the clipped
	// span still clears the minimum, and dropped when it does not.
	windows := Generate(60, defaultParams)
	for _, w := range windows {
		if w.End > 60 {
			t.Fatalf("window past end of video: %+v", w)
		}
	}
	last := windows[len(windows)-1]
	if last.End != 60 {
		t.Fatalf("expected final window to reach the end, got %+v", last)
	}
}

func TestGenerateShortVideo(t *testing.T) {
	if windows := Generate(5, defaultParams); windows != nil {
		t.Fatalf("video shorter than minimum should yield no windows, got %d", len(windows))
	}
}

func TestGenerateExactMinimum(t *testing.T) {
	windows := Generate(7, defaultParams)
	if len(windows) != 1 {
		t.Fatalf("expected exactly one window, got %d", len(windows))
	}
	if windows[0].Start != 0 || windows[0].End != 7 {
		t.Fatalf("unexpected window: %+v", windows[0])
	}
}

func TestOverlap(t *testing.T) {
	a := Window{Start: 0, End: 10}
	b := Window{Start: 5, End: 15}
	c := Window{Start: 10, End: 20}
	if got := a.Overlap(b); got != 5 {
		t.Fatalf("Overlap = %v, want 5", got)
	}
	// Half-open spans touching at a boundary do not intersect.
	if a.Intersects(c) {
		t.Fatal("adjacent windows should not intersect")
	}
	if got := a.OverlapFraction(b); got != 0.5 {
		t.Fatalf("OverlapFraction = %v, want 0.5", got)
	}
}

func TestOverlapFractionUsesShorter(t *testing.T) {
	long := Window{Start: 0, End: 20}
	short := Window{Start: 5, End: 10}
	if got := long.OverlapFraction(short); got != 1 {
		t.Fatalf("fully contained short window should report 1, got %v", got)
	}
}

func TestQuota(t *testing.T) {
	cases := []struct {
		duration  float64
		perMinute float64
		max       int
		want      int
	}{
		{300, 4, 20, 20},
		{120, 4, 20, 8},
		{90, 4, 20, 6},
		{10, 4, 20, 1},
		{0, 4, 20, 0},
		{600, 4, 20, 20},
	}
	for _, tc := range cases {
		if got := Quota(tc.duration, tc.perMinute, tc.max); got != tc.want {
			t.Fatalf("Quota(%v, %v, %d) = %d, want %d", tc.duration, tc.perMinute, tc.max, got, tc.want)
		}
	}
}

func TestMidpoint(t *testing.T) {
	w := Window{Start: 4, End: 14}
	if got := w.Midpoint(); math.Abs(got-9) > 1e-9 {
		t.Fatalf("Midpoint = %v, want 9", got)
	}
}
