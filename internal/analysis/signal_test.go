package analysis

import (
	"math"
	"testing"
)

func TestWindowMean(t *testing.T) {
	signal := Signal{
		{T: 0, Value: 1},
		{T: 1, Value: 2},
		{T: 2, Value: 3},
		{T: 3, Value: 10},
	}
	if got := signal.WindowMean(0, 3); math.Abs(got-2) > 1e-9 {
		t.Fatalf("WindowMean(0,3) = %v, want 2", got)
	}
	if got := signal.WindowMean(5, 10); got != 0 {
		t.Fatalf("empty window should yield 0, got %v", got)
	}
	// End boundary excluded.
	if got := signal.WindowMean(2, 3); math.Abs(got-3) > 1e-9 {
		t.Fatalf("WindowMean(2,3) = %v, want 3", got)
	}
}

func TestNormalizeMinMax(t *testing.T) {
	got := NormalizeMinMax([]float64{2, 4, 6})
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("NormalizeMinMax[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNormalizeMinMaxFlat(t *testing.T) {
	got := NormalizeMinMax([]float64{5, 5, 5})
	for i, v := range got {
		if v != 0 {
			t.Fatalf("flat signal index %d = %v, want 0", i, v)
		}
	}
}

func TestPercentileClamp(t *testing.T) {
	values := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 100}
	clamped := PercentileClamp(values, 90)
	if clamped[len(clamped)-1] >= 100 {
		t.Fatalf("spike not clamped: %v", clamped[len(clamped)-1])
	}
	for i := 0; i < len(clamped)-1; i++ {
		if clamped[i] != 1 {
			t.Fatalf("unclamped value changed at %d: %v", i, clamped[i])
		}
	}
}

func TestStdDev(t *testing.T) {
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2) > 1e-9 {
		t.Fatalf("StdDev = %v, want 2", got)
	}
	if StdDev(nil) != 0 {
		t.Fatal("empty slice should yield 0")
	}
}

func TestClamp01(t *testing.T) {
	if Clamp01(-0.5) != 0 {
		t.Fatal("negative should clamp to 0")
	}
	if Clamp01(1.5) != 1 {
		t.Fatal("above one should clamp to 1")
	}
	if Clamp01(0.25) != 0.25 {
		t.Fatal("in-range value should pass through")
	}
}
