package render

import (
	"testing"

	"clipforge/internal/segment"
	"clipforge/internal/selection"
)

func TestBuildRequestsDefaults(t *testing.T) {
	candidates := []selection.Candidate{
		{ID: "c1", Window: segment.Window{Start: 57, End: 67}, Score: 0.8, ThumbSeconds: 62},
		{ID: "c2", Window: segment.Window{Start: 12, End: 22}, Score: 0.6, ThumbSeconds: 17},
	}

	requests, err := BuildRequests("vid-1", "/videos/vid-1.mp4", candidates, Options{Captions: DefaultCaptionStyle()})
	if err != nil {
		t.Fatalf("BuildRequests: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("got %d requests, want 2", len(requests))
	}
	first := requests[0]
	if first.CandidateID != "c1" || first.StartSeconds != 57 || first.EndSeconds != 67 {
		t.Fatalf("unexpected first request: %+v", first)
	}
	if first.Aspect != AspectVertical {
		t.Fatalf("aspect = %q, want %q", first.Aspect, AspectVertical)
	}
	if first.LoudnessLUFS != DefaultLoudnessLUFS {
		t.Fatalf("loudness = %v, want %v", first.LoudnessLUFS, DefaultLoudnessLUFS)
	}
	if !first.Captions.Enabled || !first.Captions.Highlight {
		t.Fatalf("unexpected caption style: %+v", first.Captions)
	}
}

func TestBuildRequestsPreservesCandidateOrder(t *testing.T) {
	candidates := []selection.Candidate{
		{ID: "high", Window: segment.Window{Start: 30, End: 40}, ThumbSeconds: 35},
		{ID: "low", Window: segment.Window{Start: 0, End: 10}, ThumbSeconds: 5},
	}

	requests, err := BuildRequests("vid-1", "/videos/vid-1.mp4", candidates, Options{Aspect: AspectSquare})
	if err != nil {
		t.Fatalf("BuildRequests: %v", err)
	}
	if requests[0].CandidateID != "high" || requests[1].CandidateID != "low" {
		t.Fatalf("order changed: %q, %q", requests[0].CandidateID, requests[1].CandidateID)
	}
}

func TestRequestValidate(t *testing.T) {
	base := Request{
		SourcePath:   "/videos/vid-1.mp4",
		StartSeconds: 10,
		EndSeconds:   20,
		Aspect:       AspectWide,
		LoudnessLUFS: DefaultLoudnessLUFS,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	bad := base
	bad.EndSeconds = 10
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for empty span")
	}

	bad = base
	bad.Aspect = "4:3"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown aspect")
	}

	bad = base
	bad.SourcePath = "  "
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for missing source")
	}

	bad = base
	bad.LoudnessLUFS = 3
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for positive loudness target")
	}
}
