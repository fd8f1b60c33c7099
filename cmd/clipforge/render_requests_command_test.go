package main

import (
	"context"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/queue"
	"clipforge/internal/segment"
	"clipforge/internal/selection"
)

func seedCandidates(t *testing.T, configPath string) {
	t.Helper()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := store.NewJob(ctx, "vid-1", "/videos/input.mp4", ""); err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	candidates := []selection.Candidate{
		{ID: "cand-1", Window: segment.Window{Start: 60, End: 70}, Score: 0.8, ThumbSeconds: 65},
		{ID: "cand-2", Window: segment.Window{Start: 10, End: 20}, Score: 0.6, ThumbSeconds: 15},
	}
	if err := store.ReplaceCandidates(ctx, "vid-1", candidates); err != nil {
		t.Fatalf("ReplaceCandidates: %v", err)
	}
}

func TestRenderRequestsCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)
	seedCandidates(t, cfgPath)

	out, err := runCLI(t, cfgPath, "render-requests", "vid-1")
	if err != nil {
		t.Fatalf("render-requests: %v", err)
	}
	requireContains(t, out, `"source_path": "/videos/input.mp4"`)
	requireContains(t, out, `"candidate_id": "cand-1"`)
	requireContains(t, out, `"candidate_id": "cand-2"`)
	requireContains(t, out, `"aspect": "9:16"`)
	requireContains(t, out, `"loudness_lufs": -14`)
}

func TestRenderRequestsAspectOverride(t *testing.T) {
	cfgPath := writeTestConfig(t)
	seedCandidates(t, cfgPath)

	out, err := runCLI(t, cfgPath, "render-requests", "vid-1", "--aspect", "1:1")
	if err != nil {
		t.Fatalf("render-requests: %v", err)
	}
	requireContains(t, out, `"aspect": "1:1"`)

	if _, err := runCLI(t, cfgPath, "render-requests", "vid-1", "--aspect", "4:3"); err == nil {
		t.Fatal("expected unknown aspect preset to fail")
	}
}

func TestRenderRequestsUnknownVideo(t *testing.T) {
	cfgPath := writeTestConfig(t)

	if _, err := runCLI(t, cfgPath, "render-requests", "vid-404"); err == nil {
		t.Fatal("expected missing video to fail")
	}
}
