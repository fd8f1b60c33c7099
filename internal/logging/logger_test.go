package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"clipforge/internal/services"
)

func TestPrettyHandlerIncludesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	NewComponentLogger(logger, "scorer").Info("scored windows", Int("count", 42))

	out := buf.String()
	if !strings.Contains(out, "scorer: scored windows") {
		t.Fatalf("expected component prefix, got %q", out)
	}
	if !strings.Contains(out, "count=42") {
		t.Fatalf("expected count field, got %q", out)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("event", String("reason", "speech extractor failed"))

	if !strings.Contains(buf.String(), `reason="speech extractor failed"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestWithContextAttachesJobFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	ctx := services.WithJobID(context.Background(), "job-9")
	ctx = services.WithStage(ctx, "selection")
	WithContext(ctx, logger).Info("stage complete")

	out := buf.String()
	if !strings.Contains(out, "job_id=job-9") || !strings.Contains(out, "stage=selection") {
		t.Fatalf("expected context fields, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if got := parseLevel("nonsense"); got != slog.LevelInfo {
		t.Fatalf("expected info fallback, got %v", got)
	}
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Fatalf("expected debug, got %v", got)
	}
}
