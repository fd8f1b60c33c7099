package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// weightSumTolerance is how far the weight total may drift from 1.0 before
// the configuration is rejected.
const weightSumTolerance = 0.01

// Validate rejects configurations the pipeline cannot run with. Invalid
// weight vectors and inverted clip bounds are caught here, at load time,
// rather than surfacing mid-job.
func (c *Config) Validate() error {
	var problems []string

	if err := c.Analysis.validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if err := c.Weights.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	switch c.Speech.Engine {
	case "whisper":
	case "openai":
		if strings.TrimSpace(c.Speech.OpenAIAPIKey) == "" {
			problems = append(problems, "speech: openai engine requires openai_api_key")
		}
	default:
		problems = append(problems, fmt.Sprintf("speech: unknown engine %q", c.Speech.Engine))
	}
	if c.Motion.SampleFPS <= 0 {
		problems = append(problems, "motion: sample_fps must be positive")
	}
	if c.Motion.ClampPercentile <= 0 || c.Motion.ClampPercentile > 100 {
		problems = append(problems, "motion: clamp_percentile must be in (0, 100]")
	}
	if c.Audio.PeakSigma <= 0 {
		problems = append(problems, "audio: peak_sigma must be positive")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

func (a Analysis) validate() error {
	var problems []string
	if a.ClipMinSeconds <= 0 {
		problems = append(problems, "clip_min_seconds must be positive")
	}
	if a.ClipMaxSeconds < a.ClipMinSeconds {
		problems = append(problems, "clip_max_seconds must be >= clip_min_seconds")
	}
	if a.TargetSeconds < a.ClipMinSeconds || a.TargetSeconds > a.ClipMaxSeconds {
		problems = append(problems, "target_seconds must lie within [clip_min_seconds, clip_max_seconds]")
	}
	if a.StepSeconds <= 0 {
		problems = append(problems, "step_seconds must be positive")
	}
	if a.CandidatesPerMinute <= 0 {
		problems = append(problems, "candidates_per_minute must be positive")
	}
	if a.MaxCandidates < 0 {
		problems = append(problems, "max_candidates must not be negative")
	}
	if a.MinScore < 0 || a.MinScore > 1 {
		problems = append(problems, "min_score must be in [0, 1]")
	}
	if a.FreshnessPenalty < 0 || a.FreshnessPenalty > 1 {
		problems = append(problems, "freshness_penalty must be in [0, 1]")
	}
	if a.JobTimeoutSeconds <= 0 {
		problems = append(problems, "job_timeout_seconds must be positive")
	}
	if len(problems) > 0 {
		return errors.New("analysis: " + strings.Join(problems, "; "))
	}
	return nil
}

// Validate checks that every weight is non-negative and the vector sums to
// approximately 1.
func (w Weights) Validate() error {
	components := []struct {
		name  string
		value float64
	}{
		{"speech_hook", w.SpeechHook},
		{"motion", w.Motion},
		{"audio_peak", w.AudioPeak},
		{"keyword_match", w.KeywordMatch},
		{"scene_freshness", w.SceneFreshness},
	}
	for _, component := range components {
		if component.value < 0 {
			return fmt.Errorf("weights: %s must not be negative", component.name)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights: components must sum to 1.0 (got %.4f)", sum)
	}
	return nil
}
