// Package scoring evaluates candidate windows against the extracted feature
// signals and fuses the per-feature values into a single ranked score.
package scoring

import (
	"strings"

	"clipforge/internal/analysis"
	"clipforge/internal/analysis/audioenergy"
	"clipforge/internal/analysis/speech"
	"clipforge/internal/config"
	"clipforge/internal/segment"
)

// Features holds the five per-window feature values, each in [0, 1].
type Features struct {
	SpeechHook     float64 `json:"speech_hook"`
	Motion         float64 `json:"motion"`
	AudioPeak      float64 `json:"audio_peak"`
	KeywordMatch   float64 `json:"keyword_match"`
	SceneFreshness float64 `json:"scene_freshness"`
}

// Combine fuses the feature values with the configured weights.
func Combine(weights config.Weights, features Features) float64 {
	return weights.SpeechHook*features.SpeechHook +
		weights.Motion*features.Motion +
		weights.AudioPeak*features.AudioPeak +
		weights.KeywordMatch*features.KeywordMatch +
		weights.SceneFreshness*features.SceneFreshness
}

// ScoredWindow pairs a candidate window with its features and fused score.
type ScoredWindow struct {
	segment.Window
	Score    float64  `json:"score"`
	Features Features `json:"features"`
}

// Scorer evaluates windows against one video's extracted signals.
type Scorer struct {
	words    []speech.Word
	motion   analysis.Signal
	audio    audioenergy.Result
	keywords []string
	weights  config.Weights
}

// NewScorer binds the extracted signals and scoring parameters.
func NewScorer(transcript speech.Transcript, motion analysis.Signal, audio audioenergy.Result, keywords []string, weights config.Weights) *Scorer {
	return &Scorer{
		words:    transcript.Words(),
		motion:   motion,
		audio:    audio,
		keywords: normalizeKeywords(keywords),
		weights:  weights,
	}
}

// Score evaluates every window. Scene freshness starts at its neutral
// maximum; selection discounts it for overlap with stronger windows.
func (s *Scorer) Score(windows []segment.Window) []ScoredWindow {
	scored := make([]ScoredWindow, 0, len(windows))
	for _, window := range windows {
		features := Features{
			SpeechHook:     s.speechHook(window),
			Motion:         s.motion.WindowMean(window.Start, window.End),
			AudioPeak:      s.audio.PeakFractionInWindow(window.Start, window.End),
			KeywordMatch:   s.keywordMatch(window),
			SceneFreshness: 1.0,
		}
		scored = append(scored, ScoredWindow{
			Window:   window,
			Features: features,
			Score:    Combine(s.weights, features),
		})
	}
	return scored
}

// speechHook sums the lexicon weights of words spoken in the window's
// opening seconds, capped at 1.
func (s *Scorer) speechHook(window segment.Window) float64 {
	cutoff := window.Start + earlyWindowSeconds
	if cutoff > window.End {
		cutoff = window.End
	}
	total := 0.0
	for _, word := range s.words {
		if word.Start < window.Start || word.Start >= cutoff {
			continue
		}
		total += hookValue(word.Word)
	}
	return analysis.Clamp01(total)
}

// keywordMatch is the fraction of requested keywords found in the window's
// spoken text. Each keyword matches as a case-insensitive substring of the
// joined in-window words, so multi-word phrases match too. With no keywords
// configured it stays 0.
func (s *Scorer) keywordMatch(window segment.Window) float64 {
	if len(s.keywords) == 0 {
		return 0
	}
	var joined strings.Builder
	for _, word := range s.words {
		if word.Start < window.Start || word.Start >= window.End {
			continue
		}
		if joined.Len() > 0 {
			joined.WriteByte(' ')
		}
		joined.WriteString(strings.ToLower(word.Word))
	}
	text := joined.String()
	matched := 0
	for _, keyword := range s.keywords {
		if strings.Contains(text, keyword) {
			matched++
		}
	}
	return float64(matched) / float64(len(s.keywords))
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, keyword := range keywords {
		token := normalizeToken(keyword)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
