package config

import (
	"errors"
	"strings"
)

// JobParams are the per-job analysis parameters supplied by the request
// collaborator. They override the [analysis] and [weights] config sections
// for a single job and are persisted with the job record.
type JobParams struct {
	Keywords            []string `json:"keywords"`
	ClipMinSeconds      float64  `json:"clip_min_s"`
	ClipMaxSeconds      float64  `json:"clip_max_s"`
	TargetSeconds       float64  `json:"target_s"`
	StepSeconds         float64  `json:"step_s"`
	CandidatesPerMinute float64  `json:"candidates_per_minute"`
	MaxCandidates       int      `json:"max_candidates"`
	MinScore            float64  `json:"min_score"`
	FreshnessPenalty    float64  `json:"freshness_penalty"`
	Weights             Weights  `json:"scoring_weights"`
}

// DefaultJobParams derives job parameters from the configured defaults.
func (c *Config) DefaultJobParams() JobParams {
	return JobParams{
		ClipMinSeconds:      c.Analysis.ClipMinSeconds,
		ClipMaxSeconds:      c.Analysis.ClipMaxSeconds,
		TargetSeconds:       c.Analysis.TargetSeconds,
		StepSeconds:         c.Analysis.StepSeconds,
		CandidatesPerMinute: c.Analysis.CandidatesPerMinute,
		MaxCandidates:       c.Analysis.MaxCandidates,
		MinScore:            c.Analysis.MinScore,
		FreshnessPenalty:    c.Analysis.FreshnessPenalty,
		Weights:             c.Weights,
	}
}

// Normalize trims keyword whitespace and drops empty entries while keeping
// the caller's ordering.
func (p *JobParams) Normalize() {
	keywords := make([]string, 0, len(p.Keywords))
	for _, keyword := range p.Keywords {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	p.Keywords = keywords
}

// Validate rejects malformed job parameters before any extraction starts.
func (p JobParams) Validate() error {
	analysis := Analysis{
		ClipMinSeconds:      p.ClipMinSeconds,
		ClipMaxSeconds:      p.ClipMaxSeconds,
		TargetSeconds:       p.TargetSeconds,
		StepSeconds:         p.StepSeconds,
		CandidatesPerMinute: p.CandidatesPerMinute,
		MaxCandidates:       p.MaxCandidates,
		MinScore:            p.MinScore,
		FreshnessPenalty:    p.FreshnessPenalty,
		// Parameters carry no timeout of their own; the config budget applies.
		JobTimeoutSeconds: 1,
	}
	if err := analysis.validate(); err != nil {
		return err
	}
	if err := p.Weights.Validate(); err != nil {
		return err
	}
	for _, keyword := range p.Keywords {
		if strings.TrimSpace(keyword) == "" {
			return errors.New("keywords must not contain blank entries")
		}
	}
	return nil
}
