// Package render defines the contract clipforge hands to an external
// rendering service. Analysis produces the clip list; cutting, captioning,
// and loudness normalization happen elsewhere.
package render

import (
	"context"
	"fmt"
	"strings"

	"clipforge/internal/selection"
)

// AspectPreset names one of the supported output framings.
type AspectPreset string

const (
	AspectVertical AspectPreset = "9:16"
	AspectSquare   AspectPreset = "1:1"
	AspectWide     AspectPreset = "16:9"
)

// DefaultLoudnessLUFS is the integrated loudness target for rendered clips.
const DefaultLoudnessLUFS = -14.0

// CaptionStyle controls burned-in caption appearance.
type CaptionStyle struct {
	Enabled    bool   `json:"enabled"`
	FontFamily string `json:"font_family,omitempty"`
	Highlight  bool   `json:"highlight"`
	Position   string `json:"position,omitempty"`
}

// DefaultCaptionStyle returns word-highlighted bottom captions.
func DefaultCaptionStyle() CaptionStyle {
	return CaptionStyle{
		Enabled:   true,
		Highlight: true,
		Position:  "bottom",
	}
}

// Request describes one clip for the renderer: the source cut plus the
// output treatments to apply.
type Request struct {
	VideoID      string       `json:"video_id"`
	CandidateID  string       `json:"candidate_id"`
	SourcePath   string       `json:"source_path"`
	StartSeconds float64      `json:"start_s"`
	EndSeconds   float64      `json:"end_s"`
	ThumbSeconds float64      `json:"thumb_s"`
	Aspect       AspectPreset `json:"aspect"`
	Captions     CaptionStyle `json:"captions"`
	LoudnessLUFS float64      `json:"loudness_lufs"`
}

// Validate rejects requests a renderer could not act on.
func (r Request) Validate() error {
	if strings.TrimSpace(r.SourcePath) == "" {
		return fmt.Errorf("render request: source path is required")
	}
	if r.EndSeconds <= r.StartSeconds {
		return fmt.Errorf("render request: end %.2f must be after start %.2f", r.EndSeconds, r.StartSeconds)
	}
	switch r.Aspect {
	case AspectVertical, AspectSquare, AspectWide:
	default:
		return fmt.Errorf("render request: unknown aspect preset %q", r.Aspect)
	}
	if r.LoudnessLUFS >= 0 {
		return fmt.Errorf("render request: loudness target %.1f must be negative", r.LoudnessLUFS)
	}
	return nil
}

// Options shapes the requests built from a candidate list.
type Options struct {
	Aspect   AspectPreset
	Captions CaptionStyle
	Loudness float64
}

func (o *Options) normalize() {
	if o.Aspect == "" {
		o.Aspect = AspectVertical
	}
	if o.Loudness == 0 {
		o.Loudness = DefaultLoudnessLUFS
	}
}

// BuildRequests turns accepted candidates into render requests, preserving
// candidate order.
func BuildRequests(videoID, sourcePath string, candidates []selection.Candidate, opts Options) ([]Request, error) {
	opts.normalize()

	requests := make([]Request, 0, len(candidates))
	for _, candidate := range candidates {
		req := Request{
			VideoID:      videoID,
			CandidateID:  candidate.ID,
			SourcePath:   sourcePath,
			StartSeconds: candidate.Window.Start,
			EndSeconds:   candidate.Window.End,
			ThumbSeconds: candidate.ThumbSeconds,
			Aspect:       opts.Aspect,
			Captions:     opts.Captions,
			LoudnessLUFS: opts.Loudness,
		}
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("candidate %s: %w", candidate.ID, err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// Renderer is implemented by whatever service actually cuts clips.
type Renderer interface {
	Render(ctx context.Context, req Request) error
}
