package speech

import "strings"

// Word is a single transcribed word with its timing in the source video.
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Segment is a contiguous run of speech from the transcription engine.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// Transcript is the full transcription of a video's audio track.
type Transcript struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Words flattens the per-segment word lists into a single timeline. Segments
// without word timings fall back to evenly spreading words across the
// segment span so downstream scoring still has anchors to work with.
func (t Transcript) Words() []Word {
	var out []Word
	for _, seg := range t.Segments {
		if len(seg.Words) > 0 {
			out = append(out, seg.Words...)
			continue
		}
		tokens := strings.Fields(seg.Text)
		if len(tokens) == 0 {
			continue
		}
		span := seg.End - seg.Start
		if span <= 0 {
			span = 0
		}
		step := span / float64(len(tokens))
		for i, token := range tokens {
			start := seg.Start + float64(i)*step
			out = append(out, Word{Word: token, Start: start, End: start + step})
		}
	}
	return out
}

// Text concatenates the trimmed segment texts into one string.
func (t Transcript) Text() string {
	var parts []string
	for _, seg := range t.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Empty reports whether the transcript carries no words at all.
func (t Transcript) Empty() bool {
	for _, seg := range t.Segments {
		if len(seg.Words) > 0 || strings.TrimSpace(seg.Text) != "" {
			return false
		}
	}
	return true
}
