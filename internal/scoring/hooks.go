package scoring

import "strings"

// Attention-grabbing openers and question words, weighted by how strongly
// they signal a hook when spoken near the start of a clip.
var (
	hookWords = map[string]float64{
		"wait":  hookWordWeight,
		"hey":   hookWordWeight,
		"no":    hookWordWeight,
		"stop":  hookWordWeight,
		"what":  hookWordWeight,
		"now":   hookWordWeight,
		"look":  hookWordWeight,
		"watch": hookWordWeight,
	}
	questionWords = map[string]float64{
		"who":   questionWordWeight,
		"what":  questionWordWeight,
		"where": questionWordWeight,
		"when":  questionWordWeight,
		"why":   questionWordWeight,
		"how":   questionWordWeight,
	}
)

const (
	hookWordWeight     = 0.5
	questionWordWeight = 0.3
	exclamationWeight  = 0.2

	// earlyWindowSeconds bounds how far into a window spoken words still
	// count toward the hook score.
	earlyWindowSeconds = 2.5
)

// normalizeToken lowercases a spoken word and strips surrounding punctuation
// so lexicon lookups match transcription output.
func normalizeToken(word string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(word)), ".,!?;:'\"()[]")
}

// hookValue returns the hook contribution of a single spoken word, counting
// the stronger of its hook and question weights plus an exclamation bonus.
func hookValue(word string) float64 {
	token := normalizeToken(word)
	if token == "" {
		return 0
	}
	value := 0.0
	if weight, ok := hookWords[token]; ok {
		value = weight
	} else if weight, ok := questionWords[token]; ok {
		value = weight
	}
	if strings.HasSuffix(strings.TrimSpace(word), "!") {
		value += exclamationWeight
	}
	return value
}
