package scoring

import (
	"math"
	"testing"

	"clipforge/internal/analysis"
	"clipforge/internal/analysis/audioenergy"
	"clipforge/internal/analysis/speech"
	"clipforge/internal/config"
	"clipforge/internal/segment"
)

func flatMotion(seconds int, value float64) analysis.Signal {
	signal := make(analysis.Signal, seconds)
	for i := range signal {
		signal[i] = analysis.Sample{T: float64(i), Value: value}
	}
	return signal
}

func transcriptWith(words ...speech.Word) speech.Transcript {
	return speech.Transcript{Segments: []speech.Segment{{Words: words}}}
}

func TestCombineUsesWeights(t *testing.T) {
	weights := config.DefaultWeights()
	features := Features{SpeechHook: 1, Motion: 1, AudioPeak: 1, KeywordMatch: 1, SceneFreshness: 1}
	if got := Combine(weights, features); math.Abs(got-1) > 1e-9 {
		t.Fatalf("full features should score the weight sum, got %v", got)
	}
	if got := Combine(weights, Features{Motion: 1}); math.Abs(got-weights.Motion) > 1e-9 {
		t.Fatalf("single feature should score its weight, got %v", got)
	}
}

func TestSpeechHookEarlyWindowOnly(t *testing.T) {
	transcript := transcriptWith(
		speech.Word{Word: "Wait,", Start: 10.5, End: 10.8},
		speech.Word{Word: "watch", Start: 14.0, End: 14.3},
	)
	scorer := NewScorer(transcript, nil, audioenergy.Result{}, nil, config.DefaultWeights())
	window := segment.Window{Start: 10, End: 20}
	scored := scorer.Score([]segment.Window{window})
	// Only "Wait," lands in the first 2.5 seconds.
	if got := scored[0].Features.SpeechHook; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("SpeechHook = %v, want 0.5", got)
	}
}

func TestSpeechHookCapped(t *testing.T) {
	transcript := transcriptWith(
		speech.Word{Word: "wait", Start: 0.1},
		speech.Word{Word: "stop!", Start: 0.5},
		speech.Word{Word: "look", Start: 1.0},
	)
	scorer := NewScorer(transcript, nil, audioenergy.Result{}, nil, config.DefaultWeights())
	scored := scorer.Score([]segment.Window{{Start: 0, End: 10}})
	if got := scored[0].Features.SpeechHook; got != 1 {
		t.Fatalf("summed hooks should cap at 1, got %v", got)
	}
}

func TestExclamationBonus(t *testing.T) {
	scorer := NewScorer(transcriptWith(speech.Word{Word: "go!", Start: 0.5}), nil, audioenergy.Result{}, nil, config.DefaultWeights())
	scored := scorer.Score([]segment.Window{{Start: 0, End: 10}})
	if got := scored[0].Features.SpeechHook; math.Abs(got-0.2) > 1e-9 {
		t.Fatalf("plain exclamation should add 0.2, got %v", got)
	}
}

func TestQuestionWordWeight(t *testing.T) {
	scorer := NewScorer(transcriptWith(speech.Word{Word: "Why", Start: 0.2}), nil, audioenergy.Result{}, nil, config.DefaultWeights())
	scored := scorer.Score([]segment.Window{{Start: 0, End: 10}})
	if got := scored[0].Features.SpeechHook; math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("question word should add 0.3, got %v", got)
	}
}

func TestKeywordMatchFraction(t *testing.T) {
	transcript := transcriptWith(
		speech.Word{Word: "Kubernetes", Start: 3},
		speech.Word{Word: "deployment", Start: 5},
	)
	scorer := NewScorer(transcript, nil, audioenergy.Result{}, []string{"kubernetes", "docker"}, config.DefaultWeights())
	scored := scorer.Score([]segment.Window{{Start: 0, End: 10}})
	if got := scored[0].Features.KeywordMatch; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("one of two keywords should score 0.5, got %v", got)
	}
}

func TestKeywordMatchMultiWordPhrase(t *testing.T) {
	transcript := transcriptWith(
		speech.Word{Word: "Machine", Start: 3},
		speech.Word{Word: "learning", Start: 4},
		speech.Word{Word: "rocks", Start: 12},
	)
	scorer := NewScorer(transcript, nil, audioenergy.Result{}, []string{"machine learning"}, config.DefaultWeights())
	scored := scorer.Score([]segment.Window{{Start: 0, End: 10}, {Start: 10, End: 20}})
	if got := scored[0].Features.KeywordMatch; math.Abs(got-1) > 1e-9 {
		t.Fatalf("phrase spoken across consecutive words should score 1, got %v", got)
	}
	if got := scored[1].Features.KeywordMatch; got != 0 {
		t.Fatalf("window without the phrase should score 0, got %v", got)
	}
}

func TestKeywordMatchWithoutKeywords(t *testing.T) {
	transcript := transcriptWith(speech.Word{Word: "anything", Start: 3})
	scorer := NewScorer(transcript, nil, audioenergy.Result{}, nil, config.DefaultWeights())
	scored := scorer.Score([]segment.Window{{Start: 0, End: 10}})
	if got := scored[0].Features.KeywordMatch; got != 0 {
		t.Fatalf("no keywords configured should score 0, got %v", got)
	}
}

func TestKeywordSensitivity(t *testing.T) {
	transcript := transcriptWith(speech.Word{Word: "golang", Start: 12})
	motion := flatMotion(30, 0.5)
	weights := config.DefaultWeights()

	without := NewScorer(transcript, motion, audioenergy.Result{}, nil, weights)
	with := NewScorer(transcript, motion, audioenergy.Result{}, []string{"golang"}, weights)
	window := segment.Window{Start: 10, End: 20}

	base := without.Score([]segment.Window{window})[0].Score
	boosted := with.Score([]segment.Window{window})[0].Score
	if boosted <= base {
		t.Fatalf("matching keyword should raise the score: %v vs %v", boosted, base)
	}
}

func TestMotionFeatureAveragesWindow(t *testing.T) {
	motion := flatMotion(30, 0)
	for i := 10; i < 20; i++ {
		motion[i].Value = 0.8
	}
	scorer := NewScorer(speech.Transcript{}, motion, audioenergy.Result{}, nil, config.DefaultWeights())
	scored := scorer.Score([]segment.Window{{Start: 10, End: 20}, {Start: 0, End: 10}})
	if got := scored[0].Features.Motion; math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("active window motion = %v, want 0.8", got)
	}
	if got := scored[1].Features.Motion; got != 0 {
		t.Fatalf("still window motion = %v, want 0", got)
	}
}

func TestSceneFreshnessStartsNeutral(t *testing.T) {
	scorer := NewScorer(speech.Transcript{}, nil, audioenergy.Result{}, nil, config.DefaultWeights())
	scored := scorer.Score([]segment.Window{{Start: 0, End: 10}})
	if scored[0].Features.SceneFreshness != 1 {
		t.Fatalf("freshness should start at 1, got %v", scored[0].Features.SceneFreshness)
	}
}

func TestNormalizeToken(t *testing.T) {
	cases := map[string]string{
		"Wait,":   "wait",
		"  WHAT?": "what",
		"'stop'":  "stop",
		"!":       "",
	}
	for input, want := range cases {
		if got := normalizeToken(input); got != want {
			t.Fatalf("normalizeToken(%q) = %q, want %q", input, got, want)
		}
	}
}
