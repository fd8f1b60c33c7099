package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig controls the hosted transcription backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// transcriptionClient is the slice of the OpenAI client the engine uses.
type transcriptionClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// OpenAIEngine transcribes audio through the OpenAI audio API.
type OpenAIEngine struct {
	client transcriptionClient
	model  string
}

// NewOpenAIEngine builds the hosted engine from configuration.
func NewOpenAIEngine(cfg OpenAIConfig) (*OpenAIEngine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai engine: api key required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIEngine{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Transcribe uploads the audio file and converts the verbose response into a
// word-timed transcript.
func (e *OpenAIEngine) Transcribe(ctx context.Context, audioPath, language string) (Transcript, error) {
	if strings.TrimSpace(audioPath) == "" {
		return Transcript{}, fmt.Errorf("openai transcribe: audio path required")
	}
	request := openai.AudioRequest{
		Model:    e.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
			openai.TranscriptionTimestampGranularitySegment,
		},
	}
	if language != "" {
		request.Language = language
	}
	response, err := e.client.CreateTranscription(ctx, request)
	if err != nil {
		return Transcript{}, fmt.Errorf("openai transcribe: %w", err)
	}
	return fromAudioResponse(response, language), nil
}

func fromAudioResponse(response openai.AudioResponse, fallbackLanguage string) Transcript {
	transcript := Transcript{Language: response.Language}
	if transcript.Language == "" {
		transcript.Language = fallbackLanguage
	}

	words := make([]Word, 0, len(response.Words))
	for _, word := range response.Words {
		words = append(words, Word{Word: word.Word, Start: word.Start, End: word.End})
	}

	for _, seg := range response.Segments {
		segment := Segment{Text: seg.Text, Start: seg.Start, End: seg.End}
		for _, word := range words {
			if word.Start >= seg.Start && word.Start < seg.End {
				segment.Words = append(segment.Words, word)
			}
		}
		transcript.Segments = append(transcript.Segments, segment)
	}

	// Word-only responses still need a segment to hang the words on.
	if len(transcript.Segments) == 0 && len(words) > 0 {
		segment := Segment{
			Text:  response.Text,
			Start: words[0].Start,
			End:   words[len(words)-1].End,
			Words: words,
		}
		transcript.Segments = append(transcript.Segments, segment)
	}
	return transcript
}
