package speech

import "context"

// Engine transcribes an extracted audio file into a timed transcript.
// The language hint is a base ISO tag or empty for automatic detection.
type Engine interface {
	Transcribe(ctx context.Context, audioPath, language string) (Transcript, error)
}

// Name constants for the configurable transcription backends.
const (
	EngineWhisper = "whisper"
	EngineOpenAI  = "openai"
)
