// Package speech extracts audio from a video source and produces a
// word-timed transcript through either a local whisperx run or the hosted
// OpenAI audio API.
package speech
