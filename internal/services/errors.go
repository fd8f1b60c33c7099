package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInput marks unreadable media or malformed job parameters. Detected
	// eagerly, before any extraction starts.
	ErrInput = errors.New("input error")
	// ErrExtractor marks an irrecoverable failure in a named feature
	// extractor. Fatal to the job.
	ErrExtractor = errors.New("extractor error")
	// ErrTimeout marks a job that exceeded its analysis time budget.
	ErrTimeout = errors.New("timeout")
	// ErrCancelled marks a job stopped by an external cancellation request.
	ErrCancelled = errors.New("cancelled")
	// ErrConfiguration marks invalid or missing service configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks retryable infrastructure failures (storage, IO).
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatalToJob reports whether an error should move the owning job to the
// failed state. Everything except plain transient storage errors is fatal;
// the caller decides how transient errors are retried.
func IsFatalToJob(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrTransient):
		return false
	default:
		return true
	}
}

// FailureReason maps a pipeline error to the short reason recorded on the
// failed job. Cancellation and timeout get stable reasons so collaborators
// can match on them.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrTimeout):
		return "timeout: " + trimMarker(err, ErrTimeout)
	default:
		return strings.TrimSpace(err.Error())
	}
}

func trimMarker(err, marker error) string {
	msg := strings.TrimSpace(err.Error())
	prefix := marker.Error() + ": "
	return strings.TrimPrefix(msg, prefix)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
