// Package services defines shared utilities consumed by the analysis
// pipeline and the collaborators around it.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, video IDs, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the job error taxonomy (input, extractor, timeout, cancelled).
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform.
package services
