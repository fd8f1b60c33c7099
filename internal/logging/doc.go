// Package logging builds the slog loggers used across clipforge.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for log shipping. Helpers attach standardized fields (job_id,
// video_id, stage, correlation_id) derived from request context so pipeline
// logs correlate across components.
package logging
