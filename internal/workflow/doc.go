// Package workflow runs the analysis worker loop: it claims pending jobs,
// drives the stage handler with heartbeats, and records terminal state.
package workflow
