// Package queue persists analysis jobs, transcripts, and selected clip
// candidates in SQLite and enforces the job lifecycle transitions.
package queue
