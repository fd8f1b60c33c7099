// Package daemon runs the long-lived clipforge process: the queue worker
// loop plus the HTTP control API, guarded by a file lock so only one
// instance operates on a data directory at a time.
package daemon
