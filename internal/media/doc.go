// Package media probes input files and provides the command execution
// primitives shared by the ffmpeg-backed feature extractors.
package media
