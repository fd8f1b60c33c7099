// Package analysis holds the shared signal primitives used by the speech,
// motion, and audio energy extractors.
package analysis
