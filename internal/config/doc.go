// Package config loads, normalizes, and validates clipforge configuration.
//
// Configuration lives in a TOML file (default ~/.config/clipforge/config.toml)
// and covers directories, analysis defaults, feature fusion weights, and the
// per-extractor settings. Per-job overrides are expressed as JobParams, which
// share the same validation rules so malformed requests are rejected before
// extraction starts.
package config
