// Package config loads, normalizes, and validates phrasesync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PHRASESYNC_API_TOKEN. The Config type centralizes every knob the daemon and
// CLI need: where scripts and state live, how the playback engine samples the
// audio clock, and how slow-motion repeat behaves.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
