// Package services defines shared helpers used by the playback engine, the
// script library, and the daemon.
//
// Key responsibilities:
//   - Context helpers that stamp session identifiers, script names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is (device faults vs bad input vs missing scripts).
//
// Use these helpers when wiring new components so error reporting and
// observability stay uniform across the daemon and CLI.
package services
