// Package api defines wire-format types, converters and the HTTP client for
// the daemon API. It translates library entries, timelines and playback
// snapshots into transport-friendly DTOs so consumers can render them without
// coupling to internal types.
//
// # Key Types
//
// DaemonStatus: lock file, library path and the active session, if any.
//
// Session: identity of the active playback session plus its PlaybackState.
//
// Phrase/TimelineResponse: the interleaved timeline with millisecond offsets
// and pre-formatted MM:SS strings.
//
// Script/ScriptListResponse: catalog entries.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Durations are exposed as integer milliseconds
// next to a formatted string, so clients never parse Go duration syntax.
// Errors are returned as {"error", "kind"} where kind is services.Kind.
package api
