// Package logging assembles the slog loggers used across phrasesync.
//
// The console handler lifts session, component and the playback cue (phrase
// index, speaker and clock position) ahead of the remaining key=value pairs.
// The JSON handler reports durations as integer milliseconds. Context helpers
// tag lines with session IDs, script names and correlation IDs.
package logging
