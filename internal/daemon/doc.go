// Package daemon runs the long-lived phrasesync process.
//
// It holds the single-instance lock, owns the active playback session and
// serves the HTTP control API. A session pairs a resolved script's timeline
// with a playback coordinator driving a simulated device whose clock ticks
// at the configured sample interval. Activating a new script closes the
// previous session first, so at most one coordinator is attached at a time.
package daemon
