// Package playback drives transport controls for one active timeline and maps
// the audio clock to the phrase currently being spoken.
//
// A Coordinator owns all session state and mutates it from a single event
// loop. Transport commands (play, pause, seek, repeat, stop) and clock samples
// are serialised through that loop: a command runs to completion, including
// its device calls, before the next one starts, and the most recent pending
// clock sample is always applied before a command executes. Samples arriving
// faster than the loop can consume them are coalesced, latest wins.
//
// Device failures are returned to the caller tagged with services.ErrDevice.
// The session is never left reporting Playing when the device failed to
// start. Out-of-range seek and repeat indices are silent no-ops.
//
// SimulatedDevice implements the device and clock interfaces in software and
// backs the CLI and daemon, which do not decode audio.
package playback
