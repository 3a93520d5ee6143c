// Package preflight provides readiness checks for the paths, default script
// and API address phrasesync depends on.
//
// "phrasesync config validate" runs RunAll and prints each Result; the daemon
// runs it at startup and logs failures without refusing to start.
package preflight
