// Package script defines the multi-speaker script model and loads scripts
// from JSON, TOML, or YAML files.
//
// A script is an ordered list of speakers, each with an ordered list of
// phrases and their spoken durations, plus one global pause inserted after
// every phrase. Durations are milliseconds on the wire and time.Duration in
// memory. The Resolver maps an identifier (library name, file path, or bare
// name inside the script directory) to a script, falling back to the
// configured default and finally to the embedded example conversation.
package script
