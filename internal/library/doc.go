// Package library catalogs script files in SQLite so they can be played by
// name or numeric id.
//
// The Store records each imported file's path, a BLAKE3 hash of its bytes and
// a summary of the parsed script (speakers, phrase count, timeline length).
// Importing identical content twice returns the existing entry; importing new
// content under an existing name refreshes that entry. The catalog never copies
// script files, so entries go stale when the file moves; Lookup still returns
// the recorded path and loading reports the missing file.
//
// Schema changes bump schemaVersion in schema.go; users delete the database to
// adopt the new schema.
package library
