// Command phrasesync builds dialogue timelines and plays them back.
//
// Local commands (timeline, play, library) work directly against script files
// and the SQLite catalog. serve runs the daemon, and ctl drives a running
// daemon over its HTTP API.
package main
