// Package timeline interleaves a multi-speaker script into one absolutely
// timed phrase sequence.
//
// Build walks the speakers' phrase lists as parallel lanes: round 0 of every
// speaker in script order, then round 1, and so on. The script pause is added
// after every phrase, including the last, so Total always ends one pause past
// the final spoken word. Phrase End excludes that pause.
package timeline
