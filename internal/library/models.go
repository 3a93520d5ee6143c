package library

import (
	"time"
)

// Entry is one catalogued script.
type Entry struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Title       string        `json:"title"`
	SourcePath  string        `json:"source_path"`
	Format      string        `json:"format"`
	ContentHash string        `json:"content_hash"`
	Speakers    []string      `json:"speakers"`
	PhraseCount int           `json:"phrase_count"`
	Total       time.Duration `json:"total"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// AddResult reports what Add did with a file.
type AddResult struct {
	Entry *Entry
	// Duplicate is set when identical content was already catalogued.
	Duplicate bool
	// Replaced is set when the file's name matched an entry with different content.
	Replaced bool
}
