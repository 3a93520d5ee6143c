package library

import (
	"database/sql"
	"encoding/json"
	"time"
)

const entryColumns = "id, name, title, source_path, format, content_hash, speakers_json, phrase_count, total_ms, created_at, updated_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry        Entry
		speakersJSON sql.NullString
		totalMS      int64
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.Name,
		&entry.Title,
		&entry.SourcePath,
		&entry.Format,
		&entry.ContentHash,
		&speakersJSON,
		&entry.PhraseCount,
		&totalMS,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	if speakersJSON.Valid && speakersJSON.String != "" {
		if err := json.Unmarshal([]byte(speakersJSON.String), &entry.Speakers); err != nil {
			return nil, err
		}
	}
	entry.Total = time.Duration(totalMS) * time.Millisecond
	entry.CreatedAt = parseTimestamp(createdRaw)
	entry.UpdatedAt = parseTimestamp(updatedRaw)
	return &entry, nil
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
