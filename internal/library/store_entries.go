package library

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"phrasesync/internal/script"
	"phrasesync/internal/services"
	"phrasesync/internal/timeline"
)

var _ script.Lookup = (*Store)(nil)

// Add catalogues the script at path. The file must parse; identical content
// already in the catalog is returned as a duplicate.
func (s *Store) Add(ctx context.Context, path string) (*AddResult, error) {
	ctx = ctxOrBackground(ctx)
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	format, err := script.FormatFromPath(absPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "library", "read script", absPath, err)
	}
	parsed, err := script.Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	hash, err := ContentHash(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	existing, err := s.findBy(ctx, "content_hash", hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &AddResult{Entry: existing, Duplicate: true}, nil
	}

	name := script.NameFromPath(absPath)
	speakersJSON, err := json.Marshal(parsed.SpeakerNames())
	if err != nil {
		return nil, fmt.Errorf("marshal speakers: %w", err)
	}
	total := timeline.Build(parsed).Total
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	named, err := s.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if named != nil {
		_, err := s.exec(ctx,
			`UPDATE scripts SET title = ?, source_path = ?, format = ?, content_hash = ?,
                speakers_json = ?, phrase_count = ?, total_ms = ?, updated_at = ?
             WHERE id = ?`,
			script.TitleFromPath(absPath), absPath, string(format), hash,
			string(speakersJSON), parsed.PhraseCount(), total.Milliseconds(), timestamp,
			named.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("update script: %w", err)
		}
		updated, err := s.Get(ctx, named.ID)
		if err != nil {
			return nil, err
		}
		return &AddResult{Entry: updated, Replaced: true}, nil
	}

	res, err := s.exec(ctx,
		`INSERT INTO scripts (
            name, title, source_path, format, content_hash,
            speakers_json, phrase_count, total_ms, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		name, script.TitleFromPath(absPath), absPath, string(format), hash,
		string(speakersJSON), parsed.PhraseCount(), total.Milliseconds(), timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert script: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AddResult{Entry: entry}, nil
}

// Get returns the entry with id, or services.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	entry, err := s.findBy(ctxOrBackground(ctx), "id", id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, services.Wrap(services.ErrNotFound, "library", "get", fmt.Sprintf("script %d", id), nil)
	}
	return entry, nil
}

// FindByName returns the entry with name, or nil when absent.
func (s *Store) FindByName(ctx context.Context, name string) (*Entry, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, nil
	}
	return s.findBy(ctxOrBackground(ctx), "name", name)
}

// List returns all entries ordered by name.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	ctx = ctxOrBackground(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT "+entryColumns+" FROM scripts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan script: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Remove deletes the entry with id. The script file is left untouched.
func (s *Store) Remove(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, "DELETE FROM scripts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("remove script: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "library", "remove", fmt.Sprintf("script %d", id), nil)
	}
	return nil
}

// Resolve finds an entry by numeric id or name. ok is false when neither matches.
func (s *Store) Resolve(ctx context.Context, identifier string) (*Entry, bool, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, false, nil
	}
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		entry, err := s.Get(ctx, id)
		if err == nil {
			return entry, true, nil
		}
		if !errors.Is(err, services.ErrNotFound) {
			return nil, false, err
		}
	}
	entry, err := s.FindByName(ctx, identifier)
	if err != nil || entry == nil {
		return nil, false, err
	}
	return entry, true, nil
}

// Lookup maps an identifier to the catalogued file path for script resolution.
func (s *Store) Lookup(ctx context.Context, identifier string) (string, bool, error) {
	entry, ok, err := s.Resolve(ctx, identifier)
	if err != nil || !ok {
		return "", false, err
	}
	return entry.SourcePath, true, nil
}

func (s *Store) findBy(ctx context.Context, column string, value any) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM scripts WHERE "+column+" = ?", value)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query script by %s: %w", column, err)
	}
	return entry, nil
}
