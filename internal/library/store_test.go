package library_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"phrasesync/internal/library"
	"phrasesync/internal/script"
	"phrasesync/internal/services"
	"phrasesync/internal/testsupport"
)

func TestAddRecordsScriptSummary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	path := testsupport.WriteScript(t, cfg.Paths.ScriptDir, "Small_Talk.json", testsupport.ConversationJSON)

	ctx := context.Background()
	result, err := store.Add(ctx, path)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if result.Duplicate || result.Replaced {
		t.Fatalf("unexpected flags on first add: %+v", result)
	}
	entry := result.Entry
	if entry.ID == 0 || entry.Name != "small_talk" || entry.Title != "Small Talk" {
		t.Fatalf("unexpected identity: %+v", entry)
	}
	if entry.Format != "json" || entry.SourcePath != path || len(entry.ContentHash) != 64 {
		t.Fatalf("unexpected file details: %+v", entry)
	}
	if !slices.Equal(entry.Speakers, []string{"John", "Jane"}) || entry.PhraseCount != 4 {
		t.Fatalf("unexpected script summary: %+v", entry)
	}
	if entry.Total != 5200*time.Millisecond {
		t.Fatalf("expected total 5.2s, got %v", entry.Total)
	}
	if entry.CreatedAt.IsZero() || entry.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps, got %+v", entry)
	}
}

func TestAddDeduplicatesByContent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	ctx := context.Background()

	first := testsupport.WriteScript(t, cfg.Paths.ScriptDir, "one.json", testsupport.ConversationJSON)
	second := testsupport.WriteScript(t, t.TempDir(), "two.json", testsupport.ConversationJSON)

	original, err := store.Add(ctx, first)
	if err != nil {
		t.Fatalf("Add first: %v", err)
	}
	dup, err := store.Add(ctx, second)
	if err != nil {
		t.Fatalf("Add second: %v", err)
	}
	if !dup.Duplicate || dup.Entry.ID != original.Entry.ID {
		t.Fatalf("expected duplicate of %d, got %+v", original.Entry.ID, dup)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
}

func TestAddReplacesChangedContentUnderSameName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	ctx := context.Background()

	path := testsupport.WriteScript(t, cfg.Paths.ScriptDir, "lesson.json", testsupport.ConversationJSON)
	first, err := store.Add(ctx, path)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	updated := script.Script{
		Pause:    100 * time.Millisecond,
		Speakers: []script.Speaker{{Name: "Solo", Phrases: []script.Phrase{{Text: "Only line.", Spoken: 900 * time.Millisecond}}}},
	}
	testsupport.WriteEncodedScript(t, cfg.Paths.ScriptDir, "lesson.json", updated)
	second, err := store.Add(ctx, path)
	if err != nil {
		t.Fatalf("re-Add: %v", err)
	}
	if !second.Replaced || second.Entry.ID != first.Entry.ID {
		t.Fatalf("expected replacement of %d, got %+v", first.Entry.ID, second)
	}
	if second.Entry.PhraseCount != 1 || second.Entry.Total != time.Second || second.Entry.ContentHash == first.Entry.ContentHash {
		t.Fatalf("entry not refreshed: %+v", second.Entry)
	}
}

func TestAddRejectsInvalidFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	ctx := context.Background()

	if _, err := store.Add(ctx, filepath.Join(cfg.Paths.ScriptDir, "missing.json")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	bad := testsupport.WriteScript(t, cfg.Paths.ScriptDir, "bad.yaml", "pause: [")
	if _, err := store.Add(ctx, bad); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	txt := testsupport.WriteScript(t, cfg.Paths.ScriptDir, "notes.txt", "hello")
	if _, err := store.Add(ctx, txt); !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestResolveAndLookup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	ctx := context.Background()

	path := testsupport.WriteScript(t, cfg.Paths.ScriptDir, "greeting.json", testsupport.ConversationJSON)
	result, err := store.Add(ctx, path)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	for _, identifier := range []string{"greeting", " GREETING ", "1"} {
		got, ok, err := store.Lookup(ctx, identifier)
		if err != nil || !ok || got != path {
			t.Fatalf("Lookup(%q) = (%q, %v, %v)", identifier, got, ok, err)
		}
	}
	if _, ok, err := store.Lookup(ctx, "unknown"); ok || err != nil {
		t.Fatalf("expected unknown identifier to miss, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.Lookup(ctx, "42"); ok || err != nil {
		t.Fatalf("expected unknown id to miss, got ok=%v err=%v", ok, err)
	}

	resolver := &script.Resolver{Catalog: store}
	resolved, err := resolver.Resolve(ctx, "1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Source != script.SourceLibrary || resolved.Script.PhraseCount() != result.Entry.PhraseCount {
		t.Fatalf("unexpected resolution %+v", resolved)
	}
}

func TestRemove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	ctx := context.Background()

	path := testsupport.WriteScript(t, cfg.Paths.ScriptDir, "bye.json", testsupport.ConversationJSON)
	result, err := store.Add(ctx, path)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Remove(ctx, result.Entry.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("script file should be left in place: %v", err)
	}
	if _, err := store.Get(ctx, result.Entry.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
	if err := store.Remove(ctx, result.Entry.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found on second remove, got %v", err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	path := testsupport.WriteScript(t, cfg.Paths.ScriptDir, "keep.json", testsupport.ConversationJSON)
	if _, err := store.Add(context.Background(), path); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenLibrary(t, cfg)
	entry, err := reopened.FindByName(context.Background(), "keep")
	if err != nil || entry == nil {
		t.Fatalf("expected entry after reopen, got %v, %v", entry, err)
	}
	if reopened.Path() != cfg.LibraryPath() {
		t.Fatalf("unexpected db path %q", reopened.Path())
	}
}

func TestOpenRecordsLibraryVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := libraryVersion(t, cfg.LibraryPath()); got != 1 {
		t.Fatalf("user_version = %d, want 1", got)
	}
}

func TestOpenRejectsNewerLibrary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.LibraryPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 7"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := library.Open(cfg); !errors.Is(err, library.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func libraryVersion(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	return version
}

func TestContentHashIsStable(t *testing.T) {
	a, err := library.ContentHash(strings.NewReader("phrase"))
	if err != nil {
		t.Fatalf("ContentHash: %v", err)
	}
	b, _ := library.ContentHash(strings.NewReader("phrase"))
	c, _ := library.ContentHash(strings.NewReader("phrases"))
	if a != b || a == c || len(a) != 64 {
		t.Fatalf("unexpected hashes %q %q %q", a, b, c)
	}
}
