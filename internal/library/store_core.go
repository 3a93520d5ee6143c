package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"phrasesync/internal/config"
)

// Store is the script catalog kept in library.db under paths.state_dir.
type Store struct {
	db   *sql.DB
	path string
}

// connPragmas run on every pooled connection via the DSN.
var connPragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"journal_mode(wal)",
}

// busyBackoff is the pause before each retry of a write that still saw
// SQLITE_BUSY once busy_timeout expired. The daemon and CLI share the file.
var busyBackoff = []time.Duration{
	10 * time.Millisecond,
	40 * time.Millisecond,
	160 * time.Millisecond,
}

const sqliteBusy = 5

// Open opens the catalog at cfg.LibraryPath(), creating the state directory
// and migrating the schema when needed.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	path := cfg.LibraryPath()

	dsn := path + "?_pragma=" + strings.Join(connPragmas, "&_pragma=")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open library %s: %w", path, err)
	}
	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// exec runs a write statement, retrying on lock contention.
func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ctxOrBackground(ctx)
	for attempt := 0; ; attempt++ {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err == nil || !isBusy(err) || attempt == len(busyBackoff) {
			return res, err
		}
		timer := time.NewTimer(busyBackoff[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func isBusy(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		// Extended result codes keep the primary code in the low byte.
		return coded.Code()&0xff == sqliteBusy
	}
	return strings.Contains(err.Error(), "database is locked")
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
