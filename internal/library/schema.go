package library

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var baseSchema string

// migrations[i] upgrades a library at user_version i to i+1. Append only.
var migrations = []string{
	baseSchema,
}

// ErrSchemaMismatch reports a library written by a newer phrasesync.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// migrate brings the database up to len(migrations), tracking progress in
// PRAGMA user_version.
func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read library version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("%w: %s is at version %d, this build knows %d",
			ErrSchemaMismatch, s.path, version, len(migrations))
	}
	for next := version; next < len(migrations); next++ {
		if err := s.applyMigration(ctx, next); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, index int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", index+1, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, migrations[index]); err != nil {
		return fmt.Errorf("apply migration %d: %w", index+1, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", index+1)); err != nil {
		return fmt.Errorf("record library version %d: %w", index+1, err)
	}
	return tx.Commit()
}
