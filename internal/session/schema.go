package session

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// migrations[i] upgrades a catalog from version i to i+1. Append only.
var migrations = []string{
	schemaSQL,
}

// ErrSchemaMismatch indicates the catalog was written by a newer samplerank.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func currentSchemaVersion() int { return len(migrations) }

// initSchema brings the catalog up to the current version, one transaction per
// migration step.
func (s *Store) initSchema(ctx context.Context) error {
	version, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if version > currentSchemaVersion() {
		return fmt.Errorf("%w: catalog %s has version %d, this build supports %d (upgrade samplerank)",
			ErrSchemaMismatch, s.path, version, currentSchemaVersion())
	}
	for ; version < currentSchemaVersion(); version++ {
		if err := s.migrate(ctx, version); err != nil {
			return err
		}
	}
	return nil
}

// schemaVersion returns 0 for an empty catalog.
func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var tables int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tables); err != nil {
		return 0, fmt.Errorf("check schema_version table: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}
	var version sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

func (s *Store) migrate(ctx context.Context, from int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", from+1, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, migrations[from]); err != nil {
		return fmt.Errorf("apply migration %d: %w", from+1, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("clear schema version: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", from+1); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}
