// Package sqlite is a file-backed tabular store. Rows of every table share one
// records table; field values are kept as a JSON object.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/store"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// FileName is the database file created under the base directory.
const FileName = "folio.db"

// Backend stores records in SQLite.
type Backend struct {
	db *sql.DB
}

// Open initializes the database at baseDir/folio.db.
// The baseDir parameter allows tests to use t.TempDir().
func Open(baseDir string) (*Backend, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return &Backend{db: db}, nil
}

// Close releases the database handle.
func (b *Backend) Close() error {
	return b.db.Close()
}

// DB exposes the handle for tests and maintenance commands.
func (b *Backend) DB() *sql.DB {
	return b.db
}

// List returns rows of table in creation order.
func (b *Backend) List(ctx context.Context, table string) ([]store.Record, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, fields_json FROM records
		WHERE table_name = ?
		ORDER BY created_at ASC, id ASC
	`, table)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []store.Record{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, errors.NewInternal(err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, store.Record{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// Create inserts a row with a fresh "rec" id.
func (b *Backend) Create(ctx context.Context, table string, fields map[string]any) (store.Record, error) {
	raw, err := encodeFields(fields)
	if err != nil {
		return store.Record{}, err
	}

	id := store.NewRecordID()
	now := time.Now().UnixNano()
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO records (id, table_name, fields_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, table, raw, now, now)
	if err != nil {
		return store.Record{}, errors.NewInternal(err)
	}

	stored, err := decodeFields(raw)
	if err != nil {
		return store.Record{}, err
	}
	return store.Record{ID: id, Fields: stored}, nil
}

// Update merges fields into row id inside a transaction.
func (b *Backend) Update(ctx context.Context, table, id string, fields map[string]any) (store.Record, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Record{}, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT fields_json FROM records WHERE table_name = ? AND id = ?`, table, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return store.Record{}, errors.NewNotFound("record", id)
	}
	if err != nil {
		return store.Record{}, errors.NewInternal(err)
	}

	current, err := decodeFields(raw)
	if err != nil {
		return store.Record{}, err
	}
	for k, v := range fields {
		current[k] = v
	}
	merged, err := encodeFields(current)
	if err != nil {
		return store.Record{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET fields_json = ?, updated_at = ? WHERE table_name = ? AND id = ?`,
		merged, time.Now().UnixNano(), table, id,
	); err != nil {
		return store.Record{}, errors.NewInternal(err)
	}
	if err := tx.Commit(); err != nil {
		return store.Record{}, errors.NewInternal(err)
	}
	return store.Record{ID: id, Fields: current}, nil
}

// Delete removes row id.
func (b *Backend) Delete(ctx context.Context, table, id string) error {
	res, err := b.db.ExecContext(ctx, `DELETE FROM records WHERE table_name = ? AND id = ?`, table, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("record", id)
	}
	return nil
}

func encodeFields(fields map[string]any) (string, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("fields are not serializable: %v", err))
	}
	return string(data), nil
}

func decodeFields(raw string) (map[string]any, error) {
	fields := map[string]any{}
	if raw == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("corrupt fields_json: %w", err))
	}
	return fields, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: records table
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS records (
		  id          TEXT PRIMARY KEY,
		  table_name  TEXT NOT NULL,
		  fields_json TEXT NOT NULL,
		  created_at  INTEGER NOT NULL,
		  updated_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_table_created
		ON records(table_name, created_at);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
