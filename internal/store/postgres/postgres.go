// Package postgres is a Postgres backend for the tabular store. Rows of every
// table share one folio_records table with a JSONB fields column.
package postgres

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/logging"
	"github.com/hpungsan/folio/internal/store"
)

// Backend stores records in Postgres.
type Backend struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for dsn and runs migrations.
func Connect(ctx context.Context, dsn string, logger logrus.FieldLogger) (*Backend, error) {
	if dsn == "" {
		return nil, errors.NewInvalidRequest("postgres dsn is required")
	}
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := RunMigrations(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return &Backend{pool: pool}, nil
}

// Close releases the pool.
func (b *Backend) Close() {
	b.pool.Close()
}

// List returns rows of table in creation order.
func (b *Backend) List(ctx context.Context, table string) ([]store.Record, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT id, fields FROM folio_records
		WHERE table_name = $1
		ORDER BY created_at ASC, id ASC`, table)
	if err != nil {
		return nil, errors.NewUpstream("postgres", err)
	}
	defer rows.Close()

	out := []store.Record{}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, errors.NewUpstream("postgres", err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, store.Record{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewUpstream("postgres", err)
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

	var stored []byte
	err = b.pool.QueryRow(ctx, `
		INSERT INTO folio_records (id, table_name, fields)
		VALUES ($1, $2, $3::jsonb)
		RETURNING fields`, id, table, raw).Scan(&stored)
	if err != nil {
		return store.Record{}, errors.NewUpstream("postgres", err)
	}
	out, err := decodeFields(stored)
	if err != nil {
		return store.Record{}, err
	}
	return store.Record{ID: id, Fields: out}, nil
}

// Update merges fields into row id with the jsonb concatenation operator.
func (b *Backend) Update(ctx context.Context, table, id string, fields map[string]any) (store.Record, error) {
	raw, err := encodeFields(fields)
	if err != nil {
		return store.Record{}, err
	}

	var stored []byte
	err = b.pool.QueryRow(ctx, `
		UPDATE folio_records
		SET fields = fields || $3::jsonb, updated_at = now()
		WHERE table_name = $1 AND id = $2
		RETURNING fields`, table, id, raw).Scan(&stored)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return store.Record{}, errors.NewNotFound("record", id)
	}
	if err != nil {
		return store.Record{}, errors.NewUpstream("postgres", err)
	}
	out, err := decodeFields(stored)
	if err != nil {
		return store.Record{}, err
	}
	return store.Record{ID: id, Fields: out}, nil
}

// Delete removes row id.
func (b *Backend) Delete(ctx context.Context, table, id string) error {
	tag, err := b.pool.Exec(ctx, `DELETE FROM folio_records WHERE table_name = $1 AND id = $2`, table, id)
	if err != nil {
		return errors.NewUpstream("postgres", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFound("record", id)
	}
	return nil
}

// Migration is one idempotent schema step.
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// Migrations lists schema steps in order.
var Migrations = []Migration{
	{Name: "create_folio_records", Up: createRecordsTable},
	{Name: "index_folio_records_table", Up: indexRecordsTable},
}

// RunMigrations applies every migration; each is safe to re-run.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger logrus.FieldLogger) error {
	log := logging.Component(logger, "postgres")
	for _, m := range Migrations {
		if err := m.Up(ctx, pool); err != nil {
			log.WithFields(logrus.Fields{"name": m.Name, "error": err}).Error("migration failed")
			return fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		log.WithField("name", m.Name).Debug("migration applied")
	}
	return nil
}

func createRecordsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS folio_records (
			id         TEXT PRIMARY KEY,
			table_name TEXT NOT NULL,
			fields     JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func indexRecordsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_folio_records_table_created
		ON folio_records (table_name, created_at)`)
	return err
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

func decodeFields(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("corrupt fields: %w", err))
	}
	return fields, nil
}
