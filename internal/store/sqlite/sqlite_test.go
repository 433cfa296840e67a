package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/errors"
)

func openTest(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()

	b, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, FileName)); os.IsNotExist(err) {
		t.Errorf("database file not created")
	}

	var journalMode string
	if err := b.DB().QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	version, err := GetUserVersion(b.DB())
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestOpen_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".folio")

	b1, err := Open(dir)
	require.NoError(t, err)
	_, err = b1.Create(context.Background(), "Skills", map[string]any{"name": "Go"})
	require.NoError(t, err)
	require.NoError(t, b1.Close())

	b2, err := Open(dir)
	require.NoError(t, err)
	defer b2.Close()

	rows, err := b2.List(context.Background(), "Skills")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCRUD(t *testing.T) {
	b := openTest(t)
	ctx := context.Background()

	rec, err := b.Create(ctx, "Projects", map[string]any{
		"title":        "Ledger",
		"technologies": "Go,Postgres",
		"featured":     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "rec", rec.ID[:3])

	_, err = b.Create(ctx, "Journal", map[string]any{"title": "elsewhere"})
	require.NoError(t, err)

	rows, err := b.List(ctx, "Projects")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ledger", rows[0].Fields["title"])
	assert.Equal(t, true, rows[0].Fields["featured"])

	updated, err := b.Update(ctx, "Projects", rec.ID, map[string]any{"title": "Ledger v2"})
	require.NoError(t, err)
	assert.Equal(t, "Ledger v2", updated.Fields["title"])
	assert.Equal(t, "Go,Postgres", updated.Fields["technologies"])

	require.NoError(t, b.Delete(ctx, "Projects", rec.ID))
	rows, err = b.List(ctx, "Projects")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdateDelete_NotFound(t *testing.T) {
	b := openTest(t)
	ctx := context.Background()

	_, err := b.Update(ctx, "Skills", "recNope", map[string]any{"name": "x"})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.True(t, errors.Is(b.Delete(ctx, "Skills", "recNope"), errors.ErrNotFound))
}

func TestList_WrongTableDoesNotLeak(t *testing.T) {
	b := openTest(t)
	ctx := context.Background()

	rec, err := b.Create(ctx, "About", map[string]any{"title": "Me"})
	require.NoError(t, err)

	_, err = b.Update(ctx, "Contact", rec.ID, map[string]any{"title": "x"})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
