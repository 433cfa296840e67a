package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/errors"
)

func TestBackend_CRUD(t *testing.T) {
	b := New()
	ctx := context.Background()

	first, err := b.Create(ctx, "Skills", map[string]any{"name": "Go"})
	require.NoError(t, err)
	second, err := b.Create(ctx, "Skills", map[string]any{"name": "Rust"})
	require.NoError(t, err)

	rows, err := b.List(ctx, "Skills")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.Equal(t, second.ID, rows[1].ID)

	updated, err := b.Update(ctx, "Skills", first.ID, map[string]any{"category": "Web3 & Development"})
	require.NoError(t, err)
	assert.Equal(t, "Go", updated.Fields["name"])
	assert.Equal(t, "Web3 & Development", updated.Fields["category"])

	require.NoError(t, b.Delete(ctx, "Skills", first.ID))
	rows, _ = b.List(ctx, "Skills")
	require.Len(t, rows, 1)
	assert.Equal(t, second.ID, rows[0].ID)
}

func TestBackend_UnknownTableIsEmpty(t *testing.T) {
	rows, err := New().List(context.Background(), "Nope")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestBackend_NotFound(t *testing.T) {
	b := New()
	ctx := context.Background()

	_, err := b.Update(ctx, "Skills", "recMissing", map[string]any{})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.True(t, errors.Is(b.Delete(ctx, "Skills", "recMissing"), errors.ErrNotFound))
}

func TestBackend_ReturnsCopies(t *testing.T) {
	b := New()
	ctx := context.Background()
	rec, _ := b.Create(ctx, "About", map[string]any{"title": "Hi"})
	rec.Fields["title"] = "mutated"

	rows, _ := b.List(ctx, "About")
	assert.Equal(t, "Hi", rows[0].Fields["title"])
}
