package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/errors"
)

func TestParseKind(t *testing.T) {
	k, ok := ParseKind(" Projects ")
	assert.True(t, ok)
	assert.Equal(t, KindProjects, k)
	assert.False(t, k.Singleton())
	assert.True(t, KindAbout.Singleton())

	_, ok = ParseKind("gallery")
	assert.False(t, ok)
}

func TestList_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"Go", "Rust", "Solidity"} {
		require.True(t, f.svc.CreateSkill(ctx, map[string]any{"name": name, "category": "Web3 & Development"}).Success)
	}

	out, err := List(ctx, f.src, ListInput{Kind: KindSkills, Limit: 2})
	require.NoError(t, err)
	items := out.Items.([]content.Skill)
	assert.Len(t, items, 2)
	assert.Equal(t, Pagination{Limit: 2, Offset: 0, HasMore: true, Total: 3}, out.Pagination)

	out, err = List(ctx, f.src, ListInput{Kind: KindSkills, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, "Solidity", out.Items.([]content.Skill)[0].Name)
	assert.False(t, out.Pagination.HasMore)

	out, err = List(ctx, f.src, ListInput{Kind: KindSkills, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, DefaultListLimit, out.Pagination.Limit)
}

func TestList_RejectsSingletonKind(t *testing.T) {
	f := newFixture(t)
	_, err := List(context.Background(), f.src, ListInput{Kind: KindContact})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestGet_Singletons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := Get(ctx, f.src, KindContact)
	require.NoError(t, err)
	assert.Equal(t, content.DefaultContactContent(), v)

	_, err = Get(ctx, f.src, KindProjects)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestProjectBySlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.svc.CreateProject(ctx, validProject()).Success)

	p, err := ProjectBySlug(ctx, f.src, "x")
	require.NoError(t, err)
	assert.Equal(t, "X", p.Title)

	_, err = ProjectBySlug(ctx, f.src, "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = ProjectBySlug(ctx, f.src, " ")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
