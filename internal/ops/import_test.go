package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/logging"
	"github.com/hpungsan/folio/internal/store"
)

const seedYAML = `
siteSettings:
  siteTitle: IO Studio
  footer:
    socialLinks:
      - name: Github
        href: https://github.com/io
contact:
  ctaLine: Say hello.
projects:
  - slug: pavilion
    title: Timber Pavilion
    category: architecture
    description: A pavilion.
    imageRef: project-1
    role: Lead
    duration: 6 months
    technologies: [Rhino, Grasshopper]
    overview: Overview.
    process: Process.
    outcomes: Outcomes.
journal:
  - title: Untagged
    description: No category.
    imageRef: journal-1
skills:
  - name: Go
    category: Web3 & Development
experience:
  - date: "2020"
    title: Architect
    subtitle: Studio
    description: Buildings.
`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0600))
	return path
}

func TestImport_AppendReportsBadEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.Import(ctx, ImportInput{Path: writeSeed(t)})
	require.NoError(t, err)

	// settings, contact, project, skill, experience; about has nothing to write.
	assert.Equal(t, 5, out.Imported)
	assert.Equal(t, 1, out.Skipped)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, content.TableJournal, out.Errors[0].Table)
	assert.Equal(t, "Untagged", out.Errors[0].Label)
	assert.Contains(t, out.Errors[0].FieldErrors, "category")

	assert.Equal(t, "IO Studio", f.src.SiteSettings(ctx).SiteTitle)
	require.Len(t, f.src.Projects(ctx), 1)
	assert.Equal(t, content.ProjectArchitecture, f.src.Projects(ctx)[0].Category)
	assert.Equal(t, "Say hello.", f.src.ContactContent(ctx).CTALine)
}

func TestImport_ReplaceClearsLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := writeSeed(t)

	_, err := f.svc.Import(ctx, ImportInput{Path: path})
	require.NoError(t, err)
	out, err := f.svc.Import(ctx, ImportInput{Path: path, Mode: ImportModeReplace})
	require.NoError(t, err)

	assert.Equal(t, 3, out.Deleted)
	assert.Len(t, f.src.Projects(ctx), 1)
	assert.Len(t, f.src.Skills(ctx), 1)
	assert.Contains(t, f.inval.paths, PathAll)
}

func TestImport_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, ImportInput{Path: writeSeed(t), Mode: "merge"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = f.svc.Import(ctx, ImportInput{Path: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("projects: {"), 0600))
	_, err = f.svc.Import(ctx, ImportInput{Path: bad})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	svc := NewService(Options{Store: store.NewClient(nil, logging.Discard())})
	_, err = svc.Import(ctx, ImportInput{Path: writeSeed(t)})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
