package facade

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/logging"
)

const sampleYAML = `
siteSettings:
  siteTitle: IO Studio
  hero:
    headline: Inioluwa Oladipupo
  footer:
    socialLinks:
      - name: Email
        href: mailto:hi@example.com
about:
  headline: About Me
  fullText:
    - First.
    - Second.
projects:
  - slug: lagos-library
    title: Lagos Library
    category: architecture
    technologies: [Revit, AutoCAD]
  - title: No Slug Here
journal:
  - title: Notes
skills:
  - name: Solidity
    category: Web3 & Development
  - name: Bread
    category: Baking
experience:
  - date: 2023 - Present
    title: Founder
    subtitle: IO Studio
`

func writeYAML(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestStaticSource_LoadsAndDefaults(t *testing.T) {
	src, err := NewStaticSource(writeYAML(t, t.TempDir(), sampleYAML), logging.Discard())
	require.NoError(t, err)
	ctx := context.Background()

	projects := src.Projects(ctx)
	require.Len(t, projects, 2)
	assert.Equal(t, content.ProjectArchitecture, projects[0].Category)
	assert.Equal(t, "lagos-library", projects[0].ID)
	assert.Equal(t, "no-slug-here", projects[1].Slug)
	assert.Equal(t, content.DefaultProjectCategory, projects[1].Category)
	assert.Equal(t, "N/A", projects[1].Role)
	assert.Equal(t, []string{}, projects[1].Technologies)

	journal := src.JournalPosts(ctx)
	require.Len(t, journal, 1)
	assert.Equal(t, "General", journal[0].Category)
	assert.Equal(t, "#", journal[0].Link)

	groups := src.GroupedSkills(ctx)
	require.Len(t, groups, 2)
	assert.Equal(t, "Web3 & Development", groups[0].Category)
	assert.Equal(t, "Baking", groups[1].Category)

	assert.Len(t, src.CVExperience(ctx), 1)
	assert.NotNil(t, src.CVEducation(ctx))
	assert.Equal(t, "IO Studio", src.SiteSettings(ctx).SiteTitle)
	assert.Equal(t, []string{"First.", "Second."}, src.AboutContent(ctx).FullText)
	assert.NotNil(t, src.AboutContent(ctx).Highlights)
	assert.Equal(t, content.DefaultContactContent(), src.ContactContent(ctx))
}

func TestStaticSource_InvalidFile(t *testing.T) {
	_, err := NewStaticSource(writeYAML(t, t.TempDir(), "projects: [unclosed"), logging.Discard())
	assert.Error(t, err)

	_, err = NewStaticSource(filepath.Join(t.TempDir(), "missing.yaml"), logging.Discard())
	assert.Error(t, err)
}

func TestStaticSource_ReloadKeepsLastGood(t *testing.T) {
	path := writeYAML(t, t.TempDir(), sampleYAML)
	src, err := NewStaticSource(path, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("projects: [unclosed"), 0o600))
	assert.Error(t, src.Reload())
	assert.Len(t, src.Projects(context.Background()), 2)
}

func TestStaticSource_WatchReflectsEdits(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, sampleYAML)
	src, err := NewStaticSource(path, logging.Discard())
	require.NoError(t, err)
	var reloads atomic.Int32
	src.OnReload(func() { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register before editing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("siteSettings:\n  siteTitle: Renamed\n"), 0o600))

	assert.Eventually(t, func() bool {
		return src.SiteSettings(context.Background()).SiteTitle == "Renamed"
	}, 3*time.Second, 25*time.Millisecond)
	assert.Empty(t, src.Projects(context.Background()))
	assert.Eventually(t, func() bool { return reloads.Load() > 0 }, time.Second, 10*time.Millisecond)
}

func TestOpen_StaticMissingFileServesDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StaticFile = "nope.yaml"

	rt, err := Open(context.Background(), cfg, t.TempDir(), logging.Discard())
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.Static)
	assert.False(t, rt.Store.Configured())
	assert.Empty(t, rt.Source.Projects(context.Background()))
	assert.Equal(t, content.DefaultContactContent(), rt.Source.ContactContent(context.Background()))
}

func TestOpen_SQLite(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendSQLite
	base := t.TempDir()

	rt, err := Open(context.Background(), cfg, base, logging.Discard())
	require.NoError(t, err)
	defer rt.Close()

	assert.True(t, rt.Store.Configured())
	_, err = os.Stat(filepath.Join(base, "folio.db"))
	assert.NoError(t, err)
}

func TestOpen_AirtableWithoutCredentialsIsEmpty(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendAirtable

	rt, err := Open(context.Background(), cfg, t.TempDir(), logging.Discard())
	require.NoError(t, err)
	assert.False(t, rt.Store.Configured())
	assert.Empty(t, rt.Source.Projects(context.Background()))
}

func TestOpen_FeedWrapsFallback(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendFeed
	cfg.FeedURL = "https://your-substack-url.com/feed"
	dir := t.TempDir()
	writeYAML(t, dir, sampleYAML)

	rt, err := Open(context.Background(), cfg, dir, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, rt.Feed)

	_, isFeed := rt.Source.(*FeedSource)
	assert.True(t, isFeed)
	assert.Empty(t, rt.Source.Projects(context.Background()))
	assert.Equal(t, "IO Studio", rt.Source.SiteSettings(context.Background()).SiteTitle)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/base", "content.yaml"), ResolvePath("/base", "content.yaml"))
	assert.Equal(t, "/abs/c.yaml", ResolvePath("/base", "/abs/c.yaml"))
	assert.Equal(t, "", ResolvePath("/base", ""))
}
