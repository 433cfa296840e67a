// Package facade is the single read surface for page renderers. A Source is
// chosen once at startup; every getter is fail-soft, so callers render
// whatever comes back without error handling.
package facade

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/folio/internal/content"
)

// Source yields normalized content. Lists are never nil and singletons are
// always fully populated.
type Source interface {
	Projects(ctx context.Context) []content.Project
	JournalPosts(ctx context.Context) []content.JournalPost
	Skills(ctx context.Context) []content.Skill
	GroupedSkills(ctx context.Context) []content.SkillCategory
	CVExperience(ctx context.Context) []content.CVItem
	CVEducation(ctx context.Context) []content.CVItem
	SiteSettings(ctx context.Context) content.SiteSettings
	AboutContent(ctx context.Context) content.AboutContent
	ContactContent(ctx context.Context) content.ContactContent
}

// ProjectBySlug finds a project by slug.
func ProjectBySlug(ctx context.Context, src Source, slug string) (content.Project, bool) {
	for _, p := range src.Projects(ctx) {
		if p.Slug == slug {
			return p, true
		}
	}
	return content.Project{}, false
}

// FeaturedProjects returns featured projects, or the first n projects when
// none are flagged.
func FeaturedProjects(projects []content.Project, n int) []content.Project {
	out := []content.Project{}
	for _, p := range projects {
		if p.Featured {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, projects[:min(n, len(projects))]...)
	}
	return out
}

// HomePage is everything the home page renders.
type HomePage struct {
	Settings content.SiteSettings
	About    content.AboutContent
	Projects []content.Project
	Journal  []content.JournalPost
	Skills   []content.SkillCategory
	Contact  content.ContactContent
}

// Home fetches the six home-page sections concurrently. The getters are
// independent and cannot fail, so the group never returns an error.
func Home(ctx context.Context, src Source) HomePage {
	var h HomePage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { h.Settings = src.SiteSettings(gctx); return nil })
	g.Go(func() error { h.About = src.AboutContent(gctx); return nil })
	g.Go(func() error { h.Projects = src.Projects(gctx); return nil })
	g.Go(func() error { h.Journal = src.JournalPosts(gctx); return nil })
	g.Go(func() error { h.Skills = src.GroupedSkills(gctx); return nil })
	g.Go(func() error { h.Contact = src.ContactContent(gctx); return nil })
	_ = g.Wait()
	return h
}
