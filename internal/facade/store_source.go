package facade

import (
	"context"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/normalize"
	"github.com/hpungsan/folio/internal/store"
)

// StoreSource reads every content type from the tabular store.
type StoreSource struct {
	client *store.Client
}

// NewStoreSource wraps client.
func NewStoreSource(client *store.Client) *StoreSource {
	return &StoreSource{client: client}
}

// Client is the store behind this source.
func (s *StoreSource) Client() *store.Client {
	return s.client
}

func (s *StoreSource) Projects(ctx context.Context) []content.Project {
	return normalize.Projects(s.client.ListRecords(ctx, content.TableProjects))
}

func (s *StoreSource) JournalPosts(ctx context.Context) []content.JournalPost {
	return normalize.JournalPosts(s.client.ListRecords(ctx, content.TableJournal))
}

func (s *StoreSource) Skills(ctx context.Context) []content.Skill {
	return normalize.Skills(s.client.ListRecords(ctx, content.TableSkills))
}

func (s *StoreSource) GroupedSkills(ctx context.Context) []content.SkillCategory {
	return normalize.GroupSkills(s.Skills(ctx))
}

func (s *StoreSource) CVExperience(ctx context.Context) []content.CVItem {
	return normalize.CVItems(s.client.ListRecords(ctx, content.TableCVExperience))
}

func (s *StoreSource) CVEducation(ctx context.Context) []content.CVItem {
	return normalize.CVItems(s.client.ListRecords(ctx, content.TableCVEducation))
}

func (s *StoreSource) SiteSettings(ctx context.Context) content.SiteSettings {
	return normalize.SiteSettings(s.client.ListRecords(ctx, content.TableSiteSettings))
}

func (s *StoreSource) AboutContent(ctx context.Context) content.AboutContent {
	return normalize.AboutContent(s.client.ListRecords(ctx, content.TableAbout))
}

func (s *StoreSource) ContactContent(ctx context.Context) content.ContactContent {
	return normalize.ContactContent(s.client.ListRecords(ctx, content.TableContact))
}
