package facade

import (
	"context"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/feed"
	"github.com/hpungsan/folio/internal/normalize"
)

// FeedSource serves projects and journal posts from a syndication feed,
// routed by tag, and delegates every other content type.
type FeedSource struct {
	Source

	feed        *feed.Client
	url         string
	journalTags []string
	projectTags []string
}

// NewFeedSource builds a FeedSource. rest serves skills, CV and singletons.
func NewFeedSource(client *feed.Client, url string, journalTags, projectTags []string, rest Source) *FeedSource {
	return &FeedSource{
		Source:      rest,
		feed:        client,
		url:         url,
		journalTags: journalTags,
		projectTags: projectTags,
	}
}

func (s *FeedSource) Projects(ctx context.Context) []content.Project {
	_, projects := normalize.Partition(s.feed.FetchFeed(ctx, s.url), s.journalTags, s.projectTags)
	return normalize.ProjectsFromFeed(projects)
}

func (s *FeedSource) JournalPosts(ctx context.Context) []content.JournalPost {
	journal, _ := normalize.Partition(s.feed.FetchFeed(ctx, s.url), s.journalTags, s.projectTags)
	return normalize.JournalPostsFromFeed(journal)
}
