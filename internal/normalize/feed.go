package normalize

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/feed"
)

const (
	descriptionLimit = 150
	noDescription    = "No description available."
	fallbackSlug     = "post"
	imageVariants    = 3
)

// ProjectFromFeed maps the index-th project item of a feed.
func ProjectFromFeed(it feed.Item, index int) content.Project {
	category := content.DefaultProjectCategory
	for _, tag := range it.Categories {
		if c, ok := content.ParseProjectCategory(tag); ok {
			category = c
			break
		}
	}

	return content.Project{
		ID:               it.Link,
		Slug:             SlugFromLink(it.Link),
		Title:            it.Title,
		Category:         category,
		Description:      describe(it.ContentSnippet),
		ImageRef:         imageRef("project", index),
		GalleryImageRefs: []string{},
		Link:             it.Link,
		Role:             NotAvailable,
		Duration:         NotAvailable,
		Technologies:     []string{},
		Content:          it.Content,
		Tags:             tags(it),
	}
}

// JournalPostFromFeed maps the index-th journal item of a feed. The first
// tag becomes the category.
func JournalPostFromFeed(it feed.Item, index int) content.JournalPost {
	t := tags(it)
	category := content.DefaultJournalCategory
	if len(t) > 0 {
		category = t[0]
	}

	return content.JournalPost{
		ID:          it.Link,
		Title:       it.Title,
		Category:    category,
		Description: describe(it.ContentSnippet),
		ImageRef:    imageRef("journal", index),
		Link:        it.Link,
		Tags:        t,
		PublishedAt: it.PubDate,
	}
}

// ProjectsFromFeed maps items in order.
func ProjectsFromFeed(items []feed.Item) []content.Project {
	out := make([]content.Project, 0, len(items))
	for i, it := range items {
		out = append(out, ProjectFromFeed(it, i))
	}
	return out
}

// JournalPostsFromFeed maps items in order.
func JournalPostsFromFeed(items []feed.Item) []content.JournalPost {
	out := make([]content.JournalPost, 0, len(items))
	for i, it := range items {
		out = append(out, JournalPostFromFeed(it, i))
	}
	return out
}

// SlugFromLink takes the last path segment of an absolute URL, or "post" when
// that segment is empty. Links that do not parse as absolute URLs get "post"
// plus a random suffix, so their slug changes on every fetch.
func SlugFromLink(link string) string {
	u, ok := absoluteURL(link)
	if !ok {
		return fallbackSlug + strconv.FormatUint(rand.Uint64N(1<<30), 36)
	}
	parts := strings.Split(u.Path, "/")
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return fallbackSlug
}

func absoluteURL(link string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

// Partition routes feed items by tag. An item lands in journal when one of
// its tags is a journal tag and in projects when one is a project tag,
// compared case-insensitively. Items matching neither are dropped; items
// matching both appear in both.
func Partition(items []feed.Item, journalTags, projectTags []string) (journal, projects []feed.Item) {
	fold := cases.Fold()
	jset := tagSet(fold, journalTags)
	pset := tagSet(fold, projectTags)

	journal, projects = []feed.Item{}, []feed.Item{}
	for _, it := range items {
		if matches(fold, it.Categories, jset) {
			journal = append(journal, it)
		}
		if matches(fold, it.Categories, pset) {
			projects = append(projects, it)
		}
	}
	return journal, projects
}

func tagSet(fold cases.Caser, tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			set[fold.String(t)] = true
		}
	}
	return set
}

func matches(fold cases.Caser, tags []string, set map[string]bool) bool {
	for _, t := range tags {
		if set[fold.String(strings.TrimSpace(t))] {
			return true
		}
	}
	return false
}

func describe(snippet string) string {
	if snippet == "" {
		return noDescription
	}
	r := []rune(snippet)
	if len(r) > descriptionLimit {
		r = r[:descriptionLimit]
	}
	return string(r) + "..."
}

func imageRef(prefix string, index int) string {
	return fmt.Sprintf("%s-%d", prefix, index%imageVariants+1)
}

func tags(it feed.Item) []string {
	if it.Categories == nil {
		return []string{}
	}
	return it.Categories
}
