// Package feed fetches and parses the syndication feed that journal posts and
// feed-sourced projects are derived from. Every failure is absorbed: callers
// get an empty list, never an error.
package feed

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/httpx"
	"github.com/hpungsan/folio/internal/logging"
)

// DefaultTTL is how long a successful fetch is served from memory.
const DefaultTTL = 5 * time.Minute

const (
	untitled    = "Untitled Post"
	defaultLink = "#"
)

// Item is one parsed feed entry.
type Item struct {
	Title          string     `json:"title"`
	Link           string     `json:"link"`
	PubDate        *time.Time `json:"pubDate,omitempty"`
	Content        string     `json:"content,omitempty"`
	ContentSnippet string     `json:"contentSnippet,omitempty"`
	Categories     []string   `json:"categories"`
}

// Fetcher retrieves the raw feed document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches over HTTP with retries.
type HTTPFetcher struct {
	Client *http.Client
	Retry  httpx.RetryConfig
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
		req.Header.Set("User-Agent", "folio-feed/1")
		return req, nil
	}
	_, body, err := httpx.DoWithRetry(ctx, f.Client, build, f.Retry)
	return body, err
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	Fetcher Fetcher
	Now     func() time.Time
	TTL     time.Duration
	Logger  logrus.FieldLogger
}

// Client fetches feeds through a single-slot TTL cache. Concurrent refills
// of the same URL share one network call.
type Client struct {
	fetcher Fetcher
	cache   *cache
	group   singleflight.Group
	log     *logrus.Entry
}

// New builds a Client.
func New(opts Options) *Client {
	if opts.Fetcher == nil {
		opts.Fetcher = &HTTPFetcher{Retry: httpx.DefaultRetryConfig()}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Client{
		fetcher: opts.Fetcher,
		cache:   &cache{now: opts.Now, ttl: opts.TTL},
		log:     logging.Component(opts.Logger, "feed"),
	}
}

// FetchFeed returns the items of the feed at url. The returned slice is
// shared with the cache and must not be modified.
//
// The cache holds one feed, whichever was fetched last; it is not keyed by
// url.
func (c *Client) FetchFeed(ctx context.Context, url string) []Item {
	if !Configured(url) {
		c.log.WithField("url", url).Warn("feed url is empty or a placeholder; skipping feed fetch")
		return []Item{}
	}

	if items, ok := c.cache.get(); ok {
		return items
	}

	v, err, _ := c.group.Do(url, func() (any, error) {
		if items, ok := c.cache.get(); ok {
			return items, nil
		}
		// Shared by every waiter, so one caller going away must not fail the rest.
		raw, err := c.fetcher.Fetch(context.WithoutCancel(ctx), url)
		if err != nil {
			return nil, err
		}
		items, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		c.cache.put(items)
		return items, nil
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{"url": url, "error": err}).Error("failed to fetch or parse feed")
		return []Item{}
	}
	return v.([]Item)
}

// Reset drops the cached feed.
func (c *Client) Reset() {
	c.cache.clear()
}

// Configured reports whether url is usable: non-empty and not the
// placeholder shipped in example configuration.
func Configured(url string) bool {
	url = strings.TrimSpace(url)
	return url != "" && !strings.Contains(url, config.PlaceholderFeedHost)
}

// Parse decodes an RSS or Atom document.
func Parse(raw []byte) ([]Item, error) {
	doc, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(doc.Items))
	for _, it := range doc.Items {
		items = append(items, fromGofeed(it))
	}
	return items, nil
}

func fromGofeed(it *gofeed.Item) Item {
	title := strings.TrimSpace(it.Title)
	if title == "" {
		title = untitled
	}
	link := strings.TrimSpace(it.Link)
	if link == "" {
		link = defaultLink
	}

	body := it.Content
	if strings.TrimSpace(body) == "" {
		body = it.Description
	}
	var categories any = it.Categories
	if len(it.Categories) == 0 {
		if custom, ok := it.Custom["category"]; ok {
			categories = custom
		}
	}

	return Item{
		Title:          title,
		Link:           link,
		PubDate:        pubDate(it),
		Content:        PlainText(body),
		ContentSnippet: Snippet(body),
		Categories:     NormalizeCategories(categories),
	}
}

func pubDate(it *gofeed.Item) *time.Time {
	if it.PublishedParsed != nil {
		return it.PublishedParsed
	}
	return it.UpdatedParsed
}

// NormalizeCategories turns a scalar-or-list category value into a list of
// non-blank strings. Absent input yields an empty list.
func NormalizeCategories(v any) []string {
	out := []string{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	switch c := v.(type) {
	case nil:
	case string:
		add(c)
	case []string:
		for _, s := range c {
			add(s)
		}
	case []any:
		for _, x := range c {
			if s, ok := x.(string); ok {
				add(s)
			}
		}
	}
	return out
}

type cache struct {
	mu        sync.Mutex
	now       func() time.Time
	ttl       time.Duration
	items     []Item
	fetchedAt time.Time
}

func (c *cache) get() ([]Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.items, true
}

func (c *cache) put(items []Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.fetchedAt = c.now()
}

func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}
