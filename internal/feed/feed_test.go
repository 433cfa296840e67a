package feed

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/httpx"
	"github.com/hpungsan/folio/internal/logging"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
  <title>IO Studio</title>
  <link>https://io.example.com</link>
  <item>
    <title>Designing with Timber</title>
    <link>https://io.example.com/p/designing-with-timber</link>
    <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
    <description>&lt;p&gt;Notes on   mass timber.&lt;/p&gt;</description>
    <content:encoded><![CDATA[<h2>Intro</h2><p>Mass timber is <b>light</b>.</p><script>alert(1)</script><p>Second para</p>]]></content:encoded>
    <category>Reflections</category>
    <category>Architecture</category>
  </item>
  <item>
    <title></title>
    <link></link>
    <description>plain</description>
  </item>
  <item>
    <title>Single tag</title>
    <link>https://io.example.com/p/single</link>
    <category>Experiments</category>
  </item>
</channel>
</rss>`

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingFetcher struct {
	calls atomic.Int32
	body  []byte
	err   error
	delay time.Duration
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.body, f.err
}

func newTestClient(f Fetcher, clock *fakeClock) *Client {
	return New(Options{Fetcher: f, Now: clock.Now, Logger: logging.Discard()})
}

func TestFetchFeed_PlaceholderOrEmptySkipsNetwork(t *testing.T) {
	f := &countingFetcher{body: []byte(sampleRSS)}
	c := newTestClient(f, &fakeClock{now: time.Unix(0, 0)})

	for _, url := range []string{"", "   ", "https://your-substack-url.com/feed"} {
		items := c.FetchFeed(context.Background(), url)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	}
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestFetchFeed_ParsesItems(t *testing.T) {
	f := &countingFetcher{body: []byte(sampleRSS)}
	c := newTestClient(f, &fakeClock{now: time.Unix(0, 0)})

	items := c.FetchFeed(context.Background(), "https://io.example.com/feed")
	require.Len(t, items, 3)

	first := items[0]
	assert.Equal(t, "Designing with Timber", first.Title)
	assert.Equal(t, "https://io.example.com/p/designing-with-timber", first.Link)
	require.NotNil(t, first.PubDate)
	assert.Equal(t, 2025, first.PubDate.Year())
	assert.Equal(t, "Intro\nMass timber is light.\nSecond para", first.Content)
	// The full body wins over the description for the snippet.
	assert.Equal(t, "Intro Mass timber is light. Second para", first.ContentSnippet)
	assert.Equal(t, []string{"Reflections", "Architecture"}, first.Categories)

	second := items[1]
	assert.Equal(t, "Untitled Post", second.Title)
	assert.Equal(t, "#", second.Link)
	assert.Equal(t, []string{}, second.Categories)
	assert.Nil(t, second.PubDate)
	assert.Equal(t, "plain", second.ContentSnippet)

	assert.Equal(t, []string{"Experiments"}, items[2].Categories)
}

func TestFetchFeed_CacheWithinTTL(t *testing.T) {
	f := &countingFetcher{body: []byte(sampleRSS)}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := newTestClient(f, clock)
	ctx := context.Background()

	a := c.FetchFeed(ctx, "https://io.example.com/feed")
	clock.Advance(4 * time.Minute)
	b := c.FetchFeed(ctx, "https://io.example.com/feed")

	assert.Equal(t, int32(1), f.calls.Load())
	require.NotEmpty(t, a)
	assert.Same(t, &a[0], &b[0], "cache hit should return the same slice")
}

func TestFetchFeed_RefetchAfterTTL(t *testing.T) {
	f := &countingFetcher{body: []byte(sampleRSS)}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := newTestClient(f, clock)
	ctx := context.Background()

	c.FetchFeed(ctx, "https://io.example.com/feed")
	clock.Advance(DefaultTTL)
	c.FetchFeed(ctx, "https://io.example.com/feed")
	assert.Equal(t, int32(2), f.calls.Load())

	c.FetchFeed(ctx, "https://io.example.com/feed")
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestFetchFeed_CacheIsSingleSlot(t *testing.T) {
	f := &countingFetcher{body: []byte(sampleRSS)}
	c := newTestClient(f, &fakeClock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	a := c.FetchFeed(ctx, "https://one.example.com/feed")
	b := c.FetchFeed(ctx, "https://two.example.com/feed")

	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, a, b)
}

func TestFetchFeed_FailuresAreEmptyAndNotCached(t *testing.T) {
	f := &countingFetcher{err: stderrors.New("dial tcp: connection refused")}
	c := newTestClient(f, &fakeClock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	items := c.FetchFeed(ctx, "https://io.example.com/feed")
	assert.NotNil(t, items)
	assert.Empty(t, items)

	f.err = nil
	f.body = []byte(sampleRSS)
	assert.Len(t, c.FetchFeed(ctx, "https://io.example.com/feed"), 3)
	assert.Equal(t, int32(2), f.calls.Load())
}

// ctxFetcher fails the way an HTTP fetch does once its context is done.
type ctxFetcher struct{ body []byte }

func (f ctxFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.body, nil
}

func TestFetchFeed_CancelledCallerStillFills(t *testing.T) {
	c := newTestClient(ctxFetcher{body: []byte(sampleRSS)}, &fakeClock{now: time.Unix(1000, 0)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Len(t, c.FetchFeed(ctx, "https://io.example.com/feed"), 3)
}

func TestFetchFeed_ParseFailureIsEmpty(t *testing.T) {
	f := &countingFetcher{body: []byte("<html>not a feed")}
	c := newTestClient(f, &fakeClock{now: time.Unix(1000, 0)})

	assert.Empty(t, c.FetchFeed(context.Background(), "https://io.example.com/feed"))
}

func TestFetchFeed_ConcurrentRefillsShareOneFetch(t *testing.T) {
	f := &countingFetcher{body: []byte(sampleRSS), delay: 50 * time.Millisecond}
	c := newTestClient(f, &fakeClock{now: time.Unix(1000, 0)})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, c.FetchFeed(context.Background(), "https://io.example.com/feed"), 3)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestReset(t *testing.T) {
	f := &countingFetcher{body: []byte(sampleRSS)}
	c := newTestClient(f, &fakeClock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	c.FetchFeed(ctx, "https://io.example.com/feed")
	c.Reset()
	c.FetchFeed(ctx, "https://io.example.com/feed")
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "rss")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	c := New(Options{
		Fetcher: &HTTPFetcher{Client: srv.Client(), Retry: httpx.NoRetry()},
		Logger:  logging.Discard(),
	})
	assert.Len(t, c.FetchFeed(context.Background(), srv.URL), 3)
}

func TestNormalizeCategories(t *testing.T) {
	testCases := []struct {
		name     string
		input    any
		expected []string
	}{
		{"absent", nil, []string{}},
		{"single string", "Reflections", []string{"Reflections"}},
		{"blank string", "  ", []string{}},
		{"string list", []string{"A", " B "}, []string{"A", "B"}},
		{"mixed list", []any{"A", 3, nil, "B"}, []string{"A", "B"}},
		{"unsupported", 42, []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeCategories(tc.input)
			assert.NotNil(t, got)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestConfigured(t *testing.T) {
	assert.False(t, Configured(""))
	assert.False(t, Configured("https://your-substack-url.com/feed"))
	assert.True(t, Configured("https://iodesignstudio.substack.com/feed"))
}
