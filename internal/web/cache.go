package web

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// PageCache holds rendered public pages by path. It is the invalidation
// target of content mutations.
type PageCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedPage
}

type cachedPage struct {
	body        []byte
	contentType string
	storedAt    time.Time
}

// NewPageCache returns a cache keeping pages for ttl. A ttl <= 0 disables
// caching; Invalidate is still safe to call.
func NewPageCache(ttl time.Duration, now func() time.Time) *PageCache {
	if now == nil {
		now = time.Now
	}
	return &PageCache{ttl: ttl, now: now, entries: make(map[string]cachedPage)}
}

// Enabled reports whether pages are cached at all.
func (c *PageCache) Enabled() bool {
	return c != nil && c.ttl > 0
}

func (c *PageCache) get(path string) (cachedPage, bool) {
	if !c.Enabled() {
		return cachedPage{}, false
	}
	c.mu.RLock()
	p, ok := c.entries[path]
	c.mu.RUnlock()
	if !ok || c.now().Sub(p.storedAt) >= c.ttl {
		return cachedPage{}, false
	}
	return p, true
}

func (c *PageCache) put(path string, p cachedPage) {
	if !c.Enabled() {
		return
	}
	p.storedAt = c.now()
	c.mu.Lock()
	c.entries[path] = p
	c.mu.Unlock()
}

// Invalidate drops the given paths. A path ending in "/*" drops every page
// under that prefix, and "/*" drops everything.
func (c *PageCache) Invalidate(paths ...string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		prefix, wildcard := strings.CutSuffix(p, "/*")
		if !wildcard {
			delete(c.entries, p)
			continue
		}
		for key := range c.entries {
			if key == prefix || strings.HasPrefix(key, prefix+"/") {
				delete(c.entries, key)
			}
		}
	}
}

// Len is the number of stored pages, expired or not.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cached serves GET pages from the cache and stores successful renders.
func (c *PageCache) cached(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Filtered views and HTMX fragments differ from the page at the same path.
		if !c.Enabled() || r.URL.RawQuery != "" || r.Header.Get("HX-Request") == "true" {
			next(w, r)
			return
		}
		key := r.URL.Path
		if p, ok := c.get(key); ok {
			w.Header().Set("Content-Type", p.contentType)
			w.Header().Set("X-Cache", "hit")
			_, _ = w.Write(p.body)
			return
		}

		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Cache", "miss")
		next(rec, r)
		if rec.status == http.StatusOK {
			c.put(key, cachedPage{body: rec.body, contentType: w.Header().Get("Content-Type")})
		}
	}
}

// recorder passes a response through while keeping a copy of the body.
type recorder struct {
	http.ResponseWriter
	status int
	body   []byte
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body = append(r.body, b...)
	return r.ResponseWriter.Write(b)
}
