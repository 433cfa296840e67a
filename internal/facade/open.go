package facade

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/feed"
	"github.com/hpungsan/folio/internal/httpx"
	"github.com/hpungsan/folio/internal/logging"
	"github.com/hpungsan/folio/internal/store"
	"github.com/hpungsan/folio/internal/store/airtable"
	"github.com/hpungsan/folio/internal/store/postgres"
	"github.com/hpungsan/folio/internal/store/sqlite"
)

// Runtime is the content stack selected by configuration.
type Runtime struct {
	// Source serves every page.
	Source Source
	// Store receives admin mutations. Its backend is nil for the static
	// source, so writes fail with UPSTREAM.
	Store *store.Client
	// Feed is set when projects and journal come from a feed.
	Feed *feed.Client
	// Static is set when a YAML file backs the non-feed content.
	Static *StaticSource

	closers []func() error
}

// Open builds the Runtime for cfg. baseDir resolves relative file paths.
// Unreachable or unconfigured remote stores are logged and served empty;
// only local failures (unwritable sqlite dir) are returned.
func Open(ctx context.Context, cfg *config.Config, baseDir string, logger logrus.FieldLogger) (*Runtime, error) {
	log := logging.Component(logger, "facade")
	rt := &Runtime{}

	kind := cfg.Backend
	if kind == config.BackendFeed {
		kind = cfg.FeedFallback
	}

	switch kind {
	case config.BackendStatic:
		rt.Static = openStatic(ResolvePath(baseDir, cfg.StaticFile), logger)
		rt.Source = rt.Static
		rt.Store = store.NewClient(nil, logger)
	default:
		backend, closer, err := OpenBackend(ctx, cfg, kind, baseDir, logger)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			rt.closers = append(rt.closers, closer)
		}
		rt.Store = store.NewClient(backend, logger)
		rt.Source = NewStoreSource(rt.Store)
	}

	if cfg.Backend == config.BackendFeed {
		rt.Feed = feed.New(feed.Options{
			Fetcher: &feed.HTTPFetcher{Client: HTTPClient(cfg), Retry: httpx.DefaultRetryConfig()},
			TTL:     cfg.FeedTTL(),
			Logger:  logger,
		})
		rt.Source = NewFeedSource(rt.Feed, cfg.FeedURL, cfg.JournalTagList(), cfg.ProjectTagList(), rt.Source)
	}

	log.WithFields(logrus.Fields{"backend": cfg.Backend, "store": kind}).Info("content source ready")
	return rt, nil
}

// OpenBackend connects the tabular store named kind. A nil backend with a
// nil error means the store is unconfigured or unreachable and has been
// logged.
func OpenBackend(ctx context.Context, cfg *config.Config, kind, baseDir string, logger logrus.FieldLogger) (store.Backend, func() error, error) {
	log := logging.Component(logger, "facade")

	switch kind {
	case config.BackendAirtable:
		b, err := airtable.New(airtable.Options{
			BaseURL: cfg.AirtableURL,
			APIKey:  cfg.AirtableAPIKey,
			BaseID:  cfg.AirtableBaseID,
			HTTP:    HTTPClient(cfg),
		})
		if err != nil {
			log.WithError(err).Warn("airtable credentials missing; every section will be empty")
			return nil, nil, nil
		}
		return b, nil, nil

	case config.BackendSQLite:
		dir := cfg.SQLiteDir
		if dir == "" {
			dir = baseDir
		}
		b, err := sqlite.Open(ResolvePath(baseDir, dir))
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil

	case config.BackendPostgres:
		b, err := postgres.Connect(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			log.WithError(err).Warn("postgres unavailable; every section will be empty")
			return nil, nil, nil
		}
		return b, func() error { b.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", kind)
	}
}

// Close releases backend connections.
func (r *Runtime) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// HTTPClient is the outbound client shared by remote collaborators.
func HTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTPTimeout()}
}

// ResolvePath joins relative paths onto baseDir.
func ResolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func openStatic(path string, logger logrus.FieldLogger) *StaticSource {
	src, err := NewStaticSource(path, logger)
	if err == nil {
		return src
	}
	logging.Component(logger, "static").WithError(err).Warn("content file unavailable; serving defaults")
	doc := &Document{}
	doc.fillDefaults()
	return &StaticSource{path: path, doc: doc, log: logging.Component(logger, "static")}
}
