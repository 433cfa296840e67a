package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted in Config.Backend and Config.FeedFallback.
const (
	BackendAirtable = "airtable"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendStatic   = "static"
	BackendFeed     = "feed"
)

// PlaceholderFeedHost marks an unconfigured feed URL copied from example env files.
const PlaceholderFeedHost = "your-substack-url.com"

// Config holds application configuration.
type Config struct {
	// Backend selects the content source once at startup:
	// airtable | sqlite | postgres | static | feed.
	Backend string `json:"backend"`

	// FeedFallback is the source used for non-feed content (skills, CV, singletons)
	// when Backend is "feed". Any backend except "feed".
	FeedFallback string `json:"feed_fallback,omitempty"`

	// FeedURL is the syndication feed for projects and journal posts.
	FeedURL string `json:"feed_url,omitempty"`

	// FeedTTLSeconds is how long a fetched feed is served from memory.
	FeedTTLSeconds int `json:"feed_ttl_seconds,omitempty"`

	// JournalTags and ProjectTags route feed items into the journal and work views.
	// Empty means DefaultJournalTags / DefaultProjectTags.
	JournalTags []string `json:"journal_tags,omitempty"`
	ProjectTags []string `json:"project_tags,omitempty"`

	AirtableAPIKey string `json:"airtable_api_key,omitempty"`
	AirtableBaseID string `json:"airtable_base_id,omitempty"`
	AirtableURL    string `json:"airtable_url,omitempty"`

	// SQLiteDir holds folio.db. Empty means the config base dir.
	SQLiteDir string `json:"sqlite_dir,omitempty"`

	PostgresDSN string `json:"postgres_dsn,omitempty"`

	// StaticFile is the YAML content file used by the static backend and `folio seed`.
	StaticFile string `json:"static_file,omitempty"`

	// AdminSecret gates /admin. Empty disables the admin panel entirely.
	AdminSecret string `json:"admin_secret,omitempty"`

	AIServiceURL string `json:"ai_service_url,omitempty"`
	UploadURL    string `json:"upload_url,omitempty"`
	UploadAPIKey string `json:"upload_api_key,omitempty"`

	// HTTPTimeoutSeconds bounds every outbound call (store, feed, AI, upload).
	HTTPTimeoutSeconds int `json:"http_timeout_seconds,omitempty"`

	// PageCacheSeconds is how long rendered public pages are reused. 0 disables the cache.
	PageCacheSeconds int `json:"page_cache_seconds,omitempty"`

	Bind string `json:"bind,omitempty"`
	Port int    `json:"port,omitempty"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultJournalTags route feed items to the journal.
var DefaultJournalTags = []string{"Reflections", "Experiments", "Design Notes", "Journal"}

// DefaultProjectTags route feed items to the work page.
var DefaultProjectTags = []string{"Architecture", "Web3", "Writing", "Community", "Project"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:            BackendStatic,
		FeedFallback:       BackendStatic,
		FeedTTLSeconds:     300,
		AirtableURL:        "https://api.airtable.com",
		StaticFile:         "content.yaml",
		HTTPTimeoutSeconds: 15,
		PageCacheSeconds:   60,
		Bind:               "127.0.0.1",
		Port:               9002,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.folio.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithEnv loads baseDir/config.json, then applies environment overrides.
// A .env file in the working directory is read first if present; variables
// already set in the process environment win over .env values.
func LoadWithEnv(baseDir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg, err := Load(baseDir)
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg. lookup is os.LookupEnv in
// production and a map in tests.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}
	num := func(dst *int, key string) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
	list := func(dst *[]string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = mergeStringSlice(nil, strings.Split(v, ","))
		}
	}

	str(&cfg.Backend, "FOLIO_BACKEND")
	str(&cfg.FeedFallback, "FOLIO_FEED_FALLBACK")
	str(&cfg.FeedURL, "FOLIO_FEED_URL", "SUBSTACK_URL")
	num(&cfg.FeedTTLSeconds, "FOLIO_FEED_TTL_SECONDS")
	list(&cfg.JournalTags, "FOLIO_JOURNAL_TAGS")
	list(&cfg.ProjectTags, "FOLIO_PROJECT_TAGS")
	str(&cfg.AirtableAPIKey, "AIRTABLE_API_KEY")
	str(&cfg.AirtableBaseID, "AIRTABLE_BASE_ID")
	str(&cfg.AirtableURL, "AIRTABLE_URL")
	str(&cfg.SQLiteDir, "FOLIO_SQLITE_DIR")
	str(&cfg.PostgresDSN, "FOLIO_POSTGRES_DSN", "DATABASE_URL")
	str(&cfg.StaticFile, "FOLIO_STATIC_FILE")
	str(&cfg.AdminSecret, "ADMIN_SECRET")
	str(&cfg.AIServiceURL, "AI_SERVICE_URL")
	str(&cfg.UploadURL, "UPLOAD_URL")
	str(&cfg.UploadAPIKey, "UPLOAD_API_KEY")
	num(&cfg.HTTPTimeoutSeconds, "FOLIO_HTTP_TIMEOUT_SECONDS")
	num(&cfg.PageCacheSeconds, "FOLIO_PAGE_CACHE_SECONDS")
	str(&cfg.Bind, "FOLIO_BIND")
	num(&cfg.Port, "PORT")
	str(&cfg.LogLevel, "FOLIO_LOG_LEVEL")
	str(&cfg.LogFormat, "FOLIO_LOG_FORMAT")
}

// Validate checks backend names. Missing credentials are not errors: the
// store and feed clients degrade to empty content instead.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAirtable, BackendSQLite, BackendPostgres, BackendStatic, BackendFeed:
	default:
		return fmt.Errorf("unknown backend %q (want airtable|sqlite|postgres|static|feed)", c.Backend)
	}
	if c.Backend == BackendFeed {
		switch c.FeedFallback {
		case BackendAirtable, BackendSQLite, BackendPostgres, BackendStatic:
		default:
			return fmt.Errorf("unknown feed_fallback %q (want airtable|sqlite|postgres|static)", c.FeedFallback)
		}
	}
	return nil
}

// FeedTTL returns the feed cache lifetime.
func (c *Config) FeedTTL() time.Duration {
	return time.Duration(c.FeedTTLSeconds) * time.Second
}

// HTTPTimeout returns the outbound request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// PageCacheTTL returns the rendered page lifetime.
func (c *Config) PageCacheTTL() time.Duration {
	return time.Duration(c.PageCacheSeconds) * time.Second
}

// JournalTagList returns the configured journal tags or the defaults.
func (c *Config) JournalTagList() []string {
	if len(c.JournalTags) == 0 {
		return DefaultJournalTags
	}
	return c.JournalTags
}

// ProjectTagList returns the configured project tags or the defaults.
func (c *Config) ProjectTagList() []string {
	if len(c.ProjectTags) == 0 {
		return DefaultProjectTags
	}
	return c.ProjectTags
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	pickStr := func(o, b string) string {
		if o != "" {
			return o
		}
		return b
	}
	pickInt := func(o, b int) int {
		if o != 0 {
			return o
		}
		return b
	}

	return &Config{
		Backend:            pickStr(overlay.Backend, base.Backend),
		FeedFallback:       pickStr(overlay.FeedFallback, base.FeedFallback),
		FeedURL:            pickStr(overlay.FeedURL, base.FeedURL),
		FeedTTLSeconds:     pickInt(overlay.FeedTTLSeconds, base.FeedTTLSeconds),
		JournalTags:        mergeStringSlice(base.JournalTags, overlay.JournalTags),
		ProjectTags:        mergeStringSlice(base.ProjectTags, overlay.ProjectTags),
		AirtableAPIKey:     pickStr(overlay.AirtableAPIKey, base.AirtableAPIKey),
		AirtableBaseID:     pickStr(overlay.AirtableBaseID, base.AirtableBaseID),
		AirtableURL:        pickStr(overlay.AirtableURL, base.AirtableURL),
		SQLiteDir:          pickStr(overlay.SQLiteDir, base.SQLiteDir),
		PostgresDSN:        pickStr(overlay.PostgresDSN, base.PostgresDSN),
		StaticFile:         pickStr(overlay.StaticFile, base.StaticFile),
		AdminSecret:        pickStr(overlay.AdminSecret, base.AdminSecret),
		AIServiceURL:       pickStr(overlay.AIServiceURL, base.AIServiceURL),
		UploadURL:          pickStr(overlay.UploadURL, base.UploadURL),
		UploadAPIKey:       pickStr(overlay.UploadAPIKey, base.UploadAPIKey),
		HTTPTimeoutSeconds: pickInt(overlay.HTTPTimeoutSeconds, base.HTTPTimeoutSeconds),
		PageCacheSeconds:   pickInt(overlay.PageCacheSeconds, base.PageCacheSeconds),
		Bind:               pickStr(overlay.Bind, base.Bind),
		Port:               pickInt(overlay.Port, base.Port),
		LogLevel:           pickStr(overlay.LogLevel, base.LogLevel),
		LogFormat:          pickStr(overlay.LogFormat, base.LogFormat),
		DisabledTools:      mergeStringSlice(base.DisabledTools, overlay.DisabledTools),
	}
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
