package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != BackendStatic {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, BackendStatic)
	}
	if cfg.FeedTTL() != 5*time.Minute {
		t.Fatalf("FeedTTL = %v, want 5m", cfg.FeedTTL())
	}
	if cfg.Port != 9002 {
		t.Fatalf("Port = %d, want 9002", cfg.Port)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"backend": "sqlite", "feed_ttl_seconds": 30}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, BackendSQLite)
	}
	if cfg.FeedTTLSeconds != 30 {
		t.Fatalf("FeedTTLSeconds = %d, want 30", cfg.FeedTTLSeconds)
	}
	// Untouched scalars keep their defaults.
	if cfg.AirtableURL != "https://api.airtable.com" {
		t.Fatalf("AirtableURL = %q, want default", cfg.AirtableURL)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["project_delete", " skill_delete ", "project_delete"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools = %v, want 2 deduplicated entries", cfg.DisabledTools)
	}
	if cfg.DisabledTools[1] != "skill_delete" {
		t.Errorf("DisabledTools[1] = %q, want trimmed %q", cfg.DisabledTools[1], "skill_delete")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FOLIO_BACKEND":      "feed",
		"SUBSTACK_URL":       "https://example.substack.com/feed",
		"AIRTABLE_API_KEY":   "key123",
		"ADMIN_SECRET":       "s3cret",
		"PORT":               "8080",
		"FOLIO_JOURNAL_TAGS": "Notes, Essays ,Notes",
		"FOLIO_LOG_LEVEL":    "   ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	ApplyEnv(cfg, lookup)

	if cfg.Backend != BackendFeed {
		t.Errorf("Backend = %q, want feed", cfg.Backend)
	}
	if cfg.FeedURL != "https://example.substack.com/feed" {
		t.Errorf("FeedURL = %q", cfg.FeedURL)
	}
	if cfg.AirtableAPIKey != "key123" || cfg.AdminSecret != "s3cret" {
		t.Errorf("credentials not applied: %+v", cfg)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if len(cfg.JournalTags) != 2 || cfg.JournalTags[1] != "Essays" {
		t.Errorf("JournalTags = %v, want [Notes Essays]", cfg.JournalTags)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("blank env value should not override, LogLevel = %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg.Backend = "mongo"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg.Backend = BackendFeed
	cfg.FeedFallback = BackendFeed
	if err := cfg.Validate(); err == nil {
		t.Fatal("feed cannot fall back to itself")
	}
}

func TestTagLists_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.JournalTagList()) != len(DefaultJournalTags) {
		t.Errorf("JournalTagList = %v, want defaults", cfg.JournalTagList())
	}

	cfg.ProjectTags = []string{"Builds"}
	if got := cfg.ProjectTagList(); len(got) != 1 || got[0] != "Builds" {
		t.Errorf("ProjectTagList = %v, want [Builds]", got)
	}
}

func TestMerge_ScalarsAndArrays(t *testing.T) {
	base := &Config{Backend: BackendStatic, Port: 9002, DisabledTools: []string{"a"}}
	overlay := &Config{Port: 3000, DisabledTools: []string{"b", "a"}}

	got := Merge(base, overlay)
	if got.Backend != BackendStatic {
		t.Errorf("Backend = %q, want base value", got.Backend)
	}
	if got.Port != 3000 {
		t.Errorf("Port = %d, want overlay value", got.Port)
	}
	if len(got.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want [a b]", got.DisabledTools)
	}
}
