package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/facade"
	"github.com/hpungsan/folio/internal/logging"
	"github.com/hpungsan/folio/internal/ops"
	"github.com/hpungsan/folio/internal/store"
	"github.com/hpungsan/folio/internal/store/memory"
)

const testSecret = "s3cret"

type testSite struct {
	handler http.Handler
	svc     *ops.Service
	cache   *PageCache
	src     facade.Source
}

func setupTest(t *testing.T, mutate ...func(*config.Config)) *testSite {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendSQLite
	cfg.AdminSecret = testSecret
	for _, m := range mutate {
		m(cfg)
	}

	client := store.NewClient(memory.New(), logging.Discard())
	src := facade.NewStoreSource(client)
	cache := NewPageCache(time.Minute, nil)
	svc := ops.NewService(ops.Options{Store: client, Source: src, Invalidator: cache, Logger: logging.Discard()})

	srv, err := NewServer(Options{
		Source:  src,
		Ops:     svc,
		Cache:   cache,
		Config:  cfg,
		Version: "test",
		Logger:  logging.Discard(),
	})
	require.NoError(t, err)
	return &testSite{handler: srv.Handler, svc: svc, cache: cache, src: src}
}

func (s *testSite) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testSite) get(t *testing.T, path string) *httptest.ResponseRecorder {
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testSite) admin(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload string
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = string(b)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Secret", testSecret)
	return s.do(t, req)
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) ops.Result {
	t.Helper()
	var res ops.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res
}

func validProject(slug string) map[string]any {
	return map[string]any{
		"slug":         slug,
		"title":        "Timber Pavilion",
		"category":     "architecture",
		"description":  "A pavilion.",
		"imageId":      "project-1",
		"role":         "Lead",
		"duration":     "6 months",
		"technologies": []string{"Rhino", "Grasshopper"},
		"overview":     "A **bold** start.",
		"process":      "Process.",
		"outcomes":     "Outcomes.",
	}
}

// --- Public pages ---

func TestPublicPages_RenderOnEmptyStore(t *testing.T) {
	s := setupTest(t)
	for _, path := range []string{"/", "/work", "/journal", "/about", "/cv", "/contact"} {
		rec := s.get(t, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", path)
	}

	rec := s.get(t, "/contact")
	assert.Contains(t, rec.Body.String(), "Get in Touch")
}

func TestHome_ShowsSettingsAndFeaturedWork(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()

	res := s.svc.UpdateSiteSettings(ctx, "", map[string]any{"siteTitle": "IO Studio", "heroHeadline": "Hello there"})
	require.True(t, res.Success, res.Message)
	res = s.svc.CreateProject(ctx, validProject("pavilion"))
	require.True(t, res.Success, res.Message)

	body := s.get(t, "/").Body.String()
	assert.Contains(t, body, "IO Studio")
	assert.Contains(t, body, "Hello there")
	assert.Contains(t, body, `href="/work/pavilion"`)
}

func TestWork_FiltersByCategory(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()
	require.True(t, s.svc.CreateProject(ctx, validProject("a")).Success)
	web3 := validProject("b")
	web3["category"] = "Web3"
	web3["title"] = "Token Garden"
	require.True(t, s.svc.CreateProject(ctx, web3).Success)

	body := s.get(t, "/work?category=web3").Body.String()
	assert.Contains(t, body, "Token Garden")
	assert.NotContains(t, body, "Timber Pavilion")
}

func TestProject_RendersMarkdownSections(t *testing.T) {
	s := setupTest(t)
	require.True(t, s.svc.CreateProject(context.Background(), validProject("pavilion")).Success)

	rec := s.get(t, "/work/pavilion")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>bold</strong>")
	assert.Contains(t, rec.Body.String(), "Rhino, Grasshopper")
}

func TestProject_NotFound(t *testing.T) {
	s := setupTest(t)

	rec := s.get(t, "/work/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "project not found: missing")

	req := httptest.NewRequest(http.MethodGet, "/work/missing", nil)
	req.Header.Set("Accept", "application/json")
	rec = s.do(t, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		Error struct {
			Code   string `json:"code"`
			Status int    `json:"status"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, 404, body.Error.Status)
}

func TestPage_HTMXRendersContentOnly(t *testing.T) {
	s := setupTest(t)
	req := httptest.NewRequest(http.MethodGet, "/journal", nil)
	req.Header.Set("HX-Request", "true")
	rec := s.do(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), "Journal")
}

// --- Page cache ---

func TestPageCache_MutationInvalidates(t *testing.T) {
	s := setupTest(t)

	assert.Equal(t, "miss", s.get(t, "/work").Header().Get("X-Cache"))
	assert.Equal(t, "hit", s.get(t, "/work").Header().Get("X-Cache"))

	rec := s.admin(t, http.MethodPost, "/admin/api/projects", validProject("pavilion"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.get(t, "/work")
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Timber Pavilion")
}

func TestPageCache_ErrorsNotCached(t *testing.T) {
	s := setupTest(t)
	s.get(t, "/work/missing")
	assert.Equal(t, "miss", s.get(t, "/work/missing").Header().Get("X-Cache"))
}

// --- Admin gate ---

func TestAdminGate(t *testing.T) {
	s := setupTest(t)

	assert.Equal(t, http.StatusNotFound, s.get(t, "/admin").Code)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/admin?secret=wrong").Code)
	assert.Equal(t, http.StatusOK, s.get(t, "/admin?secret="+url.QueryEscape(testSecret)).Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/api/projects", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusNotFound, s.do(t, req).Code)
}

func TestAdminGate_EmptySecretDisablesAdmin(t *testing.T) {
	s := setupTest(t, func(c *config.Config) { c.AdminSecret = "" })
	assert.Equal(t, http.StatusNotFound, s.get(t, "/admin?secret=").Code)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/admin").Code)
}

// --- Admin API ---

func TestAdminAPI_ProjectLifecycle(t *testing.T) {
	s := setupTest(t)

	rec := s.admin(t, http.MethodPost, "/admin/api/projects", validProject("pavilion"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeResult(t, rec)
	assert.Equal(t, "Project created successfully!", created.Message)
	assert.Equal(t, "/admin/api/projects/"+created.ID, rec.Header().Get("Location"))

	rec = s.admin(t, http.MethodPut, "/admin/api/projects/"+created.ID, map[string]any{"title": "Stone Pavilion"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, s.get(t, "/work/pavilion").Body.String(), "Stone Pavilion")

	rec = s.admin(t, http.MethodDelete, "/admin/api/projects/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, s.get(t, "/work/pavilion").Code)
}

func TestAdminAPI_ValidationFailure(t *testing.T) {
	s := setupTest(t)

	rec := s.admin(t, http.MethodPost, "/admin/api/projects", map[string]any{"title": "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	res := decodeResult(t, rec)
	assert.False(t, res.Success)
	assert.Equal(t, "Please correct the highlighted fields.", res.Message)
	assert.Contains(t, res.FieldErrors, "slug")
	assert.Contains(t, res.FieldErrors, "title")
	assert.Empty(t, s.src.Projects(context.Background()))
}

func TestAdminAPI_BadRequests(t *testing.T) {
	s := setupTest(t)

	rec := s.admin(t, http.MethodPost, "/admin/api/widgets", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.admin(t, http.MethodPost, "/admin/api/settings", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/api/skills", strings.NewReader("{not json"))
	req.Header.Set("X-Admin-Secret", testSecret)
	rec = s.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", string(decodeResult(t, rec).Code))
}

func TestAdminAPI_CVAndSkills(t *testing.T) {
	s := setupTest(t)

	rec := s.admin(t, http.MethodPost, "/admin/api/experience", map[string]any{
		"title": "Architect", "subtitle": "Studio", "date": "2020 - 2023", "description": "Built things.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.admin(t, http.MethodPost, "/admin/api/skills", map[string]any{"name": "Rhino", "category": "architecture"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Contains(t, s.get(t, "/cv").Body.String(), "Architect")
	assert.Contains(t, s.get(t, "/about").Body.String(), "Rhino")
}

func TestAdminAPI_Singleton(t *testing.T) {
	s := setupTest(t)

	rec := s.admin(t, http.MethodPut, "/admin/api/contact", map[string]any{"introText": "Write to me", "ctaLine": "Anytime."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, s.get(t, "/contact").Body.String(), "Write to me")

	rec = s.admin(t, http.MethodPut, "/admin/api/settings", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nothing to update.", decodeResult(t, rec).Message)
}

func TestAdminAPI_AssistUnconfigured(t *testing.T) {
	s := setupTest(t)

	rec := s.admin(t, http.MethodPost, "/admin/api/generate/journal", map[string]any{"title": "Light"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = s.admin(t, http.MethodPost, "/admin/api/generate/poem", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.admin(t, http.MethodPost, "/admin/api/upload", map[string]any{"image": "aGVsbG8="})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// --- Visitor API ---

func TestContactSubmit(t *testing.T) {
	s := setupTest(t)

	form := url.Values{"name": {"Ada"}, "email": {"not-an-email"}, "message": {"Hi"}}
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(t, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeResult(t, rec).FieldErrors, "email")

	req = httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Ada","email":"ada@example.com","message":"Hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = s.do(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Message sent successfully!", decodeResult(t, rec).Message)
}

func TestChat(t *testing.T) {
	s := setupTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[]}`))
	assert.Equal(t, http.StatusBadRequest, s.do(t, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	assert.Equal(t, http.StatusBadGateway, s.do(t, req).Code)
}

// --- Middleware ---

func TestMiddleware_Headers(t *testing.T) {
	s := setupTest(t)

	rec := s.get(t, "/about")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", s.do(t, req).Header().Get("X-Request-ID"))
}

func TestStaticAssets(t *testing.T) {
	s := setupTest(t)
	assert.Equal(t, http.StatusOK, s.get(t, "/static/site.css").Code)
	assert.Equal(t, http.StatusOK, s.get(t, "/static/img/placeholder.svg").Code)
}

func TestImageSrc(t *testing.T) {
	assert.Equal(t, "/static/img/placeholder.svg", imageSrc(""))
	assert.Equal(t, "https://cdn.example.com/a.png", imageSrc("https://cdn.example.com/a.png"))
	assert.Equal(t, "/static/img/project-1.svg", imageSrc("project-1"))
}
