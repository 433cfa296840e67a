package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/facade"
	"github.com/hpungsan/folio/internal/ops"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "home", "work", "journal", "about", "cv", "contact"
	Site    content.SiteSettings
}

// HomePageData is the template data for the home page.
type HomePageData struct {
	PageData
	Home     facade.HomePage
	Featured []content.Project
	Recent   []content.JournalPost
}

// WorkPageData is the template data for the project list.
type WorkPageData struct {
	PageData
	Projects []content.Project
	Category string
}

// ProjectPageData is the template data for a single case study.
type ProjectPageData struct {
	PageData
	Project  content.Project
	Overview template.HTML
	Process  template.HTML
	Outcomes template.HTML
	Body     template.HTML
}

// JournalPageData is the template data for the journal list.
type JournalPageData struct {
	PageData
	Posts []content.JournalPost
}

// AboutPageData is the template data for the about page.
type AboutPageData struct {
	PageData
	About  content.AboutContent
	Skills []content.SkillCategory
}

// CVPageData is the template data for the CV page.
type CVPageData struct {
	PageData
	Experience []content.CVItem
	Education  []content.CVItem
}

// ContactPageData is the template data for the contact page.
type ContactPageData struct {
	PageData
	Contact content.ContactContent
}

// AdminPageData is the template data for the admin dashboard.
type AdminPageData struct {
	PageData
	Snapshot *facade.Document
	Writable bool
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	log       *logrus.Entry
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, log *logrus.Entry) *Renderer {
	funcMap := template.FuncMap{
		"formatDate": formatDate,
		"imageSrc":   imageSrc,
		"join":       strings.Join,
		"isActive":   func(nav, item string) bool { return nav == item },
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"home":    "home.html",
		"work":    "work.html",
		"project": "project.html",
		"journal": "journal.html",
		"about":   "about.html",
		"cv":      "cv.html",
		"contact": "contact.html",
		"admin":   "admin.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		log:       log,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.log.Errorf("template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.log.WithError(err).WithField("template", name).Error("template execution failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, site content.SiteSettings, err error) {
	fErr := errors.As(err)
	status := fErr.Status
	message := fErr.Message
	if status >= http.StatusInternalServerError {
		r.log.WithError(err).WithField("path", req.URL.Path).Error("request failed")
	}

	// HTMX request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	// JSON request
	if wantsJSON(req) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(fErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
			Site:    site,
		},
		StatusCode: status,
		Message:    message,
	})
}

// renderResult writes an action result as JSON. Failed results carry the
// status of their error code.
func renderResult(w http.ResponseWriter, res ops.Result) {
	status := http.StatusOK
	if !res.Success {
		status = errors.StatusFor(res.Code)
	}
	renderJSON(w, status, res)
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(req.Header.Get("Content-Type"), "application/json")
}

// renderMarkdown converts markdown text to HTML using goldmark. Raw HTML in
// the source is dropped.
func renderMarkdown(md string) template.HTML {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatDate formats a publish time as "Jan 2, 2006", or "" when unknown.
func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("Jan 2, 2006")
}

// imageSrc resolves an image reference. Absolute URLs pass through; anything
// else is a bundled asset name under /static/img.
func imageSrc(ref string) string {
	switch {
	case ref == "":
		return "/static/img/placeholder.svg"
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "/"):
		return ref
	default:
		return "/static/img/" + ref + ".svg"
	}
}
