package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/facade"
	"github.com/hpungsan/folio/internal/genai"
	"github.com/hpungsan/folio/internal/ops"
	"github.com/hpungsan/folio/internal/upload"
)

// maxBodyBytes bounds admin and visitor request bodies. Uploads carry a
// base64 image, which is a third larger than the decoded limit.
const maxBodyBytes = upload.MaxPayloadBytes/3*4 + 1<<10

// Handlers contains HTTP route handlers for the site and admin API.
type Handlers struct {
	src      facade.Source
	ops      *ops.Service
	cache    *PageCache
	cfg      *config.Config
	renderer *Renderer
}

func newHandlers(opts Options, renderer *Renderer) *Handlers {
	cache := opts.Cache
	if cache == nil {
		cache = NewPageCache(0, nil)
	}
	return &Handlers{
		src:      opts.Source,
		ops:      opts.Ops,
		cache:    cache,
		cfg:      opts.Config,
		renderer: renderer,
	}
}

func (h *Handlers) page(r *http.Request, title, nav string) PageData {
	return PageData{
		Title:   title,
		Version: h.renderer.version,
		Nav:     nav,
		Site:    h.src.SiteSettings(r.Context()),
	}
}

// HandleHome handles GET /: hero, featured work, recent journal posts.
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	home := facade.Home(r.Context(), h.src)
	data := HomePageData{
		PageData: PageData{Version: h.renderer.version, Nav: "home", Site: home.Settings},
		Home:     home,
		Featured: facade.FeaturedProjects(home.Projects, 3),
		Recent:   home.Journal[:min(3, len(home.Journal))],
	}
	h.renderer.renderPage(w, r, "home", data)
}

// HandleWork handles GET /work: every project, optionally by ?category=.
func (h *Handlers) HandleWork(w http.ResponseWriter, r *http.Request) {
	projects := h.src.Projects(r.Context())
	category := r.URL.Query().Get("category")
	if c, ok := content.ParseProjectCategory(category); ok {
		filtered := []content.Project{}
		for _, p := range projects {
			if p.Category == c {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
		category = string(c)
	} else {
		category = ""
	}

	h.renderer.renderPage(w, r, "work", WorkPageData{
		PageData: h.page(r, "Work", "work"),
		Projects: projects,
		Category: category,
	})
}

// HandleProject handles GET /work/{slug}: a single case study.
func (h *Handlers) HandleProject(w http.ResponseWriter, r *http.Request) {
	p, err := ops.ProjectBySlug(r.Context(), h.src, r.PathValue("slug"))
	if err != nil {
		h.renderer.renderError(w, r, h.src.SiteSettings(r.Context()), err)
		return
	}

	h.renderer.renderPage(w, r, "project", ProjectPageData{
		PageData: h.page(r, p.Title, "work"),
		Project:  p,
		Overview: renderMarkdown(p.Overview),
		Process:  renderMarkdown(p.Process),
		Outcomes: renderMarkdown(p.Outcomes),
		Body:     renderMarkdown(p.Content),
	})
}

// HandleJournal handles GET /journal.
func (h *Handlers) HandleJournal(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "journal", JournalPageData{
		PageData: h.page(r, "Journal", "journal"),
		Posts:    h.src.JournalPosts(r.Context()),
	})
}

// HandleAbout handles GET /about.
func (h *Handlers) HandleAbout(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "about", AboutPageData{
		PageData: h.page(r, "About", "about"),
		About:    h.src.AboutContent(r.Context()),
		Skills:   h.src.GroupedSkills(r.Context()),
	})
}

// HandleCV handles GET /cv.
func (h *Handlers) HandleCV(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "cv", CVPageData{
		PageData:   h.page(r, "CV", "cv"),
		Experience: h.src.CVExperience(r.Context()),
		Education:  h.src.CVEducation(r.Context()),
	})
}

// HandleContact handles GET /contact.
func (h *Handlers) HandleContact(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "contact", ContactPageData{
		PageData: h.page(r, "Contact", "contact"),
		Contact:  h.src.ContactContent(r.Context()),
	})
}

// HandleContactSubmit handles POST /api/contact, from JSON or a plain form.
func (h *Handlers) HandleContactSubmit(w http.ResponseWriter, r *http.Request) {
	var msg ops.ContactMessage
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeBody(w, r, &msg); err != nil {
			renderResult(w, resultOf(err))
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			renderResult(w, resultOf(errors.NewInvalidRequest("invalid form body")))
			return
		}
		msg = ops.ContactMessage{
			Name:    r.PostForm.Get("name"),
			Email:   r.PostForm.Get("email"),
			Message: r.PostForm.Get("message"),
		}
	}
	renderResult(w, h.ops.SubmitContactForm(r.Context(), msg))
}

type chatRequest struct {
	Messages []genai.Message `json:"messages"`
}

// HandleChat handles POST /api/chat.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		renderResult(w, resultOf(err))
		return
	}
	if len(req.Messages) == 0 {
		renderResult(w, resultOf(errors.NewInvalidRequest("messages is required")))
		return
	}
	renderResult(w, h.ops.Chat(r.Context(), req.Messages))
}

// HandleAdmin handles GET /admin: a read-only view of everything the
// admin API can change.
func (h *Handlers) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "admin", AdminPageData{
		PageData: h.page(r, "Admin", "admin"),
		Snapshot: facade.Snapshot(r.Context(), h.src),
		Writable: h.cfg.Backend != config.BackendStatic,
	})
}

// HandleAdminCreate handles POST /admin/api/{kind}.
func (h *Handlers) HandleAdminCreate(w http.ResponseWriter, r *http.Request) {
	var input map[string]any
	if err := decodeBody(w, r, &input); err != nil {
		renderResult(w, resultOf(err))
		return
	}
	res := h.ops.CreateEntry(r.Context(), ops.Kind(r.PathValue("kind")), input)
	if res.Success {
		w.Header().Set("Location", r.URL.Path+"/"+res.ID)
	}
	renderResult(w, res)
}

// HandleAdminUpdate handles PUT /admin/api/{kind}/{id}.
func (h *Handlers) HandleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	var input map[string]any
	if err := decodeBody(w, r, &input); err != nil {
		renderResult(w, resultOf(err))
		return
	}
	renderResult(w, h.ops.UpdateEntry(r.Context(), ops.Kind(r.PathValue("kind")), r.PathValue("id"), input))
}

// HandleAdminDelete handles DELETE /admin/api/{kind}/{id}.
func (h *Handlers) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
	renderResult(w, h.ops.DeleteEntry(r.Context(), ops.Kind(r.PathValue("kind")), r.PathValue("id")))
}

// HandleAdminSingleton handles PUT /admin/api/{settings|about|contact}. The
// row id is optional and given as ?id=.
func (h *Handlers) HandleAdminSingleton(w http.ResponseWriter, r *http.Request) {
	var input map[string]any
	if err := decodeBody(w, r, &input); err != nil {
		renderResult(w, resultOf(err))
		return
	}
	renderResult(w, h.ops.UpdateSection(r.Context(), ops.Kind(r.PathValue("kind")), r.URL.Query().Get("id"), input))
}

type generateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Body        string `json:"body"`
	Section     string `json:"section"`
}

// HandleGenerate handles POST /admin/api/generate/{summary|journal|project}.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(w, r, &req); err != nil {
		renderResult(w, resultOf(err))
		return
	}

	ctx := r.Context()
	switch r.PathValue("what") {
	case "summary":
		renderResult(w, h.ops.SummarizePost(ctx, req.Body))
	case "journal":
		renderResult(w, h.ops.GenerateJournalEntry(ctx, req.Title))
	case "project":
		renderResult(w, h.ops.GenerateProjectDetails(ctx, genai.ProjectDetailsInput{
			Title:       req.Title,
			Description: req.Description,
			Section:     genai.Section(req.Section),
		}))
	default:
		renderResult(w, resultOf(errors.NewNotFound("generator", r.PathValue("what"))))
	}
}

type uploadRequest struct {
	Image string `json:"image"`
}

// HandleUpload handles POST /admin/api/upload with a base64 image.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeBody(w, r, &req); err != nil {
		renderResult(w, resultOf(err))
		return
	}
	renderResult(w, h.ops.UploadImage(r.Context(), req.Image))
}

// decodeBody reads a bounded JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.NewInvalidRequest("request body is required")
		}
		return errors.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// resultOf reports a request error in the same shape as an action result.
func resultOf(err error) ops.Result {
	fErr := errors.As(err)
	return ops.Result{Message: fErr.Message, Code: fErr.Code}
}
