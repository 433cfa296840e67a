package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/facade"
	"github.com/hpungsan/folio/internal/logging"
	"github.com/hpungsan/folio/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Options wires the web server.
type Options struct {
	Source  facade.Source
	Ops     *ops.Service
	Cache   *PageCache // also the Invalidator given to Ops
	Config  *config.Config
	Version string
	Logger  logrus.FieldLogger
}

// NewServer creates and configures the HTTP server for the portfolio site
// and its admin API.
func NewServer(opts Options) (*http.Server, error) {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create template sub-FS: %w", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to create static sub-FS: %w", err)
	}

	log := logging.Component(opts.Logger, "web")
	h := newHandlers(opts, NewRenderer(templateSub, opts.Version, log))

	mux := http.NewServeMux()
	c := h.cache

	// Public pages
	mux.HandleFunc("GET /{$}", c.cached(h.HandleHome))
	mux.HandleFunc("GET /work", c.cached(h.HandleWork))
	mux.HandleFunc("GET /work/{slug}", c.cached(h.HandleProject))
	mux.HandleFunc("GET /journal", c.cached(h.HandleJournal))
	mux.HandleFunc("GET /about", c.cached(h.HandleAbout))
	mux.HandleFunc("GET /cv", c.cached(h.HandleCV))
	mux.HandleFunc("GET /contact", c.cached(h.HandleContact))

	// Visitor API
	mux.HandleFunc("POST /api/contact", h.HandleContactSubmit)
	mux.HandleFunc("POST /api/chat", h.HandleChat)

	// Admin, hidden behind the shared secret
	admin := http.NewServeMux()
	admin.HandleFunc("GET /admin", h.HandleAdmin)
	admin.HandleFunc("POST /admin/api/generate/{what}", h.HandleGenerate)
	admin.HandleFunc("POST /admin/api/upload", h.HandleUpload)
	admin.HandleFunc("POST /admin/api/{kind}", h.HandleAdminCreate)
	admin.HandleFunc("PUT /admin/api/{kind}", h.HandleAdminSingleton)
	admin.HandleFunc("PUT /admin/api/{kind}/{id}", h.HandleAdminUpdate)
	admin.HandleFunc("DELETE /admin/api/{kind}/{id}", h.HandleAdminDelete)
	mux.Handle("/admin", adminGate(opts.Config.AdminSecret, admin))
	mux.Handle("/admin/", adminGate(opts.Config.AdminSecret, admin))

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	handler := requestID(accessLog(log, securityHeaders(mux)))

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Config.Bind, opts.Config.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https:; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// requestID tags each request with an id, reusing an incoming X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFrom returns the id set by the request-id middleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// accessLog writes one debug line per request. Query strings are left out
// so the admin secret never reaches the log.
func accessLog(log *logrus.Entry, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"duration":   time.Since(start).String(),
			"request_id": RequestIDFrom(r.Context()),
		}).Debug("request")
	})
}

// adminGate answers 404 unless the request carries the admin secret, either
// as ?secret= or the X-Admin-Secret header. An empty secret disables admin.
func adminGate(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		given := r.Header.Get("X-Admin-Secret")
		if given == "" {
			given = r.URL.Query().Get("secret")
		}
		if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM
// or when ctx is cancelled.
func Run(ctx context.Context, srv *http.Server, logger logrus.FieldLogger) error {
	log := logging.Component(logger, "web")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Infof("Folio running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn("Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
