// Package ops implements the content mutation actions used by the admin
// panel, the MCP tools and the CLI. Every action validates its input, writes
// through the store client, invalidates the pages that show the entity and
// reports a Result. Actions never return a Go error.
package ops

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/facade"
	"github.com/hpungsan/folio/internal/genai"
	"github.com/hpungsan/folio/internal/logging"
	"github.com/hpungsan/folio/internal/normalize"
	"github.com/hpungsan/folio/internal/store"
)

// Page paths known to the page cache. A trailing "/*" matches every path
// under the prefix.
const (
	PathHome    = "/"
	PathWork    = "/work"
	PathJournal = "/journal"
	PathAbout   = "/about"
	PathCV      = "/cv"
	PathContact = "/contact"
	PathAdmin   = "/admin"
	PathAll     = "/*"
)

// Result is what every action reports. Message is always set.
type Result struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	Code        errors.ErrorCode  `json:"code,omitempty"`
	ID          string            `json:"id,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Data        any               `json:"data,omitempty"`
}

// Invalidator drops cached pages after a mutation.
type Invalidator interface {
	Invalidate(paths ...string)
}

// Generator is the content-generation service.
type Generator interface {
	Chat(ctx context.Context, portfolio string, messages []genai.Message) (string, error)
	Summarize(ctx context.Context, body string) (genai.Summary, error)
	GenerateJournalEntry(ctx context.Context, title string) (string, error)
	GenerateProjectDetails(ctx context.Context, in genai.ProjectDetailsInput) (string, error)
}

// Uploader is the image hosting service.
type Uploader interface {
	Upload(ctx context.Context, payload string) (string, error)
}

// Options wires a Service. Only Store is required; Source feeds the chat
// context, and a nil Generator or Uploader makes those actions fail cleanly.
type Options struct {
	Store       *store.Client
	Source      facade.Source
	Invalidator Invalidator
	Generator   Generator
	Uploader    Uploader
	Logger      logrus.FieldLogger
}

// Service runs actions.
type Service struct {
	store  *store.Client
	source facade.Source
	inval  Invalidator
	gen    Generator
	up     Uploader
	log    *logrus.Entry
}

// NewService builds a Service from opts.
func NewService(opts Options) *Service {
	inval := opts.Invalidator
	if inval == nil {
		inval = nopInvalidator{}
	}
	return &Service{
		store:  opts.Store,
		source: opts.Source,
		inval:  inval,
		gen:    opts.Generator,
		up:     opts.Uploader,
		log:    logging.Component(opts.Logger, "ops"),
	}
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(...string) {}

// entity describes one list table for the generic create/update/delete path.
type entity struct {
	table  content.Table
	noun   string
	schema string
	// paths returns the pages to invalidate; slug is empty when unknown.
	paths func(slug string) []string
}

func (s *Service) create(ctx context.Context, e entity, input map[string]any) Result {
	fields := normalize.Clean(e.table, input)
	if err := Validate(e.schema, ModeCreate, fields); err != nil {
		return s.fail(err, "Failed to create "+lower(e.noun)+".")
	}
	if err := s.checkSlug(ctx, e.table, "", fields); err != nil {
		return s.fail(err, "Failed to create "+lower(e.noun)+".")
	}

	rec, err := s.store.CreateRecord(ctx, e.table, fields)
	if err != nil {
		return s.fail(err, "Failed to create "+lower(e.noun)+".")
	}

	slug, _ := rec.Fields["slug"].(string)
	s.inval.Invalidate(e.paths(slug)...)
	return Result{Success: true, Message: e.noun + " created successfully!", ID: rec.ID}
}

func (s *Service) update(ctx context.Context, e entity, id string, input map[string]any) Result {
	if strings.TrimSpace(id) == "" {
		return s.fail(errors.NewInvalidRequest("id is required"), "Failed to update "+lower(e.noun)+".")
	}
	fields := normalize.Clean(e.table, input)
	if len(fields) == 0 {
		return s.fail(errors.NewInvalidRequest("no fields to update"), "Failed to update "+lower(e.noun)+".")
	}
	if err := Validate(e.schema, ModeUpdate, fields); err != nil {
		return s.fail(err, "Failed to update "+lower(e.noun)+".")
	}
	if err := s.checkSlug(ctx, e.table, id, fields); err != nil {
		return s.fail(err, "Failed to update "+lower(e.noun)+".")
	}

	rec, err := s.store.UpdateRecord(ctx, e.table, id, fields)
	if err != nil {
		return s.fail(err, "Failed to update "+lower(e.noun)+".")
	}

	s.inval.Invalidate(e.paths("")...)
	return Result{Success: true, Message: e.noun + " updated successfully!", ID: rec.ID}
}

// checkSlug rejects a project slug already held by a row other than id.
func (s *Service) checkSlug(ctx context.Context, t content.Table, id string, fields map[string]any) error {
	slug, _ := fields["slug"].(string)
	if t != content.TableProjects || slug == "" {
		return nil
	}
	for _, r := range s.store.ListRecords(ctx, t) {
		if r.ID != id && normalize.Project(r).Slug == slug {
			return errors.NewValidation(map[string]string{"slug": "slug is already in use"})
		}
	}
	return nil
}

func (s *Service) remove(ctx context.Context, e entity, id string) Result {
	if err := s.store.DeleteRecord(ctx, e.table, id); err != nil {
		return s.fail(err, "Failed to delete "+lower(e.noun)+".")
	}
	s.inval.Invalidate(e.paths("")...)
	return Result{Success: true, Message: e.noun + " deleted successfully!", ID: id}
}

// saveSingleton writes the single row of a singleton table. With an empty
// id the existing row is updated, or created when the table is empty.
// Blank values are not written.
func (s *Service) saveSingleton(ctx context.Context, e entity, id string, input map[string]any) Result {
	failMsg := "Failed to update " + lower(e.noun) + "."

	if err := Validate(e.schema, ModeUpdate, normalize.Clean(e.table, input)); err != nil {
		return s.fail(err, failMsg)
	}
	fields := normalize.Patch(e.table, input)
	if len(fields) == 0 {
		return Result{Success: true, Message: "Nothing to update."}
	}

	id = strings.TrimSpace(id)
	if id == "" {
		if rows := s.store.ListRecords(ctx, e.table); len(rows) > 0 {
			id = rows[0].ID
		}
	}

	var (
		rec store.Record
		err error
	)
	if id == "" {
		rec, err = s.store.CreateRecord(ctx, e.table, fields)
	} else {
		rec, err = s.store.UpdateRecord(ctx, e.table, id, fields)
	}
	if err != nil {
		return s.fail(err, failMsg)
	}

	s.inval.Invalidate(e.paths("")...)
	return Result{Success: true, Message: e.noun + " updated successfully!", ID: rec.ID}
}

// fail converts err into a failed Result. Validation errors carry their
// field messages; everything else is logged.
func (s *Service) fail(err error, msg string) Result {
	fe := errors.As(err)
	res := Result{Success: false, Message: msg, Code: fe.Code}
	switch fe.Code {
	case errors.ErrValidation:
		res.Message = "Please correct the highlighted fields."
		res.FieldErrors = errors.FieldErrors(fe)
	case errors.ErrInvalidRequest, errors.ErrNotFound:
		res.Message = msg + " " + capitalize(fe.Message) + "."
	default:
		s.log.WithFields(logrus.Fields{"code": fe.Code, "error": err}).Error(msg)
	}
	return res
}

func lower(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
