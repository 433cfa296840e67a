package facade

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/logging"
	"github.com/hpungsan/folio/internal/normalize"
	"github.com/hpungsan/folio/internal/store"
)

const reloadDebounce = 100 * time.Millisecond

// Document is the YAML content file served by StaticSource and read by
// `folio seed`.
type Document struct {
	SiteSettings content.SiteSettings   `yaml:"siteSettings"`
	About        content.AboutContent   `yaml:"about"`
	Contact      content.ContactContent `yaml:"contact"`
	Projects     []content.Project      `yaml:"projects"`
	Journal      []content.JournalPost  `yaml:"journal"`
	Skills       []content.Skill        `yaml:"skills"`
	Experience   []content.CVItem       `yaml:"experience"`
	Education    []content.CVItem       `yaml:"education"`
}

// ReadDocument parses the YAML file at path and fills every default the
// record mappers would apply.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("invalid content file %s: %w", path, err)
	}
	return doc, nil
}

// DecodeDocument parses YAML content and fills defaults.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc.fillDefaults()
	return &doc, nil
}

// Snapshot reads every section of src into a Document.
func Snapshot(ctx context.Context, src Source) *Document {
	return &Document{
		SiteSettings: src.SiteSettings(ctx),
		About:        src.AboutContent(ctx),
		Contact:      src.ContactContent(ctx),
		Projects:     src.Projects(ctx),
		Journal:      src.JournalPosts(ctx),
		Skills:       src.Skills(ctx),
		Experience:   src.CVExperience(ctx),
		Education:    src.CVEducation(ctx),
	}
}

// fillDefaults routes every entry through the record mappers so static
// content obeys the same defaults as store content.
func (d *Document) fillDefaults() {
	for i, p := range d.Projects {
		d.Projects[i] = normalize.Project(record(p.ID, normalize.ProjectFields(p)))
		d.Projects[i].Content = p.Content
		if d.Projects[i].ID == "" {
			d.Projects[i].ID = d.Projects[i].Slug
		}
	}
	for i, j := range d.Journal {
		published := j.PublishedAt
		d.Journal[i] = normalize.JournalPost(record(j.ID, normalize.JournalFields(j)))
		d.Journal[i].PublishedAt = published
	}
	for i, s := range d.Skills {
		d.Skills[i] = normalize.Skill(record(s.ID, normalize.SkillFields(s)))
	}
	d.Projects = orEmpty(d.Projects)
	d.Journal = orEmpty(d.Journal)
	d.Skills = orEmpty(d.Skills)
	d.Experience = orEmpty(d.Experience)
	d.Education = orEmpty(d.Education)

	if d.SiteSettings.Footer.SocialLinks == nil {
		d.SiteSettings.Footer.SocialLinks = []content.SocialLink{}
	}
	if d.About.FullText == nil {
		d.About.FullText = []string{}
	}
	if d.About.Highlights == nil {
		d.About.Highlights = []content.Highlight{}
	}
	def := content.DefaultContactContent()
	if d.Contact.IntroText == "" {
		d.Contact.IntroText = def.IntroText
	}
	if d.Contact.CTALine == "" {
		d.Contact.CTALine = def.CTALine
	}
}

// StaticSource serves a YAML content file and reloads it when it changes.
type StaticSource struct {
	path string
	log  *logrus.Entry

	mu       sync.RWMutex
	doc      *Document
	onReload func()
}

// NewStaticSource loads path. A missing or invalid file is an error here;
// later reload failures keep the last good content.
func NewStaticSource(path string, logger logrus.FieldLogger) (*StaticSource, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return &StaticSource{path: path, doc: doc, log: logging.Component(logger, "static")}, nil
}

// Reload re-reads the file.
func (s *StaticSource) Reload() error {
	doc, err := ReadDocument(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// OnReload registers fn to run after each successful reload by Watch.
func (s *StaticSource) OnReload(fn func()) {
	s.mu.Lock()
	s.onReload = fn
	s.mu.Unlock()
}

// Watch reloads the file on change until ctx is done. The parent directory is
// watched so editors that replace the file by rename are picked up.
func (s *StaticSource) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}

	target := filepath.Clean(s.path)
	var timer *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			if err := s.Reload(); err != nil {
				s.log.WithError(err).Warn("content file reload failed; keeping previous content")
				continue
			}
			s.log.WithField("path", s.path).Info("content file reloaded")
			s.mu.RLock()
			fn := s.onReload
			s.mu.RUnlock()
			if fn != nil {
				fn()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.WithError(err).Warn("content watcher error")
		}
	}
}

func (s *StaticSource) current() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

func (s *StaticSource) Projects(context.Context) []content.Project {
	return s.current().Projects
}

func (s *StaticSource) JournalPosts(context.Context) []content.JournalPost {
	return s.current().Journal
}

func (s *StaticSource) Skills(context.Context) []content.Skill {
	return s.current().Skills
}

func (s *StaticSource) GroupedSkills(ctx context.Context) []content.SkillCategory {
	return normalize.GroupSkills(s.Skills(ctx))
}

func (s *StaticSource) CVExperience(context.Context) []content.CVItem {
	return s.current().Experience
}

func (s *StaticSource) CVEducation(context.Context) []content.CVItem {
	return s.current().Education
}

func (s *StaticSource) SiteSettings(context.Context) content.SiteSettings {
	return s.current().SiteSettings
}

func (s *StaticSource) AboutContent(context.Context) content.AboutContent {
	return s.current().About
}

func (s *StaticSource) ContactContent(context.Context) content.ContactContent {
	return s.current().Contact
}

func record(id string, fields map[string]any) store.Record {
	return store.Record{ID: id, Fields: fields}
}

func orEmpty[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
