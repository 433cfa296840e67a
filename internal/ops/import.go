package ops

import (
	"context"
	"fmt"
	"io"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/facade"
	"github.com/hpungsan/folio/internal/normalize"
)

// ImportMode controls what happens to rows already in the store.
type ImportMode string

const (
	ImportModeAppend  ImportMode = "append"  // default: add every entry
	ImportModeReplace ImportMode = "replace" // delete existing list rows first
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required, a YAML content file
	Mode ImportMode // default: append
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Deleted  int           `json:"deleted"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes an entry the store did not accept.
type ImportError struct {
	Table       content.Table     `json:"table"`
	Index       int               `json:"index"`
	Label       string            `json:"label,omitempty"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

type importItem struct {
	table  content.Table
	index  int
	label  string
	fields map[string]any
}

// Import copies a YAML content file into the store through the regular
// actions, so every entry is validated. Entries that fail are reported and
// the rest still go in.
func (s *Service) Import(ctx context.Context, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeAppend
	}
	if input.Mode != ImportModeAppend && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: append, replace")
	}
	if !s.store.Configured() {
		return nil, errors.NewInvalidRequest("import needs a writable backend (airtable, sqlite or postgres)")
	}
	if err := ValidatePath(input.Path, PathCheckRead, nil); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	doc, err := facade.DecodeDocument(data)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid content file: %v", err))
	}

	out := &ImportOutput{Errors: []ImportError{}}
	if input.Mode == ImportModeReplace {
		n, err := s.clearLists(ctx)
		out.Deleted = n
		if err != nil {
			return out, err
		}
	}

	for _, it := range importItems(doc) {
		e, _ := entityFor(it.table)
		var res Result
		if it.table.Singleton() {
			res = s.saveSingleton(ctx, e, "", it.fields)
		} else {
			res = s.create(ctx, e, it.fields)
		}

		switch {
		case !res.Success:
			out.Errors = append(out.Errors, ImportError{
				Table:       it.table,
				Index:       it.index,
				Label:       it.label,
				Message:     res.Message,
				FieldErrors: res.FieldErrors,
			})
		case res.ID == "":
			out.Skipped++
		default:
			out.Imported++
		}
	}
	return out, nil
}

// clearLists deletes every row of the list tables.
func (s *Service) clearLists(ctx context.Context) (int, error) {
	n := 0
	for _, t := range content.Tables {
		if t.Singleton() {
			continue
		}
		for _, r := range s.store.ListRecords(ctx, t) {
			if err := s.store.DeleteRecord(ctx, t, r.ID); err != nil {
				return n, err
			}
			n++
		}
	}
	s.inval.Invalidate(PathAll)
	return n, nil
}

func importItems(doc *facade.Document) []importItem {
	var items []importItem
	items = append(items,
		importItem{table: content.TableSiteSettings, label: "siteSettings", fields: normalize.SiteSettingsFields(doc.SiteSettings)},
		importItem{table: content.TableAbout, label: "about", fields: normalize.AboutFields(doc.About)},
		importItem{table: content.TableContact, label: "contact", fields: normalize.ContactFields(doc.Contact)},
	)
	for i, p := range doc.Projects {
		items = append(items, importItem{content.TableProjects, i, p.Slug, normalize.ProjectFields(p)})
	}
	for i, p := range doc.Journal {
		items = append(items, importItem{content.TableJournal, i, p.Title, normalize.JournalFields(p)})
	}
	for i, sk := range doc.Skills {
		items = append(items, importItem{content.TableSkills, i, sk.Name, normalize.SkillFields(sk)})
	}
	for i, c := range doc.Experience {
		items = append(items, importItem{content.TableCVExperience, i, c.Title, normalize.CVFields(c)})
	}
	for i, c := range doc.Education {
		items = append(items, importItem{content.TableCVEducation, i, c.Title, normalize.CVFields(c)})
	}
	return items
}
