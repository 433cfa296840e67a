package ops

import (
	"context"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/errors"
)

var (
	projectEntity = entity{
		table:  content.TableProjects,
		noun:   "Project",
		schema: SchemaProject,
		paths: func(slug string) []string {
			detail := PathWork + "/*"
			if slug != "" {
				detail = PathWork + "/" + slug
			}
			return []string{PathHome, PathWork, detail, PathAdmin}
		},
	}
	journalEntity = entity{
		table:  content.TableJournal,
		noun:   "Journal post",
		schema: SchemaJournal,
		paths:  func(string) []string { return []string{PathHome, PathJournal, PathAdmin} },
	}
	skillEntity = entity{
		table:  content.TableSkills,
		noun:   "Skill",
		schema: SchemaSkill,
		paths:  func(string) []string { return []string{PathHome, PathAbout, PathAdmin} },
	}
	settingsEntity = entity{
		table:  content.TableSiteSettings,
		noun:   "Site settings",
		schema: SchemaSettings,
		paths:  func(string) []string { return []string{PathAll} },
	}
	aboutEntity = entity{
		table:  content.TableAbout,
		noun:   "About content",
		schema: SchemaAbout,
		paths:  func(string) []string { return []string{PathHome, PathAbout, PathAdmin} },
	}
	contactEntity = entity{
		table:  content.TableContact,
		noun:   "Contact content",
		schema: SchemaContact,
		paths:  func(string) []string { return []string{PathHome, PathContact, PathAdmin} },
	}
)

func cvEntity(kind content.CVKind) entity {
	return entity{
		table:  kind.Table(),
		noun:   "CV item",
		schema: SchemaCV,
		paths:  func(string) []string { return []string{PathCV, PathAdmin} },
	}
}

// CreateProject adds a project.
func (s *Service) CreateProject(ctx context.Context, input map[string]any) Result {
	return s.create(ctx, projectEntity, input)
}

// UpdateProject patches project id with the fields present in input.
// List fields may be given as lists or comma-separated strings.
func (s *Service) UpdateProject(ctx context.Context, id string, input map[string]any) Result {
	return s.update(ctx, projectEntity, id, input)
}

// DeleteProject removes project id.
func (s *Service) DeleteProject(ctx context.Context, id string) Result {
	return s.remove(ctx, projectEntity, id)
}

// CreateJournalPost adds a journal post.
func (s *Service) CreateJournalPost(ctx context.Context, input map[string]any) Result {
	return s.create(ctx, journalEntity, input)
}

// UpdateJournalPost patches journal post id.
func (s *Service) UpdateJournalPost(ctx context.Context, id string, input map[string]any) Result {
	return s.update(ctx, journalEntity, id, input)
}

// DeleteJournalPost removes journal post id.
func (s *Service) DeleteJournalPost(ctx context.Context, id string) Result {
	return s.remove(ctx, journalEntity, id)
}

// CreateSkill adds a skill.
func (s *Service) CreateSkill(ctx context.Context, input map[string]any) Result {
	return s.create(ctx, skillEntity, input)
}

// UpdateSkill patches skill id.
func (s *Service) UpdateSkill(ctx context.Context, id string, input map[string]any) Result {
	return s.update(ctx, skillEntity, id, input)
}

// DeleteSkill removes skill id.
func (s *Service) DeleteSkill(ctx context.Context, id string) Result {
	return s.remove(ctx, skillEntity, id)
}

// CreateCVItem adds an experience or education entry.
func (s *Service) CreateCVItem(ctx context.Context, kind content.CVKind, input map[string]any) Result {
	return s.create(ctx, cvEntity(kind), input)
}

// UpdateCVItem patches CV entry id.
func (s *Service) UpdateCVItem(ctx context.Context, kind content.CVKind, id string, input map[string]any) Result {
	return s.update(ctx, cvEntity(kind), id, input)
}

// DeleteCVItem removes CV entry id.
func (s *Service) DeleteCVItem(ctx context.Context, kind content.CVKind, id string) Result {
	return s.remove(ctx, cvEntity(kind), id)
}

// UpdateSiteSettings writes the site settings row. Every page shows the
// header and footer, so the whole cache is dropped.
func (s *Service) UpdateSiteSettings(ctx context.Context, id string, input map[string]any) Result {
	return s.saveSingleton(ctx, settingsEntity, id, input)
}

// UpdateAbout writes the about row. fullText may be a list of paragraphs.
func (s *Service) UpdateAbout(ctx context.Context, id string, input map[string]any) Result {
	return s.saveSingleton(ctx, aboutEntity, id, input)
}

// UpdateContact writes the contact row.
func (s *Service) UpdateContact(ctx context.Context, id string, input map[string]any) Result {
	return s.saveSingleton(ctx, contactEntity, id, input)
}

// entityFor returns the action descriptor of table t.
func entityFor(t content.Table) (entity, bool) {
	switch t {
	case content.TableProjects:
		return projectEntity, true
	case content.TableJournal:
		return journalEntity, true
	case content.TableSkills:
		return skillEntity, true
	case content.TableCVExperience:
		return cvEntity(content.CVExperience), true
	case content.TableCVEducation:
		return cvEntity(content.CVEducation), true
	case content.TableSiteSettings:
		return settingsEntity, true
	case content.TableAbout:
		return aboutEntity, true
	case content.TableContact:
		return contactEntity, true
	default:
		return entity{}, false
	}
}

// kindTable maps a section kind to its table.
func kindTable(k Kind) (content.Table, bool) {
	switch k {
	case KindProjects:
		return content.TableProjects, true
	case KindJournal:
		return content.TableJournal, true
	case KindSkills:
		return content.TableSkills, true
	case KindExperience:
		return content.TableCVExperience, true
	case KindEducation:
		return content.TableCVEducation, true
	case KindSettings:
		return content.TableSiteSettings, true
	case KindAbout:
		return content.TableAbout, true
	case KindContact:
		return content.TableContact, true
	default:
		return "", false
	}
}

func (s *Service) listEntity(k Kind) (entity, error) {
	t, ok := kindTable(k)
	if !ok || t.Singleton() {
		return entity{}, errors.NewNotFound("section", string(k))
	}
	e, _ := entityFor(t)
	return e, nil
}

// CreateEntry adds an entry to list section k.
func (s *Service) CreateEntry(ctx context.Context, k Kind, input map[string]any) Result {
	e, err := s.listEntity(k)
	if err != nil {
		return s.fail(err, "Failed to create entry.")
	}
	return s.create(ctx, e, input)
}

// UpdateEntry patches entry id of list section k.
func (s *Service) UpdateEntry(ctx context.Context, k Kind, id string, input map[string]any) Result {
	e, err := s.listEntity(k)
	if err != nil {
		return s.fail(err, "Failed to update entry.")
	}
	return s.update(ctx, e, id, input)
}

// DeleteEntry removes entry id of list section k.
func (s *Service) DeleteEntry(ctx context.Context, k Kind, id string) Result {
	e, err := s.listEntity(k)
	if err != nil {
		return s.fail(err, "Failed to delete entry.")
	}
	return s.remove(ctx, e, id)
}

// UpdateSection writes singleton section k.
func (s *Service) UpdateSection(ctx context.Context, k Kind, id string, input map[string]any) Result {
	t, ok := kindTable(k)
	if !ok || !t.Singleton() {
		return s.fail(errors.NewNotFound("section", string(k)), "Failed to update section.")
	}
	e, _ := entityFor(t)
	return s.saveSingleton(ctx, e, id, input)
}
