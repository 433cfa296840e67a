package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/facade"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Kind names a readable content section.
type Kind string

const (
	KindProjects   Kind = "projects"
	KindJournal    Kind = "journal"
	KindSkills     Kind = "skills"
	KindExperience Kind = "experience"
	KindEducation  Kind = "education"
	KindSettings   Kind = "settings"
	KindAbout      Kind = "about"
	KindContact    Kind = "contact"
)

// Kinds lists every kind.
var Kinds = []Kind{
	KindProjects, KindJournal, KindSkills, KindExperience,
	KindEducation, KindSettings, KindAbout, KindContact,
}

// ParseKind matches s case-insensitively.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if strings.EqualFold(strings.TrimSpace(s), string(k)) {
			return k, true
		}
	}
	return "", false
}

// Singleton reports whether the kind is a single object rather than a list.
func (k Kind) Singleton() bool {
	switch k {
	case KindSettings, KindAbout, KindContact:
		return true
	default:
		return false
	}
}

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// ListInput contains parameters for the List operation.
type ListInput struct {
	Kind   Kind // required, a list kind
	Limit  int  // default: 20, max: 100
	Offset int  // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Kind       Kind       `json:"kind"`
	Items      any        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// List returns one page of a list section, normalized.
func List(ctx context.Context, src facade.Source, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	out := &ListOutput{Kind: input.Kind}
	var total int
	switch input.Kind {
	case KindProjects:
		out.Items, total = page(src.Projects(ctx), limit, offset)
	case KindJournal:
		out.Items, total = page(src.JournalPosts(ctx), limit, offset)
	case KindSkills:
		out.Items, total = page(src.Skills(ctx), limit, offset)
	case KindExperience:
		out.Items, total = page(src.CVExperience(ctx), limit, offset)
	case KindEducation:
		out.Items, total = page(src.CVEducation(ctx), limit, offset)
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("%q is not a list kind", input.Kind))
	}

	out.Pagination = Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
		Total:   total,
	}
	return out, nil
}

// Get returns a singleton section.
func Get(ctx context.Context, src facade.Source, kind Kind) (any, error) {
	switch kind {
	case KindSettings:
		return src.SiteSettings(ctx), nil
	case KindAbout:
		return src.AboutContent(ctx), nil
	case KindContact:
		return src.ContactContent(ctx), nil
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("%q is not a singleton kind", kind))
	}
}

// ProjectBySlug returns the project with slug or NOT_FOUND.
func ProjectBySlug(ctx context.Context, src facade.Source, slug string) (content.Project, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return content.Project{}, errors.NewInvalidRequest("slug is required")
	}
	p, ok := facade.ProjectBySlug(ctx, src, slug)
	if !ok {
		return content.Project{}, errors.NewNotFound("project", slug)
	}
	return p, nil
}

func page[T any](xs []T, limit, offset int) ([]T, int) {
	total := len(xs)
	if offset >= total {
		return []T{}, total
	}
	end := min(offset+limit, total)
	return xs[offset:end], total
}
