package normalize

import (
	"strings"

	"github.com/hpungsan/folio/internal/content"
)

// Columns lists the writable store fields of each table. Admin input uses
// the same names.
func Columns(t content.Table) []string {
	switch t {
	case content.TableProjects:
		return []string{
			"slug", "title", "category", "description", "imageId", "galleryImageIds",
			"link", "role", "duration", "technologies", "overview", "process",
			"outcomes", "featured", "tags",
		}
	case content.TableJournal:
		return []string{"title", "category", "description", "imageId", "link", "tags"}
	case content.TableSkills:
		return []string{"name", "category"}
	case content.TableCVExperience, content.TableCVEducation:
		return []string{"date", "title", "subtitle", "description"}
	case content.TableSiteSettings:
		cols := []string{"siteTitle", "heroHeadline", "heroTagline", "heroIntro", "footerText"}
		for _, n := range content.SocialNetworks {
			cols = append(cols, n.Field())
		}
		return cols
	case content.TableAbout:
		cols := []string{"headline", "shortText", "fullText", "profileImageId"}
		for _, k := range content.HighlightKinds {
			cols = append(cols, k.Field())
		}
		return cols
	case content.TableContact:
		return []string{"introText", "ctaLine"}
	default:
		return nil
	}
}

// Patch turns admin input into store fields for t: Clean, then for singleton
// tables DropBlank, so a blank form field never clears stored text.
func Patch(t content.Table, input map[string]any) map[string]any {
	out := Clean(t, input)
	if t.Singleton() {
		DropBlank(out)
	}
	return out
}

// DropBlank removes empty strings from fields in place.
func DropBlank(fields map[string]any) {
	for k, v := range fields {
		if s, ok := v.(string); ok && s == "" {
			delete(fields, k)
		}
	}
}

// Clean whitelists input against the columns of t. Strings are trimmed, list
// fields coerced to []string and enum categories canonicalized.
func Clean(t content.Table, input map[string]any) map[string]any {
	listCols := make(map[string]bool)
	for _, c := range t.ListFields() {
		listCols[c] = true
	}

	out := make(map[string]any)
	for _, col := range Columns(t) {
		v, ok := input[col]
		if !ok || v == nil {
			continue
		}

		switch {
		case listCols[col]:
			out[col] = list(input, col)
			continue
		case t == content.TableAbout && col == "fullText":
			v = joinAny(v)
		case t == content.TableSiteSettings && col == content.SocialEmail.Field():
			if s, ok := v.(string); ok {
				v = strings.TrimPrefix(strings.TrimSpace(s), "mailto:")
			}
		case col == "category":
			v = canonicalCategory(t, v)
		}

		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		out[col] = v
	}
	return out
}

// canonicalCategory rewrites a case-insensitive enum match to its canonical
// spelling. Anything unrecognized is returned as given for validation to reject.
func canonicalCategory(t content.Table, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch t {
	case content.TableProjects:
		if c, ok := content.ParseProjectCategory(s); ok {
			return string(c)
		}
	case content.TableJournal:
		if c, ok := content.ParseJournalCategory(s); ok {
			return string(c)
		}
	case content.TableSkills:
		if g, ok := content.ParseSkillGroup(s); ok {
			return string(g)
		}
	}
	return s
}

func joinAny(v any) any {
	switch p := v.(type) {
	case []string:
		return JoinParagraphs(p)
	case []any:
		return JoinParagraphs(list(map[string]any{"v": p}, "v"))
	default:
		return v
	}
}

// ProjectFields is the admin input describing p.
func ProjectFields(p content.Project) map[string]any {
	return map[string]any{
		"slug":            p.Slug,
		"title":           p.Title,
		"category":        string(p.Category),
		"description":     p.Description,
		"imageId":         p.ImageRef,
		"galleryImageIds": orEmpty(p.GalleryImageRefs),
		"link":            p.Link,
		"role":            p.Role,
		"duration":        p.Duration,
		"technologies":    orEmpty(p.Technologies),
		"overview":        p.Overview,
		"process":         p.Process,
		"outcomes":        p.Outcomes,
		"featured":        p.Featured,
		"tags":            orEmpty(p.Tags),
	}
}

// JournalFields is the admin input describing p.
func JournalFields(p content.JournalPost) map[string]any {
	return map[string]any{
		"title":       p.Title,
		"category":    p.Category,
		"description": p.Description,
		"imageId":     p.ImageRef,
		"link":        p.Link,
		"tags":        orEmpty(p.Tags),
	}
}

// SkillFields is the admin input describing s.
func SkillFields(s content.Skill) map[string]any {
	return map[string]any{"name": s.Name, "category": string(s.Category)}
}

// CVFields is the admin input describing c.
func CVFields(c content.CVItem) map[string]any {
	return map[string]any{
		"date":        c.Date,
		"title":       c.Title,
		"subtitle":    c.Subtitle,
		"description": c.Description,
	}
}

// SiteSettingsFields is the admin input describing s.
func SiteSettingsFields(s content.SiteSettings) map[string]any {
	out := map[string]any{
		"siteTitle":    s.SiteTitle,
		"heroHeadline": s.Hero.Headline,
		"heroTagline":  s.Hero.Tagline,
		"heroIntro":    s.Hero.Intro,
		"footerText":   s.Footer.Text,
	}
	for _, l := range s.Footer.SocialLinks {
		if col := l.Name.Field(); col != "" {
			out[col] = l.Href
		}
	}
	return out
}

// AboutFields is the admin input describing a.
func AboutFields(a content.AboutContent) map[string]any {
	out := map[string]any{
		"headline":       a.Headline,
		"shortText":      a.ShortText,
		"fullText":       orEmpty(a.FullText),
		"profileImageId": a.ProfileImageRef,
	}
	for _, h := range a.Highlights {
		if col := h.Title.Field(); col != "" {
			out[col] = h.Description
		}
	}
	return out
}

// ContactFields is the admin input describing c.
func ContactFields(c content.ContactContent) map[string]any {
	return map[string]any{"introText": c.IntroText, "ctaLine": c.CTALine}
}

// Fields dispatches to the entity mapper for a record of t held in v.
// It reports false when v does not match t.
func Fields(t content.Table, v any) (map[string]any, bool) {
	switch e := v.(type) {
	case content.Project:
		return ProjectFields(e), t == content.TableProjects
	case content.JournalPost:
		return JournalFields(e), t == content.TableJournal
	case content.Skill:
		return SkillFields(e), t == content.TableSkills
	case content.CVItem:
		return CVFields(e), t == content.TableCVExperience || t == content.TableCVEducation
	case content.SiteSettings:
		return SiteSettingsFields(e), t == content.TableSiteSettings
	case content.AboutContent:
		return AboutFields(e), t == content.TableAbout
	case content.ContactContent:
		return ContactFields(e), t == content.TableContact
	default:
		return nil, false
	}
}

func orEmpty(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
