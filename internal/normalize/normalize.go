// Package normalize maps raw store records and feed items onto the content
// model. Every function is pure and total: missing or malformed fields take
// their documented default, never a nil list or an absent value.
package normalize

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/store"
)

// Defaults for optional fields.
const (
	NotAvailable = "N/A"
	DefaultLink  = "#"
)

// paragraphDelimiter separates about-page paragraphs at rest. The admin form
// stores a literal backslash-n sequence.
const paragraphDelimiter = `\n`

// Project maps a Projects row.
func Project(r store.Record) content.Project {
	f := r.Fields
	title := text(f, "title")

	slug := text(f, "slug")
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		if link := text(f, "link"); link != DefaultLink {
			if _, ok := absoluteURL(link); ok {
				slug = SlugFromLink(link)
			}
		}
	}
	category, ok := content.ParseProjectCategory(text(f, "category"))
	if !ok {
		category = content.DefaultProjectCategory
	}

	return content.Project{
		ID:               r.ID,
		Slug:             slug,
		Title:            title,
		Category:         category,
		Description:      text(f, "description"),
		ImageRef:         attachment(f, "imageId"),
		GalleryImageRefs: attachments(f, "galleryImageIds"),
		Link:             textOr(f, "link", DefaultLink),
		Role:             textOr(f, "role", NotAvailable),
		Duration:         textOr(f, "duration", NotAvailable),
		Technologies:     list(f, "technologies"),
		Overview:         text(f, "overview"),
		Process:          text(f, "process"),
		Outcomes:         text(f, "outcomes"),
		Featured:         flag(f, "featured"),
		Tags:             list(f, "tags"),
	}
}

// JournalPost maps a Journal row.
func JournalPost(r store.Record) content.JournalPost {
	f := r.Fields
	category := text(f, "category")
	if c, ok := content.ParseJournalCategory(category); ok {
		category = string(c)
	} else if category == "" {
		category = content.DefaultJournalCategory
	}

	return content.JournalPost{
		ID:          r.ID,
		Title:       text(f, "title"),
		Category:    category,
		Description: text(f, "description"),
		ImageRef:    attachment(f, "imageId"),
		Link:        textOr(f, "link", DefaultLink),
		Tags:        list(f, "tags"),
	}
}

// Skill maps a Skills row. Unknown categories are kept verbatim so grouping
// can sort them last instead of dropping them.
func Skill(r store.Record) content.Skill {
	raw := text(r.Fields, "category")
	group, ok := content.ParseSkillGroup(raw)
	switch {
	case ok:
	case raw != "":
		group = content.SkillGroup(raw)
	default:
		group = content.DefaultSkillGroup
	}
	return content.Skill{
		ID:       r.ID,
		Name:     text(r.Fields, "name"),
		Category: group,
	}
}

// CVItem maps a CV_Experience or CV_Education row.
func CVItem(r store.Record) content.CVItem {
	f := r.Fields
	return content.CVItem{
		ID:          r.ID,
		Date:        text(f, "date"),
		Title:       text(f, "title"),
		Subtitle:    text(f, "subtitle"),
		Description: text(f, "description"),
	}
}

// Projects maps every row.
func Projects(rs []store.Record) []content.Project {
	out := make([]content.Project, 0, len(rs))
	for _, r := range rs {
		out = append(out, Project(r))
	}
	return out
}

// JournalPosts maps every row.
func JournalPosts(rs []store.Record) []content.JournalPost {
	out := make([]content.JournalPost, 0, len(rs))
	for _, r := range rs {
		out = append(out, JournalPost(r))
	}
	return out
}

// Skills maps every row.
func Skills(rs []store.Record) []content.Skill {
	out := make([]content.Skill, 0, len(rs))
	for _, r := range rs {
		out = append(out, Skill(r))
	}
	return out
}

// CVItems maps every row.
func CVItems(rs []store.Record) []content.CVItem {
	out := make([]content.CVItem, 0, len(rs))
	for _, r := range rs {
		out = append(out, CVItem(r))
	}
	return out
}

// GroupSkills buckets skills by category. Known categories come first in
// their fixed order; unknown ones follow in first-seen order.
func GroupSkills(skills []content.Skill) []content.SkillCategory {
	var order []content.SkillGroup
	buckets := make(map[content.SkillGroup][]string)
	for _, s := range skills {
		if _, seen := buckets[s.Category]; !seen {
			order = append(order, s.Category)
			buckets[s.Category] = []string{}
		}
		if s.Name != "" {
			buckets[s.Category] = append(buckets[s.Category], s.Name)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Rank() < order[j].Rank()
	})

	out := make([]content.SkillCategory, 0, len(order))
	for _, g := range order {
		out = append(out, content.SkillCategory{
			Category: string(g),
			Icon:     g.Icon(),
			Items:    buckets[g],
		})
	}
	return out
}

// SiteSettings maps the first SiteSettings row, or returns the fallback.
func SiteSettings(rs []store.Record) content.SiteSettings {
	if len(rs) == 0 {
		return content.DefaultSiteSettings()
	}
	r := rs[0]
	f := r.Fields

	links := []content.SocialLink{}
	for _, n := range content.SocialNetworks {
		href := text(f, n.Field())
		if href == "" {
			continue
		}
		if n == content.SocialEmail && !strings.HasPrefix(href, "mailto:") {
			href = "mailto:" + href
		}
		links = append(links, content.SocialLink{Name: n, Href: href})
	}

	return content.SiteSettings{
		ID:        r.ID,
		SiteTitle: text(f, "siteTitle"),
		Hero: content.Hero{
			Headline: text(f, "heroHeadline"),
			Tagline:  text(f, "heroTagline"),
			Intro:    text(f, "heroIntro"),
		},
		Footer: content.Footer{
			Text:        text(f, "footerText"),
			SocialLinks: links,
		},
	}
}

// AboutContent maps the first About row, or returns the fallback.
func AboutContent(rs []store.Record) content.AboutContent {
	if len(rs) == 0 {
		return content.DefaultAboutContent()
	}
	r := rs[0]
	f := r.Fields

	highlights := []content.Highlight{}
	for _, k := range content.HighlightKinds {
		if d := text(f, k.Field()); d != "" {
			highlights = append(highlights, content.Highlight{Title: k, Description: d})
		}
	}

	return content.AboutContent{
		ID:              r.ID,
		Headline:        text(f, "headline"),
		ShortText:       text(f, "shortText"),
		FullText:        SplitParagraphs(text(f, "fullText")),
		Highlights:      highlights,
		ProfileImageRef: attachment(f, "profileImageId"),
	}
}

// ContactContent maps the first Contact row, or returns the fallback. Blank
// fields of an existing row also take the fallback text.
func ContactContent(rs []store.Record) content.ContactContent {
	def := content.DefaultContactContent()
	if len(rs) == 0 {
		return def
	}
	r := rs[0]
	return content.ContactContent{
		ID:        r.ID,
		IntroText: textOr(r.Fields, "introText", def.IntroText),
		CTALine:   textOr(r.Fields, "ctaLine", def.CTALine),
	}
}

// SplitParagraphs splits stored about text on the literal delimiter and on
// real newlines. Blank paragraphs are dropped.
func SplitParagraphs(s string) []string {
	s = strings.ReplaceAll(s, paragraphDelimiter, "\n")
	return nonEmpty(strings.Split(s, "\n"))
}

// JoinParagraphs is the stored form of paragraphs.
func JoinParagraphs(ps []string) string {
	return strings.Join(nonEmpty(ps), paragraphDelimiter)
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Slugify lowercases s, folds accents and joins alphanumeric runs with '-'.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks, norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
