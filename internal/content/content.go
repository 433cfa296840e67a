// Package content defines the normalized content model served to page
// renderers, admin actions and MCP tools. Nothing in this package knows which
// backend produced a value.
package content

import "time"

// Project is a portfolio case study.
type Project struct {
	ID               string          `json:"id" yaml:"id"`
	Slug             string          `json:"slug" yaml:"slug"`
	Title            string          `json:"title" yaml:"title"`
	Category         ProjectCategory `json:"category" yaml:"category"`
	Description      string          `json:"description" yaml:"description"`
	ImageRef         string          `json:"imageRef" yaml:"imageRef"`
	GalleryImageRefs []string        `json:"galleryImageRefs" yaml:"galleryImageRefs"`
	Link             string          `json:"link" yaml:"link"`
	Role             string          `json:"role" yaml:"role"`
	Duration         string          `json:"duration" yaml:"duration"`
	Technologies     []string        `json:"technologies" yaml:"technologies"`
	Overview         string          `json:"overview" yaml:"overview"`
	Process          string          `json:"process" yaml:"process"`
	Outcomes         string          `json:"outcomes" yaml:"outcomes"`
	Featured         bool            `json:"featured" yaml:"featured"`

	// Content is the plain-text body of feed-sourced projects.
	Content string   `json:"content,omitempty" yaml:"content,omitempty"`
	Tags    []string `json:"tags" yaml:"tags"`
}

// JournalPost is a journal entry. Category is free-form when the post came
// from feed tags, otherwise one of the JournalCategory values.
type JournalPost struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Category    string     `json:"category" yaml:"category"`
	Description string     `json:"description" yaml:"description"`
	ImageRef    string     `json:"imageRef" yaml:"imageRef"`
	Link        string     `json:"link" yaml:"link"`
	Tags        []string   `json:"tags" yaml:"tags"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
}

// Skill is a single skill row.
type Skill struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Category SkillGroup `json:"category" yaml:"category"`
}

// SkillCategory is the grouped view of skills shown on the home and about pages.
type SkillCategory struct {
	Category string   `json:"category"`
	Icon     string   `json:"icon"`
	Items    []string `json:"items"`
}

// CVItem is one experience or education entry. Which list it belongs to is
// decided by the table it was read from.
type CVItem struct {
	ID          string `json:"id" yaml:"id"`
	Date        string `json:"date" yaml:"date"`
	Title       string `json:"title" yaml:"title"`
	Subtitle    string `json:"subtitle" yaml:"subtitle"`
	Description string `json:"description" yaml:"description"`
}

// Hero is the home page hero block.
type Hero struct {
	Headline string `json:"headline" yaml:"headline"`
	Tagline  string `json:"tagline" yaml:"tagline"`
	Intro    string `json:"intro" yaml:"intro"`
}

// SocialLink is a footer link.
type SocialLink struct {
	Name SocialNetwork `json:"name" yaml:"name"`
	Href string        `json:"href" yaml:"href"`
}

// Footer is the site footer.
type Footer struct {
	Text        string       `json:"text" yaml:"text"`
	SocialLinks []SocialLink `json:"socialLinks" yaml:"socialLinks"`
}

// SiteSettings is the site-wide singleton.
type SiteSettings struct {
	ID        string `json:"id" yaml:"id"`
	SiteTitle string `json:"siteTitle" yaml:"siteTitle"`
	Hero      Hero   `json:"hero" yaml:"hero"`
	Footer    Footer `json:"footer" yaml:"footer"`
}

// Highlight is one of the fixed about-page highlight entries.
type Highlight struct {
	Title       HighlightKind `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
}

// AboutContent is the about-page singleton.
type AboutContent struct {
	ID              string      `json:"id" yaml:"id"`
	Headline        string      `json:"headline" yaml:"headline"`
	ShortText       string      `json:"shortText" yaml:"shortText"`
	FullText        []string    `json:"fullText" yaml:"fullText"`
	Highlights      []Highlight `json:"highlights" yaml:"highlights"`
	ProfileImageRef string      `json:"profileImageRef" yaml:"profileImageRef"`
}

// ContactContent is the contact-section singleton.
type ContactContent struct {
	ID        string `json:"id" yaml:"id"`
	IntroText string `json:"introText" yaml:"introText"`
	CTALine   string `json:"ctaLine" yaml:"ctaLine"`
}

// DefaultSiteSettings is served when the settings table has no row.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		Hero:   Hero{},
		Footer: Footer{SocialLinks: []SocialLink{}},
	}
}

// DefaultAboutContent is served when the about table has no row.
func DefaultAboutContent() AboutContent {
	return AboutContent{
		FullText:   []string{},
		Highlights: []Highlight{},
	}
}

// DefaultContactContent is served when the contact table has no row.
func DefaultContactContent() ContactContent {
	return ContactContent{
		IntroText: "Get in Touch",
		CTALine:   "Have a project in mind or want to connect? I’d love to hear from you.",
	}
}
