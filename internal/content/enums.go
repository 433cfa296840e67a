package content

import "strings"

// ProjectCategory is the closed set of project categories.
type ProjectCategory string

const (
	ProjectArchitecture ProjectCategory = "Architecture"
	ProjectWeb3         ProjectCategory = "Web3"
	ProjectWriting      ProjectCategory = "Writing"
	ProjectCommunity    ProjectCategory = "Community"
)

// DefaultProjectCategory is applied when a record has no usable category.
const DefaultProjectCategory = ProjectCommunity

// ProjectCategories lists every project category in display order.
var ProjectCategories = []ProjectCategory{ProjectArchitecture, ProjectWeb3, ProjectWriting, ProjectCommunity}

// ParseProjectCategory matches s case-insensitively.
func ParseProjectCategory(s string) (ProjectCategory, bool) {
	for _, c := range ProjectCategories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return "", false
}

// Icon returns the icon name rendered next to the category.
func (c ProjectCategory) Icon() string {
	switch c {
	case ProjectArchitecture:
		return "drafting-compass"
	case ProjectWeb3:
		return "code-xml"
	case ProjectWriting:
		return "pen-line"
	case ProjectCommunity:
		return "users"
	default:
		return "folder"
	}
}

// JournalCategory is the closed set of categories for authored journal posts.
type JournalCategory string

const (
	JournalReflections JournalCategory = "Reflections"
	JournalExperiments JournalCategory = "Experiments"
	JournalDesignNotes JournalCategory = "Design Notes"
)

// DefaultJournalCategory is used for feed posts without tags.
const DefaultJournalCategory = "General"

// JournalCategories lists every journal category.
var JournalCategories = []JournalCategory{JournalReflections, JournalExperiments, JournalDesignNotes}

// ParseJournalCategory matches s case-insensitively.
func ParseJournalCategory(s string) (JournalCategory, bool) {
	for _, c := range JournalCategories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return "", false
}

// SkillGroup is a skill category. Unknown values are kept verbatim and sort
// after the known groups.
type SkillGroup string

const (
	SkillArchitecture SkillGroup = "Architecture & Design"
	SkillWeb3         SkillGroup = "Web3 & Development"
	SkillWriting      SkillGroup = "Writing & Community"
)

// DefaultSkillGroup is applied when a skill row has no category.
const DefaultSkillGroup SkillGroup = "General"

// SkillGroups is the canonical display order.
var SkillGroups = []SkillGroup{SkillArchitecture, SkillWeb3, SkillWriting}

// skillGroupAliases are the short names accepted for each group.
var skillGroupAliases = map[string]SkillGroup{
	"architecture": SkillArchitecture,
	"design":       SkillArchitecture,
	"web3":         SkillWeb3,
	"development":  SkillWeb3,
	"writing":      SkillWriting,
	"community":    SkillWriting,
}

// ParseSkillGroup matches s case-insensitively against the known groups or
// one of their short names.
func ParseSkillGroup(s string) (SkillGroup, bool) {
	s = strings.TrimSpace(s)
	for _, g := range SkillGroups {
		if strings.EqualFold(s, string(g)) {
			return g, true
		}
	}
	g, ok := skillGroupAliases[strings.ToLower(s)]
	return g, ok
}

// Rank is the position in the canonical order; unknown groups share the last rank.
func (g SkillGroup) Rank() int {
	switch g {
	case SkillArchitecture:
		return 0
	case SkillWeb3:
		return 1
	case SkillWriting:
		return 2
	default:
		return len(SkillGroups)
	}
}

// Icon returns the icon name for the group.
func (g SkillGroup) Icon() string {
	switch g {
	case SkillArchitecture:
		return "drafting-compass"
	case SkillWeb3:
		return "code-xml"
	case SkillWriting:
		return "users"
	default:
		return "brain-circuit"
	}
}

// SocialNetwork names a footer link.
type SocialNetwork string

const (
	SocialGithub   SocialNetwork = "Github"
	SocialTwitter  SocialNetwork = "Twitter"
	SocialLinkedIn SocialNetwork = "LinkedIn"
	SocialSubstack SocialNetwork = "Substack"
	SocialEmail    SocialNetwork = "Email"
)

// SocialNetworks is the footer order.
var SocialNetworks = []SocialNetwork{SocialGithub, SocialTwitter, SocialLinkedIn, SocialSubstack, SocialEmail}

// Field is the store column holding the link for this network.
func (n SocialNetwork) Field() string {
	switch n {
	case SocialGithub:
		return "socialGithub"
	case SocialTwitter:
		return "socialTwitter"
	case SocialLinkedIn:
		return "socialLinkedIn"
	case SocialSubstack:
		return "socialSubstack"
	case SocialEmail:
		return "socialEmail"
	default:
		return ""
	}
}

// HighlightKind names one of the four about-page highlights.
type HighlightKind string

const (
	HighlightArchitecture HighlightKind = "Architecture"
	HighlightWeb3         HighlightKind = "Web3 / Development"
	HighlightWriting      HighlightKind = "Writing"
	HighlightCommunity    HighlightKind = "Community"
)

// HighlightKinds is the display order.
var HighlightKinds = []HighlightKind{HighlightArchitecture, HighlightWeb3, HighlightWriting, HighlightCommunity}

// Field is the store column holding the highlight text.
func (k HighlightKind) Field() string {
	switch k {
	case HighlightArchitecture:
		return "highlightArchitecture"
	case HighlightWeb3:
		return "highlightWeb3"
	case HighlightWriting:
		return "highlightWriting"
	case HighlightCommunity:
		return "highlightCommunity"
	default:
		return ""
	}
}

// CVKind distinguishes the two CV lists.
type CVKind string

const (
	CVExperience CVKind = "experience"
	CVEducation  CVKind = "education"
)

// ParseCVKind accepts "experience" or "education".
func ParseCVKind(s string) (CVKind, bool) {
	switch CVKind(strings.ToLower(strings.TrimSpace(s))) {
	case CVExperience:
		return CVExperience, true
	case CVEducation:
		return CVEducation, true
	default:
		return "", false
	}
}

// Table returns the store table backing this list.
func (k CVKind) Table() Table {
	switch k {
	case CVEducation:
		return TableCVEducation
	default:
		return TableCVExperience
	}
}
