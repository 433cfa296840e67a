package content

// Table is a logical table in the tabular store, one per entity kind.
type Table string

const (
	TableProjects     Table = "Projects"
	TableJournal      Table = "Journal"
	TableSkills       Table = "Skills"
	TableCVExperience Table = "CV_Experience"
	TableCVEducation  Table = "CV_Education"
	TableSiteSettings Table = "SiteSettings"
	TableAbout        Table = "About"
	TableContact      Table = "Contact"
)

// Tables lists every table the site reads.
var Tables = []Table{
	TableProjects, TableJournal, TableSkills, TableCVExperience,
	TableCVEducation, TableSiteSettings, TableAbout, TableContact,
}

// ParseTable matches an exact table name.
func ParseTable(s string) (Table, bool) {
	for _, t := range Tables {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Singleton reports whether the table holds exactly one row.
func (t Table) Singleton() bool {
	switch t {
	case TableSiteSettings, TableAbout, TableContact:
		return true
	default:
		return false
	}
}

// ListFields names the columns stored as comma-joined strings.
func (t Table) ListFields() []string {
	switch t {
	case TableProjects:
		return []string{"technologies", "galleryImageIds", "tags"}
	case TableJournal:
		return []string{"tags"}
	default:
		return nil
	}
}
