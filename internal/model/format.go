package model

import (
	"math"
	"strings"
	"time"

	"github.com/debemdeboas/folio/internal/config"
)

const (
	LayoutLongDate  = "January 2, 2006"
	LayoutMonthYear = "Jan 2006"
	PresentLabel    = "Present"
)

// ReadTime estimates the minutes needed to read a post from its paragraphs.
func ReadTime(paragraphs []string) int {
	words := len(strings.Fields(strings.Join(paragraphs, " ")))
	minutes := int(math.Ceil(float64(words) / config.WordsPerMinute))
	return max(minutes, 1)
}

func (d *BlogDraft) ReadTime() int {
	return ReadTime(d.ContentDetails.Paragraphs)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(LayoutLongDate)
}

// FormatMonthYear renders a project date bound, with nil meaning ongoing.
func FormatMonthYear(t *time.Time) string {
	if t == nil || t.IsZero() {
		return PresentLabel
	}
	return t.Format(LayoutMonthYear)
}

// Period renders the "Jan 2023 - Present" range shown on project cards.
func (d *ProjectDraft) Period() string {
	if d.StartDate == nil {
		return FormatMonthYear(d.EndDate)
	}
	return FormatMonthYear(d.StartDate) + " - " + FormatMonthYear(d.EndDate)
}

const (
	TabAll          = "all"
	TabPersonal     = "personal"
	TabProfessional = "professional"
)

// FilterProjects keeps the projects belonging to a projects-page tab.
// Unknown tabs behave like TabAll.
func FilterProjects(projects []Project, tab string) []Project {
	var want string
	switch tab {
	case TabPersonal:
		want = ProjectTypePersonal
	case TabProfessional:
		want = ProjectTypeProfessional
	default:
		return projects
	}

	filtered := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Type == want {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

const FeaturedCount = 3

func Featured(projects []Project) []Project {
	if len(projects) <= FeaturedCount {
		return projects
	}
	return projects[:FeaturedCount]
}
