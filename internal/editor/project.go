package editor

import (
	"time"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/validate"
)

// ProjectSchema is the editor table for portfolio projects.
var ProjectSchema = &Schema[model.ProjectDraft]{
	Kind:      model.KindProject,
	New:       model.NewProjectDraft,
	Clone:     (*model.ProjectDraft).Clone,
	Normalize: (*model.ProjectDraft).Normalize,
	Validate:  validate.Project,
	Payload:   projectPayload,
	Redirect:  "/dashboard/projects",

	lists: map[string]binding[model.ProjectDraft]{
		"category": stringList[model.ProjectDraft]{
			locate: root(func(d *model.ProjectDraft) *[]string { return &d.Category }),
			set:    true,
		},
		"techStack": stringList[model.ProjectDraft]{
			locate: root(func(d *model.ProjectDraft) *[]string { return &d.TechStack }),
			set:    true,
		},
		"descriptionDetails.paragraphs": stringList[model.ProjectDraft]{
			locate: root(func(d *model.ProjectDraft) *[]string { return &d.DescriptionDetails.Paragraphs }),
			floor:  1,
		},
		"descriptionDetails.bullets": stringList[model.ProjectDraft]{
			locate: root(func(d *model.ProjectDraft) *[]string { return &d.DescriptionDetails.Bullets }),
		},
		"pagesInfoArr": recordList[model.ProjectDraft, model.PageInfo]{
			locate: root(func(d *model.ProjectDraft) *[]model.PageInfo { return &d.PagesInfoArr }),
			floor:  1,
			fresh:  model.NewPageInfo,
			clone:  clonePageInfo,
		},
		"pagesInfoArr[].imgArr": stringList[model.ProjectDraft]{
			locate: func(d *model.ProjectDraft, idx []int) (*[]string, bool) {
				if len(idx) != 1 || !inRange(idx[0], len(d.PagesInfoArr)) {
					return nil, false
				}
				return &d.PagesInfoArr[idx[0]].ImgArr, true
			},
			floor:  1,
			images: true,
		},
	},

	scalars: map[string]scalar[model.ProjectDraft]{
		"type":             enumField(func(d *model.ProjectDraft) *string { return &d.Type }, model.IsProjectType),
		"companyName":      stringField(func(d *model.ProjectDraft) *string { return &d.CompanyName }),
		"shortDescription": stringField(func(d *model.ProjectDraft) *string { return &d.ShortDescription }),
		"websiteLink":      stringField(func(d *model.ProjectDraft) *string { return &d.WebsiteLink }),
		"githubLink":       stringField(func(d *model.ProjectDraft) *string { return &d.GithubLink }),
		"companyLogoImg":   imageField(func(d *model.ProjectDraft) *string { return &d.CompanyLogoImg }),
		"startDate":        dateField(func(d *model.ProjectDraft) **time.Time { return &d.StartDate }),
		"endDate":          dateField(func(d *model.ProjectDraft) **time.Time { return &d.EndDate }),
	},
}

func clonePageInfo(p model.PageInfo) model.PageInfo {
	c := p
	c.ImgArr = append([]string{}, p.ImgArr...)
	return c
}

// projectWire shadows the draft's dates with their string form.
type projectWire struct {
	model.ProjectDraft
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate,omitempty"`
	UserID    model.UserID `json:"userId,omitempty"`
}

func projectPayload(d *model.ProjectDraft, user model.UserID) any {
	out := d.Clone()
	out.DescriptionDetails.Bullets = nonEmpty(out.DescriptionDetails.Bullets)

	w := projectWire{ProjectDraft: *out, UserID: user}
	if out.StartDate != nil {
		w.StartDate = ISOTime(*out.StartDate)
	}
	if out.EndDate != nil {
		w.EndDate = ISOTime(*out.EndDate)
	}
	return w
}

func NewProjectSession(owner model.UserID, persist Persister) *Session[model.ProjectDraft] {
	return NewSession(ProjectSchema, owner, NewPipeline(ProjectSchema, persist))
}
