package model

import (
	"slices"
	"time"
)

type DescriptionDetails struct {
	Paragraphs []string `json:"paragraphs" validate:"min=1,dive,min=10"`
	Bullets    []string `json:"bullets,omitempty" validate:"dive,min=5"`
}

type PageInfo struct {
	Title       string   `json:"title" validate:"min=2"`
	ImgArr      []string `json:"imgArr" validate:"min=1,dive,url"`
	Description string   `json:"description,omitempty"`
}

// ProjectDraft is the editable part of a portfolio project.
type ProjectDraft struct {
	Type               string             `json:"type" validate:"project_type"`
	CompanyName        string             `json:"companyName" validate:"min=2"`
	Category           []string           `json:"category" validate:"min=1,dive,project_category"`
	ShortDescription   string             `json:"shortDescription" validate:"min=10"`
	WebsiteLink        string             `json:"websiteLink,omitempty" validate:"omitempty,url"`
	GithubLink         string             `json:"githubLink,omitempty" validate:"omitempty,url"`
	TechStack          []string           `json:"techStack" validate:"min=1,dive,tech_stack"`
	StartDate          *time.Time         `json:"startDate,omitempty" validate:"required"`
	EndDate            *time.Time         `json:"endDate,omitempty"`
	CompanyLogoImg     string             `json:"companyLogoImg" validate:"url"`
	DescriptionDetails DescriptionDetails `json:"descriptionDetails"`
	PagesInfoArr       []PageInfo         `json:"pagesInfoArr" validate:"min=1,dive"`
}

// Project is a persisted portfolio project as the backend returns it.
type Project struct {
	ID     ProjectID `json:"_id"`
	UserID UserID    `json:"userId,omitempty"`
	ProjectDraft
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPageInfo is the shape of a freshly added page block: one empty image slot.
func NewPageInfo() PageInfo {
	return PageInfo{ImgArr: []string{""}}
}

func NewProjectDraft() *ProjectDraft {
	return &ProjectDraft{
		Type:      ProjectTypeProfessional,
		Category:  []string{},
		TechStack: []string{},
		DescriptionDetails: DescriptionDetails{
			Paragraphs: []string{""},
			Bullets:    []string{},
		},
		PagesInfoArr: []PageInfo{NewPageInfo()},
	}
}

func (d *ProjectDraft) Normalize() {
	if d.Category == nil {
		d.Category = []string{}
	}
	if d.TechStack == nil {
		d.TechStack = []string{}
	}
	if len(d.DescriptionDetails.Paragraphs) == 0 {
		d.DescriptionDetails.Paragraphs = []string{""}
	}
	if d.DescriptionDetails.Bullets == nil {
		d.DescriptionDetails.Bullets = []string{}
	}
	if len(d.PagesInfoArr) == 0 {
		d.PagesInfoArr = []PageInfo{NewPageInfo()}
	}
	for i := range d.PagesInfoArr {
		if len(d.PagesInfoArr[i].ImgArr) == 0 {
			d.PagesInfoArr[i].ImgArr = []string{""}
		}
	}
}

func (d *ProjectDraft) Clone() *ProjectDraft {
	if d == nil {
		return nil
	}
	c := *d
	c.Category = slices.Clone(d.Category)
	c.TechStack = slices.Clone(d.TechStack)
	if d.StartDate != nil {
		t := *d.StartDate
		c.StartDate = &t
	}
	if d.EndDate != nil {
		t := *d.EndDate
		c.EndDate = &t
	}
	c.DescriptionDetails = DescriptionDetails{
		Paragraphs: slices.Clone(d.DescriptionDetails.Paragraphs),
		Bullets:    slices.Clone(d.DescriptionDetails.Bullets),
	}
	if d.PagesInfoArr != nil {
		c.PagesInfoArr = make([]PageInfo, len(d.PagesInfoArr))
		for i, p := range d.PagesInfoArr {
			p.ImgArr = slices.Clone(p.ImgArr)
			c.PagesInfoArr[i] = p
		}
	}
	return &c
}

func (p *Project) Draft() *ProjectDraft {
	d := p.ProjectDraft.Clone()
	d.Normalize()
	return d
}
