package model

import (
	"slices"
	"time"
)

type CodeSnippet struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type ContentDetails struct {
	Paragraphs   []string      `json:"paragraphs" validate:"min=1"`
	KeyPoints    []string      `json:"keyPoints" validate:"min=1"`
	CodeSnippets []CodeSnippet `json:"codeSnippets,omitempty"`
}

type Subsection struct {
	Title string `json:"title" validate:"required"`
	Text  string `json:"text"`
}

type Section struct {
	Title       string       `json:"title"`
	Images      []string     `json:"images"`
	Content     string       `json:"content,omitempty"`
	Subsections []Subsection `json:"subsections,omitempty" validate:"dive"`
}

type ExternalLink struct {
	Label string `json:"label"`
	URL   string `json:"url" validate:"url"`
}

// BlogDraft is the editable part of a blog post.
type BlogDraft struct {
	Title          string         `json:"title" validate:"min=5"`
	Type           string         `json:"type" validate:"blog_type"`
	Categories     []string       `json:"categories" validate:"min=1,dive,blog_category"`
	Tags           []string       `json:"tags" validate:"min=1"`
	CoverImage     string         `json:"coverImage" validate:"url"`
	ContentDetails ContentDetails `json:"contentDetails"`
	Sections       []Section      `json:"sections" validate:"dive"`
	ExternalLinks  []ExternalLink `json:"externalLinks,omitempty" validate:"dive"`
	RepositoryURL  string         `json:"repositoryUrl,omitempty" validate:"omitempty,url"`
}

// Blog is a persisted blog post as the backend returns it.
type Blog struct {
	ID       BlogID `json:"_id"`
	AuthorID UserID `json:"authorId,omitempty"`
	BlogDraft
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewSection() Section {
	return Section{Images: []string{}, Subsections: []Subsection{}}
}

// NewBlogDraft returns the shape an empty blog editor starts from.
func NewBlogDraft() *BlogDraft {
	return &BlogDraft{
		Type:       BlogTypeTechnical,
		Categories: []string{},
		Tags:       []string{},
		ContentDetails: ContentDetails{
			Paragraphs:   []string{""},
			KeyPoints:    []string{""},
			CodeSnippets: []CodeSnippet{},
		},
		Sections:      []Section{NewSection()},
		ExternalLinks: []ExternalLink{},
	}
}

// Normalize fills missing collections so a record fetched from the backend
// can be edited like a fresh draft.
func (d *BlogDraft) Normalize() {
	if d.Categories == nil {
		d.Categories = []string{}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if len(d.ContentDetails.Paragraphs) == 0 {
		d.ContentDetails.Paragraphs = []string{""}
	}
	if len(d.ContentDetails.KeyPoints) == 0 {
		d.ContentDetails.KeyPoints = []string{""}
	}
	if d.ContentDetails.CodeSnippets == nil {
		d.ContentDetails.CodeSnippets = []CodeSnippet{}
	}
	if d.Sections == nil {
		d.Sections = []Section{}
	}
	for i := range d.Sections {
		if d.Sections[i].Images == nil {
			d.Sections[i].Images = []string{}
		}
		if d.Sections[i].Subsections == nil {
			d.Sections[i].Subsections = []Subsection{}
		}
	}
	if d.ExternalLinks == nil {
		d.ExternalLinks = []ExternalLink{}
	}
}

func (d *BlogDraft) Clone() *BlogDraft {
	if d == nil {
		return nil
	}
	c := *d
	c.Categories = slices.Clone(d.Categories)
	c.Tags = slices.Clone(d.Tags)
	c.ContentDetails = ContentDetails{
		Paragraphs:   slices.Clone(d.ContentDetails.Paragraphs),
		KeyPoints:    slices.Clone(d.ContentDetails.KeyPoints),
		CodeSnippets: slices.Clone(d.ContentDetails.CodeSnippets),
	}
	if d.Sections != nil {
		c.Sections = make([]Section, len(d.Sections))
		for i, s := range d.Sections {
			s.Images = slices.Clone(s.Images)
			s.Subsections = slices.Clone(s.Subsections)
			c.Sections[i] = s
		}
	}
	c.ExternalLinks = slices.Clone(d.ExternalLinks)
	return &c
}

// Draft returns an editable copy of the record's content.
func (b *Blog) Draft() *BlogDraft {
	d := b.BlogDraft.Clone()
	d.Normalize()
	return d
}
