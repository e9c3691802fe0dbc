package editor

import (
	"strings"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/validate"
)

// BlogSchema is the editor table for blog posts.
var BlogSchema = &Schema[model.BlogDraft]{
	Kind:      model.KindBlog,
	New:       model.NewBlogDraft,
	Clone:     (*model.BlogDraft).Clone,
	Normalize: (*model.BlogDraft).Normalize,
	Validate:  validate.Blog,
	Payload:   blogPayload,
	Redirect:  "/dashboard/blogs",

	lists: map[string]binding[model.BlogDraft]{
		"categories": stringList[model.BlogDraft]{
			locate: root(func(d *model.BlogDraft) *[]string { return &d.Categories }),
			set:    true,
		},
		"tags": stringList[model.BlogDraft]{
			locate: root(func(d *model.BlogDraft) *[]string { return &d.Tags }),
			set:    true,
		},
		"contentDetails.paragraphs": stringList[model.BlogDraft]{
			locate: root(func(d *model.BlogDraft) *[]string { return &d.ContentDetails.Paragraphs }),
			floor:  1,
		},
		"contentDetails.keyPoints": stringList[model.BlogDraft]{
			locate: root(func(d *model.BlogDraft) *[]string { return &d.ContentDetails.KeyPoints }),
			floor:  1,
		},
		"contentDetails.codeSnippets": recordList[model.BlogDraft, model.CodeSnippet]{
			locate: root(func(d *model.BlogDraft) *[]model.CodeSnippet { return &d.ContentDetails.CodeSnippets }),
			fresh:  func() model.CodeSnippet { return model.CodeSnippet{} },
			clone:  identity[model.CodeSnippet],
		},
		"sections": recordList[model.BlogDraft, model.Section]{
			locate: root(func(d *model.BlogDraft) *[]model.Section { return &d.Sections }),
			fresh:  model.NewSection,
			clone:  cloneSection,
		},
		"sections[].images": stringList[model.BlogDraft]{
			locate: func(d *model.BlogDraft, idx []int) (*[]string, bool) {
				if len(idx) != 1 || !inRange(idx[0], len(d.Sections)) {
					return nil, false
				}
				return &d.Sections[idx[0]].Images, true
			},
			images: true,
		},
		"sections[].subsections": recordList[model.BlogDraft, model.Subsection]{
			locate: func(d *model.BlogDraft, idx []int) (*[]model.Subsection, bool) {
				if len(idx) != 1 || !inRange(idx[0], len(d.Sections)) {
					return nil, false
				}
				return &d.Sections[idx[0]].Subsections, true
			},
			fresh: func() model.Subsection { return model.Subsection{} },
			clone: identity[model.Subsection],
		},
		"externalLinks": recordList[model.BlogDraft, model.ExternalLink]{
			locate: root(func(d *model.BlogDraft) *[]model.ExternalLink { return &d.ExternalLinks }),
			fresh:  func() model.ExternalLink { return model.ExternalLink{} },
			clone:  identity[model.ExternalLink],
		},
	},

	scalars: map[string]scalar[model.BlogDraft]{
		"title":         stringField(func(d *model.BlogDraft) *string { return &d.Title }),
		"type":          enumField(func(d *model.BlogDraft) *string { return &d.Type }, model.IsBlogType),
		"coverImage":    imageField(func(d *model.BlogDraft) *string { return &d.CoverImage }),
		"repositoryUrl": stringField(func(d *model.BlogDraft) *string { return &d.RepositoryURL }),
	},
}

// root adapts an accessor for a top-level collection, which takes no indexes.
func root[D, T any](field func(*D) *[]T) func(*D, []int) (*[]T, bool) {
	return func(d *D, idx []int) (*[]T, bool) {
		if len(idx) != 0 {
			return nil, false
		}
		return field(d), true
	}
}

func cloneSection(s model.Section) model.Section {
	c := s
	c.Images = append([]string{}, s.Images...)
	c.Subsections = append([]model.Subsection{}, s.Subsections...)
	return c
}

type blogWire struct {
	model.BlogDraft
	AuthorID model.UserID `json:"authorId,omitempty"`
}

// blogPayload drops empty image slots and code snippets without code.
func blogPayload(d *model.BlogDraft, user model.UserID) any {
	out := d.Clone()

	snippets := make([]model.CodeSnippet, 0, len(out.ContentDetails.CodeSnippets))
	for _, s := range out.ContentDetails.CodeSnippets {
		if strings.TrimSpace(s.Code) != "" {
			snippets = append(snippets, s)
		}
	}
	out.ContentDetails.CodeSnippets = snippets

	for i := range out.Sections {
		out.Sections[i].Images = nonEmpty(out.Sections[i].Images)
	}
	if out.Sections == nil {
		out.Sections = []model.Section{}
	}

	return blogWire{BlogDraft: *out, AuthorID: user}
}

func nonEmpty(s []string) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func NewBlogSession(owner model.UserID, persist Persister) *Session[model.BlogDraft] {
	return NewSession(BlogSchema, owner, NewPipeline(BlogSchema, persist))
}
