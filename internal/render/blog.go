package render

import (
	"html/template"
	"strings"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/util"
)

type Section struct {
	Title       string
	Images      []string
	Content     template.HTML
	Subsections []Subsection
}

type Subsection struct {
	Title string
	Text  template.HTML
}

type Snippet struct {
	Language string
	Code     template.HTML
}

// Blog is a blog post ready for the detail template.
type Blog struct {
	Paragraphs []template.HTML
	Sections   []Section
	Snippets   []Snippet
}

func markdownHTML(text, highlightTheme string) template.HTML {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	html, _ := RenderMarkdownCached([]byte(text), util.ContentHashString(text), highlightTheme)
	return template.HTML(html)
}

// HighlightSnippet renders one code snippet of a post.
func HighlightSnippet(s model.CodeSnippet, highlightTheme string) Snippet {
	highlighted := HighlightCode(s.Code, s.Language, highlightTheme)
	return Snippet{
		Language: s.Language,
		Code:     SanitizeToHTML(`<div class="highlight">` + highlighted + `</div>`),
	}
}

// RenderBlog renders every Markdown field of d. Empty paragraphs and
// snippets without code are left out.
func RenderBlog(d *model.BlogDraft, highlightTheme string) *Blog {
	out := &Blog{}

	for _, p := range d.ContentDetails.Paragraphs {
		if html := markdownHTML(p, highlightTheme); html != "" {
			out.Paragraphs = append(out.Paragraphs, html)
		}
	}

	for _, s := range d.ContentDetails.CodeSnippets {
		if strings.TrimSpace(s.Code) == "" {
			continue
		}
		out.Snippets = append(out.Snippets, HighlightSnippet(s, highlightTheme))
	}

	for _, s := range d.Sections {
		section := Section{
			Title:   s.Title,
			Content: markdownHTML(s.Content, highlightTheme),
		}
		for _, img := range s.Images {
			if img != "" {
				section.Images = append(section.Images, img)
			}
		}
		for _, sub := range s.Subsections {
			section.Subsections = append(section.Subsections, Subsection{
				Title: sub.Title,
				Text:  markdownHTML(sub.Text, highlightTheme),
			})
		}
		out.Sections = append(out.Sections, section)
	}

	return out
}
