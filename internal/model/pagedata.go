package model

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/theme"
)

type PageData struct {
	SiteName string
	Tagline  string
	Social   config.SocialConfig
	Keywords string

	PageURL string
	Title   string

	// Theme is the visitor's pick and ThemeClass the one applied to the page.
	Theme      string
	ThemeClass string

	SyntaxCSS    template.CSS
	SyntaxTheme  string
	SyntaxThemes []string

	UserID UserID

	IsEditorPage *bool
}

func NewPageData(r *http.Request) *PageData {
	picked := theme.FromRequest(r)
	syntaxPick := theme.PickedSyntaxTheme(r)
	return &PageData{
		SiteName:     config.AppConfig.Site.Name,
		Tagline:      config.AppConfig.Site.Tagline,
		Social:       config.AppConfig.Social,
		Keywords:     strings.Join(config.AppConfig.Meta.Keywords, ","),
		PageURL:      r.URL.Path,
		Theme:        picked,
		ThemeClass:   theme.Effective(r, picked),
		SyntaxTheme:  syntaxPick,
		SyntaxThemes: theme.SyntaxThemes(),
		SyntaxCSS:    theme.Stylesheet(theme.ResolveSyntax(r, picked, syntaxPick)),
	}
}

func (pd *PageData) IsDashboard() bool {
	return strings.HasPrefix(pd.PageURL, "/dashboard")
}

func (pd *PageData) IsEditor() bool {
	if pd.IsEditorPage == nil {
		return strings.HasSuffix(pd.PageURL, "/new") || strings.HasSuffix(pd.PageURL, "/edit")
	}
	return *pd.IsEditorPage
}

func (pd *PageData) LoggedIn() bool {
	return pd.UserID != ""
}

// Active reports whether a nav link points at the current page.
func (pd *PageData) Active(prefix string) bool {
	if prefix == "/" {
		return pd.PageURL == "/"
	}
	return strings.HasPrefix(pd.PageURL, prefix)
}
