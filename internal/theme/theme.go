// Package theme resolves the colour theme and code highlighting style of a
// request and builds the highlighting stylesheets.
package theme

import (
	"html/template"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/config"
)

var stylesheets = cache.NewCache[string, template.CSS]()

// IsTheme reports whether t is one of the site themes.
func IsTheme(t string) bool {
	switch t {
	case config.LightTheme, config.DarkTheme, config.SystemTheme:
		return true
	}
	return false
}

// FromRequest returns the theme the visitor picked, or the configured
// default when the cookie is missing or holds something else.
func FromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(config.CookieTheme); err == nil && IsTheme(cookie.Value) {
		return cookie.Value
	}
	if IsTheme(config.AppConfig.Theme.Default) {
		return config.AppConfig.Theme.Default
	}
	return config.DefaultTheme
}

// Effective resolves the system theme through the prefers-color-scheme
// client hint. Without a usable hint the system theme is returned and the
// stylesheet's media queries decide.
func Effective(r *http.Request, t string) string {
	if t != config.SystemTheme {
		return t
	}
	switch strings.Trim(r.Header.Get(config.HeaderPrefersColorScheme), `" `) {
	case "light":
		return config.LightTheme
	case "dark":
		return config.DarkTheme
	}
	return config.SystemTheme
}

// Next is the theme the toggle switches to.
func Next(t string) string {
	switch t {
	case config.LightTheme:
		return config.DarkTheme
	case config.DarkTheme:
		return config.SystemTheme
	}
	return config.LightTheme
}

// Icon is shown on the toggle and names the theme a click switches to.
func Icon(t string) string {
	switch Next(t) {
	case config.LightTheme:
		return config.LightThemeIcon
	case config.DarkTheme:
		return config.DarkThemeIcon
	}
	return config.SystemThemeIcon
}

func SetCookie(w http.ResponseWriter, t string) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieTheme,
		Value:    t,
		Path:     "/",
		MaxAge:   config.ThemeCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

var syntaxThemes = sync.OnceValue(func() []string {
	names := []string{}
	for _, name := range config.SyntaxThemes {
		if _, ok := styles.Registry[name]; ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return append([]string{config.AutoSyntaxTheme}, names...)
})

// SyntaxThemes lists the highlighting styles a visitor can pick, "auto"
// first.
func SyntaxThemes() []string {
	return slices.Clone(syntaxThemes())
}

func IsSyntaxTheme(name string) bool {
	return slices.Contains(syntaxThemes(), name)
}

// DefaultSyntaxTheme is the configured style for an effective theme. The
// system theme keeps "auto" so both styles ship behind media queries.
func DefaultSyntaxTheme(t string) string {
	switch t {
	case config.LightTheme:
		return config.AppConfig.Theme.SyntaxHighlighting.DefaultLight
	case config.DarkTheme:
		return config.AppConfig.Theme.SyntaxHighlighting.DefaultDark
	}
	return config.AutoSyntaxTheme
}

// ResolveSyntax turns a picked style into the one to serve under theme t.
func ResolveSyntax(r *http.Request, t, picked string) string {
	if picked != config.AutoSyntaxTheme && IsSyntaxTheme(picked) {
		return picked
	}
	return DefaultSyntaxTheme(Effective(r, t))
}

// PickedSyntaxTheme is the syntax cookie when it names an offered style.
func PickedSyntaxTheme(r *http.Request) string {
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil && IsSyntaxTheme(cookie.Value) {
		return cookie.Value
	}
	return config.AutoSyntaxTheme
}

func SyntaxThemeFromRequest(r *http.Request) string {
	return ResolveSyntax(r, FromRequest(r), PickedSyntaxTheme(r))
}

func GetFormatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
}

// Stylesheet returns the CSS for a highlighting style. "auto" wraps the
// configured light and dark styles in prefers-color-scheme queries, and
// unknown names fall back to it.
func Stylesheet(name string) template.CSS {
	if name != config.AutoSyntaxTheme && !IsSyntaxTheme(name) && !isConfiguredDefault(name) {
		name = config.AutoSyntaxTheme
	}
	syntax := config.AppConfig.Theme.SyntaxHighlighting
	key := name
	if name == config.AutoSyntaxTheme {
		key = name + ":" + syntax.DefaultLight + ":" + syntax.DefaultDark
	}
	css, _ := stylesheets.GetOrSet(key, func() template.CSS {
		if name != config.AutoSyntaxTheme {
			return template.CSS(styleCSS(name))
		}
		var b strings.Builder
		b.WriteString("@media (prefers-color-scheme: light) {\n")
		b.WriteString(styleCSS(syntax.DefaultLight))
		b.WriteString("}\n@media (prefers-color-scheme: dark) {\n")
		b.WriteString(styleCSS(syntax.DefaultDark))
		b.WriteString("}\n")
		return template.CSS(b.String())
	})
	return css
}

func isConfiguredDefault(name string) bool {
	syntax := config.AppConfig.Theme.SyntaxHighlighting
	return name != "" && (name == syntax.DefaultLight || name == syntax.DefaultDark)
}

func styleCSS(name string) string {
	var b strings.Builder
	style := styles.Get(name)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Styles without a text colour get a dark one on light backgrounds.
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			b.WriteString(".chroma { color: #181818; }\n")
		}
	}

	GetFormatter().WriteCSS(&b, style)
	return b.String()
}
