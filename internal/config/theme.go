package config

const (
	LightTheme  = "light-theme"
	DarkTheme   = "dark-theme"
	SystemTheme = "system-theme"

	LightThemeIcon  = `<i class="fas fa-sun"></i>`
	DarkThemeIcon   = `<i class="fas fa-moon"></i>`
	SystemThemeIcon = `<i class="fas fa-circle-half-stroke"></i>`

	DefaultDarkSyntaxTheme  = "gruvbox"
	DefaultLightSyntaxTheme = "catppuccin-latte"

	// AutoSyntaxTheme follows the site theme: the configured light or dark
	// style, or both behind media queries under the system theme.
	AutoSyntaxTheme = "auto"

	DefaultTheme = SystemTheme

	// HeaderPrefersColorScheme is the client hint browsers send once the
	// server lists it in Accept-CH.
	HeaderPrefersColorScheme = "Sec-CH-Prefers-Color-Scheme"

	ThemeCookieMaxAge = 365 * 24 * 60 * 60
)

// SyntaxThemes are the highlighting styles offered for code blocks.
var SyntaxThemes = []string{
	"catppuccin-latte",
	"catppuccin-mocha",
	"dracula",
	"github",
	"github-dark",
	"gruvbox",
	"gruvbox-light",
	"monokai",
	"nord",
	"solarized-dark",
	"solarized-light",
}
