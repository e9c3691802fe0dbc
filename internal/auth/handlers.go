package auth

import (
	"context"
	"html/template"
	"net/http"
	"strings"
	"unicode"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/validate"
	"github.com/rs/zerolog"
)

// Authenticator checks credentials against the backend.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) repository.Result[model.User]
}

const defaultRedirect = "/dashboard"

type loginPage struct {
	*model.PageData
	RedirectURL  string
	Email        string
	FieldErrors  validate.Errors
	Error        string
	ClerkEnabled bool
}

// safeRedirect only follows local paths. Browsers read "/\host" like
// "//host" and drop tabs and newlines, so those are refused too.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") {
		return defaultRedirect
	}
	if len(target) > 1 && (target[1] == '/' || target[1] == '\\') {
		return defaultRedirect
	}
	if strings.ContainsFunc(target, unicode.IsControl) {
		return defaultRedirect
	}
	return target
}

func renderLogin(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, page loginPage) {
	page.PageData = model.NewPageData(r)
	page.PageData.Title = "Login"
	page.ClerkEnabled = config.AppConfig.HasProvider("clerk")

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, config.TemplateLayout, page); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to render login template")
	}
}

// LoginPageHandler serves the login form.
func LoginPageHandler(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); ok {
			http.Redirect(w, r, safeRedirect(r.URL.Query().Get("redirect")), http.StatusFound)
			return
		}
		renderLogin(w, r, tmpl, http.StatusOK, loginPage{
			RedirectURL: safeRedirect(r.URL.Query().Get("redirect")),
		})
	}
}

// LoginHandler checks the posted credentials with the backend and, on
// success, sets the session cookie.
func LoginHandler(provider *SessionProvider, users Authenticator, tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := zerolog.Ctx(r.Context())

		creds := model.Credentials{
			Email:    strings.TrimSpace(r.FormValue("email")),
			Password: r.FormValue("password"),
		}
		page := loginPage{
			RedirectURL: safeRedirect(r.FormValue("redirect")),
			Email:       creds.Email,
		}

		if errs := validate.Struct(creds); !errs.Valid() {
			page.FieldErrors = errs
			renderLogin(w, r, tmpl, http.StatusUnprocessableEntity, page)
			return
		}

		res := users.Login(r.Context(), creds)
		if !res.Success {
			l.Info().Str("email", creds.Email).Msg("Login failed")
			page.Error = res.Message
			renderLogin(w, r, tmpl, http.StatusUnauthorized, page)
			return
		}

		token, err := provider.Issue(res.Data)
		if err != nil {
			l.Error().Err(err).Msg("Failed to issue session token")
			page.Error = config.ErrInternalServerError
			renderLogin(w, r, tmpl, http.StatusInternalServerError, page)
			return
		}

		provider.SetCookie(w, r, token)
		l.Info().Str("user", string(res.Data.ID)).Msg("User logged in")

		if r.Header.Get(config.HHxRequest) != "" {
			w.Header().Set(config.HHxRedirect, page.RedirectURL)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, page.RedirectURL, http.StatusSeeOther)
	}
}

func LogoutHandler(provider *SessionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if provider != nil {
			provider.ClearCookie(w)
		}
		http.SetCookie(w, &http.Cookie{Name: config.CookieClerk, Value: "", Path: "/", MaxAge: -1})

		if r.Header.Get(config.HHxRequest) != "" {
			w.Header().Set(config.HHxRedirect, "/")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
