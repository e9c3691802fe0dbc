// Package auth resolves the dashboard user from the identity provider
// cookie or from the site's own session token.
package auth

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/rs/zerolog"
)

var authLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	authLogger = l
}

var ErrNoUser = errors.New("no user ID in context")

const LoginPath = "/auth/login"

type AuthProvider interface {
	Name() string

	// WithHeaderAuthorization puts the user ID in the request context when
	// the request carries valid credentials for this provider.
	WithHeaderAuthorization() func(http.Handler) http.Handler
}

// Chain runs every provider's middleware; the first one to recognize the
// request wins.
func Chain(providers ...AuthProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := next
		for i := len(providers) - 1; i >= 0; i-- {
			h = skipIfAuthenticated(providers[i].WithHeaderAuthorization(), h)
		}
		return h
	}
}

func skipIfAuthenticated(mw func(http.Handler) http.Handler, next http.Handler) http.Handler {
	wrapped := mw(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		wrapped.ServeHTTP(w, r)
	})
}

func GetUserIDFromSession(r *http.Request) (model.UserID, error) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok || userID == "" {
		return "", ErrNoUser
	}
	return userID, nil
}

func loginURL(r *http.Request) string {
	return LoginPath + "?redirect=" + url.QueryEscape(r.URL.RequestURI())
}

// EnforceUserAndGetID returns the request's user, or answers the request
// with a redirect to the login page.
func EnforceUserAndGetID(w http.ResponseWriter, r *http.Request) (model.UserID, error) {
	userID, err := GetUserIDFromSession(r)
	if err == nil {
		return userID, nil
	}

	zerolog.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("Unauthorized access attempt")

	switch {
	case r.Header.Get(config.HHxRequest) != "":
		w.Header().Set(config.HHxRedirect, loginURL(r))
		w.WriteHeader(http.StatusUnauthorized)
	case r.Header.Get("Accept") == config.CTypeJSON || r.Header.Get(config.HCType) == config.CTypeJSON:
		http.Error(w, config.ErrUnauthorized, http.StatusUnauthorized)
	default:
		http.Redirect(w, r, loginURL(r), http.StatusFound)
	}
	return "", err
}

// RequireUser wraps handlers that only signed-in users may reach.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := EnforceUserAndGetID(w, r); err != nil {
			return
		}
		next(w, r)
	}
}
