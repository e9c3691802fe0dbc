package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/repository"
)

// Registrar records identity-provider sign ups with the backend.
type Registrar interface {
	Register(ctx context.Context, reg model.Registration) repository.Result[model.User]
}

const ProviderClerk = "Clerk"

type ClerkAuthProvider struct {
	users Registrar

	cookieExtractor clerkhttp.AuthorizationOption
}

func NewClerkAuthProvider(clerkKey string, users Registrar) *ClerkAuthProvider {
	clerk.SetKey(clerkKey)

	return &ClerkAuthProvider{
		users: users,
		cookieExtractor: clerkhttp.AuthorizationJWTExtractor(func(r *http.Request) string {
			cookie, err := r.Cookie(config.CookieClerk)
			if err != nil || cookie == nil {
				return ""
			}
			return cookie.Value
		}),
	}
}

func (c *ClerkAuthProvider) Name() string { return "clerk" }

// WithHeaderAuthorization verifies the Clerk session and copies its subject
// into the request context.
func (c *ClerkAuthProvider) WithHeaderAuthorization() func(http.Handler) http.Handler {
	verify := clerkhttp.WithHeaderAuthorization(c.cookieExtractor)
	return func(next http.Handler) http.Handler {
		return verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := clerk.SessionClaimsFromContext(r.Context())
			if !ok || claims.Subject == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := ContextWithUserID(r.Context(), model.UserID(claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		}))
	}
}

type webhookEvent struct {
	Data clerk.User `json:"data"`
	Type string     `json:"type"`
}

func registrationFromClerk(u clerk.User) model.Registration {
	reg := model.Registration{Provider: ProviderClerk}

	var names []string
	if u.FirstName != nil {
		names = append(names, *u.FirstName)
	}
	if u.LastName != nil {
		names = append(names, *u.LastName)
	}
	reg.Name = strings.TrimSpace(strings.Join(names, " "))
	if reg.Name == "" && u.Username != nil {
		reg.Name = *u.Username
	}

	for _, e := range u.EmailAddresses {
		if u.PrimaryEmailAddressID != nil && e.ID == *u.PrimaryEmailAddressID {
			reg.Email = e.EmailAddress
			break
		}
	}
	if reg.Email == "" && len(u.EmailAddresses) > 0 {
		reg.Email = u.EmailAddresses[0].EmailAddress
	}

	if u.ImageURL != nil {
		reg.Image = *u.ImageURL
	}
	if len(u.ExternalAccounts) > 0 {
		reg.Provider = u.ExternalAccounts[0].Provider
	}
	return reg
}

// HandleWebhookUser registers users created in Clerk with the backend.
// Updates and deletions are acknowledged; the backend keeps its record.
func (c *ClerkAuthProvider) HandleWebhookUser(w http.ResponseWriter, r *http.Request) {
	var payload webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		authLogger.Error().Err(err).Msg("Error decoding event payload")
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	l := authLogger.With().Str("type", payload.Type).Str("user", payload.Data.ID).Logger()

	switch payload.Type {
	case "user.created":
		reg := registrationFromClerk(payload.Data)
		if reg.Email == "" {
			l.Warn().Msg("No e-mail address for user")
			http.Error(w, "No e-mail address", http.StatusBadRequest)
			return
		}

		res := c.users.Register(r.Context(), reg)
		if !res.Success {
			l.Error().Str("message", res.Message).Msg("Error registering user")
			http.Error(w, res.Message, http.StatusBadGateway)
			return
		}

		l.Info().Str("backend_id", string(res.Data.ID)).Msg("User registered")
		w.WriteHeader(http.StatusCreated)
	case "user.updated", "user.deleted":
		l.Info().Msg("User webhook acknowledged")
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Invalid event type", http.StatusBadRequest)
	}
}
