package auth

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/debemdeboas/folio/internal/config"
)

// RegisterRoutes registers the login, logout and identity provider webhook
// routes. clerkProvider may be nil.
func RegisterRoutes(mux *http.ServeMux, provider *SessionProvider, clerkProvider *ClerkAuthProvider, users Authenticator, files fs.FS) error {
	tmpl, err := template.ParseFS(
		files,
		config.TemplatesLocalDir+"/"+config.TemplateLayout,
		config.TemplatesLocalDir+"/"+config.TemplateLogin,
	)
	if err != nil {
		return fmt.Errorf("load login template: %w", err)
	}

	mux.HandleFunc("GET "+LoginPath, LoginPageHandler(tmpl))
	if provider != nil {
		mux.HandleFunc("POST "+LoginPath, LoginHandler(provider, users, tmpl))
	}
	mux.HandleFunc("POST /auth/logout", LogoutHandler(provider))
	if clerkProvider != nil {
		mux.HandleFunc("POST /webhook/user", clerkProvider.HandleWebhookUser)
	}
	return nil
}
