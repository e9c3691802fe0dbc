package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

var (
	ErrNoSigningKey = errors.New("session provider has no private key")
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims is the payload of a session token.
type Claims struct {
	Name  string     `json:"name,omitempty"`
	Email string     `json:"email,omitempty"`
	Role  model.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SessionProvider issues and checks the EdDSA-signed session cookie set
// after a credential login.
type SessionProvider struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	cookieName string
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// NewSessionProvider parses PEM keys. With a private key the public key is
// derived from it; a provider with only a public key can verify but not
// issue tokens.
func NewSessionProvider(privateKeyPEM, publicKeyPEM, cookieName, issuer string, ttl time.Duration) (*SessionProvider, error) {
	p := &SessionProvider{
		cookieName: cookieName,
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}

	if privateKeyPEM != "" {
		key, err := jwt.ParseEdPrivateKeyFromPEM([]byte(privateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		priv, ok := key.(ed25519.PrivateKey)
		if !ok {
			return nil, errors.New("key is not an Ed25519 private key")
		}
		p.privateKey = priv
		p.publicKey = priv.Public().(ed25519.PublicKey)
	}

	if publicKeyPEM != "" && p.publicKey == nil {
		key, err := jwt.ParseEdPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		pub, ok := key.(ed25519.PublicKey)
		if !ok {
			return nil, errors.New("key is not an Ed25519 public key")
		}
		p.publicKey = pub
	}

	if p.publicKey == nil {
		return nil, errors.New("no session key configured")
	}
	return p, nil
}

func (p *SessionProvider) Name() string { return "credentials" }

// Issue signs a token for user.
func (p *SessionProvider) Issue(user model.User) (string, error) {
	if p.privateKey == nil {
		return "", ErrNoSigningKey
	}

	now := p.now()
	claims := Claims{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   string(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(p.privateKey)
}

// Verify checks the signature, issuer and expiry of a token.
func (p *SessionProvider) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return p.publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// token reads the bearer header first, then the session cookie.
func (p *SessionProvider) token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := r.Cookie(p.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (p *SessionProvider) WithHeaderAuthorization() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := p.token(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := p.Verify(raw)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Rejected session token")
				next.ServeHTTP(w, r)
				return
			}

			ctx := ContextWithUserID(r.Context(), model.UserID(claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (p *SessionProvider) SetCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(p.ttl.Seconds()),
	})
}

func (p *SessionProvider) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
