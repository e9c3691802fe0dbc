package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/folio/internal/auth"
	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/dashboard"
	"github.com/debemdeboas/folio/internal/db"
	"github.com/debemdeboas/folio/internal/editor"
	"github.com/debemdeboas/folio/internal/logger"
	"github.com/debemdeboas/folio/internal/render"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/repository/drafts"
	"github.com/debemdeboas/folio/internal/routes"
	"github.com/debemdeboas/folio/internal/site"
	"github.com/debemdeboas/folio/internal/sse"
	"github.com/debemdeboas/folio/internal/theme"
	"github.com/debemdeboas/folio/internal/upload"
	"github.com/debemdeboas/folio/internal/util"
	"github.com/debemdeboas/folio/internal/util/compression"
	"github.com/debemdeboas/folio/internal/validate"
	"github.com/debemdeboas/folio/internal/view"
)

//go:embed static/* templates/*
var content embed.FS

const shutdownTimeout = 15 * time.Second

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l.With().Str("pkg", "config").Logger())
	db.SetLogger(l.With().Str("pkg", "db").Logger())
	editor.SetLogger(l.With().Str("pkg", "editor").Logger())
	repository.SetLogger(l.With().Str("pkg", "repository").Logger())
	drafts.SetLogger(l.With().Str("pkg", "drafts").Logger())
	sse.SetLogger(l.With().Str("pkg", "sse").Logger())
	render.SetLogger(l.With().Str("pkg", "render").Logger())
	auth.SetLogger(l.With().Str("pkg", "auth").Logger())
	upload.SetLogger(l.With().Str("pkg", "upload").Logger())
	validate.SetLogger(l.With().Str("pkg", "validate").Logger())
	site.SetLogger(l.With().Str("pkg", "site").Logger())
	dashboard.SetLogger(l.With().Str("pkg", "dashboard").Logger())
}

// app is the wired server: routes plus the background workers that have to
// be stopped with it.
type app struct {
	handler   http.Handler
	dashboard *dashboard.Handler
	autosaver *drafts.Autosaver
	database  db.DB
}

func newUploader(ctx context.Context, cfg *config.Config, l zerolog.Logger) (upload.Uploader, *upload.MemoryUploader) {
	keyID, secret := os.Getenv("S3_ACCESS_KEY_ID"), os.Getenv("S3_SECRET_ACCESS_KEY")
	if cfg.Upload.Bucket != "" && keyID != "" && secret != "" {
		s3Uploader, err := upload.NewS3Uploader(ctx, cfg.Upload, keyID, secret)
		if err == nil {
			return s3Uploader, nil
		}
		l.Error().Err(err).Msg("Failed to configure bucket uploads, keeping images in memory")
	} else {
		l.Warn().Msg("No bucket credentials, keeping uploaded images in memory")
	}
	memory := upload.NewMemoryUploader(cfg.Site.URL, routes.UploadsPath)
	return memory, memory
}

func newAuth(cfg *config.Config, users *repository.Users, l zerolog.Logger) (*auth.SessionProvider, *auth.ClerkAuthProvider, []auth.AuthProvider) {
	var (
		session   *auth.SessionProvider
		clerk     *auth.ClerkAuthProvider
		providers []auth.AuthProvider
	)

	if cfg.HasProvider("credentials") {
		p, err := auth.NewSessionProvider(
			os.Getenv("SESSION_PRIVKEY"),
			os.Getenv("SESSION_PUBKEY"),
			cfg.Auth.CookieName,
			cfg.Auth.Issuer,
			cfg.Auth.SessionTTL,
		)
		if err != nil {
			l.Error().Err(err).Msg("Credential login disabled")
		} else {
			session = p
			providers = append(providers, p)
		}
	}

	if cfg.HasProvider("clerk") {
		if key := os.Getenv("CLERK_API"); key != "" {
			clerk = auth.NewClerkAuthProvider(key, users)
			providers = append(providers, clerk)
		} else {
			l.Warn().Msg("CLERK_API is not set, Clerk sign-in disabled")
		}
	}

	return session, clerk, providers
}

func newApp(ctx context.Context, cfg *config.Config, files fs.FS, l zerolog.Logger) (*app, error) {
	client := repository.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	blogs := repository.NewBlogStore(client, cfg.Backend.CacheTTL)
	projects := repository.NewProjectStore(client, cfg.Backend.CacheTTL)
	skills := repository.NewSkillStore(client, cfg.Backend.CacheTTL)
	messages := repository.NewMessageStore(client, cfg.Backend.CacheTTL)
	users := repository.NewUsers(client)

	clients := sse.NewSSEClients()
	registry := drafts.NewRegistry()

	a := &app{}
	var (
		autosaves *drafts.Store
		notifier  drafts.Notifier = clients
	)
	if cfg.Editor.Autosave {
		compressor, err := compression.ByName(cfg.Editor.Compression)
		if err != nil {
			return nil, err
		}
		database := db.NewSQLite(cfg.Editor.DatabasePath)
		if err := database.InitDB(); err != nil {
			return nil, fmt.Errorf("autosave database: %w", err)
		}
		a.database = database
		autosaves = drafts.NewStore(database, compressor)
		a.autosaver = drafts.NewAutosaver(registry, autosaves, notifier, cfg.Editor.AutosaveInterval, cfg.Editor.SessionTTL)
	}

	uploader, memory := newUploader(ctx, cfg, l)
	pages := view.New(files)

	a.dashboard = dashboard.New(dashboard.Deps{
		Blogs:          blogs,
		Projects:       projects,
		Skills:         skills,
		Messages:       messages,
		Users:          users,
		Registry:       registry,
		Autosaves:      autosaves,
		Autosaver:      a.autosaver,
		Notifier:       notifier,
		Uploader:       uploader,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		View:           pages,
	})

	static, err := fs.Sub(files, config.StaticLocalDir)
	if err != nil {
		return nil, err
	}
	indexed, err := cache.IndexStatic(static, config.StaticUrlPath)
	if err != nil {
		return nil, fmt.Errorf("index static files: %w", err)
	}
	l.Debug().Int("files", indexed).Msg("Static files indexed")

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+routes.RobotsPath, serveRobots)
	mux.HandleFunc("GET "+routes.ThemeOppositeIcon, serveThemeOppositeIcon)
	mux.HandleFunc("POST "+routes.ThemeToggle, serveThemePostToggle)
	mux.HandleFunc("POST "+routes.SyntaxThemeSet, serveSyntaxThemePostSet)
	mux.HandleFunc("GET "+routes.SyntaxThemeGet, serveSyntaxThemeGetTheme)
	mux.Handle("GET "+config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(static))))
	mux.HandleFunc("GET "+routes.SSEPath, auth.RequireUser(clients.Handler(a.dashboard.OwnsSession)))
	if memory != nil {
		mux.Handle("GET "+routes.UploadsPath, memory)
	}

	session, clerk, providers := newAuth(cfg, users, l)
	if err := auth.RegisterRoutes(mux, session, clerk, users, files); err != nil {
		return nil, err
	}

	site.NewHandler(blogs, projects, skills, messages, pages, cfg.Contact).Register(mux)
	a.dashboard.Register(mux)

	secured := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == routes.RobotsPath {
			mux.ServeHTTP(w, r)
			return
		}
		secureHeaders(mux.ServeHTTP)(w, r)
	})

	handler := auth.Chain(providers...)(secured)
	a.handler = logger.Middleware(l, cfg.Logging.Requests)(cacheIt(handler.ServeHTTP))
	return a, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	if err := config.LoadConfig(configPath); err != nil {
		log.Fatal(err)
	}
	cfg := config.AppConfig

	l := logger.New(cfg.Logging)
	setLoggers(l)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, content, l)
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to start")
	}

	workers := make(chan struct{})
	go func() {
		defer close(workers)
		if a.autosaver != nil {
			a.autosaver.Run(ctx)
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Info().Str("addr", server.Addr).Str("backend", cfg.Backend.BaseURL).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error().Err(err).Msg("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	l.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("Graceful shutdown failed")
	}

	a.dashboard.Wait()
	<-workers
	if a.database != nil {
		a.database.Close()
	}
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set(config.HAcceptCH, config.HeaderPrefersColorScheme)
		w.Header().Add(config.HVary, config.HeaderPrefersColorScheme)

		h(w, r)
	}
}

func serveRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("User-agent: *\nDisallow: /dashboard\nDisallow: /api/\n"))
}

func serveThemeOppositeIcon(w http.ResponseWriter, r *http.Request) {
	currTheme := r.URL.Query().Get("theme")
	if !theme.IsTheme(currTheme) {
		http.Error(w, "theme required", http.StatusBadRequest)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(theme.Icon(currTheme)))
}

func serveThemePostToggle(w http.ResponseWriter, r *http.Request) {
	newTheme := theme.Next(theme.FromRequest(r))
	theme.SetCookie(w, newTheme)

	syntaxTheme := theme.ResolveSyntax(r, newTheme, theme.PickedSyntaxTheme(r))

	w.Header().Set(config.HHxTrigger, fmt.Sprintf(`{"themeChanged":{"value":%q,"syntaxTheme":%q}}`, newTheme, syntaxTheme))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(theme.Icon(newTheme)))
}

func serveSyntaxThemePostSet(w http.ResponseWriter, r *http.Request) {
	picked := r.FormValue("syntax-theme-select")
	if !theme.IsSyntaxTheme(picked) {
		http.Error(w, "unknown syntax theme", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieSyntaxTheme,
		Value:    picked,
		Path:     "/",
		MaxAge:   config.ThemeCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeStylesheet(w, theme.ResolveSyntax(r, theme.FromRequest(r), picked))
}

func serveSyntaxThemeGetTheme(w http.ResponseWriter, r *http.Request) {
	writeStylesheet(w, r.PathValue("theme"))
}

func writeStylesheet(w http.ResponseWriter, name string) {
	themeStyle := []byte(theme.Stylesheet(name))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.WriteHeader(http.StatusOK)
	w.Write(themeStyle)
}
