// Package site serves the public pages: home, projects, blogs, skills and
// the contact form.
package site

import (
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/render"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/routes"
	"github.com/debemdeboas/folio/internal/theme"
	"github.com/debemdeboas/folio/internal/validate"
	"github.com/debemdeboas/folio/internal/view"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var siteLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	siteLogger = l
}

const (
	LatestBlogCount = 3
	limiterIdleTTL  = 10 * time.Minute
)

type Handler struct {
	blogs    *repository.Store[model.Blog]
	projects *repository.Store[model.Project]
	skills   *repository.Store[model.Skill]
	messages *repository.Store[model.Message]

	view     *view.Renderer
	limiters *cache.TTLCache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
	proxies  []netip.Prefix
}

func NewHandler(
	blogs *repository.Store[model.Blog],
	projects *repository.Store[model.Project],
	skills *repository.Store[model.Skill],
	messages *repository.Store[model.Message],
	renderer *view.Renderer,
	contact config.ContactConfig,
) *Handler {
	return &Handler{
		blogs:    blogs,
		projects: projects,
		skills:   skills,
		messages: messages,
		view:     renderer,
		limiters: cache.NewTTLCache[string, *rate.Limiter](limiterIdleTTL),
		limit:    rate.Limit(contact.RatePerMinute / 60),
		burst:    contact.Burst,
		proxies:  parseProxies(contact.TrustedProxies),
	}
}

// parseProxies reads addresses and CIDRs, skipping entries that are neither.
func parseProxies(list []string) []netip.Prefix {
	var proxies []netip.Prefix
	for _, entry := range list {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			proxies = append(proxies, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		siteLogger.Warn().Str("proxy", entry).Msg("Ignoring invalid trusted proxy")
	}
	return proxies
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+routes.Home, h.ServeHome)
	mux.HandleFunc("GET "+routes.Projects, h.ServeProjects)
	mux.HandleFunc("GET "+routes.Project, h.ServeProject)
	mux.HandleFunc("GET "+routes.Blogs, h.ServeBlogs)
	mux.HandleFunc("GET "+routes.Blog, h.ServeBlog)
	mux.HandleFunc("GET "+routes.Skills, h.ServeSkills)
	mux.HandleFunc("GET "+routes.Contact, h.ServeContact)
	mux.HandleFunc("POST "+routes.Contact, h.HandleContact)
	mux.HandleFunc("GET /", h.ServeNotFound)
}

func (h *Handler) ServeNotFound(w http.ResponseWriter, r *http.Request) {
	h.view.NotFound(w, r, view.PageData(r, "Not found"), "The page you are looking for does not exist.")
}

// BlogCard is a blog list entry.
type BlogCard struct {
	model.Blog
	ReadTime int
}

func blogCards(blogs []model.Blog) []BlogCard {
	cards := make([]BlogCard, len(blogs))
	for i, b := range blogs {
		cards[i] = BlogCard{Blog: b, ReadTime: b.ReadTime()}
	}
	return cards
}

// latest returns the n most recent posts.
func latest(blogs []model.Blog, n int) []model.Blog {
	sorted := slices.Clone(blogs)
	slices.SortStableFunc(sorted, func(a, b model.Blog) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

type homePage struct {
	*model.PageData
	Featured []model.Project
	Skills   []model.Skill
	Blogs    []BlogCard
	Errors   []string
}

// ServeHome loads projects, skills and blogs concurrently. A failed source
// leaves its section empty with a message rather than failing the page.
func (h *Handler) ServeHome(w http.ResponseWriter, r *http.Request) {
	var (
		projects repository.Result[[]model.Project]
		skills   repository.Result[[]model.Skill]
		blogs    repository.Result[[]model.Blog]
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { projects = h.projects.List(ctx); return nil })
	g.Go(func() error { skills = h.skills.List(ctx); return nil })
	g.Go(func() error { blogs = h.blogs.List(ctx); return nil })
	g.Wait()

	page := homePage{PageData: view.PageData(r, config.AppConfig.Site.Name)}
	for _, res := range []struct {
		ok   bool
		name string
		msg  string
	}{
		{projects.Success, "projects", projects.Message},
		{skills.Success, "skills", skills.Message},
		{blogs.Success, "blogs", blogs.Message},
	} {
		if !res.ok {
			zerolog.Ctx(r.Context()).Warn().Str("source", res.name).Str("message", res.msg).Msg("Home section failed to load")
			page.Errors = append(page.Errors, res.msg)
		}
	}

	page.Featured = model.Featured(projects.Data)
	page.Skills = skills.Data
	page.Blogs = blogCards(latest(blogs.Data, LatestBlogCount))

	h.view.Page(w, r, http.StatusOK, config.TemplateHome, page)
}

type projectsPage struct {
	*model.PageData
	Tab      string
	Tabs     []string
	Projects []model.Project
	Error    string
}

func (h *Handler) ServeProjects(w http.ResponseWriter, r *http.Request) {
	tab := r.URL.Query().Get("tab")
	if tab != model.TabPersonal && tab != model.TabProfessional {
		tab = model.TabAll
	}

	res := h.projects.List(r.Context())
	page := projectsPage{
		PageData: view.PageData(r, "Projects"),
		Tab:      tab,
		Tabs:     []string{model.TabAll, model.TabPersonal, model.TabProfessional},
		Projects: model.FilterProjects(res.Data, tab),
	}
	status := http.StatusOK
	if !res.Success {
		page.Error = res.Message
		status = http.StatusBadGateway
	}
	h.view.Page(w, r, status, config.TemplateProjects, page)
}

// notFoundOrError answers a failed record fetch.
func (h *Handler) notFoundOrError(w http.ResponseWriter, r *http.Request, pd *model.PageData, status int, message string) {
	if status == http.StatusNotFound {
		h.view.NotFound(w, r, pd, message)
		return
	}
	pd.Title = "Unavailable"
	h.view.Page(w, r, http.StatusBadGateway, config.TemplateNotFound, struct {
		*model.PageData
		Message string
	}{pd, message})
}

func (h *Handler) ServeProject(w http.ResponseWriter, r *http.Request) {
	res := h.projects.FetchByID(r.Context(), r.PathValue("id"))
	pd := view.PageData(r, "Project")
	if !res.Success {
		h.notFoundOrError(w, r, pd, res.Status, res.Message)
		return
	}

	pd.Title = res.Data.CompanyName
	h.view.Page(w, r, http.StatusOK, config.TemplateProject, struct {
		*model.PageData
		Project model.Project
	}{pd, res.Data})
}

func (h *Handler) ServeBlogs(w http.ResponseWriter, r *http.Request) {
	res := h.blogs.List(r.Context())
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	h.view.Page(w, r, status, config.TemplateBlogs, struct {
		*model.PageData
		Blogs []BlogCard
		Error string
	}{view.PageData(r, "Blogs"), blogCards(latest(res.Data, len(res.Data))), res.Message})
}

func (h *Handler) ServeBlog(w http.ResponseWriter, r *http.Request) {
	res := h.blogs.FetchByID(r.Context(), r.PathValue("id"))
	pd := view.PageData(r, "Blog")
	if !res.Success {
		h.notFoundOrError(w, r, pd, res.Status, res.Message)
		return
	}

	blog := res.Data
	pd.Title = blog.Title
	h.view.Page(w, r, http.StatusOK, config.TemplateBlog, struct {
		*model.PageData
		Blog     model.Blog
		ReadTime int
		Body     *render.Blog
	}{pd, blog, blog.ReadTime(), render.RenderBlog(&blog.BlogDraft, theme.SyntaxThemeFromRequest(r))})
}

func (h *Handler) ServeSkills(w http.ResponseWriter, r *http.Request) {
	res := h.skills.List(r.Context())
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	h.view.Page(w, r, status, config.TemplateSkills, struct {
		*model.PageData
		Skills []model.Skill
		Error  string
	}{view.PageData(r, "Skills"), res.Data, res.Message})
}

type contactPage struct {
	*model.PageData
	Message     model.Message
	FieldErrors validate.Errors
	Error       string
	Sent        bool
}

func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	h.view.Page(w, r, http.StatusOK, config.TemplateContact, contactPage{PageData: view.PageData(r, "Contact")})
}

func (h *Handler) trusted(addr netip.Addr) bool {
	return slices.ContainsFunc(h.proxies, func(p netip.Prefix) bool { return p.Contains(addr) })
}

// clientIP is the peer address, unless the peer is a trusted proxy. Then
// X-Forwarded-For is walked from the right and the first hop that is not a
// trusted proxy wins, so clients cannot pick their own bucket by prepending.
func (h *Handler) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	client, err := netip.ParseAddr(host)
	if err != nil {
		return host
	}
	client = client.Unmap()
	if !h.trusted(client) {
		return client.String()
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		client = hop.Unmap()
		if !h.trusted(client) {
			break
		}
	}
	return client.String()
}

func (h *Handler) allow(ip string) bool {
	limiter := h.limiters.GetOrSet(ip, func() *rate.Limiter {
		return rate.NewLimiter(h.limit, h.burst)
	})
	return limiter.Allow()
}

func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	page := contactPage{
		PageData: view.PageData(r, "Contact"),
		Message: model.Message{
			Name:    strings.TrimSpace(r.FormValue("name")),
			Email:   strings.TrimSpace(r.FormValue("email")),
			Message: strings.TrimSpace(r.FormValue("message")),
			Social:  strings.TrimSpace(r.FormValue("social")),
		},
	}

	if errs := validate.Struct(page.Message); !errs.Valid() {
		page.FieldErrors = errs
		h.view.Page(w, r, http.StatusUnprocessableEntity, config.TemplateContact, page)
		return
	}

	if !h.allow(h.clientIP(r)) {
		page.Error = config.ErrTooManyMessages
		h.view.Page(w, r, http.StatusTooManyRequests, config.TemplateContact, page)
		return
	}

	res := h.messages.Create(r.Context(), page.Message)
	if !res.Success {
		page.Error = res.Message
		h.view.Page(w, r, http.StatusBadGateway, config.TemplateContact, page)
		return
	}

	siteLogger.Info().Str("from", page.Message.Email).Msg("Contact message received")
	h.view.Page(w, r, http.StatusOK, config.TemplateContact, contactPage{PageData: page.PageData, Sent: true})
}
