// Package dashboard serves the signed-in part of the site: record lists,
// the skill and message pages, and the structured editor for blogs and
// projects together with its JSON API.
package dashboard

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/debemdeboas/folio/internal/auth"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/editor"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/render"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/repository/drafts"
	"github.com/debemdeboas/folio/internal/routes"
	"github.com/debemdeboas/folio/internal/theme"
	"github.com/debemdeboas/folio/internal/upload"
	"github.com/debemdeboas/folio/internal/validate"
	"github.com/debemdeboas/folio/internal/view"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var dashLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	dashLogger = l
}

// Deps are the collaborators the dashboard needs. Autosaves and Autosaver
// are nil when autosave is disabled.
type Deps struct {
	Blogs    *repository.Store[model.Blog]
	Projects *repository.Store[model.Project]
	Skills   *repository.Store[model.Skill]
	Messages *repository.Store[model.Message]
	Users    *repository.Users

	Registry  *drafts.Registry
	Autosaves *drafts.Store
	Autosaver *drafts.Autosaver
	Notifier  drafts.Notifier

	Uploader       upload.Uploader
	MaxUploadBytes int64

	View *view.Renderer
}

type Handler struct {
	Deps

	// uploads tracks image uploads still running in the background.
	uploads sync.WaitGroup
}

func New(deps Deps) *Handler {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = config.AppConfig.Upload.MaxBytes
	}
	return &Handler{Deps: deps}
}

// Register mounts every dashboard and editor route. All of them require a
// signed-in user.
func (h *Handler) Register(mux *http.ServeMux) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, auth.RequireUser(fn))
	}

	handle("GET "+routes.Dashboard, h.ServeDashboard)
	handle("GET "+routes.DashboardList, h.ServeList)
	handle("GET "+routes.DashboardNew, h.ServeNew)
	handle("GET "+routes.DashboardEdit, h.ServeEdit)
	handle("POST "+routes.DashboardDelete, h.HandleDelete)
	handle("POST "+routes.DashboardPreview, h.HandlePreview)

	handle("GET "+routes.DashboardSkills, h.ServeSkills)
	handle("GET "+routes.DashboardSkillNew, h.ServeSkillForm)
	handle("GET "+routes.DashboardSkillEdit, h.ServeSkillForm)
	handle("POST "+routes.DashboardSkillSave, h.HandleSkillSave)
	handle("GET "+routes.DashboardMessages, h.ServeMessages)
	handle("GET "+routes.DashboardProfile, h.ServeProfile)

	handle("GET "+routes.EditorState, h.HandleState)
	handle("DELETE "+routes.EditorState, h.HandleClose)
	handle("POST "+routes.EditorOps, h.HandleOps)
	handle("POST "+routes.EditorCheck, h.HandleCheck)
	handle("POST "+routes.EditorReset, h.HandleReset)
	handle("POST "+routes.EditorSubmit, h.HandleSubmit)
	handle("POST "+routes.EditorUpload, h.HandleUpload)
	handle("POST "+routes.EditorRestore, h.HandleRestore)
	handle("GET "+routes.EditorAutosave, h.HandleAutosaveInfo)
	handle("POST "+routes.EditorAutosave, h.HandleAutosaveNow)
	handle("DELETE "+routes.EditorAutosave, h.HandleAutosaveDiscard)
}

// Wait blocks until background uploads have finished.
func (h *Handler) Wait() {
	h.uploads.Wait()
}

// kindFromPath maps the plural path segment to a draft kind.
func kindFromPath(r *http.Request) (model.Kind, bool) {
	switch r.PathValue("kind") {
	case model.KindBlog.Plural():
		return model.KindBlog, true
	case model.KindProject.Plural():
		return model.KindProject, true
	}
	return "", false
}

func isHtmx(r *http.Request) bool {
	return r.Header.Get(config.HHxRequest) != ""
}

// redirect sends the browser to target, through htmx when the request came
// from it.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHtmx(r) {
		w.Header().Set(config.HHxRedirect, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

type counts struct {
	Blogs, Projects, Skills, Messages int
}

type dashboardPage struct {
	*model.PageData
	Counts   counts
	Drafts   int
	Errors   []string
	Autosave bool
}

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	page := dashboardPage{
		PageData: view.PageData(r, "Dashboard"),
		Autosave: h.Autosaver != nil,
	}

	var (
		mu     sync.Mutex
		report = func(res interface{ Err() error }, n int, dst *int) {
			mu.Lock()
			defer mu.Unlock()
			if err := res.Err(); err != nil {
				page.Errors = append(page.Errors, err.Error())
				return
			}
			*dst = n
		}
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { res := h.Blogs.List(ctx); report(res, len(res.Data), &page.Counts.Blogs); return nil })
	g.Go(func() error { res := h.Projects.List(ctx); report(res, len(res.Data), &page.Counts.Projects); return nil })
	g.Go(func() error { res := h.Skills.List(ctx); report(res, len(res.Data), &page.Counts.Skills); return nil })
	g.Go(func() error { res := h.Messages.List(ctx); report(res, len(res.Data), &page.Counts.Messages); return nil })
	g.Wait()

	h.Registry.Range(func(e editor.Editor) bool {
		if e.Owner() == page.UserID {
			page.Drafts++
		}
		return true
	})

	h.View.Page(w, r, http.StatusOK, config.TemplateDashboard, page)
}

// ListItem is one row of a dashboard list.
type ListItem struct {
	ID       string
	Title    string
	Subtitle string
	Date     string
	EditURL  string
	ViewURL  string
}

type listPage struct {
	*model.PageData
	Kind    string
	Heading string
	NewURL  string
	Items   []ListItem
	Error   string
}

func blogItems(blogs []model.Blog) []ListItem {
	items := make([]ListItem, len(blogs))
	for i, b := range blogs {
		items[i] = ListItem{
			ID:       string(b.ID),
			Title:    b.Title,
			Subtitle: b.Type,
			Date:     model.FormatDate(b.CreatedAt),
			EditURL:  "/dashboard/blogs/" + string(b.ID) + "/edit",
			ViewURL:  "/blogs/" + string(b.ID),
		}
	}
	return items
}

func projectItems(projects []model.Project) []ListItem {
	items := make([]ListItem, len(projects))
	for i, p := range projects {
		items[i] = ListItem{
			ID:       string(p.ID),
			Title:    p.CompanyName,
			Subtitle: p.Type,
			Date:     p.Period(),
			EditURL:  "/dashboard/projects/" + string(p.ID) + "/edit",
			ViewURL:  "/projects/" + string(p.ID),
		}
	}
	return items
}

func skillItems(skills []model.Skill) []ListItem {
	items := make([]ListItem, len(skills))
	for i, s := range skills {
		items[i] = ListItem{
			ID:       string(s.ID),
			Title:    s.Name,
			Subtitle: strings.Repeat("★", max(s.Rating, 0)),
			EditURL:  "/dashboard/skills/" + string(s.ID) + "/edit",
		}
	}
	return items
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(r)
	if !ok {
		h.View.NotFound(w, r, view.PageData(r, "Not found"), config.ErrNotFound)
		return
	}

	page := listPage{Kind: kind.Plural(), NewURL: "/dashboard/" + kind.Plural() + "/new"}
	var res interface{ Err() error }
	switch kind {
	case model.KindBlog:
		blogs := h.Blogs.List(r.Context())
		page.Items, res = blogItems(blogs.Data), blogs
		page.Heading = "Blogs"
	case model.KindProject:
		projects := h.Projects.List(r.Context())
		page.Items, res = projectItems(projects.Data), projects
		page.Heading = "Projects"
	}
	page.PageData = view.PageData(r, page.Heading)

	status := http.StatusOK
	if err := res.Err(); err != nil {
		page.Error = err.Error()
		status = http.StatusBadGateway
	}
	h.View.Page(w, r, status, config.TemplateDashList, page)
}

func (h *Handler) ServeSkills(w http.ResponseWriter, r *http.Request) {
	res := h.Skills.List(r.Context())
	page := listPage{
		PageData: view.PageData(r, "Skills"),
		Kind:     "skills",
		Heading:  "Skills",
		NewURL:   routes.DashboardSkillNew,
		Items:    skillItems(res.Data),
	}
	status := http.StatusOK
	if !res.Success {
		page.Error = res.Message
		status = http.StatusBadGateway
	}
	h.View.Page(w, r, status, config.TemplateDashList, page)
}

type skillFormPage struct {
	*model.PageData
	Action      string
	Skill       model.Skill
	Icons       []string
	FieldErrors validate.Errors
	Error       string
}

func (h *Handler) renderSkillForm(w http.ResponseWriter, r *http.Request, status int, page skillFormPage) {
	page.Icons = model.SkillIcons
	if page.Skill.ID == "" {
		page.PageData = view.PageData(r, "New skill")
		page.Action = "/dashboard/skills/new"
	} else {
		page.PageData = view.PageData(r, "Edit skill")
		page.Action = "/dashboard/skills/" + string(page.Skill.ID)
	}
	h.View.Page(w, r, status, config.TemplateSkillForm, page)
}

func (h *Handler) ServeSkillForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderSkillForm(w, r, http.StatusOK, skillFormPage{Skill: model.Skill{Rating: 3}})
		return
	}

	res := h.Skills.FetchByID(r.Context(), id)
	if !res.Success {
		h.loadError(w, r, "skill", res.Status, res.Message)
		return
	}
	h.renderSkillForm(w, r, http.StatusOK, skillFormPage{Skill: res.Data})
}

func skillFromForm(r *http.Request) model.Skill {
	rating, _ := strconv.Atoi(r.FormValue("rating"))
	return model.Skill{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Rating:      rating,
		Icon:        strings.TrimSpace(r.FormValue("icon")),
	}
}

// HandleSkillSave creates the skill when the id segment is "new" and
// updates it otherwise.
func (h *Handler) HandleSkillSave(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	skill := skillFromForm(r)

	page := skillFormPage{Skill: skill}
	if id != "new" {
		page.Skill.ID = model.SkillID(id)
	}

	if errs := validate.Struct(skill); !errs.Valid() {
		page.FieldErrors = errs
		h.renderSkillForm(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	var res repository.Result[model.Skill]
	if id == "new" {
		res = h.Skills.Create(r.Context(), skill)
	} else {
		res = h.Skills.Update(r.Context(), id, skill)
	}
	if !res.Success {
		page.Error = res.Message
		h.renderSkillForm(w, r, http.StatusBadGateway, page)
		return
	}

	dashLogger.Info().Str("skill", skill.Name).Bool("created", id == "new").Msg("Skill saved")
	redirect(w, r, routes.DashboardSkills)
}

func (h *Handler) ServeMessages(w http.ResponseWriter, r *http.Request) {
	res := h.Messages.List(r.Context())
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	h.View.Page(w, r, status, config.TemplateMessages, struct {
		*model.PageData
		Messages []model.Message
		Error    string
	}{view.PageData(r, "Messages"), res.Data, res.Message})
}

// ServeProfile shows the signed-in user's account as the backend stores it.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	res := h.Users.FetchByID(r.Context(), userID)
	if !res.Success {
		zerolog.Ctx(r.Context()).Warn().Str("user", string(userID)).Int("status", res.Status).Msg("Profile lookup failed")
		h.loadError(w, r, "profile", res.Status, res.Message)
		return
	}

	h.View.Page(w, r, http.StatusOK, config.TemplateProfile, struct {
		*model.PageData
		User model.User
	}{view.PageData(r, "Profile"), res.Data})
}

// HandleDelete removes a blog, project, skill or message. htmx callers get
// an empty 200 so the row can be swapped out.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	id := r.PathValue("id")

	var err error
	switch kind {
	case model.KindBlog.Plural():
		err = h.Blogs.Delete(r.Context(), id).Err()
	case model.KindProject.Plural():
		err = h.Projects.Delete(r.Context(), id).Err()
	case "skills":
		err = h.Skills.Delete(r.Context(), id).Err()
	case "messages":
		err = h.Messages.Delete(r.Context(), id).Err()
	default:
		http.Error(w, config.ErrNotFound, http.StatusNotFound)
		return
	}

	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("kind", kind).Str("id", id).Msg("Delete failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	dashLogger.Info().Str("kind", kind).Str("id", id).Msg("Record deleted")
	if isHtmx(r) {
		w.Header().Set(config.HHxTrigger, "recordDeleted")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/dashboard/"+kind, http.StatusSeeOther)
}

// HandlePreview renders markdown posted by the editor. The result is
// sanitized like any published page.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	content := r.FormValue("content")
	html, _ := render.RenderMarkdown([]byte(content), theme.SyntaxThemeFromRequest(r))

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.Write(html)
}

// loadError renders the page shown when a record cannot be loaded. It has
// no submit control.
func (h *Handler) loadError(w http.ResponseWriter, r *http.Request, what string, status int, message string) {
	if status != http.StatusNotFound {
		status = http.StatusBadGateway
	}
	h.View.Page(w, r, status, config.TemplateLoadError, struct {
		*model.PageData
		What    string
		Message string
	}{view.PageData(r, "Could not load "+what), what, message})
}
