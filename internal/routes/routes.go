// Package routes defines HTTP route constants for the application.
package routes

// Site
const (
	RobotsPath        = "/robots.txt"
	ThemeOppositeIcon = "/theme/opposite-icon"
	ThemeToggle       = "/theme/toggle"
	SyntaxThemeSet    = "/syntax-theme/set"
	SyntaxThemeGet    = "/syntax-theme/{theme}"

	SSEPath     = "/sse"
	UploadsPath = "/uploads/"

	Home     = "/{$}"
	Projects = "/projects"
	Project  = "/projects/{id}"
	Blogs    = "/blogs"
	Blog     = "/blogs/{id}"
	Skills   = "/skills"
	Contact  = "/contact"
)

// Dashboard
const (
	Dashboard = "/dashboard"

	DashboardList   = "/dashboard/{kind}"
	DashboardNew    = "/dashboard/{kind}/new"
	DashboardEdit   = "/dashboard/{kind}/{id}/edit"
	DashboardDelete = "/dashboard/{kind}/{id}/delete"

	DashboardSkills    = "/dashboard/skills"
	DashboardSkillNew  = "/dashboard/skills/new"
	DashboardSkillEdit = "/dashboard/skills/{id}/edit"
	DashboardSkillSave = "/dashboard/skills/{id}"
	DashboardMessages  = "/dashboard/messages"
	DashboardPreview   = "/dashboard/preview"
	DashboardProfile   = "/dashboard/profile"
)

// Editor API, keyed by editor session
const (
	EditorState    = "/api/editor/{session}"
	EditorOps      = "/api/editor/{session}/ops"
	EditorCheck    = "/api/editor/{session}/check"
	EditorReset    = "/api/editor/{session}/reset"
	EditorSubmit   = "/api/editor/{session}/submit"
	EditorUpload   = "/api/editor/{session}/upload"
	EditorRestore  = "/api/editor/{session}/restore"
	EditorAutosave = "/api/editor/{session}/autosave"
)
