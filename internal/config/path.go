package config

const (
	//? These paths must match the paths in the embed directive

	StaticLocalDir = "static"
	StaticUrlPath  = "/" + StaticLocalDir + "/"

	TemplatesLocalDir = "templates"

	TemplateLayout    = "layout.html"
	TemplateHome      = "home.html"
	TemplateProjects  = "projects.html"
	TemplateProject   = "project.html"
	TemplateBlogs     = "blogs.html"
	TemplateBlog      = "blog.html"
	TemplateSkills    = "skills.html"
	TemplateContact   = "contact.html"
	TemplateLogin     = "login.html"
	TemplateDashboard = "dashboard.html"
	TemplateDashList  = "dashboard_list.html"
	TemplateSkillForm = "skill_form.html"
	TemplateMessages  = "messages.html"
	TemplateProfile   = "profile.html"
	TemplateEditor    = "editor.html"
	TemplateLoadError = "load_error.html"
	TemplateNotFound  = "not_found.html"
)
