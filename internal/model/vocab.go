package model

import "slices"

const (
	BlogTypeTechnical = "Technical"
	BlogTypeTutorial  = "Tutorial"
	BlogTypeOpinion   = "Opinion"
	BlogTypeCaseStudy = "Case Study"

	ProjectTypePersonal     = "Personal Project"
	ProjectTypeProfessional = "Professional"
)

var (
	BlogTypes = []string{BlogTypeTechnical, BlogTypeTutorial, BlogTypeOpinion, BlogTypeCaseStudy}

	BlogCategories = []string{"Web Dev", "Mobile", "DevOps", "Career", "Productivity"}

	ProjectTypes = []string{ProjectTypePersonal, ProjectTypeProfessional}

	ProjectCategories = []string{"Full Stack", "Frontend", "Backend", "Web Dev"}

	TechStack = []string{
		"Next.js", "React", "GraphQL", "Express.js", "Node.js", "MongoDB", "Firebase",
		"Typescript", "Javascript", "HTML 5", "CSS 3", "React Native", "Angular", "Redux",
		"Material UI", "Tailwind CSS", "Bootstrap", "Google Auth", "MySQL", "JWT",
		"TanStack Query", "react-hook-form", "SurjoPay", "Prisma", "PostgreSQL",
	}

	// SkillIcons are the icon names the skills page knows how to draw.
	SkillIcons = []string{
		"react", "nextjs", "typescript", "javascript", "nodejs", "express", "mongodb",
		"postgresql", "mysql", "prisma", "graphql", "redux", "tailwind", "bootstrap",
		"firebase", "html", "css", "git", "docker", "go",
	}
)

func IsBlogType(s string) bool        { return slices.Contains(BlogTypes, s) }
func IsBlogCategory(s string) bool    { return slices.Contains(BlogCategories, s) }
func IsProjectType(s string) bool     { return slices.Contains(ProjectTypes, s) }
func IsProjectCategory(s string) bool { return slices.Contains(ProjectCategories, s) }
func IsTech(s string) bool            { return slices.Contains(TechStack, s) }
