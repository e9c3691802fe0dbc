package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// messages is keyed by "<Type>.<path with [] for indexes>:<tag>".
var messages = map[string]string{
	"BlogDraft.title:min":                               "Title must be at least 5 characters.",
	"BlogDraft.type:blog_type":                          "Select a blog type.",
	"BlogDraft.categories:min":                          "Select at least one category.",
	"BlogDraft.categories[]:blog_category":              "Unknown category.",
	"BlogDraft.tags:min":                                "Add at least one tag.",
	"BlogDraft.coverImage:url":                          "Please upload a valid image URL.",
	"BlogDraft.contentDetails.paragraphs:min":           "Add at least one paragraph.",
	"BlogDraft.contentDetails.keyPoints:min":            "Add at least one key point.",
	"BlogDraft.sections[].subsections[].title:required": "Subsection title is required.",
	"BlogDraft.externalLinks[].url:url":                 "Please enter a valid URL.",
	"BlogDraft.repositoryUrl:url":                       "Please enter a valid repository URL.",

	"ProjectDraft.type:project_type":                   "Select a project type.",
	"ProjectDraft.companyName:min":                     "Company name must be at least 2 characters.",
	"ProjectDraft.category:min":                        "Please select at least one category.",
	"ProjectDraft.category[]:project_category":         "Unknown category.",
	"ProjectDraft.shortDescription:min":                "Short description must be at least 10 characters.",
	"ProjectDraft.websiteLink:url":                     "Please enter a valid website URL.",
	"ProjectDraft.githubLink:url":                      "Please enter a valid GitHub URL.",
	"ProjectDraft.techStack:min":                       "Please select at least one technology.",
	"ProjectDraft.techStack[]:tech_stack":              "Unknown technology.",
	"ProjectDraft.startDate:required":                  "A start date is required.",
	"ProjectDraft.companyLogoImg:url":                  "Please upload a valid company logo.",
	"ProjectDraft.descriptionDetails.paragraphs:min":   "Please add at least one paragraph.",
	"ProjectDraft.descriptionDetails.paragraphs[]:min": "Paragraph must be at least 10 characters.",
	"ProjectDraft.descriptionDetails.bullets[]:min":    "Bullet point must be at least 5 characters.",
	"ProjectDraft.pagesInfoArr:min":                    "Please add at least one page info.",
	"ProjectDraft.pagesInfoArr[].title:min":            "Page title must be at least 2 characters.",
	"ProjectDraft.pagesInfoArr[].imgArr:min":           "Please add at least one image.",
	"ProjectDraft.pagesInfoArr[].imgArr[]:url":         "Please upload a valid image.",

	"Skill.name:min":        "Skill name must be at least 2 characters.",
	"Skill.description:min": "Description must be at least 10 characters.",
	"Skill.rating:min":      "Rating must be between 1 and 5.",
	"Skill.rating:max":      "Rating must be between 1 and 5.",
	"Skill.icon:min":        "Please select an icon.",

	"Message.name:min":    "Name must contain at least 3 characters.",
	"Message.email:email": "Please enter a valid email.",
	"Message.message:min": "Please write something more descriptive.",
	"Message.social:url":  "Please enter a valid URL.",

	"Credentials.email:email":       "Please enter a valid email.",
	"Credentials.password:min":      "Password must be at least 6 characters.",
	"Credentials.password:max":      "Password must not exceed 32 characters.",
	"Credentials.password:password": "Password must contain a lowercase letter, an uppercase letter and a number.",
}

func message(typeName, path string, fe validator.FieldError) string {
	if msg, ok := messages[typeName+"."+shape(path)+":"+fe.Tag()]; ok {
		return msg
	}
	return genericMessage(fe)
}

func genericMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL.", field)
	case "min":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("%s needs at least %s item(s).", field, fe.Param())
		}
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("%s must be at least %s.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters.", field, fe.Param())
	case "max":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("%s must be at most %s.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", field, fe.Param())
	case TagBlogType, TagBlogCategory, TagProjectType, TagProjectCategory, TagTechStack:
		return fmt.Sprintf("%q is not an allowed value.", fe.Value())
	default:
		return fmt.Sprintf("%s is invalid.", strings.TrimSpace(field))
	}
}

func isCollection(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array || k == reflect.Map
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
