// Package validate checks drafts and forms against the constraints declared
// in their struct tags and reports one message per offending field path.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validateLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	validateLogger = l
}

// FormKey holds errors that do not belong to a single field.
const FormKey = "_form"

const (
	TagBlogType        = "blog_type"
	TagBlogCategory    = "blog_category"
	TagProjectType     = "project_type"
	TagProjectCategory = "project_category"
	TagTechStack       = "tech_stack"
	TagPassword        = "password"
)

// Errors maps a field path such as "sections[2].subsections[0].title" to a
// human readable message. An empty map means the input is valid.
type Errors map[string]string

func (e Errors) Valid() bool {
	return len(e) == 0
}

// Paths returns the failing field paths in a stable order.
func (e Errors) Paths() []string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

func (e Errors) Error() string {
	messages := make([]string, 0, len(e))
	for _, p := range e.Paths() {
		messages = append(messages, fmt.Sprintf("%s: %s", p, e[p]))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

type Validator struct {
	validator *validator.Validate
}

func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	registerCustomValidators(validate)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validator: validate}
}

var std = New()

// Struct validates s with the shared validator.
func Struct(s any) Errors {
	return std.Struct(s)
}

func Blog(d *model.BlogDraft) Errors {
	return std.Struct(d)
}

func Project(d *model.ProjectDraft) Errors {
	return std.Struct(d)
}

// Struct never fails hard: anything the validator cannot inspect is reported
// under FormKey.
func (v *Validator) Struct(s any) Errors {
	err := v.validator.Struct(s)
	if err == nil {
		return Errors{}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		validateLogger.Error().Err(err).Type("input", s).Msg("Cannot validate input")
		return Errors{FormKey: "Nothing to validate."}
	}

	return fromValidationErrors(verrs)
}

func fromValidationErrors(verrs validator.ValidationErrors) Errors {
	errs := make(Errors, len(verrs))
	for _, fe := range verrs {
		typeName, path := splitNamespace(fe.Namespace())
		if _, seen := errs[path]; seen {
			continue
		}
		errs[path] = message(typeName, path, fe)
	}
	return errs
}

// splitNamespace turns "BlogDraft.sections[0].title" into ("BlogDraft", "sections[0].title").
func splitNamespace(ns string) (string, string) {
	typeName, path, found := strings.Cut(ns, ".")
	if !found {
		return "", ns
	}
	return typeName, path
}

var indexPattern = regexp.MustCompile(`\[\d+\]`)

// shape strips list indexes so one message covers every element of a collection.
func shape(path string) string {
	return indexPattern.ReplaceAllString(path, "[]")
}

func registerCustomValidators(validate *validator.Validate) {
	oneOf := func(check func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}
	}

	validate.RegisterValidation(TagBlogType, oneOf(model.IsBlogType))
	validate.RegisterValidation(TagBlogCategory, oneOf(model.IsBlogCategory))
	validate.RegisterValidation(TagProjectType, oneOf(model.IsProjectType))
	validate.RegisterValidation(TagProjectCategory, oneOf(model.IsProjectCategory))
	validate.RegisterValidation(TagTechStack, oneOf(model.IsTech))

	// Length is checked separately with min/max
	validate.RegisterValidation(TagPassword, func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		return strings.ContainsFunc(password, isLower) &&
			strings.ContainsFunc(password, isUpper) &&
			strings.ContainsFunc(password, isDigit)
	})
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
