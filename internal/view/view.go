// Package view renders the HTML pages: every page is the shared layout plus
// one page template, parsed from the embedded file system.
package view

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/debemdeboas/folio/internal/auth"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/rs/zerolog"
)

var Funcs = template.FuncMap{
	"formatDate":      model.FormatDate,
	"formatMonthYear": model.FormatMonthYear,
	"join":            strings.Join,
	"contains": func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	},
	"json": func(v any) (template.JS, error) {
		data, err := json.Marshal(v)
		return template.JS(data), err
	},
	"stars": func(n int) []int {
		s := make([]int, 5)
		for i := range s {
			if i < n {
				s[i] = 1
			}
		}
		return s
	},
	"year": func() int { return time.Now().Year() },
}

type Renderer struct {
	files fs.FS
}

func New(files fs.FS) *Renderer {
	return &Renderer{files: files}
}

func (v *Renderer) parse(page string) (*template.Template, error) {
	return template.New(config.TemplateLayout).Funcs(Funcs).ParseFS(
		v.files,
		config.TemplatesLocalDir+"/"+config.TemplateLayout,
		config.TemplatesLocalDir+"/"+page,
	)
}

// Page renders page inside the layout. Output is buffered so a template
// error still produces a clean 500.
func (v *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl, err := v.parse(page)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("Failed to parse template")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, config.TemplateLayout, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("Failed to render template")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// NotFound renders the not found page.
func (v *Renderer) NotFound(w http.ResponseWriter, r *http.Request, pd *model.PageData, message string) {
	pd.Title = "Not found"
	v.Page(w, r, http.StatusNotFound, config.TemplateNotFound, struct {
		*model.PageData
		Message string
	}{pd, message})
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// PageData is model.NewPageData with the signed-in user filled in.
func PageData(r *http.Request, title string) *model.PageData {
	pd := model.NewPageData(r)
	pd.Title = title
	pd.UserID, _ = auth.UserIDFromContext(r.Context())
	return pd
}
