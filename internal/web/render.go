package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
)

//go:embed templates
var templatesFS embed.FS

var pages = []string{
	"index.html",
	"register.html",
	"login.html",
	"lessons.html",
	"exercise.html",
}

type TemplateRenderer struct {
	templates map[string]*template.Template
}

func NewTemplateRenderer() *TemplateRenderer {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"hearts": func(n int) string {
			if n <= 0 {
				return ""
			}
			return strings.Repeat("♥", n)
		},
	}

	templates := make(map[string]*template.Template)
	for _, page := range pages {
		tmpl := template.Must(
			template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/layout.html", "templates/"+page),
		)
		templates[page] = tmpl
	}

	return &TemplateRenderer{templates: templates}
}

func (t *TemplateRenderer) Render(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	tmpl, ok := t.templates[name]
	if !ok {
		http.Error(w, "template not found: "+name, http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
