package view

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

const (
	templatePage          = "index.html"
	templateDashboard     = "dashboard"
	templateCategoryField = "category_field"
)

// Renderer executes the embedded page and partial templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses templates/*.html from fsys.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	t, err := template.New("paisa").ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for _, name := range []string{templatePage, templateDashboard, templateCategoryField} {
		if t.Lookup(name) == nil {
			return nil, fmt.Errorf("template %q not defined", name)
		}
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Page(w io.Writer, p Page) error {
	return r.execute(w, templatePage, p)
}

func (r *Renderer) Dashboard(w io.Writer, d Dashboard) error {
	return r.execute(w, templateDashboard, d)
}

func (r *Renderer) CategoryField(w io.Writer, f CategoryField) error {
	return r.execute(w, templateCategoryField, f)
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
