// Package view renders the gateway's HTML pages. Markup is intentionally
// minimal: layout and styling are not this service's concern, the templates
// exist so routes have something to render and tests something to assert on.
package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer satisfies echo.Renderer over the embedded templates.
type Renderer struct {
	templates *template.Template
}

func New() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
