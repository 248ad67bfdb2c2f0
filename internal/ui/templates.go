package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sync"

	"github.com/a-h/templ"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS returns the embedded static assets rooted at the static directory
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return sub
}

type templateSet struct {
	pages    map[string]*template.Template
	partials *template.Template
}

var loadTemplates = sync.OnceValues(func() (*templateSet, error) {
	base := template.New("")

	if _, err := base.ParseFS(templateFS, "templates/layouts/*.html"); err != nil {
		return nil, fmt.Errorf("failed to parse layout templates: %w", err)
	}
	if _, err := base.ParseFS(templateFS, "templates/partials/*.html"); err != nil {
		return nil, fmt.Errorf("failed to parse partial templates: %w", err)
	}

	pageFiles, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone templates for page %s: %w", file, err)
		}
		if _, err := clone.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("failed to parse page template %s: %w", file, err)
		}
		pages[path.Base(file)] = clone
	}

	partials, err := base.Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to clone partial templates: %w", err)
	}

	return &templateSet{pages: pages, partials: partials}, nil
})

// Page returns a component rendering the named page template
func Page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		set, err := loadTemplates()
		if err != nil {
			return err
		}
		tmpl, ok := set.pages[name]
		if !ok {
			return fmt.Errorf("page template not found: %s", name)
		}
		return tmpl.ExecuteTemplate(w, name, data)
	})
}

// Partial returns a component rendering a named fragment
func Partial(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		set, err := loadTemplates()
		if err != nil {
			return err
		}
		return set.partials.ExecuteTemplate(w, name, data)
	})
}
