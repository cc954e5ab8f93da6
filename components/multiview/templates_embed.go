package multiview

import (
	"embed"
	"fmt"
	"io/fs"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var pageTemplates embed.FS

// NewTemplateRenderer renders the built-in multiview page.
func NewTemplateRenderer() (Renderer, error) {
	return NewTemplateRendererFS(pageTemplates, "templates")
}

// NewTemplateRendererFS renders .html templates found under dir in fsys, for
// hosts that ship their own copy of the multiview page. Templates are read
// from fsys only, never from the working directory.
func NewTemplateRendererFS(fsys fs.FS, dir string) (Renderer, error) {
	if dir != "" && dir != "." {
		sub, err := fs.Sub(fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("multiview: template dir %q: %w", dir, err)
		}
		fsys = sub
	}
	return template.NewRenderer(
		template.WithFS(fsys),
		template.WithExtension(".html"),
	)
}
