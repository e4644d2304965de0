package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/clipforge/clipforge/internal/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed content/*.md
var contentFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS returns the stylesheet and other static assets.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer renders pages from sessions.
type Renderer struct {
	site      Site
	templates map[string]*template.Template
	bodies    map[domain.Page]template.HTML
}

// NewRenderer parses the page templates and renders the static page bodies.
func NewRenderer(site Site) (*Renderer, error) {
	funcMap := template.FuncMap{
		"upper": strings.ToUpper,
	}

	layout, err := template.New("layout").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages := map[string]string{
		"home": "templates/home.html",
		"page": "templates/page.html",
	}
	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		templates[name] = t
	}

	bodies, err := renderContent(site)
	if err != nil {
		return nil, err
	}

	return &Renderer{site: site, templates: templates, bodies: bodies}, nil
}

// Site returns the branding the renderer was built with.
func (r *Renderer) Site() Site {
	return r.site
}

// PageData builds the view model for sess, including static page bodies.
func (r *Renderer) PageData(sess *domain.Session) *PageData {
	data := NewPageData(r.site, sess)
	data.Body = r.bodies[data.Page]
	return data
}

// Render writes the full HTML document for data.
func (r *Renderer) Render(w io.Writer, data *PageData) error {
	name := "page"
	if data.Page == domain.PageHome {
		name = "home"
	}
	var buf bytes.Buffer
	if err := r.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", data.Page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func renderContent(site Site) (map[domain.Page]template.HTML, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	vars := map[string]string{
		"SITE_NAME":     site.Name,
		"CONTACT_EMAIL": site.ContactEmail,
		"YEAR":          strconv.Itoa(site.Year),
	}

	bodies := make(map[domain.Page]template.HTML)
	for _, page := range domain.AllPages {
		if page == domain.PageHome {
			continue
		}
		raw, err := contentFS.ReadFile("content/" + string(page) + ".md")
		if err != nil {
			return nil, fmt.Errorf("missing content for %s: %w", page, err)
		}
		source := os.Expand(string(raw), func(key string) string {
			return template.HTMLEscapeString(vars[key])
		})

		var buf bytes.Buffer
		if err := md.Convert([]byte(source), &buf); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", page, err)
		}
		bodies[page] = template.HTML(buf.String())
	}
	return bodies, nil
}
