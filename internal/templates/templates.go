// the templates package renders the dashboard pages. Every page is rendered inside layout.html.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/siportevent/siports/internal/client"
	"github.com/siportevent/siports/internal/helpers"
)

//go:embed layout.html pages/*.html static/*
var files embed.FS

// Page is the data passed to every template
type Page struct {
	Title       string
	Environment string
	User        *client.Profile // signed in user, nil for anonymous pages
	Notice      string          // success banner
	Error       string          // error banner - backend messages are shown verbatim
	Data        any             // page specific data
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"slug": helpers.Slug,
	"price": func(amount float64, currency string) string {
		if amount == 0 {
			return "Gratuit"
		}
		if currency == "" {
			currency = "EUR"
		}
		return fmt.Sprintf("%.0f %s", amount, currency)
	},
}

// New parses the layout together with each page template
func New() (*Renderer, error) {
	names, err := fs.Glob(files, "pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return r, nil
}

// Render writes the named page with the given status.
// The page is rendered to a buffer first so a template error never leaves a half written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded css (mount under /static/)
func StaticHandler() http.Handler {
	static, err := fs.Sub(files, "static")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(static)))
}
