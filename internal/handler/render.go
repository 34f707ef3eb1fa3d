// Package handler contains the HTTP request handlers: server-rendered
// pages, the list fragment for AJAX refreshes, and the JSON endpoints.
// Handlers parse requests, call the service layer, and shape responses —
// no business rules live here.
package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// Renderer holds the parsed template sets, one per page. Each set pairs
// the base layout with its content template (and the shared snippet-list
// fragment where the page embeds one), parsed once at startup.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses all page templates from templateDir.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	base := filepath.Join(templateDir, "base.html")
	fragment := filepath.Join(templateDir, "snippet_list.html")

	sets := map[string][]string{
		"snippets":     {base, fragment, filepath.Join(templateDir, "snippets.html")},
		"details":      {base, filepath.Join(templateDir, "details.html")},
		"add_snippet":  {base, filepath.Join(templateDir, "add_snippet.html")},
		"edit_snippet": {base, filepath.Join(templateDir, "edit_snippet.html")},
		"error":        {base, filepath.Join(templateDir, "error.html")},
	}

	pages := make(map[string]*template.Template, len(sets))
	for name, files := range sets {
		tmpl, err := template.ParseFiles(files...)
		if err != nil {
			return nil, fmt.Errorf("parsing %s templates: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Page renders a full page: the base layout pulls in the page's content
// template.
func (rn *Renderer) Page(w http.ResponseWriter, status int, page string, data any) {
	rn.execute(w, status, page, "base", data)
}

// Fragment renders only the snippet-list fragment, for AJAX refreshes of
// the listing pages.
func (rn *Renderer) Fragment(w http.ResponseWriter, status int, data any) {
	rn.execute(w, status, "snippets", "snippet_list", data)
}

func (rn *Renderer) execute(w http.ResponseWriter, status int, page, name string, data any) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.logger.Error("unknown template page", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		// Status is already on the wire; log and stop.
		rn.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
	}
}

// isAJAX reports whether the request signals an incremental fetch, in
// which case the listing handlers return only the list fragment.
func isAJAX(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}
