package web

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"

	"lessons/internal/adapters/http/middleware"
	"lessons/internal/application/viewstate"
	"lessons/internal/domain/lesson"
	"lessons/internal/domain/theme"
)

var mdRenderer = goldmark.New()

// pageData is what layout.html renders around every page.
type pageData struct {
	Lesson  lesson.Lesson
	Lessons []lesson.Lesson
	Theme   theme.Theme
	Data    any
}

// internalError logs the real error and returns a generic 500 to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// themeMisuse fails a request that read the theme outside a provider scope.
// The message is shown in full: this is a wiring bug, not a user error.
func themeMisuse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("theme_provider_missing", "path", r.URL.Path, "error", err.Error())
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err.Error())
	}
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// lessonFor returns the catalog entry for slug, falling back to a bare header
// titled title if the catalog lacks it.
func lessonFor(slug, title string) lesson.Lesson {
	if l, err := catalog.BySlug(slug); err == nil {
		return l
	}
	return lesson.Lesson{Number: -1, Slug: slug, Title: title}
}

// offCatalog is the header of a page that is not a lesson.
func offCatalog(title string) lesson.Lesson {
	return lesson.Lesson{Number: -1, Slug: "-", Title: title}
}

// renderPage renders templates/<page> inside the layout with the given status.
// Every page consumes the theme, so a request outside a provider scope fails here.
func renderPage(w http.ResponseWriter, r *http.Request, status int, page string, l lesson.Lesson, data any) {
	h, err := viewstate.UseTheme(r.Context())
	if err != nil {
		themeMisuse(w, r, err)
		return
	}
	current := h.Theme()

	funcMap := template.FuncMap{
		"csrfToken":      func() string { return csrf.Token(r) },
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"renderMarkdown": renderMarkdown,
		"theme":          func() string { return current.String() },
		"currentPath":    func() string { return r.URL.Path },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS,
		"templates/layout.html", "templates/partials.html", "templates/"+page)
	if err != nil {
		internalError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, pageData{Lesson: l, Lessons: catalog.Lessons, Theme: current, Data: data}); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("response_write_failed", "path", r.URL.Path, "error", err.Error())
	}
}

// safeReturn keeps redirects on this site.
func safeReturn(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

// visitorTree returns the view tree of the requesting visitor.
func visitorTree(r *http.Request) (*viewstate.Tree, error) {
	v, ok := middleware.VisitorFromContext(r.Context())
	if !ok {
		return nil, errNoVisitor
	}
	return v.Tree, nil
}

var errNoVisitor = errors.New("request has no visitor session")
