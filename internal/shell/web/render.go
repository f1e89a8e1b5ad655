package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"pages": func(n int) []int {
			pages := make([]int, n)
			for i := range pages {
				pages[i] = i + 1
			}
			return pages
		},
		"money": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
	}
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}

// basePage carries the fields every view needs. Notices are drained from the
// session when the page is built, so they render exactly once.
type basePage struct {
	Title       string
	CurrentUser string
	Notices     []Notice
}

func (h *Handler) newBasePage(w http.ResponseWriter, r *http.Request, title string) basePage {
	username, _ := h.signedInUser(r)
	return basePage{
		Title:       title,
		CurrentUser: username,
		Notices:     h.popNotices(w, r),
	}
}

// render executes the named page template. The body is buffered so a template
// fault produces a clean 500 instead of a half-written page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, page any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, page); err != nil {
		h.logger.Error("template render failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
