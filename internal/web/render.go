package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/color"
	"github.com/listenupapp/bookclub-server/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

var templateFuncs = template.FuncMap{
	"rating": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
	"avatarColor": color.ForUser,
	"initial":     color.Initial,
}

// pageData is the value every page template receives.
type pageData struct {
	Title    string
	Identity domain.Identity
	Flash    *Flash
	Data     any
}

// parsePages parses each page together with the shared layout.
func parsePages() (map[string]*template.Template, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		tmpl, err := template.New(path.Base(file)).Funcs(templateFuncs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[path.Base(file)] = tmpl
	}
	return pages, nil
}

// render executes page into a buffer so a template failure becomes a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	s.renderWithFlash(w, r, status, page, title, data, s.popFlash(w, r))
}

func (s *Server) renderWithFlash(w http.ResponseWriter, r *http.Request, status int, page, title string, data any, flash *Flash) {
	tmpl, ok := s.pages[page]
	if !ok {
		s.logger.Error("unknown template", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "layout", pageData{
		Title:    title,
		Identity: auth.IdentityFromContext(r.Context()),
		Flash:    flash,
		Data:     data,
	})
	if err != nil {
		s.logger.Error("failed to render template", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
