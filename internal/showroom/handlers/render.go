package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v3"

	"uvp-showroom/internal/i18n"
	"uvp-showroom/internal/room"
	"uvp-showroom/internal/showroom/models"
	"uvp-showroom/internal/showroom/service"
	"uvp-showroom/internal/viewer"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "viewer", "sandbox", "walkthrough", "notfound", "error"}

// ============================================================
// Page Rendering
// ============================================================

// Renderer holds one parsed template set per page, each combined with the
// shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"pct": func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
	// attrs writes model-viewer attributes; names are fixed by the viewer
	// package and values are escaped here.
	"attrs": func(attrs []viewer.Attribute) template.HTMLAttr {
		var b strings.Builder
		for i, a := range attrs {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(a.Name)
			if a.Value != "" {
				b.WriteString(`="`)
				b.WriteString(html.EscapeString(a.Value))
				b.WriteByte('"')
			}
		}
		return template.HTMLAttr(b.String())
	},
	"projectTitle": func(t *i18n.Table, p *models.Project) string {
		if s := t.Text("projects." + p.ID + ".title"); s != "" {
			return s
		}
		return p.Title
	},
	"projectPrefix": func(t *i18n.Table, p *models.Project) string {
		return t.Text("projects." + p.ID + ".prefix")
	},
	"size": service.FormatSize,
	"directions": func() []viewer.Direction {
		return []viewer.Direction{viewer.Up, viewer.Left, viewer.Reset, viewer.Right, viewer.Down}
	},
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page into the response with the given status.
func (r *Renderer) Render(c fiber.Ctx, status int, page string, data *pageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	c.Type("html")
	return c.Status(status).Send(buf.Bytes())
}

// pageData is what every template receives.
type pageData struct {
	Page      string
	T         *i18n.Table
	Lang      string
	Languages []i18n.Option
	Path      string
	Mode      string

	Projects []models.Project
	View     service.View
	Viewer   *viewerPanel
	Sandbox  *service.Upload
	Walk     *walkPanel

	Status int
	Error  string
}

type viewerPanel struct {
	Kind   service.ModalKind
	Title  string
	Attrs  []viewer.Attribute
	Status viewer.Status
}

type walkPanel struct {
	Project *models.Project
	Attrs   []viewer.Attribute
	Status  room.Status
}

func (h *Handler) page(c fiber.Ctx, name string) *pageData {
	data := &pageData{
		Page: name,
		T:    h.table(c),
		Path: c.Path(),
		Mode: h.mode,
	}
	data.Lang = data.T.Language().String()
	if s := sessionOf(c); s != nil {
		data.Languages = s.Languages()
		data.View = s.View()
	} else {
		store, err := i18n.NewStore(h.sessions.Bundle(), h.sessions.DefaultLanguage())
		if err == nil {
			data.Languages = store.Options()
		}
	}
	return data
}

func viewerPanelOf(m *service.Modal) *viewerPanel {
	alt := m.Title
	cfg := m.Viewer.Config(m.Src, alt)
	return &viewerPanel{
		Kind:   m.Kind,
		Title:  m.Title,
		Attrs:  cfg.Attributes(),
		Status: m.Viewer.Status(),
	}
}
