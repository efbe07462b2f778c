package handlers

import (
	"encoding/json"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gofiber/fiber/v3"

	"uvp-showroom/internal/i18n"
	"uvp-showroom/internal/room"
	"uvp-showroom/internal/showroom/service"
	"uvp-showroom/internal/viewer"
)

// ============================================================
// JSON API
// ============================================================

// ListProjects handles GET /api/v1/projects.
func (h *Handler) ListProjects(c fiber.Ctx) error {
	projects, err := h.catalog.ListProjects(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"projects": projects})
}

// GetProject handles GET /api/v1/projects/:id.
func (h *Handler) GetProject(c fiber.Ctx) error {
	p, err := h.catalog.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// GetSession handles GET /api/v1/session.
func (h *Handler) GetSession(c fiber.Ctx) error {
	s := sessionOf(c)
	return c.JSON(fiber.Map{
		"session":   s.View(),
		"languages": s.Languages(),
	})
}

type viewerPayload struct {
	Kind       service.ModalKind `json:"kind"`
	Src        string            `json:"src"`
	Status     viewer.Status     `json:"status"`
	Attributes map[string]string `json:"attributes"`
}

func attributeMap(attrs []viewer.Attribute) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Name] = a.Value
	}
	return out
}

func viewerPayloadOf(m *service.Modal) viewerPayload {
	return viewerPayload{
		Kind:       m.Kind,
		Src:        m.Src,
		Status:     m.Viewer.Status(),
		Attributes: attributeMap(m.Viewer.Config(m.Src, m.Title).Attributes()),
	}
}

// GetViewer handles GET /api/v1/viewer. The page polls it for load progress.
func (h *Handler) GetViewer(c fiber.Ctx) error {
	m, ok := sessionOf(c).Modal()
	if !ok {
		return service.ErrNoViewer
	}
	return c.JSON(viewerPayloadOf(m))
}

// StepViewer handles POST /api/v1/viewer/step/:dir.
func (h *Handler) StepViewer(c fiber.Ctx) error {
	dir, err := viewer.ParseDirection(c.Params("dir"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s := sessionOf(c)
	if _, err := s.StepViewer(dir); err != nil {
		return err
	}
	m, ok := s.Modal()
	if !ok {
		return service.ErrNoViewer
	}
	return c.JSON(viewerPayloadOf(m))
}

type walkPayload struct {
	Status     room.Status       `json:"status"`
	Attributes map[string]string `json:"attributes"`
	Hit        string            `json:"hit,omitempty"`
	Teleported bool              `json:"teleported,omitempty"`
}

func (h *Handler) walkResponse(c fiber.Ctx, hit string, teleported bool) error {
	w, id, err := sessionOf(c).Walkthrough()
	if err != nil {
		return err
	}
	p, err := h.catalog.GetProject(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(walkPayload{
		Status:     w.Status(),
		Attributes: attributeMap(w.Config(service.ModelPathPrefix+p.ID, p.Title).Attributes()),
		Hit:        hit,
		Teleported: teleported,
	})
}

// GetWalkthrough handles GET /api/v1/walkthrough.
func (h *Handler) GetWalkthrough(c fiber.Ctx) error {
	return h.walkResponse(c, "", false)
}

type lockRequest struct {
	Engaged bool `json:"engaged"`
}

// WalkthroughLock handles POST /api/v1/walkthrough/lock, sent on every
// pointer lock change.
func (h *Handler) WalkthroughLock(c fiber.Ctx) error {
	var req lockRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if _, err := sessionOf(c).WalkthroughInput(viewer.Event{Name: viewer.EventPointerLockChange, Engaged: req.Engaged}); err != nil {
		return err
	}
	return h.walkResponse(c, "", false)
}

type inputRequest struct {
	Type   string  `json:"type"`
	Key    string  `json:"key"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

var inputEvents = map[string]string{
	"keydown":     viewer.EventKeyDown,
	"keyup":       viewer.EventKeyUp,
	"pointermove": viewer.EventPointerMove,
	"resize":      viewer.EventResize,
}

// WalkthroughInput handles POST /api/v1/walkthrough/input.
func (h *Handler) WalkthroughInput(c fiber.Ctx) error {
	var req inputRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	name, ok := inputEvents[strings.ToLower(req.Type)]
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "unknown input type")
	}
	ev := viewer.Event{Name: name, Key: req.Key, DX: req.DX, DY: req.DY, Width: req.Width, Height: req.Height}
	if _, err := sessionOf(c).WalkthroughInput(ev); err != nil {
		return err
	}
	return h.walkResponse(c, "", false)
}

type clickRequest struct {
	Dir *[3]float64 `json:"dir"`
}

// WalkthroughClick handles POST /api/v1/walkthrough/click. Without a
// direction the click goes through the centre of the screen.
func (h *Handler) WalkthroughClick(c fiber.Ctx) error {
	var req clickRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid json")
		}
	}
	var dir mgl64.Vec3
	if req.Dir != nil {
		dir = mgl64.Vec3(*req.Dir)
	}
	hit, teleported, err := sessionOf(c).WalkthroughClick(dir)
	if err != nil {
		return err
	}
	name := ""
	if hit.Node != nil {
		name = hit.Node.Name
	}
	return h.walkResponse(c, name, teleported)
}

// CloseWalkthrough handles POST /api/v1/walkthrough/close. The page sends it
// as a beacon when it is hidden, so it succeeds with nothing running too.
func (h *Handler) CloseWalkthrough(c fiber.Ctx) error {
	closed := sessionOf(c).CloseWalkthrough()
	return c.JSON(fiber.Map{"closed": closed})
}

// Messages handles GET /api/v1/i18n/:lang: the flat translation table.
func (h *Handler) Messages(c fiber.Ctx) error {
	lang, ok := i18n.ParseLanguage(c.Params("lang"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unsupported language")
	}
	t := h.sessions.Bundle().Table(lang)
	return c.JSON(fiber.Map{
		"language": lang,
		"messages": t.Messages(c.Query("prefix")),
	})
}
