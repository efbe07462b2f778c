package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"uvp-showroom/internal/showroom/repository"
	"uvp-showroom/internal/showroom/service"
	"uvp-showroom/internal/viewer"
)

// ============================================================
// Pages
// ============================================================

func seeOther(c fiber.Ctx, path string) error {
	return c.Redirect().Status(fiber.StatusSeeOther).To(path)
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

// Home renders the landing page with the project grid and, when open, the
// lightbox.
func (h *Handler) Home(c fiber.Ctx) error {
	projects, err := h.catalog.ListProjects(c.Context())
	if err != nil {
		return err
	}
	if len(projects) > LandingProjects {
		projects = projects[:LandingProjects]
	}
	data := h.page(c, "home")
	data.Projects = projects
	return h.pages.Render(c, fiber.StatusOK, "home", data)
}

// SetLanguage handles POST /lang/:code.
func (h *Handler) SetLanguage(c fiber.Ctx) error {
	s := sessionOf(c)
	if err := s.SetLanguage(c.Params("code")); err != nil {
		return err
	}
	h.setLanguageCookie(c, s.Language())
	return seeOther(c, safeNext(c.FormValue("next")))
}

// Gallery handles GET /gallery/:id: opens the project's lightbox at its
// first image.
func (h *Handler) Gallery(c fiber.Ctx) error {
	p, err := h.catalog.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	sessionOf(c).OpenProject(p)
	return h.Home(c)
}

// Lightbox handles POST /lightbox/:action.
func (h *Handler) Lightbox(c fiber.Ctx) error {
	s := sessionOf(c)
	action := c.Params("action")

	if action == "viewer" {
		if _, err := s.OpenViewer(); err != nil {
			return err
		}
		return seeOther(c, "/viewer")
	}

	err := s.UpdateLightbox(func(lb *service.Lightbox) error {
		switch action {
		case "next":
			lb.Next()
		case "prev":
			lb.Prev()
		case "close":
			lb.Close()
		case "captions":
			lb.ToggleCaptions()
		case "thumbnails":
			lb.ToggleThumbnails()
		case "show":
			i, err := strconv.Atoi(c.FormValue("index"))
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid image index")
			}
			return lb.Show(i)
		case "zoom":
			if c.FormValue("reset") != "" {
				lb.ResetZoom()
				return nil
			}
			level, err1 := strconv.ParseFloat(c.FormValue("level"), 64)
			x, err2 := strconv.ParseFloat(c.FormValue("x", "0.5"), 64)
			y, err3 := strconv.ParseFloat(c.FormValue("y", "0.5"), 64)
			if err := errors.Join(err1, err2, err3); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid zoom")
			}
			lb.ZoomAt(level, x, y)
		default:
			return fiber.NewError(fiber.StatusNotFound, "unknown lightbox action")
		}
		return nil
	})
	if err != nil {
		return err
	}
	return seeOther(c, "/")
}

// Viewer handles GET /viewer.
func (h *Handler) Viewer(c fiber.Ctx) error {
	m, ok := sessionOf(c).Modal()
	if !ok {
		return seeOther(c, "/")
	}
	data := h.page(c, "viewer")
	data.Viewer = viewerPanelOf(m)
	return h.pages.Render(c, fiber.StatusOK, "viewer", data)
}

// ViewerStep handles POST /viewer/step/:dir.
func (h *Handler) ViewerStep(c fiber.Ctx) error {
	dir, err := viewer.ParseDirection(c.Params("dir"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if _, err := sessionOf(c).StepViewer(dir); err != nil && !errors.Is(err, viewer.ErrNotReady) {
		return err
	}
	return seeOther(c, h.viewerHome(c))
}

func (h *Handler) viewerHome(c fiber.Ctx) string {
	if m, ok := sessionOf(c).Modal(); ok && m.Kind == service.ModalSandbox {
		return "/sandbox"
	}
	return "/viewer"
}

// ViewerClose handles POST /viewer/close. A project viewer returns to its
// lightbox, the sandbox viewer to the sandbox page.
func (h *Handler) ViewerClose(c fiber.Ctx) error {
	s := sessionOf(c)
	next := "/"
	if m, ok := s.Modal(); ok && m.Kind == service.ModalSandbox {
		next = "/sandbox"
	}
	if err := s.CloseViewer(); err != nil && !errors.Is(err, service.ErrNoViewer) {
		return err
	}
	return seeOther(c, next)
}

// Sandbox handles GET /sandbox.
func (h *Handler) Sandbox(c fiber.Ctx) error {
	return h.renderSandbox(c, fiber.StatusOK, "")
}

func (h *Handler) renderSandbox(c fiber.Ctx, status int, errMsg string) error {
	s := sessionOf(c)
	data := h.page(c, "sandbox")
	data.Error = errMsg
	if up, ok := s.Sandbox(); ok {
		data.Sandbox = up
	}
	if m, ok := s.Modal(); ok && m.Kind == service.ModalSandbox {
		data.Viewer = viewerPanelOf(m)
	}
	return h.pages.Render(c, status, "sandbox", data)
}

// SandboxUpload handles POST /sandbox/upload (multipart field "file").
// Anything but .glb is refused with the localized message and changes
// nothing.
func (h *Handler) SandboxUpload(c fiber.Ctx) error {
	log.Printf("[SANDBOX] Upload request")

	t := sessionOf(c).Table()
	file, err := c.FormFile("file")
	if err != nil {
		return h.renderSandbox(c, fiber.StatusBadRequest, t.Text("viewer.sandbox.noFile"))
	}
	if err := service.ValidateModelFile(file.Filename); err != nil {
		log.Printf("[SANDBOX] rejected %q", file.Filename)
		return h.renderSandbox(c, fiber.StatusBadRequest, t.Text("viewer.sandbox.onlyGlb"))
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	if _, err := sessionOf(c).UploadSandbox(file.Filename, data); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidModelFile):
			return h.renderSandbox(c, fiber.StatusBadRequest, t.Text("viewer.sandbox.onlyGlb"))
		case errors.Is(err, service.ErrFileTooLarge):
			return h.renderSandbox(c, fiber.StatusRequestEntityTooLarge, t.Text("viewer.sandbox.tooLarge"))
		}
		return err
	}
	return seeOther(c, "/sandbox")
}

// SandboxModel handles GET /sandbox/model: the uploaded bytes, for the
// browser's renderer.
func (h *Handler) SandboxModel(c fiber.Ctx) error {
	up, ok := sessionOf(c).Sandbox()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no sandbox model")
	}
	c.Set(fiber.HeaderContentType, "model/gltf-binary")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(up.Data())
}

// SandboxClear handles POST /sandbox/clear.
func (h *Handler) SandboxClear(c fiber.Ctx) error {
	sessionOf(c).ClearSandbox()
	return seeOther(c, "/sandbox")
}

// Experience handles GET /3d-experience/:id, the walkthrough page.
func (h *Handler) Experience(c fiber.Ctx) error {
	p, err := h.catalog.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.notFound(c)
		}
		return err
	}
	if !p.HasModel() {
		return h.notFound(c)
	}
	w, err := sessionOf(c).OpenWalkthrough(p)
	if err != nil {
		return err
	}
	data := h.page(c, "walkthrough")
	data.Walk = &walkPanel{
		Project: p,
		Attrs:   w.Config(service.ModelPathPrefix+p.ID, p.Title).Attributes(),
		Status:  w.Status(),
	}
	return h.pages.Render(c, fiber.StatusOK, "walkthrough", data)
}

// ExitWalkthrough handles POST /3d-experience/exit: releases the room viewer
// and returns to the landing page.
func (h *Handler) ExitWalkthrough(c fiber.Ctx) error {
	sessionOf(c).CloseWalkthrough()
	return seeOther(c, "/")
}

func (h *Handler) notFound(c fiber.Ctx) error {
	data := h.page(c, "notfound")
	data.Status = http.StatusNotFound
	return h.pages.Render(c, fiber.StatusNotFound, "notfound", data)
}

