package handlers

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"

	"uvp-showroom/internal/i18n"
	"uvp-showroom/internal/showroom/repository"
	"uvp-showroom/internal/showroom/service"
	"uvp-showroom/internal/viewer"
)

const (
	sessionCookie = "showroom_sid"
	langCookie    = "showroom_lang"
	sessionKey    = "showroom.session"

	// LandingProjects is how many projects the landing page shows.
	LandingProjects = 4
)

// Catalog is the read side of the project repository.
type Catalog interface {
	service.Catalog
	Count(ctx context.Context) (int, error)
}

// ============================================================
// Showroom Handler
// ============================================================

type Handler struct {
	catalog  Catalog
	sessions *service.SessionManager
	pages    *Renderer
	secure   bool
	mode     string
}

// Options configures a Handler.
type Options struct {
	Catalog  Catalog
	Sessions *service.SessionManager
	// Production marks cookies secure and labels the build badge PROD.
	Production bool
}

func NewHandler(opts Options) (*Handler, error) {
	pages, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	mode := "DEV"
	if opts.Production {
		mode = "PROD"
	}
	return &Handler{
		catalog:  opts.Catalog,
		sessions: opts.Sessions,
		pages:    pages,
		secure:   opts.Production,
		mode:     mode,
	}, nil
}

// WithSession resolves the visitor's session from its cookie, issuing a new
// one when missing. A new session starts in the language of the language
// cookie, else the best Accept-Language match, else the default.
func (h *Handler) WithSession(c fiber.Ctx) error {
	if s, ok := h.sessions.Resolve(c.Cookies(sessionCookie)); ok {
		c.Locals(sessionKey, s)
		return c.Next()
	}

	lang, ok := i18n.ParseLanguage(c.Cookies(langCookie))
	if !ok {
		lang = i18n.MatchAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage), h.sessions.DefaultLanguage())
	}
	s, err := h.sessions.Issue(lang)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    s.ID,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(sessionKey, s)
	return c.Next()
}

func sessionOf(c fiber.Ctx) *service.Session {
	s, _ := c.Locals(sessionKey).(*service.Session)
	return s
}

func (h *Handler) setLanguageCookie(c fiber.Ctx, lang i18n.Language) {
	c.Cookie(&fiber.Cookie{
		Name:     langCookie,
		Value:    lang.String(),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// table returns the translation table for the request: the session's when
// there is one, otherwise the default language's.
func (h *Handler) table(c fiber.Ctx) *i18n.Table {
	if s := sessionOf(c); s != nil {
		return s.Table()
	}
	return h.sessions.Bundle().Table(h.sessions.DefaultLanguage())
}

// statusError maps domain errors onto HTTP errors.
func statusError(err error) *fiber.Error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe
	case errors.Is(err, repository.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidModelFile),
		errors.Is(err, service.ErrImageOutOfRange),
		errors.Is(err, i18n.ErrUnsupportedLanguage):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrNoModel),
		errors.Is(err, service.ErrNoProject),
		errors.Is(err, service.ErrNoViewer),
		errors.Is(err, service.ErrNoWalkthrough),
		errors.Is(err, viewer.ErrNotReady):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func isAPI(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/models/")
}

// ErrorHandler renders JSON for the API and a localized page otherwise.
func (h *Handler) ErrorHandler(c fiber.Ctx, err error) error {
	fe := statusError(err)
	if fe.Code >= fiber.StatusInternalServerError {
		log.Printf("[SHOWROOM] %s %s failed: %v", c.Method(), c.Path(), err)
	}

	if isAPI(c.Path()) {
		msg := fe.Message
		if fe.Code >= fiber.StatusInternalServerError {
			msg = "internal error"
		}
		return c.Status(fe.Code).JSON(fiber.Map{"error": msg})
	}

	t := h.table(c)
	key := "errors.internal"
	switch fe.Code {
	case fiber.StatusNotFound:
		key = "errors.notFound"
	case fiber.StatusBadRequest, fiber.StatusConflict, fiber.StatusRequestEntityTooLarge:
		key = ""
	}
	data := h.page(c, "error")
	data.Status = fe.Code
	data.Error = t.Text(key)
	if data.Error == "" {
		data.Error = fe.Message
	}
	if rerr := h.pages.Render(c, fe.Code, "error", data); rerr != nil {
		log.Printf("[SHOWROOM] render error page: %v", rerr)
		return c.Status(fe.Code).SendString(fe.Message)
	}
	return nil
}
