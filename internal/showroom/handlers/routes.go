package handlers

import (
	"embed"
	"io/fs"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/static"

	"uvp-showroom/internal/showroom/proxy"
)

//go:embed static
var staticFS embed.FS

// ============================================================
// Routes
// ============================================================

// Register mounts every route. publicDir holds the catalog images; it may
// be empty to serve none.
func (h *Handler) Register(app *fiber.App, models *proxy.ModelProxy, publicDir string) {
	app.Get("/health/live", LivenessProbe)
	app.Get("/health/ready", h.ReadinessProbe)
	app.Get("/health/startup", StartupProbe)

	app.Get("/docs", SwaggerUI)
	app.Get("/docs/openapi.yaml", SwaggerSpec)

	assets, _ := fs.Sub(staticFS, "static")
	app.Use("/static", static.New("", static.Config{FS: assets}))
	if publicDir != "" {
		app.Use("/images", static.New("", static.Config{FS: os.DirFS(publicDir + "/images")}))
	}

	app.Get("/models/:id", models.Model)

	site := app.Group("", h.WithSession)

	site.Get("/", h.Home)
	site.Post("/lang/:code", h.SetLanguage)
	site.Get("/gallery/:id", h.Gallery)
	site.Post("/lightbox/:action", h.Lightbox)
	site.Get("/viewer", h.Viewer)
	site.Post("/viewer/step/:dir", h.ViewerStep)
	site.Post("/viewer/close", h.ViewerClose)
	site.Get("/sandbox", h.Sandbox)
	site.Post("/sandbox/upload", h.SandboxUpload)
	site.Get("/sandbox/model", h.SandboxModel)
	site.Post("/sandbox/clear", h.SandboxClear)
	site.Get("/3d-experience/:id", h.Experience)
	site.Post("/3d-experience/exit", h.ExitWalkthrough)

	api := site.Group("/api/v1")
	api.Get("/projects", h.ListProjects)
	api.Get("/projects/:id", h.GetProject)
	api.Get("/session", h.GetSession)
	api.Get("/viewer", h.GetViewer)
	api.Post("/viewer/step/:dir", h.StepViewer)
	api.Get("/walkthrough", h.GetWalkthrough)
	api.Post("/walkthrough/lock", h.WalkthroughLock)
	api.Post("/walkthrough/input", h.WalkthroughInput)
	api.Post("/walkthrough/click", h.WalkthroughClick)
	api.Post("/walkthrough/close", h.CloseWalkthrough)
	api.Get("/i18n/:lang", h.Messages)
}
