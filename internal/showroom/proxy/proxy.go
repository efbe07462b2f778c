package proxy

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"uvp-showroom/internal/showroom/models"
	"uvp-showroom/internal/showroom/repository"
	"uvp-showroom/internal/viewer"
)

// forwarded response headers; everything else from the upstream is dropped
var passHeaders = []string{
	"Content-Type",
	"ETag",
	"Last-Modified",
	"Cache-Control",
	"Accept-Ranges",
	"Content-Range",
}

// Catalog resolves project ids to their model URLs.
type Catalog interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
}

// ============================================================
// Model Proxy
// ============================================================

// ModelProxy streams project models from remote storage so the browser can
// load them from the showroom's own origin.
type ModelProxy struct {
	client  *http.Client
	catalog Catalog
	local   viewer.Loader
}

func New(client *http.Client, catalog Catalog) *ModelProxy {
	if client == nil {
		client = http.DefaultClient
	}
	return &ModelProxy{client: client, catalog: catalog}
}

// WithLocal serves model URLs that are not http(s) through l, for models
// bundled with the site.
func (p *ModelProxy) WithLocal(l viewer.Loader) *ModelProxy {
	p.local = l
	return p
}

// Model handles GET /models/:id.
func (p *ModelProxy) Model(c fiber.Ctx) error {
	id := c.Params("id")
	project, err := p.catalog.GetProject(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
		}
		log.Printf("[PROXY] lookup %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "catalog unavailable"})
	}
	if !project.HasModel() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project has no model"})
	}
	if p.local != nil && !viewer.IsRemote(project.ModelURL) {
		return p.serveLocal(c, project.ModelURL)
	}
	return p.Forward(c, project.ModelURL)
}

func (p *ModelProxy) serveLocal(c fiber.Ctx, src string) error {
	body, size, err := p.local.Open(c.Context(), src)
	if err != nil {
		log.Printf("[PROXY] local model %s: %v", src, err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "model not found"})
	}
	c.Set("Content-Type", "model/gltf-binary")
	return c.SendStream(body, int(size))
}

// Forward fetches targetURL and streams the body to the client. Range
// requests are passed through.
func (p *ModelProxy) Forward(c fiber.Ctx, targetURL string) error {
	log.Printf("[PROXY] Request: %s %s", c.Method(), c.Path())
	log.Printf("[PROXY] Forwarding to: %s", targetURL)

	req, err := http.NewRequestWithContext(c.Context(), http.MethodGet, targetURL, nil)
	if err != nil {
		log.Printf("[PROXY] build request error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}
	if r := c.Get("Range"); r != "" {
		req.Header.Set("Range", r)
	}
	if v := c.Get("If-None-Match"); v != "" {
		req.Header.Set("If-None-Match", v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("[PROXY] Error: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach model storage"})
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		log.Printf("[PROXY] upstream %s answered %d", targetURL, resp.StatusCode)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "model storage returned " + strconv.Itoa(resp.StatusCode)})
	}

	return copyResponse(c, resp)
}

// copyResponse hands the body to fiber, which closes it once sent.
func copyResponse(c fiber.Ctx, resp *http.Response) error {
	for _, key := range passHeaders {
		if v := resp.Header.Get(key); v != "" {
			c.Set(key, v)
		}
	}
	if c.GetRespHeader("Content-Type") == "" {
		c.Set("Content-Type", "model/gltf-binary")
	}

	c.Status(resp.StatusCode)
	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		return nil
	}
	size := -1
	if resp.ContentLength >= 0 {
		size = int(resp.ContentLength)
	}
	return c.SendStream(resp.Body, size)
}
