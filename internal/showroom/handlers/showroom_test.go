package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"uvp-showroom/internal/i18n"
	"uvp-showroom/internal/showroom/models"
	"uvp-showroom/internal/showroom/proxy"
	"uvp-showroom/internal/showroom/repository"
	"uvp-showroom/internal/showroom/service"
	"uvp-showroom/internal/viewer"
	"uvp-showroom/internal/viewer/viewertest"
)

type fakeCatalog struct {
	projects []models.Project
	err      error
}

func (f *fakeCatalog) ListProjects(context.Context) ([]models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.projects, nil
}

func (f *fakeCatalog) GetProject(_ context.Context, id string) (*models.Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			p := f.projects[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
}

func (f *fakeCatalog) Count(context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.projects), nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{projects: []models.Project{
		{
			ID:        "e210",
			Title:     "E210",
			Thumbnail: "/images/cover/e210.png",
			Images:    []string{"/images/e210/0.png", "/images/e210/1.png", "/images/e210/2.png"},
			ModelURL:  "https://models.example/e210_draco.glb",
		},
		{
			ID:        "j1",
			Title:     "J1",
			Thumbnail: "/images/cover/j1.png",
			Images:    []string{"/images/j1/0.png"},
		},
	}}
}

var cabinet = viewertest.Scene(viewertest.Mesh{Name: "cabinet", Min: [3]float64{-1, 0, -1}, Max: [3]float64{1, 2, 1}})

func newTestApp(t *testing.T, catalog *fakeCatalog) *fiber.App {
	t.Helper()

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	sessions, err := service.NewSessionManager(service.Options{
		Bundle:          bundle,
		DefaultLanguage: i18n.German,
		Loader:          viewer.BytesLoader{Data: cabinet},
		SandboxMaxBytes: 1 << 16,
	})
	if err != nil {
		t.Fatalf("new session manager: %v", err)
	}
	t.Cleanup(sessions.Close)

	h, err := NewHandler(Options{Catalog: catalog, Sessions: sessions})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	app := fiber.New(fiber.Config{ErrorHandler: h.ErrorHandler})
	h.Register(app, proxy.New(http.DefaultClient, catalog), "")
	return app
}

// client carries the session cookie between requests.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	resp, err := c.app.Test(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	for _, ck := range resp.Cookies() {
		c.cookies[ck.Name] = ck
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (c *client) get(path string) (*http.Response, string) {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) upload(name string, data []byte) (*http.Response, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		c.t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/sandbox/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d", resp.StatusCode, want)
	}
}

func TestHomeIssuesSessionInDefaultLanguage(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	resp, body := c.get("/")
	expectStatus(t, resp, http.StatusOK)

	if c.cookies[sessionCookie] == nil {
		t.Fatal("expected a session cookie")
	}
	if !strings.Contains(body, `<html lang="de">`) {
		t.Fatal("expected the German page")
	}
	for _, want := range []string{`href="/gallery/e210"`, `href="/3d-experience/e210"`, `href="/gallery/j1"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("home page misses %s", want)
		}
	}
	if strings.Contains(body, `href="/3d-experience/j1"`) {
		t.Fatal("project without a model must not offer a walkthrough")
	}
}

func TestNewSessionFollowsAcceptLanguage(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	resp, body := c.do(req)
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `<html lang="en">`) {
		t.Fatal("expected the English page")
	}
}

func TestLanguageSwitchKeepsSessionState(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	resp, _ := c.get("/gallery/e210")
	expectStatus(t, resp, http.StatusOK)
	resp, _ = c.postForm("/lightbox/next", nil)
	expectStatus(t, resp, http.StatusSeeOther)

	resp, _ = c.postForm("/lang/tr", url.Values{"next": {"/"}})
	expectStatus(t, resp, http.StatusSeeOther)
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("location = %q", loc)
	}
	if ck := c.cookies[langCookie]; ck == nil || ck.Value != "tr" {
		t.Fatalf("language cookie = %v", ck)
	}

	_, body := c.get("/")
	if !strings.Contains(body, `<html lang="tr">`) {
		t.Fatal("expected the Turkish page")
	}
	if !strings.Contains(body, "Görsel 2 / 3") {
		t.Fatal("lightbox position lost on language switch")
	}
}

func TestLanguageSwitchRejectsUnsupported(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	resp, _ := c.postForm("/lang/fr", nil)
	expectStatus(t, resp, http.StatusBadRequest)

	_, body := c.get("/")
	if !strings.Contains(body, `<html lang="de">`) {
		t.Fatal("language changed after a rejected switch")
	}
}

func TestLanguageSwitchStaysOnSite(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	resp, _ := c.postForm("/lang/en", url.Values{"next": {"//evil.example/"}})
	expectStatus(t, resp, http.StatusSeeOther)
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("location = %q", loc)
	}
}

func TestLightboxNavigation(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	_, body := c.get("/gallery/e210")
	if !strings.Contains(body, "Bild 1 von 3") {
		t.Fatal("lightbox should open at the first image")
	}

	c.postForm("/lightbox/prev", nil)
	_, body = c.get("/")
	if !strings.Contains(body, "Bild 3 von 3") {
		t.Fatal("prev from the first image should wrap to the last")
	}

	resp, _ := c.postForm("/lightbox/show", url.Values{"index": {"7"}})
	expectStatus(t, resp, http.StatusBadRequest)

	c.postForm("/lightbox/close", nil)
	_, body = c.get("/")
	if strings.Contains(body, `class="lightbox"`) {
		t.Fatal("lightbox still open after close")
	}
}

func TestLightboxViewerNeedsModel(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	c.get("/gallery/j1")
	resp, _ := c.postForm("/lightbox/viewer", nil)
	expectStatus(t, resp, http.StatusConflict)

	c.get("/gallery/e210")
	resp, _ = c.postForm("/lightbox/viewer", nil)
	expectStatus(t, resp, http.StatusSeeOther)
	if loc := resp.Header.Get("Location"); loc != "/viewer" {
		t.Fatalf("location = %q", loc)
	}

	resp, body := c.get("/viewer")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `src="/models/e210"`) {
		t.Fatal("viewer should load the model through the proxy path")
	}

	resp, _ = c.postForm("/viewer/close", nil)
	expectStatus(t, resp, http.StatusSeeOther)
	_, body = c.get("/")
	if !strings.Contains(body, "Bild 1 von 3") {
		t.Fatal("closing the viewer should bring the lightbox back")
	}
}

func TestSandboxRejectsNonGLB(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	resp, body := c.upload("model.obj", []byte("o cube"))
	expectStatus(t, resp, http.StatusBadRequest)
	if !strings.Contains(body, "Bitte nur .glb-Dateien hochladen.") {
		t.Fatal("expected the localized rejection message")
	}

	_, body = c.get("/sandbox")
	if strings.Contains(body, "model.obj") || strings.Contains(body, `id="model"`) {
		t.Fatal("rejected upload must not change the sandbox")
	}
}

func TestSandboxAcceptsGLB(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	resp, _ := c.upload("Cabinet.GLB", cabinet)
	expectStatus(t, resp, http.StatusSeeOther)

	resp, body := c.get("/sandbox")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "Cabinet.GLB") {
		t.Fatal("sandbox should show the uploaded file name")
	}
	if !strings.Contains(body, `src="/sandbox/model"`) {
		t.Fatal("sandbox viewer should load the uploaded bytes")
	}

	resp, data := c.get("/sandbox/model")
	expectStatus(t, resp, http.StatusOK)
	if data != string(cabinet) {
		t.Fatal("sandbox model bytes differ from the upload")
	}

	c.postForm("/sandbox/clear", nil)
	resp, _ = c.get("/sandbox/model")
	expectStatus(t, resp, http.StatusNotFound)
}

func TestSandboxRejectsLargeFile(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	resp, _ := c.upload("huge.glb", make([]byte, 1<<16+1))
	expectStatus(t, resp, http.StatusRequestEntityTooLarge)
}

func TestExperienceNotFoundPage(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	for _, path := range []string{"/3d-experience/unknown", "/3d-experience/j1"} {
		resp, body := c.get(path)
		expectStatus(t, resp, http.StatusNotFound)
		if !strings.Contains(body, "Modell nicht gefunden") {
			t.Fatalf("%s: expected the not found page", path)
		}
	}
}

func TestExperienceStartsWalkthrough(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	resp, body := c.get("/3d-experience/e210")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `id="room"`) {
		t.Fatal("expected the walkthrough viewer")
	}

	resp, body = c.get("/api/v1/walkthrough")
	expectStatus(t, resp, http.StatusOK)
	var payload struct {
		Status struct {
			State string `json:"state"`
		} `json:"status"`
		Attributes map[string]string `json:"attributes"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Status.State == "" {
		t.Fatal("missing walkthrough state")
	}
	if payload.Attributes["src"] != "/models/e210" {
		t.Fatalf("src = %q", payload.Attributes["src"])
	}
}

func TestWalkthroughCloseReleasesRoomViewer(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	resp, _ := c.get("/3d-experience/e210")
	expectStatus(t, resp, http.StatusOK)

	resp, body := c.postForm("/api/v1/walkthrough/close", nil)
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `"closed":true`) {
		t.Fatalf("body = %s", body)
	}
	resp, _ = c.get("/api/v1/walkthrough")
	expectStatus(t, resp, http.StatusConflict)

	resp, body = c.postForm("/api/v1/walkthrough/close", nil)
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `"closed":false`) {
		t.Fatalf("second close body = %s", body)
	}
}

func TestWalkthroughExitReturnsHome(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	_, body := c.get("/3d-experience/e210")
	if !strings.Contains(body, `action="/3d-experience/exit"`) {
		t.Fatal("walkthrough page should exit through a form post")
	}

	resp, _ := c.postForm("/3d-experience/exit", nil)
	expectStatus(t, resp, http.StatusSeeOther)
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("location = %q", loc)
	}
	resp, _ = c.get("/api/v1/walkthrough")
	expectStatus(t, resp, http.StatusConflict)
}

func TestViewerReplacesWalkthrough(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	c.get("/3d-experience/e210")
	c.get("/gallery/e210")
	resp, _ := c.postForm("/lightbox/viewer", nil)
	expectStatus(t, resp, http.StatusSeeOther)

	resp, _ = c.get("/api/v1/walkthrough")
	expectStatus(t, resp, http.StatusConflict)
	resp, _ = c.get("/api/v1/viewer")
	expectStatus(t, resp, http.StatusOK)
}

func TestAPIErrorsAreJSON(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/projects/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/v1/viewer", http.StatusConflict},
		{http.MethodPost, "/api/v1/viewer/step/sideways", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/walkthrough", http.StatusConflict},
		{http.MethodGet, "/api/v1/i18n/fr", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, body := c.do(httptest.NewRequest(tt.method, tt.path, nil))
		if resp.StatusCode != tt.status {
			t.Fatalf("%s %s: status = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.status)
		}
		var out map[string]string
		if err := json.Unmarshal([]byte(body), &out); err != nil || out["error"] == "" {
			t.Fatalf("%s %s: body = %q", tt.method, tt.path, body)
		}
	}
}

func TestAPIListsProjectsInOrder(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	resp, body := c.get("/api/v1/projects")
	expectStatus(t, resp, http.StatusOK)

	var out struct {
		Projects []models.Project `json:"projects"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Projects) != 2 || out.Projects[0].ID != "e210" || out.Projects[1].ID != "j1" {
		t.Fatalf("projects = %+v", out.Projects)
	}
}

func TestAPIMessagesByPrefix(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, testCatalog()))
	resp, body := c.get("/api/v1/i18n/en?prefix=nav.")
	expectStatus(t, resp, http.StatusOK)

	var out struct {
		Language string            `json:"language"`
		Messages map[string]string `json:"messages"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Language != "en" || out.Messages["nav.brand"] != "UVP Switch Cabinets" {
		t.Fatalf("messages = %+v", out)
	}
	if _, ok := out.Messages["home.title"]; ok {
		t.Fatal("prefix filter ignored")
	}
}

func TestReadinessProbe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		catalog *fakeCatalog
		status  int
	}{
		{"seeded", testCatalog(), http.StatusOK},
		{"empty", &fakeCatalog{}, http.StatusServiceUnavailable},
		{"broken", &fakeCatalog{err: errors.New("disk gone")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newClient(t, newTestApp(t, tt.catalog))
			resp, _ := c.get("/health/ready")
			expectStatus(t, resp, tt.status)
		})
	}
}

func TestUnknownPageRendersLocalizedError(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, &fakeCatalog{err: errors.New("disk gone")}))
	resp, body := c.get("/")
	expectStatus(t, resp, http.StatusInternalServerError)
	if !strings.Contains(body, "<html") {
		t.Fatal("page errors should render the error page")
	}
}

func TestSafeNext(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/sandbox":         "/sandbox",
		"":                 "/",
		"https://evil.com": "/",
		"//evil.com":       "/",
		"/gallery/e210":    "/gallery/e210",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Fatalf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
