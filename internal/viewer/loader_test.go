package viewer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl64"

	"uvp-showroom/internal/viewer/viewertest"
)

func TestCheckGLBHeader(t *testing.T) {
	t.Parallel()

	valid := viewertest.GLB(`{"asset":{"version":"2.0"}}`)
	if err := CheckGLBHeader(valid); err != nil {
		t.Fatalf("valid header: %v", err)
	}

	tests := map[string][]byte{
		"short":     []byte("glTF"),
		"obj":       []byte("# Blender OBJ\nv 0 0 0\nv 1 0 0\n"),
		"version 1": append([]byte("glTF\x01\x00\x00\x00"), valid[8:]...),
		"truncated": valid[:len(valid)-4],
	}
	for name, data := range tests {
		if err := CheckGLBHeader(data); !errors.Is(err, ErrNotGLB) {
			t.Fatalf("%s: err = %v, want ErrNotGLB", name, err)
		}
	}
}

func TestLoadComputesSceneBounds(t *testing.T) {
	t.Parallel()

	data := viewertest.Scene(
		viewertest.Mesh{Name: "left", Min: [3]float64{-1, 0, -1}, Max: [3]float64{1, 2, 1}, Translation: [3]float64{-3, 0, 0}},
		viewertest.Mesh{Name: "right", Min: [3]float64{-1, 0, -1}, Max: [3]float64{1, 2, 1}, Translation: [3]float64{3, 1, 0}},
	)
	m, err := Load(context.Background(), BytesLoader{Data: data}, "scene.glb", nil, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := mgl64.Vec3{-4, 0, -1}
	if !vecAlmostEqual(m.Bounds.Min, want) {
		t.Fatalf("min = %v, want %v", m.Bounds.Min, want)
	}
	want = mgl64.Vec3{4, 3, 1}
	if !vecAlmostEqual(m.Bounds.Max, want) {
		t.Fatalf("max = %v, want %v", m.Bounds.Max, want)
	}
	if m.Size != int64(len(data)) {
		t.Fatalf("size = %d, want %d", m.Size, len(data))
	}
}

func TestLoadUnknownSizeHasNoProgress(t *testing.T) {
	t.Parallel()

	data := viewertest.Scene(viewertest.Mesh{Name: "a", Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 1}})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// chunked, so the client sees no Content-Length
		w.(http.Flusher).Flush()
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	var p Progress
	calls := 0
	if _, err := Load(context.Background(), HTTPLoader{Client: srv.Client()}, srv.URL, &p, func(int) { calls++ }); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, known := p.Percent(); known || calls != 0 {
		t.Fatalf("progress known=%v calls=%d, want none", known, calls)
	}
}

func TestHTTPLoaderStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := Load(context.Background(), HTTPLoader{Client: srv.Client()}, srv.URL+"/missing.glb", nil, nil); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFSLoader(t *testing.T) {
	t.Parallel()

	data := viewertest.Scene(viewertest.Mesh{Name: "a", Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 1}})
	fsys := fstest.MapFS{"models/a.glb": {Data: data}}

	var p Progress
	if _, err := Load(context.Background(), FSLoader{FS: fsys}, "/models/a.glb", &p, nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	if pct, known := p.Percent(); !known || pct != 100 {
		t.Fatalf("progress = %d known=%v", pct, known)
	}
	if _, err := Load(context.Background(), FSLoader{FS: fsys}, "../../etc/passwd", nil, nil); err == nil {
		t.Fatal("expected error for path outside fs")
	}
}

func TestMuxLoaderRoutesBySource(t *testing.T) {
	t.Parallel()

	local := viewertest.Scene(viewertest.Mesh{Name: "local", Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 1}})
	remote := viewertest.Scene(viewertest.Mesh{Name: "remote", Min: [3]float64{0, 0, 0}, Max: [3]float64{4, 4, 4}})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(remote)
	}))
	t.Cleanup(srv.Close)

	l := MuxLoader{
		Remote: HTTPLoader{Client: srv.Client()},
		Local:  FSLoader{FS: fstest.MapFS{"bundled/e210.glb": {Data: local}}},
	}
	m, err := Load(context.Background(), l, "/bundled/e210.glb", nil, nil)
	if err != nil {
		t.Fatalf("local load: %v", err)
	}
	if m.Size != int64(len(local)) {
		t.Fatalf("local size = %d, want %d", m.Size, len(local))
	}
	m, err = Load(context.Background(), l, srv.URL+"/e210.glb", nil, nil)
	if err != nil {
		t.Fatalf("remote load: %v", err)
	}
	if m.Size != int64(len(remote)) {
		t.Fatalf("remote size = %d, want %d", m.Size, len(remote))
	}

	if _, _, err := (MuxLoader{}).Open(context.Background(), "/bundled/e210.glb"); err == nil {
		t.Fatal("expected error without a local loader")
	}
}

func TestIsRemote(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"https://models.example/e210.glb": true,
		"http://localhost:9000/a.glb":     true,
		"/bundled/e210.glb":               false,
		"bundled/e210.glb":                false,
		"file:///tmp/a.glb":               false,
	}
	for src, want := range tests {
		if got := IsRemote(src); got != want {
			t.Fatalf("IsRemote(%q) = %v, want %v", src, got, want)
		}
	}
}
