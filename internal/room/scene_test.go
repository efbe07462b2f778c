package room

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"uvp-showroom/internal/geom"
	"uvp-showroom/internal/viewer"
	"uvp-showroom/internal/viewer/viewertest"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// vecAlmostEqual compares componentwise with an absolute tolerance, so
// rounding noise around zero still matches.
func vecAlmostEqual(a, b mgl64.Vec3) bool {
	return almostEqual(a[0], b[0]) && almostEqual(a[1], b[1]) && almostEqual(a[2], b[2])
}

func TestAutoCenter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		min, max mgl64.Vec3
	}{
		{"offset model", mgl64.Vec3{-2, 0, -3}, mgl64.Vec3{4, 5, 3}},
		{"floating model", mgl64.Vec3{10, 2, 10}, mgl64.Vec3{12, 3, 20}},
		{"sunken model", mgl64.Vec3{-1, -4, -1}, mgl64.Vec3{1, -1, 1}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewScene()
			cabinet := newNode("cabinet")
			cabinet.Mesh = geom.NewBox(tt.min, tt.max)
			s.Add(cabinet)

			root := s.AutoCenter()
			if root == nil || root.Name != RootName {
				t.Fatalf("root = %+v", root)
			}
			box := root.HierarchyBounds()
			c := box.Center()
			if !almostEqual(c.X(), 0) || !almostEqual(c.Z(), 0) || !almostEqual(box.Min.Y(), 0) {
				t.Fatalf("bounds after centering = %v..%v", box.Min, box.Max)
			}
			if got, want := box.Size(), tt.max.Sub(tt.min); !vecAlmostEqual(got, want) {
				t.Fatalf("size = %v, want %v", got, want)
			}
			if cabinet.Parent() != root {
				t.Fatal("cabinet was not reparented under root")
			}
		})
	}
}

func TestAutoCenterKeepsGroundAndSkybox(t *testing.T) {
	t.Parallel()

	s := NewScene()
	a := newNode("a")
	a.Mesh = geom.NewBox(mgl64.Vec3{5, 5, 5}, mgl64.Vec3{6, 6, 6})
	s.Add(a)
	s.AutoCenter()

	for _, name := range []string{GroundName, SkyboxName} {
		n := s.Find(name)
		if n == nil || n.Parent() != nil {
			t.Fatalf("%s should stay top-level, got %+v", name, n)
		}
		if !vecAlmostEqual(n.Position(), mgl64.Vec3{}) {
			t.Fatalf("%s moved to %v", name, n.Position())
		}
	}
	if got := len(s.Top()); got != 3 {
		t.Fatalf("top-level nodes = %d, want ground, skybox and root", got)
	}
}

func TestAutoCenterWithoutModel(t *testing.T) {
	t.Parallel()

	s := NewScene()
	if root := s.AutoCenter(); root != nil {
		t.Fatalf("root = %+v, want nil", root)
	}
}

func TestBuildScene(t *testing.T) {
	t.Parallel()

	doc, err := viewer.Decode(viewertest.Scene(
		viewertest.Mesh{Name: "left", Min: [3]float64{-1, 0, -1}, Max: [3]float64{1, 2, 1}, Translation: [3]float64{-3, 0, 0}},
		viewertest.Mesh{Name: "right", Min: [3]float64{-1, 0, -1}, Max: [3]float64{1, 2, 1}, Translation: [3]float64{3, 0, 0}},
	))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	s := BuildScene(doc)
	right := s.Find("right")
	if right == nil {
		t.Fatal("node right missing")
	}
	if !right.Collidable {
		t.Fatal("mesh nodes should be collidable")
	}
	if want := (mgl64.Vec3{3, 0, 0}); !vecAlmostEqual(right.Position(), want) {
		t.Fatalf("position = %v, want %v", right.Position(), want)
	}
	// ground plus two meshes
	if got := len(s.Colliders()); got != 3 {
		t.Fatalf("colliders = %d, want 3", got)
	}
}

func TestPick(t *testing.T) {
	t.Parallel()

	s := NewScene()
	crate := newNode("crate")
	crate.Mesh = geom.NewBox(mgl64.Vec3{-1, 0, -1}, mgl64.Vec3{1, 2, 1})
	s.Add(crate)

	hit, ok := s.Pick(geom.Ray{Origin: mgl64.Vec3{0, 1, 10}, Dir: mgl64.Vec3{0, 0, -1}})
	if !ok || hit.Node != crate {
		t.Fatalf("pick = %+v %v, want crate", hit, ok)
	}
	hit, ok = s.Pick(geom.Ray{Origin: mgl64.Vec3{5, 1.7, 5}, Dir: mgl64.Vec3{0, -1, 0}})
	if !ok || hit.Node.Name != GroundName {
		t.Fatalf("pick = %+v %v, want ground", hit, ok)
	}
	if want := (mgl64.Vec3{5, 0, 5}); !vecAlmostEqual(hit.Point, want) {
		t.Fatalf("point = %v, want %v", hit.Point, want)
	}
	if _, ok := s.Pick(geom.Ray{Origin: mgl64.Vec3{0, 1.7, 0}, Dir: mgl64.Vec3{0, 1, 0}}); ok {
		t.Fatal("looking up should hit nothing; the skybox is not pickable")
	}
}
