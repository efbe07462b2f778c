// Package room implements the first-person walkthrough over a loaded model:
// a scene graph rebuilt from the glTF document, a walking camera with
// collisions and teleport, and the per-visitor session that ties them to a
// viewer.
package room

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"uvp-showroom/internal/geom"
	"uvp-showroom/internal/viewer"
)

// Names of the synthetic nodes added to every walkthrough scene.
const (
	GroundName = "ground"
	SkyboxName = "skybox"
	RootName   = "root"
)

const (
	GroundSize = 100.0
	SkyboxSize = 1000.0
)

// Node is one entry of the scene graph.
type Node struct {
	Name       string
	Local      mgl64.Mat4
	Mesh       geom.Box
	Collidable bool
	Pickable   bool

	parent   *Node
	children []*Node
}

func newNode(name string) *Node {
	return &Node{Name: name, Local: mgl64.Ident4(), Pickable: true}
}

// Parent returns the parent node, nil for top-level nodes.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children.
func (n *Node) Children() []*Node {
	return n.children
}

// World returns the node's world transform.
func (n *Node) World() mgl64.Mat4 {
	if n.parent == nil {
		return n.Local
	}
	return n.parent.World().Mul4(n.Local)
}

// Position returns the world position of the node origin.
func (n *Node) Position() mgl64.Vec3 {
	return n.World().Col(3).Vec3()
}

// Bounds returns the world bounds of this node's own mesh.
func (n *Node) Bounds() geom.Box {
	return n.Mesh.Transform(n.World())
}

// HierarchyBounds returns the world bounds of the node and all descendants.
func (n *Node) HierarchyBounds() geom.Box {
	box := n.Bounds()
	for _, c := range n.children {
		box = box.Union(c.HierarchyBounds())
	}
	return box
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

// Scene is a forest of nodes. Top-level order follows the source file.
type Scene struct {
	top []*Node
}

// NewScene returns an empty scene with the ground plane and skybox.
func NewScene() *Scene {
	s := &Scene{}
	half := GroundSize / 2
	ground := newNode(GroundName)
	ground.Mesh = geom.NewBox(mgl64.Vec3{-half, 0, -half}, mgl64.Vec3{half, 0, half})
	ground.Collidable = true
	s.Add(ground)

	sky := newNode(SkyboxName)
	r := SkyboxSize / 2
	sky.Mesh = geom.NewBox(mgl64.Vec3{-r, -r, -r}, mgl64.Vec3{r, r, r})
	sky.Pickable = false
	s.Add(sky)
	return s
}

// BuildScene rebuilds the node hierarchy of doc's active scene on top of
// NewScene. Every mesh is collidable.
func BuildScene(doc *gltf.Document) *Scene {
	s := NewScene()
	visited := make([]bool, len(doc.Nodes))
	var build func(idx int) *Node
	build = func(idx int) *Node {
		if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
			return nil
		}
		visited[idx] = true
		src := doc.Nodes[idx]
		n := newNode(src.Name)
		n.Local = viewer.NodeTransform(src)
		if src.Mesh != nil {
			n.Mesh = viewer.MeshBounds(doc, *src.Mesh)
			n.Collidable = !n.Mesh.Empty()
		}
		for _, c := range src.Children {
			if child := build(c); child != nil {
				child.parent = n
				n.children = append(n.children, child)
			}
		}
		return n
	}
	for _, idx := range viewer.RootNodes(doc) {
		if n := build(idx); n != nil {
			s.Add(n)
		}
	}
	return s
}

// Add appends n as a top-level node.
func (s *Scene) Add(n *Node) {
	n.parent = nil
	s.top = append(s.top, n)
}

// Top returns the top-level nodes.
func (s *Scene) Top() []*Node {
	return s.top
}

// Find returns the first node called name, depth first.
func (s *Scene) Find(name string) *Node {
	var found *Node
	s.Walk(func(n *Node) {
		if found == nil && n.Name == name {
			found = n
		}
	})
	return found
}

// Walk visits every node depth first.
func (s *Scene) Walk(fn func(*Node)) {
	for _, n := range s.top {
		n.walk(fn)
	}
}

func synthetic(n *Node) bool {
	return n.Name == GroundName || n.Name == SkyboxName
}

// AutoCenter moves every top-level node except ground and skybox under a
// new root node and translates that root so the horizontal centre of the
// model is at the origin and its lowest point rests on y=0. It returns the
// root, or nil when there is nothing to centre.
func (s *Scene) AutoCenter() *Node {
	root := newNode(RootName)
	kept := make([]*Node, 0, len(s.top)+1)
	for _, n := range s.top {
		if synthetic(n) {
			kept = append(kept, n)
			continue
		}
		n.parent = root
		root.children = append(root.children, n)
	}
	if len(root.children) == 0 {
		return nil
	}
	s.top = append(kept, root)

	box := root.HierarchyBounds()
	if box.Empty() {
		return root
	}
	c := box.Center()
	root.Local = mgl64.Translate3D(-c.X(), -box.Min.Y(), -c.Z()).Mul4(root.Local)
	return root
}

// Colliders returns the world bounds of every collidable mesh.
func (s *Scene) Colliders() []geom.Box {
	var out []geom.Box
	s.Walk(func(n *Node) {
		if n.Collidable && !n.Mesh.Empty() {
			out = append(out, n.Bounds())
		}
	})
	return out
}

// Hit is the result of a pick.
type Hit struct {
	Node  *Node
	Point mgl64.Vec3
}

// Pick returns the nearest pickable mesh the ray enters.
func (s *Scene) Pick(ray geom.Ray) (Hit, bool) {
	best := math.Inf(1)
	var hit Hit
	s.Walk(func(n *Node) {
		if !n.Pickable || n.Mesh.Empty() {
			return
		}
		if d, ok := ray.Hit(n.Bounds()); ok && d < best {
			best = d
			hit = Hit{Node: n, Point: ray.At(d)}
		}
	})
	return hit, hit.Node != nil
}
