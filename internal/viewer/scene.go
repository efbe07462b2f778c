package viewer

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"uvp-showroom/internal/geom"
)

// Box is re-exported so callers of Load do not need the geom package.
type Box = geom.Box

// RootNodes returns the node indices of the document's active scene. Without
// a scene every node that is nobody's child is a root.
func RootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return append([]int(nil), doc.Scenes[idx].Nodes...)
	}
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(child) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// NodeTransform returns the local transform of n. A non-identity matrix
// wins over translation, rotation and scale.
func NodeTransform(n *gltf.Node) mgl64.Mat4 {
	if m := geom.ColumnMajor(n.Matrix); !geom.IsIdentity(m) {
		return m
	}
	return geom.TRS(n.Translation, n.Rotation, n.Scale)
}

// MeshBounds returns the local bounds of a mesh from the min/max of its
// POSITION accessors.
func MeshBounds(doc *gltf.Document, mesh int) geom.Box {
	var box geom.Box
	if mesh < 0 || mesh >= len(doc.Meshes) {
		return box
	}
	for _, prim := range doc.Meshes[mesh].Primitives {
		idx, ok := prim.Attributes[gltf.POSITION]
		if !ok || idx < 0 || idx >= len(doc.Accessors) {
			continue
		}
		acc := doc.Accessors[idx]
		if len(acc.Min) < 3 || len(acc.Max) < 3 {
			continue
		}
		box = box.Union(geom.NewBox(
			mgl64.Vec3{acc.Min[0], acc.Min[1], acc.Min[2]},
			mgl64.Vec3{acc.Max[0], acc.Max[1], acc.Max[2]},
		))
	}
	return box
}

// WalkNodes visits every node reachable from the active scene, depth first,
// with its world transform. Cycles in malformed files are cut.
func WalkNodes(doc *gltf.Document, fn func(index int, node *gltf.Node, world mgl64.Mat4)) {
	visited := make([]bool, len(doc.Nodes))
	var walk func(idx int, parent mgl64.Mat4)
	walk = func(idx int, parent mgl64.Mat4) {
		if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
			return
		}
		visited[idx] = true
		node := doc.Nodes[idx]
		world := parent.Mul4(NodeTransform(node))
		fn(idx, node, world)
		for _, c := range node.Children {
			walk(c, world)
		}
	}
	for _, root := range RootNodes(doc) {
		walk(root, mgl64.Ident4())
	}
}

// SceneBounds returns the world bounds of all meshes in the active scene.
func SceneBounds(doc *gltf.Document) geom.Box {
	var box geom.Box
	WalkNodes(doc, func(_ int, node *gltf.Node, world mgl64.Mat4) {
		if node.Mesh == nil {
			return
		}
		box = box.Union(MeshBounds(doc, *node.Mesh).Transform(world))
	})
	return box
}
