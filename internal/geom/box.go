// Package geom holds the small amount of spatial math shared by the orbit
// viewer and the walkthrough: axis-aligned boxes and node transforms.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is an axis-aligned bounding box. The zero value is empty.
type Box struct {
	Min, Max mgl64.Vec3
	valid    bool
}

// NewBox returns the box spanning min and max.
func NewBox(min, max mgl64.Vec3) Box {
	b := Box{}
	b = b.ExtendPoint(min)
	return b.ExtendPoint(max)
}

// Empty reports whether no point has been added to the box.
func (b Box) Empty() bool {
	return !b.valid
}

// ExtendPoint grows the box to contain p.
func (b Box) ExtendPoint(p mgl64.Vec3) Box {
	if !b.valid {
		return Box{Min: p, Max: p, valid: true}
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	if !o.valid {
		return b
	}
	if !b.valid {
		return o
	}
	return b.ExtendPoint(o.Min).ExtendPoint(o.Max)
}

// Center returns the midpoint of the box.
func (b Box) Center() mgl64.Vec3 {
	return b.Max.Add(b.Min).Mul(0.5)
}

// Size returns the edge lengths of the box.
func (b Box) Size() mgl64.Vec3 {
	if !b.valid {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Radius returns half of the box diagonal.
func (b Box) Radius() float64 {
	return b.Size().Len() / 2
}

// Translate moves the box by d.
func (b Box) Translate(d mgl64.Vec3) Box {
	if !b.valid {
		return b
	}
	return Box{Min: b.Min.Add(d), Max: b.Max.Add(d), valid: true}
}

// Transform returns the axis-aligned box around the eight transformed
// corners of b.
func (b Box) Transform(m mgl64.Mat4) Box {
	if !b.valid {
		return b
	}
	out := Box{}
	for i := 0; i < 8; i++ {
		corner := mgl64.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		out = out.ExtendPoint(mgl64.TransformCoordinate(corner, m))
	}
	return out
}

// Intersects reports whether the boxes overlap with positive volume.
// Touching faces do not count.
func (b Box) Intersects(o Box) bool {
	if !b.valid || !o.valid {
		return false
	}
	for i := 0; i < 3; i++ {
		if b.Max[i] <= o.Min[i] || o.Max[i] <= b.Min[i] {
			return false
		}
	}
	return true
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p mgl64.Vec3) bool {
	if !b.valid {
		return false
	}
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}
