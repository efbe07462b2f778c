package room

import "github.com/go-gl/mathgl/mgl64"

// TeleportFrames is the length of the teleport animation: half a second at
// 60 frames per second.
const TeleportFrames = 30

// Teleport is a linear position tween.
type Teleport struct {
	from, to mgl64.Vec3
	frame    int
}

// NewTeleport starts a tween from one point to another.
func NewTeleport(from, to mgl64.Vec3) *Teleport {
	return &Teleport{from: from, to: to}
}

// Advance moves one frame forward and reports whether the tween finished.
// The last frame lands exactly on the target.
func (t *Teleport) Advance() (mgl64.Vec3, bool) {
	if t.frame < TeleportFrames {
		t.frame++
	}
	if t.frame == TeleportFrames {
		return t.to, true
	}
	f := float64(t.frame) / TeleportFrames
	return t.from.Add(t.to.Sub(t.from).Mul(f)), false
}

// Target returns the end point.
func (t *Teleport) Target() mgl64.Vec3 {
	return t.to
}
