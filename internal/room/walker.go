package room

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"uvp-showroom/internal/geom"
	"uvp-showroom/internal/viewer"
)

// Walking camera defaults.
const (
	EyeHeight          = 1.7
	StartDistance      = 10.0
	Speed              = 0.5
	AngularSensibility = 2000.0
	FPS                = 60
	maxPitch           = math.Pi/2 - 0.01
)

// Ellipsoid holds the half extents of the player's collision volume.
var Ellipsoid = mgl64.Vec3{0.5, 1, 0.5}

// Move is one movement direction bound to a key.
type Move int

const (
	MoveNone Move = iota
	MoveForward
	MoveBackward
	MoveLeft
	MoveRight
)

// KeyMove maps a keyboard key to a movement. WASD and arrow keys are bound.
func KeyMove(key string) Move {
	switch strings.ToLower(key) {
	case "w", "keyw", "arrowup":
		return MoveForward
	case "s", "keys", "arrowdown":
		return MoveBackward
	case "a", "keya", "arrowleft":
		return MoveLeft
	case "d", "keyd", "arrowright":
		return MoveRight
	}
	return MoveNone
}

// Pose is the camera position and orientation. Yaw 0 looks down +z; a
// positive pitch looks down.
type Pose struct {
	Position mgl64.Vec3 `json:"position"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
}

// StartPose is the camera at eye height, StartDistance in front of the
// origin and looking at it.
func StartPose() Pose {
	return Pose{
		Position: mgl64.Vec3{0, EyeHeight, StartDistance},
		Yaw:      math.Pi,
		Pitch:    math.Atan2(EyeHeight, StartDistance),
	}
}

// Forward returns the unit look direction.
func (p Pose) Forward() mgl64.Vec3 {
	sy, cy := math.Sincos(p.Yaw)
	sp, cp := math.Sincos(p.Pitch)
	return mgl64.Vec3{sy * cp, -sp, cy * cp}
}

// Right returns the horizontal unit vector to the camera's right.
func (p Pose) Right() mgl64.Vec3 {
	sy, cy := math.Sincos(p.Yaw)
	return mgl64.Vec3{-cy, 0, sy}
}

// Walker is the first-person camera. It is not safe for concurrent use.
type Walker struct {
	pose      Pose
	engaged   bool
	held      map[Move]bool
	colliders []geom.Box
	teleport  *Teleport
}

// NewWalker places a walker at the start pose with the given colliders.
func NewWalker(colliders []geom.Box) *Walker {
	return &Walker{
		pose:      StartPose(),
		held:      map[Move]bool{},
		colliders: colliders,
	}
}

// Pose returns the current camera pose.
func (w *Walker) Pose() Pose {
	return w.pose
}

// Engaged reports whether input is attached (pointer lock held).
func (w *Walker) Engaged() bool {
	return w.engaged
}

// SetEngaged attaches or detaches input. Detaching drops held keys and
// keeps the pose.
func (w *Walker) SetEngaged(on bool) {
	w.engaged = on
	if !on {
		clear(w.held)
	}
}

// Teleporting reports whether a teleport animation is running.
func (w *Walker) Teleporting() bool {
	return w.teleport != nil
}

// KeyDown records a pressed movement key. It is ignored while detached or
// teleporting.
func (w *Walker) KeyDown(key string) bool {
	m := KeyMove(key)
	if m == MoveNone || !w.engaged || w.teleport != nil {
		return false
	}
	w.held[m] = true
	return true
}

// KeyUp releases a movement key.
func (w *Walker) KeyUp(key string) {
	delete(w.held, KeyMove(key))
}

// Look turns the camera by a mouse delta in pixels while engaged.
func (w *Walker) Look(dx, dy float64) bool {
	if !w.engaged {
		return false
	}
	w.pose.Yaw -= dx / AngularSensibility
	w.pose.Pitch = mgl64.Clamp(w.pose.Pitch+dy/AngularSensibility, -maxPitch, maxPitch)
	return true
}

// TeleportTo starts the animation towards (x, EyeHeight, z).
func (w *Walker) TeleportTo(x, z float64) {
	w.held = map[Move]bool{}
	w.teleport = NewTeleport(w.pose.Position, mgl64.Vec3{x, EyeHeight, z})
}

// Step advances one frame.
func (w *Walker) Step() {
	if w.teleport != nil {
		pos, done := w.teleport.Advance()
		w.pose.Position = pos
		if done {
			w.teleport = nil
		}
		return
	}
	if !w.engaged || len(w.held) == 0 {
		return
	}

	var delta mgl64.Vec3
	fwd, right := w.pose.Forward(), w.pose.Right()
	for m := range w.held {
		switch m {
		case MoveForward:
			delta = delta.Add(fwd)
		case MoveBackward:
			delta = delta.Sub(fwd)
		case MoveRight:
			delta = delta.Add(right)
		case MoveLeft:
			delta = delta.Sub(right)
		}
	}
	w.move(delta.Mul(Speed))
}

// move applies delta one axis at a time, dropping any axis whose movement
// would overlap a collider.
func (w *Walker) move(delta mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		if delta[i] == 0 {
			continue
		}
		next := w.pose.Position
		next[i] += delta[i]
		if !w.collides(next) {
			w.pose.Position = next
		}
	}
}

func (w *Walker) collides(pos mgl64.Vec3) bool {
	body := geom.NewBox(pos.Sub(Ellipsoid), pos.Add(Ellipsoid))
	if body.Min.Y() < 0 {
		return true
	}
	for _, c := range w.colliders {
		if body.Intersects(c) {
			return true
		}
	}
	return false
}

// lookDistance is how far in front of the eye the renderer's orbit target
// is placed.
const lookDistance = 1.0

// Orbit expresses the pose as an orbit camera: a target lookDistance ahead
// of the eye and the spherical angles from that target back to the eye.
func (p Pose) Orbit() (viewer.CameraOrbit, mgl64.Vec3) {
	target := p.Position.Add(p.Forward().Mul(lookDistance))
	return viewer.CameraOrbit{
		Theta:  viewer.Radians(p.Yaw + math.Pi),
		Phi:    viewer.Radians(math.Pi/2 - p.Pitch),
		Radius: viewer.Meters(lookDistance),
	}, target
}
