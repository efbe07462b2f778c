// Package viewer implements the orbit viewer: typed camera configuration,
// the load/ready/error session state machine, progress reporting and the
// scoped release of everything a viewer acquires.
package viewer

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// OrbitStep is the angle applied by one step operation, in radians.
	OrbitStep = 0.3
	// MinPolar and MaxPolar keep the camera off the poles.
	MinPolar = 0.01
	MaxPolar = math.Pi - 0.01
	// DefaultPolar is the polar angle of the default orbit (75°).
	DefaultPolar = 75 * math.Pi / 180
	// RadiusFactor scales the model's bounding radius for the default orbit.
	RadiusFactor = 1.05
)

// Direction names a step operation.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
	Reset Direction = "reset"
)

// ParseDirection validates a direction received from a request.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Up, Down, Left, Right, Reset:
		return d, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Orbit is the camera position around a fixed look-at origin. Angles are in
// radians, radius in metres.
type Orbit struct {
	Azimuth float64 `json:"azimuth"`
	Polar   float64 `json:"polar"`
	Radius  float64 `json:"radius"`
}

// DefaultOrbit returns the orbit a viewer starts from, for a model with the
// given bounding radius. A non-positive radius falls back to one metre.
func DefaultOrbit(boundingRadius float64) Orbit {
	if boundingRadius <= 0 || math.IsNaN(boundingRadius) || math.IsInf(boundingRadius, 0) {
		boundingRadius = 1
	}
	return Orbit{
		Azimuth: 0,
		Polar:   DefaultPolar,
		Radius:  boundingRadius * RadiusFactor,
	}
}

// Step applies one step operation. Reset returns def; the radius is never
// changed by the other directions.
func (o Orbit) Step(dir Direction, def Orbit) Orbit {
	switch dir {
	case Reset:
		return def
	case Left:
		o.Azimuth -= OrbitStep
	case Right:
		o.Azimuth += OrbitStep
	case Up:
		o.Polar -= OrbitStep
	case Down:
		o.Polar += OrbitStep
	}
	o.Polar = ClampPolar(o.Polar)
	return o
}

// ClampPolar keeps a polar angle inside [MinPolar, MaxPolar].
func ClampPolar(phi float64) float64 {
	return math.Max(MinPolar, math.Min(MaxPolar, phi))
}

// Position returns the camera position in model space. Azimuth 0 looks
// down -Z from +Z, polar 0 is straight above the target.
func (o Orbit) Position() mgl64.Vec3 {
	sinPhi := math.Sin(o.Polar)
	return mgl64.Vec3{
		o.Radius * sinPhi * math.Sin(o.Azimuth),
		o.Radius * math.Cos(o.Polar),
		o.Radius * sinPhi * math.Cos(o.Azimuth),
	}
}

// CameraOrbit converts the state into the typed attribute value.
func (o Orbit) CameraOrbit() CameraOrbit {
	return CameraOrbit{
		Theta:  Radians(o.Azimuth),
		Phi:    Radians(o.Polar),
		Radius: Meters(o.Radius),
	}
}
