package viewer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// AngleUnit is the unit an Angle is written in.
type AngleUnit int

const (
	UnitDeg AngleUnit = iota
	UnitRad
)

// Angle is a numeric angle with the unit it is encoded in.
type Angle struct {
	Value float64
	Unit  AngleUnit
}

// Degrees returns an angle written in degrees.
func Degrees(v float64) Angle { return Angle{Value: v, Unit: UnitDeg} }

// Radians returns an angle written in radians.
func Radians(v float64) Angle { return Angle{Value: v, Unit: UnitRad} }

// Rad returns the angle in radians regardless of its unit.
func (a Angle) Rad() float64 {
	if a.Unit == UnitDeg {
		return a.Value * math.Pi / 180
	}
	return a.Value
}

func (a Angle) String() string {
	if a.Unit == UnitDeg {
		return formatNumber(a.Value) + "deg"
	}
	return formatNumber(a.Value) + "rad"
}

// DistanceUnit is the unit a Distance is written in.
type DistanceUnit int

const (
	// UnitPercent is relative to the size the renderer computes for the model.
	UnitPercent DistanceUnit = iota
	UnitMetre
)

// Distance is a camera radius.
type Distance struct {
	Value float64
	Unit  DistanceUnit
}

// Meters returns an absolute distance.
func Meters(v float64) Distance { return Distance{Value: v, Unit: UnitMetre} }

// Relative returns a distance relative to the model size, in percent.
func Relative(percent float64) Distance { return Distance{Value: percent, Unit: UnitPercent} }

func (d Distance) String() string {
	if d.Unit == UnitMetre {
		return formatNumber(d.Value) + "m"
	}
	return formatNumber(d.Value) + "%"
}

// CameraOrbit is the typed form of the camera-orbit attribute.
type CameraOrbit struct {
	Theta  Angle
	Phi    Angle
	Radius Distance
}

// DefaultCameraOrbit is the orbit the renderer shows before the model's
// bounds are known.
var DefaultCameraOrbit = CameraOrbit{
	Theta:  Degrees(0),
	Phi:    Degrees(75),
	Radius: Relative(RadiusFactor * 100),
}

func (c CameraOrbit) String() string {
	return c.Theta.String() + " " + c.Phi.String() + " " + c.Radius.String()
}

// Config describes one <model-viewer> element. Values are kept numeric and
// typed; Attributes turns them into the element's string attributes.
type Config struct {
	Src                string
	Alt                string
	Poster             string
	CameraControls     bool
	AutoRotate         bool
	CameraOrbit        CameraOrbit
	CameraTarget       *mgl64.Vec3 // nil lets the renderer pick the model centre
	MinPolar           Angle
	MaxPolar           Angle
	ShadowIntensity    float64
	Exposure           float64
	EnvironmentImage   string
	EagerLoading       bool
	TightBounds        bool
	InterpolationDecay time.Duration
	InteractionPrompt  bool
}

// DefaultConfig returns the configuration used by the product viewer and
// the sandbox.
func DefaultConfig(src, alt string) Config {
	return Config{
		Src:                src,
		Alt:                alt,
		CameraControls:     true,
		CameraOrbit:        DefaultCameraOrbit,
		MinPolar:           Degrees(0),
		MaxPolar:           Degrees(180),
		ShadowIntensity:    1,
		Exposure:           1,
		EnvironmentImage:   "neutral",
		EagerLoading:       true,
		TightBounds:        true,
		InterpolationDecay: 200 * time.Millisecond,
	}
}

// Attribute is one HTML attribute. Boolean attributes have an empty value.
type Attribute struct {
	Name  string
	Value string
}

// Attributes encodes the config in a stable order.
func (c Config) Attributes() []Attribute {
	attrs := []Attribute{
		{Name: "src", Value: c.Src},
		{Name: "alt", Value: c.Alt},
	}
	if c.Poster != "" {
		attrs = append(attrs, Attribute{Name: "poster", Value: c.Poster})
	}
	if c.CameraControls {
		attrs = append(attrs, Attribute{Name: "camera-controls"})
	}
	if c.AutoRotate {
		attrs = append(attrs, Attribute{Name: "auto-rotate"})
	}
	if !c.InteractionPrompt {
		attrs = append(attrs, Attribute{Name: "interaction-prompt", Value: "none"})
	}
	attrs = append(attrs,
		Attribute{Name: "camera-orbit", Value: c.CameraOrbit.String()},
		Attribute{Name: "camera-target", Value: encodeTarget(c.CameraTarget)},
		Attribute{Name: "min-camera-orbit", Value: "auto " + c.MinPolar.String() + " auto"},
		Attribute{Name: "max-camera-orbit", Value: "auto " + c.MaxPolar.String() + " auto"},
		Attribute{Name: "shadow-intensity", Value: formatNumber(c.ShadowIntensity)},
		Attribute{Name: "exposure", Value: formatNumber(c.Exposure)},
	)
	if c.EnvironmentImage != "" {
		attrs = append(attrs, Attribute{Name: "environment-image", Value: c.EnvironmentImage})
	}
	loading := "auto"
	if c.EagerLoading {
		loading = "eager"
	}
	attrs = append(attrs, Attribute{Name: "loading", Value: loading})
	if c.TightBounds {
		attrs = append(attrs, Attribute{Name: "bounds", Value: "tight"})
	}
	if c.InterpolationDecay > 0 {
		attrs = append(attrs, Attribute{
			Name:  "interpolation-decay",
			Value: strconv.FormatInt(c.InterpolationDecay.Milliseconds(), 10),
		})
	}
	return attrs
}

func encodeTarget(target *mgl64.Vec3) string {
	if target == nil {
		return "auto auto auto"
	}
	parts := make([]string, 3)
	for i, v := range target {
		parts[i] = formatNumber(v) + "m"
	}
	return strings.Join(parts, " ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
