package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half line from Origin along Dir. Dir need not be normalised;
// distances are in multiples of Dir.
type Ray struct {
	Origin, Dir mgl64.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Hit returns the entry parameter of the ray into b. A ray starting inside
// the box does not hit it.
func (r Ray) Hit(b Box) (float64, bool) {
	if !b.valid || b.Contains(r.Origin) {
		return 0, false
	}
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if r.Dir[i] == 0 {
			if r.Origin[i] < b.Min[i] || r.Origin[i] > b.Max[i] {
				return 0, false
			}
			continue
		}
		t1 := (b.Min[i] - r.Origin[i]) / r.Dir[i]
		t2 := (b.Max[i] - r.Origin[i]) / r.Dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 || tmin < 0 {
		return 0, false
	}
	return tmin, true
}
