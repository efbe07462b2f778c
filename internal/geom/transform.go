package geom

import "github.com/go-gl/mathgl/mgl64"

// TRS builds a local transform from translation, rotation quaternion
// (x, y, z, w) and scale, applied in scale, rotate, translate order.
func TRS(translation [3]float64, rotation [4]float64, scale [3]float64) mgl64.Mat4 {
	if scale == [3]float64{} {
		scale = [3]float64{1, 1, 1}
	}
	q := mgl64.Quat{W: rotation[3], V: mgl64.Vec3{rotation[0], rotation[1], rotation[2]}}
	if q.Len() == 0 {
		q = mgl64.QuatIdent()
	}
	t := mgl64.Translate3D(translation[0], translation[1], translation[2])
	r := q.Normalize().Mat4()
	s := mgl64.Scale3D(scale[0], scale[1], scale[2])
	return t.Mul4(r).Mul4(s)
}

// ColumnMajor converts a glTF column-major matrix. An all-zero matrix is
// treated as identity.
func ColumnMajor(m [16]float64) mgl64.Mat4 {
	if m == [16]float64{} {
		return mgl64.Ident4()
	}
	return mgl64.Mat4(m)
}

// IsIdentity reports whether m equals the identity within 1e-12.
func IsIdentity(m mgl64.Mat4) bool {
	return m.ApproxEqualThreshold(mgl64.Ident4(), 1e-12)
}
