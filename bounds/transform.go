package bounds

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// IdentityTolerance is the per-element tolerance under which a world matrix
// is treated as the identity, skipping the corner transform.
const IdentityTolerance = 1e-5

// IsIdentity reports whether m is the identity within IdentityTolerance
func IsIdentity(m mgl64.Mat4) bool {
	identity := mgl64.Ident4()
	for i := range m {
		if math.Abs(m[i]-identity[i]) > IdentityTolerance {
			return false
		}
	}

	return true
}

// TransformPoint applies m to p as a point (w = 1), dividing by the resulting w
// when m is projective.
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, m)
}

// MaxAxisScale returns the largest column norm of the upper-left 3x3 of m.
// Scaling a sphere radius by it keeps the sphere around rotated and
// non-uniformly scaled copies of itself.
func MaxAxisScale(m mgl64.Mat4) float64 {
	scale := 0.0
	for i := 0; i < 3; i++ {
		scale = math.Max(scale, m.Col(i).Vec3().Len())
	}

	return scale
}

// basisDirections returns the normalized columns of the linear part of m.
// A zero column stays zero.
func basisDirections(m mgl64.Mat4) [3]mgl64.Vec3 {
	var directions [3]mgl64.Vec3
	for i := 0; i < 3; i++ {
		column := m.Col(i).Vec3()
		if l := column.Len(); l > 0 {
			directions[i] = column.Mul(1 / l)
		}
	}

	return directions
}
