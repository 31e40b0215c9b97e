package bounds

import "github.com/go-gl/mathgl/mgl64"

// FrustumPlanes holds the six inward-facing planes of a view frustum.
// The planes are always produced together by FromTransformMatrix.
type FrustumPlanes struct {
	Near   Plane
	Far    Plane
	Left   Plane
	Right  Plane
	Top    Plane
	Bottom Plane
}

// FromTransformMatrix extracts the frustum planes of a combined
// view-projection matrix (Gribb/Hartmann). Rows are read mathematically:
// mgl64 stores column-major, Row(i) returns row i.
func FromTransformMatrix(m mgl64.Mat4) FrustumPlanes {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)

	f := FrustumPlanes{
		Near:   PlaneFromVec4(r3.Add(r2)),
		Far:    PlaneFromVec4(r3.Sub(r2)),
		Left:   PlaneFromVec4(r3.Add(r0)),
		Right:  PlaneFromVec4(r3.Sub(r0)),
		Top:    PlaneFromVec4(r3.Sub(r1)),
		Bottom: PlaneFromVec4(r3.Add(r1)),
	}

	f.Near.Normalize()
	f.Far.Normalize()
	f.Left.Normalize()
	f.Right.Normalize()
	f.Top.Normalize()
	f.Bottom.Normalize()

	return f
}

// Planes returns the planes in the order near, far, left, right, top, bottom
func (f *FrustumPlanes) Planes() [6]Plane {
	return [6]Plane{f.Near, f.Far, f.Left, f.Right, f.Top, f.Bottom}
}

// ContainsPoint reports whether the point is on the inner side of all planes
func (f *FrustumPlanes) ContainsPoint(p mgl64.Vec3) bool {
	for _, plane := range f.Planes() {
		if plane.DotCoordinate(p) < 0 {
			return false
		}
	}

	return true
}
