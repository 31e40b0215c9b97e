package bounds

import "github.com/go-gl/mathgl/mgl64"

// Plane represents a half-space: Normal · p + D = 0 is the boundary and the
// positive side is considered inside.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

// PlaneFromVec4 builds a plane from (a, b, c, d) coefficients
func PlaneFromVec4(v mgl64.Vec4) Plane {
	return Plane{Normal: v.Vec3(), D: v.W()}
}

// Normalize scales the plane so that its normal has unit length.
// A zero normal collapses the whole plane to zero, so DotCoordinate is 0
// everywhere.
func (p *Plane) Normalize() {
	norm := p.Normal.Len()
	if norm <= 0 {
		p.Normal = mgl64.Vec3{}
		p.D = 0
		return
	}

	p.Normal = mgl64.Vec3{p.Normal[0] / norm, p.Normal[1] / norm, p.Normal[2] / norm}
	p.D /= norm
}

// DotCoordinate returns Normal · point + D, the signed distance once normalized
func (p Plane) DotCoordinate(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}
