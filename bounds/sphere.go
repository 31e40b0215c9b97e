package bounds

import "github.com/go-gl/mathgl/mgl64"

// BoundingSphere is the sphere through the corners of the local box, with
// its world-space counterpart.
type BoundingSphere struct {
	radius      float64
	center      mgl64.Vec3
	radiusWorld float64
	centerWorld mgl64.Vec3
}

// NewBoundingSphere creates a sphere from the local box corners and world transform
func NewBoundingSphere(min, max mgl64.Vec3, world mgl64.Mat4) BoundingSphere {
	var s BoundingSphere
	s.Reset(min, max, world)

	return s
}

// Reset sets the local sphere from the box diagonal and refreshes the world sphere
func (s *BoundingSphere) Reset(min, max mgl64.Vec3, world mgl64.Mat4) {
	s.center = max.Add(min).Mul(0.5)
	s.radius = max.Sub(min).Len() * 0.5

	s.Update(world)
}

// Update recomputes the world sphere. The radius is scaled by the largest
// axis scale of world so that non-uniform scales stay enclosed.
func (s *BoundingSphere) Update(world mgl64.Mat4) {
	if IsIdentity(world) {
		s.radiusWorld = s.radius
		s.centerWorld = s.center
		return
	}

	s.centerWorld = TransformPoint(world, s.center)
	s.radiusWorld = s.radius * MaxAxisScale(world)
}

func (s *BoundingSphere) Radius() float64         { return s.radius }
func (s *BoundingSphere) Center() mgl64.Vec3      { return s.center }
func (s *BoundingSphere) RadiusWorld() float64    { return s.radiusWorld }
func (s *BoundingSphere) CenterWorld() mgl64.Vec3 { return s.centerWorld }

// IsCenterInFrustum reports whether the world center is inside every plane
func (s *BoundingSphere) IsCenterInFrustum(frustum *FrustumPlanes) bool {
	for _, plane := range frustum.Planes() {
		if plane.DotCoordinate(s.centerWorld) < 0 {
			return false
		}
	}

	return true
}

// IsInFrustum rejects the sphere when it lies entirely behind one plane.
// A sphere tangent to a plane from outside is rejected.
func (s *BoundingSphere) IsInFrustum(frustum *FrustumPlanes) bool {
	for _, plane := range frustum.Planes() {
		if plane.DotCoordinate(s.centerWorld) <= -s.radiusWorld {
			return false
		}
	}

	return true
}
