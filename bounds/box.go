package bounds

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BoundingBox is a local axis-aligned box together with its world-space
// envelope. The 8 world corners are kept for the frustum test, the envelope
// alone would lose the orientation.
type BoundingBox struct {
	center      mgl64.Vec3
	extend      mgl64.Vec3
	centerWorld mgl64.Vec3
	extendWorld mgl64.Vec3

	VectorsWorld [8]mgl64.Vec3
}

// NewBoundingBox creates a box from its local corners and world transform
func NewBoundingBox(min, max mgl64.Vec3, world mgl64.Mat4) BoundingBox {
	var b BoundingBox
	b.Reset(min, max, world)

	return b
}

// localCorners enumerates the corners in the fixed order used everywhere
// VectorsWorld is read.
func localCorners(min, max mgl64.Vec3) [8]mgl64.Vec3 {
	return [8]mgl64.Vec3{
		{min.X(), min.Y(), min.Z()},
		{max.X(), max.Y(), max.Z()},
		{max.X(), min.Y(), min.Z()},
		{min.X(), max.Y(), min.Z()},
		{min.X(), min.Y(), max.Z()},
		{max.X(), max.Y(), min.Z()},
		{min.X(), max.Y(), max.Z()},
		{max.X(), min.Y(), max.Z()},
	}
}

// Reset recomputes local and world data from the local corners
func (b *BoundingBox) Reset(min, max mgl64.Vec3, world mgl64.Mat4) {
	b.center = max.Add(min).Mul(0.5)
	b.extend = max.Sub(min).Mul(0.5)

	corners := localCorners(min, max)

	if IsIdentity(world) {
		b.centerWorld = b.center
		b.extendWorld = b.extend
		b.VectorsWorld = corners
		return
	}

	minWorld := mgl64.Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64}
	maxWorld := mgl64.Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64}

	for i, corner := range corners {
		worldCorner := TransformPoint(world, corner)
		b.VectorsWorld[i] = worldCorner

		minWorld[0] = math.Min(minWorld[0], worldCorner[0])
		minWorld[1] = math.Min(minWorld[1], worldCorner[1])
		minWorld[2] = math.Min(minWorld[2], worldCorner[2])

		maxWorld[0] = math.Max(maxWorld[0], worldCorner[0])
		maxWorld[1] = math.Max(maxWorld[1], worldCorner[1])
		maxWorld[2] = math.Max(maxWorld[2], worldCorner[2])
	}

	b.centerWorld = maxWorld.Add(minWorld).Mul(0.5)
	b.extendWorld = maxWorld.Sub(minWorld).Mul(0.5)
}

func (b *BoundingBox) Center() mgl64.Vec3      { return b.center }
func (b *BoundingBox) Extend() mgl64.Vec3      { return b.extend }
func (b *BoundingBox) CenterWorld() mgl64.Vec3 { return b.centerWorld }
func (b *BoundingBox) ExtendWorld() mgl64.Vec3 { return b.extendWorld }

// MinimumWorld returns the lowest corner of the world envelope
func (b *BoundingBox) MinimumWorld() mgl64.Vec3 {
	return b.centerWorld.Sub(b.extendWorld)
}

// MaximumWorld returns the highest corner of the world envelope
func (b *BoundingBox) MaximumWorld() mgl64.Vec3 {
	return b.centerWorld.Add(b.extendWorld)
}

// AABB returns the world envelope
func (b *BoundingBox) AABB() AABB {
	return AABB{Min: b.MinimumWorld(), Max: b.MaximumWorld()}
}

// IsInFrustum rejects the box only when one plane has all 8 world corners
// strictly behind it. A corner lying on a plane keeps the box.
// Boxes straddling a frustum edge outside the frustum are kept too: the test
// is conservative.
func (b *BoundingBox) IsInFrustum(frustum *FrustumPlanes) bool {
	for _, plane := range frustum.Planes() {
		outside := true
		for i := range b.VectorsWorld {
			if plane.DotCoordinate(b.VectorsWorld[i]) >= 0 {
				outside = false
				break
			}
		}
		if outside {
			return false
		}
	}

	return true
}
