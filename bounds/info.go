package bounds

import "github.com/go-gl/mathgl/mgl64"

// CullingStrategy selects how much work IsInFrustum does after the sphere test
type CullingStrategy int

const (
	// CullingStandard requires both the sphere and the box to pass
	CullingStandard CullingStrategy = iota
	// CullingOptimistic accepts an object as soon as its sphere passes
	CullingOptimistic
)

func (s CullingStrategy) String() string {
	switch s {
	case CullingStandard:
		return "standard"
	case CullingOptimistic:
		return "optimistic"
	}
	return "unknown"
}

// BoundingInfo owns the box and the sphere built from the same local extent
type BoundingInfo struct {
	minimum mgl64.Vec3
	maximum mgl64.Vec3

	BoundingBox    BoundingBox
	BoundingSphere BoundingSphere

	directions [3]mgl64.Vec3

	CullingStrategy CullingStrategy
}

// NewBoundingInfo creates the bounding volumes of the local box [min, max]
// placed by world, with the standard culling strategy.
func NewBoundingInfo(min, max mgl64.Vec3, world mgl64.Mat4) *BoundingInfo {
	info := &BoundingInfo{CullingStrategy: CullingStandard}
	info.Reset(min, max, world)

	return info
}

// Reset is called when the local extent changes
func (bi *BoundingInfo) Reset(min, max mgl64.Vec3, world mgl64.Mat4) {
	bi.minimum = min
	bi.maximum = max
	bi.BoundingBox.Reset(min, max, world)
	bi.BoundingSphere.Reset(min, max, world)
	bi.directions = basisDirections(world)
}

// Update is called once per frame after the world transform changed, and
// before any query reads this info.
func (bi *BoundingInfo) Update(world mgl64.Mat4) {
	bi.BoundingBox.Reset(bi.minimum, bi.maximum, world)
	bi.BoundingSphere.Update(world)
	bi.directions = basisDirections(world)
}

func (bi *BoundingInfo) Minimum() mgl64.Vec3 { return bi.minimum }
func (bi *BoundingInfo) Maximum() mgl64.Vec3 { return bi.maximum }

// Directions returns the normalized world axes of the local box
func (bi *BoundingInfo) Directions() [3]mgl64.Vec3 {
	return bi.directions
}

// Corners returns the 8 world corners of the box
func (bi *BoundingInfo) Corners() [8]mgl64.Vec3 {
	return bi.BoundingBox.VectorsWorld
}

// IsInFrustum runs the sphere test first, it costs one dot product per plane
// against eight for the box test.
func (bi *BoundingInfo) IsInFrustum(frustum *FrustumPlanes) bool {
	if !bi.BoundingSphere.IsInFrustum(frustum) {
		return false
	}

	if bi.CullingStrategy == CullingOptimistic {
		return true
	}

	return bi.BoundingBox.IsInFrustum(frustum)
}
