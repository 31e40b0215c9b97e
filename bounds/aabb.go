package bounds

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that any Extend call will overwrite
func EmptyAABB() AABB {
	return AABB{
		Min: mgl64.Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		Max: mgl64.Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
	}
}

// AABBFromPoints returns the tightest box containing every point
func AABBFromPoints(points []mgl64.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.Extend(p)
	}

	return box
}

// Extend grows the box so that it contains the point
func (a AABB) Extend(p mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], p[i])
		a.Max[i] = math.Max(a.Max[i], p[i])
	}

	return a
}

// Center returns the middle of the box
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Extents returns the half-size of the box
func (a AABB) Extents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Contains checks if other lies entirely inside a
func (a AABB) Contains(other AABB) bool {
	return other.Min.X() >= a.Min.X() && other.Max.X() <= a.Max.X() &&
		other.Min.Y() >= a.Min.Y() && other.Max.Y() <= a.Max.Y() &&
		other.Min.Z() >= a.Min.Z() && other.Max.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap, touching faces included
func (a AABB) Overlaps(other AABB) bool {
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// OverlapsHalfOpen is the broad-phase predicate of the spatial index:
// a.Min <= b.Max && a.Max > b.Min on every axis. The max side of a is open,
// so an entry starting exactly where the query ends is not reported.
func (a AABB) OverlapsHalfOpen(b AABB) bool {
	return a.Min.X() <= b.Max.X() && a.Max.X() > b.Min.X() &&
		a.Min.Y() <= b.Max.Y() && a.Max.Y() > b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() > b.Min.Z()
}
