package bounds

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// degenerateTolerance is the squared length under which a face normal or an
// edge direction is ignored.
const degenerateTolerance = 1e-18

var ErrDegeneratePolyhedron = errors.New("degenerate convex polyhedron")

// ConvexPolyhedron is a convex hull given by its points and a triangle list.
// Face normals and edge directions are derived once at construction for the
// separating axis test.
type ConvexPolyhedron struct {
	Points    []mgl64.Vec3
	Triangles [][3]int

	normals []mgl64.Vec3
	edges   []mgl64.Vec3
	aabb    AABB
	center  mgl64.Vec3
}

// NewConvexPolyhedron validates the mesh and precomputes its axes.
// Normals are oriented away from the centroid.
func NewConvexPolyhedron(points []mgl64.Vec3, triangles [][3]int) (*ConvexPolyhedron, error) {
	if len(points) < 4 || len(triangles) < 4 {
		return nil, fmt.Errorf("%w: %d points, %d triangles", ErrDegeneratePolyhedron, len(points), len(triangles))
	}

	for _, p := range points {
		for i := 0; i < 3; i++ {
			if math.IsNaN(p[i]) || math.IsInf(p[i], 0) {
				return nil, fmt.Errorf("%w: non-finite point %v", ErrDegeneratePolyhedron, p)
			}
		}
	}

	poly := &ConvexPolyhedron{
		Points:    points,
		Triangles: triangles,
		aabb:      AABBFromPoints(points),
	}

	for _, p := range points {
		poly.center = poly.center.Add(p)
	}
	poly.center = poly.center.Mul(1 / float64(len(points)))

	for _, tri := range triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= len(points) {
				return nil, fmt.Errorf("%w: triangle index %d out of range", ErrDegeneratePolyhedron, idx)
			}
		}

		a, b, c := points[tri[0]], points[tri[1]], points[tri[2]]
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.LenSqr() < degenerateTolerance {
			continue
		}
		normal = normal.Normalize()
		if normal.Dot(a.Sub(poly.center)) < 0 {
			normal = normal.Mul(-1)
		}
		poly.normals = appendUniqueAxis(poly.normals, normal)

		poly.edges = appendUniqueAxis(poly.edges, b.Sub(a))
		poly.edges = appendUniqueAxis(poly.edges, c.Sub(b))
		poly.edges = appendUniqueAxis(poly.edges, a.Sub(c))
	}

	// A flat hull has at most two opposite normals
	if len(poly.normals) < 3 {
		return nil, fmt.Errorf("%w: only %d distinct face normals", ErrDegeneratePolyhedron, len(poly.normals))
	}

	return poly, nil
}

// appendUniqueAxis appends the normalized axis unless it is degenerate or
// parallel to one already present.
func appendUniqueAxis(axes []mgl64.Vec3, axis mgl64.Vec3) []mgl64.Vec3 {
	if axis.LenSqr() < degenerateTolerance {
		return axes
	}
	axis = axis.Normalize()

	for _, existing := range axes {
		if math.Abs(existing.Dot(axis)) > 1-1e-9 {
			return axes
		}
	}

	return append(axes, axis)
}

// AABB returns the envelope of the hull points
func (p *ConvexPolyhedron) AABB() AABB {
	return p.aabb
}

// Centroid returns the average of the hull points
func (p *ConvexPolyhedron) Centroid() mgl64.Vec3 {
	return p.center
}

// Normals returns the distinct outward face normals
func (p *ConvexPolyhedron) Normals() []mgl64.Vec3 {
	return p.normals
}

// Support returns the hull point furthest along direction
func (p *ConvexPolyhedron) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := p.Points[0]
	bestDot := best.Dot(direction)
	for _, point := range p.Points[1:] {
		if d := point.Dot(direction); d > bestDot {
			best = point
			bestDot = d
		}
	}

	return best
}

// ContainsPoint reports whether point is inside every face of the hull
func (p *ConvexPolyhedron) ContainsPoint(point mgl64.Vec3) bool {
	for _, tri := range p.Triangles {
		a, b, c := p.Points[tri[0]], p.Points[tri[1]], p.Points[tri[2]]
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.LenSqr() < degenerateTolerance {
			continue
		}
		if normal.Dot(a.Sub(p.center)) < 0 {
			normal = normal.Mul(-1)
		}
		if normal.Dot(point.Sub(a)) > 0 {
			return false
		}
	}

	return true
}

// project returns the interval covered by the hull along axis
func (p *ConvexPolyhedron) project(axis mgl64.Vec3) (float64, float64) {
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, point := range p.Points {
		d := point.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}

	return lo, hi
}
