package bounds

import "github.com/go-gl/mathgl/mgl64"

// IntersectsOBB is the separating axis test between a convex hull and an
// oriented box. Candidate axes are the hull face normals, the box axes and
// the cross products of hull edges with box axes; for two convex polyhedra a
// separating plane, if any, is normal to one of them. Touching shapes are
// reported as intersecting.
func (p *ConvexPolyhedron) IntersectsOBB(obb OBB) bool {
	for _, axis := range p.normals {
		if separated(p, obb, axis) {
			return false
		}
	}

	for _, axis := range obb.Axes {
		if separated(p, obb, axis) {
			return false
		}
	}

	for _, edge := range p.edges {
		for _, boxAxis := range obb.Axes {
			axis := edge.Cross(boxAxis)
			if axis.LenSqr() < degenerateTolerance {
				// parallel: already covered by the face axes
				continue
			}
			if separated(p, obb, axis) {
				return false
			}
		}
	}

	return true
}

func separated(p *ConvexPolyhedron, obb OBB, axis mgl64.Vec3) bool {
	pMin, pMax := p.project(axis)
	oMin, oMax := obb.project(axis)

	return pMax < oMin || oMax < pMin
}
