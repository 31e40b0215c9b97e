// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) algorithm as a
// boolean intersection query between two convex shapes.
//
// GJK detects whether two convex shapes overlap by testing if their Minkowski
// difference contains the origin. The algorithm builds a simplex incrementally,
// converging toward the origin in typically 3-6 iterations. Shapes only need
// to expose a support function.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxIterations bounds the simplex refinement loop
	MaxIterations = 32

	degenerateLenSqr = 1e-10
	touchingLenSqr   = 1e-16
)

// Convex is any shape with a world-space support mapping
type Convex interface {
	// Support returns the point of the shape furthest along direction
	Support(direction mgl64.Vec3) mgl64.Vec3
	// Centroid returns a point inside the shape, used to seed the search
	Centroid() mgl64.Vec3
}

// Simplex holds 1 to 4 points of the Minkowski difference, the most recent last
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) set(points ...mgl64.Vec3) {
	s.Count = copy(s.Points[:], points)
}

// SimplexPool recycles simplexes across concurrent queries
var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// MinkowskiSupport returns the support point of A - B along direction:
// furthest(A, direction) - furthest(B, -direction).
func MinkowskiSupport(a, b Convex, direction mgl64.Vec3) mgl64.Vec3 {
	return a.Support(direction).Sub(b.Support(direction.Mul(-1)))
}

// Intersects runs GJK with a pooled simplex
func Intersects(a, b Convex) bool {
	simplex := SimplexPool.Get().(*Simplex)
	simplex.Reset()
	hit := GJK(a, b, simplex)
	SimplexPool.Put(simplex)

	return hit
}

// GJK reports whether a and b overlap. Touching shapes count as overlapping.
// The simplex is modified in place.
func GJK(a, b Convex, simplex *Simplex) bool {
	direction := b.Centroid().Sub(a.Centroid())
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.set(MinkowskiSupport(a, b, direction))

	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < touchingLenSqr {
		return true
	}

	for i := 0; i < MaxIterations; i++ {
		point := MinkowskiSupport(a, b, direction)

		// The new point stops short of the origin: the origin is out of reach.
		// A point reaching it exactly means the shapes touch.
		if point.Dot(direction) < 0 {
			return false
		}

		simplex.Points[simplex.Count] = point
		simplex.Count++

		if refine(simplex, &direction) {
			return true
		}
	}

	// not converged, numerically ambiguous: keep the shapes
	return true
}

// refine reduces the simplex to the feature closest to the origin and
// updates the search direction. It returns true once the origin is enclosed.
func refine(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return segment(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

func segment(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b := simplex.Points[1], simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		simplex.set(a)
		*direction = ao
		return false
	}

	if ab.Dot(ao) <= 0 {
		simplex.set(a)
		*direction = ao
		return false
	}

	perp := ab.Cross(ao).Cross(ab)
	if perp.LenSqr() < 1e-8 {
		// origin on the segment
		return true
	}

	*direction = perp
	return false
}

func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c := simplex.Points[2], simplex.Points[1], simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	abc := ab.Cross(ac)

	if abc.LenSqr() < degenerateLenSqr {
		simplex.set(b, a)
		return segment(simplex, direction)
	}

	if ab.Cross(abc).Dot(ao) > 0 {
		simplex.set(b, a)
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	if abc.Cross(ac).Dot(ao) > 0 {
		simplex.set(c, a)
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		// keep the winding so that abc faces the origin
		simplex.set(b, c, a)
		*direction = abc.Mul(-1)
	}

	return false
}

func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[3]
	b := simplex.Points[2]
	c := simplex.Points[1]
	d := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	// face normals point away from the opposite vertex
	abc := outward(ab.Cross(ac), ad)
	acd := outward(ac.Cross(ad), ab)
	adb := outward(ad.Cross(ab), ac)

	if abc.LenSqr() < degenerateLenSqr || acd.LenSqr() < degenerateLenSqr || adb.LenSqr() < degenerateLenSqr {
		simplex.set(c, b, a)
		return triangle(simplex, direction)
	}

	switch {
	case abc.Dot(ao) > 0:
		simplex.set(c, b, a)
		return triangle(simplex, direction)
	case acd.Dot(ao) > 0:
		simplex.set(d, c, a)
		return triangle(simplex, direction)
	case adb.Dot(ao) > 0:
		simplex.set(b, d, a)
		return triangle(simplex, direction)
	}

	return true
}

func outward(normal, towardOpposite mgl64.Vec3) mgl64.Vec3 {
	if normal.Dot(towardOpposite) > 0 {
		return normal.Mul(-1)
	}
	return normal
}
