package bounds

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	jacobiMaxSweeps = 32
	jacobiEpsilon   = 1e-12

	// orthonormalTolerance bounds |ai·aj| and ||ai|-1| for axes reused as-is
	orthonormalTolerance = 1e-6
)

// OBB is an oriented box: Axes are orthonormal, HalfExtents are measured
// along them from Center.
type OBB struct {
	Center      mgl64.Vec3
	Axes        [3]mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// FitOBB fits an oriented box around points using their principal axes:
// the eigenvectors of the covariance matrix. All points end up inside.
func FitOBB(points []mgl64.Vec3) OBB {
	if len(points) == 0 {
		return OBB{Axes: [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
	}

	return FitOBBAxes(points, principalAxes(points))
}

// FitOBBAxes fits an oriented box with the given orthonormal axes: the points
// are projected on each axis and the box spans the projected interval.
func FitOBBAxes(points []mgl64.Vec3, axes [3]mgl64.Vec3) OBB {
	obb := OBB{Axes: axes}
	if len(points) == 0 {
		return obb
	}

	var lo, hi [3]float64
	for i := 0; i < 3; i++ {
		lo[i] = math.MaxFloat64
		hi[i] = -math.MaxFloat64
	}
	for _, p := range points {
		for i := 0; i < 3; i++ {
			d := p.Dot(axes[i])
			lo[i] = math.Min(lo[i], d)
			hi[i] = math.Max(hi[i], d)
		}
	}

	for i := 0; i < 3; i++ {
		mid := (lo[i] + hi[i]) * 0.5
		obb.Center = obb.Center.Add(axes[i].Mul(mid))
		obb.HalfExtents[i] = (hi[i] - lo[i]) * 0.5
	}

	return obb
}

// IsOrthonormal reports whether the three axes can be used as a box frame
func IsOrthonormal(axes [3]mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(axes[i].Len()-1) > orthonormalTolerance {
			return false
		}
		for j := i + 1; j < 3; j++ {
			if math.Abs(axes[i].Dot(axes[j])) > orthonormalTolerance {
				return false
			}
		}
	}

	return true
}

// AABB returns the axis-aligned envelope of the box
func (o OBB) AABB() AABB {
	var r mgl64.Vec3
	for i := 0; i < 3; i++ {
		r[i] = math.Abs(o.Axes[0][i])*o.HalfExtents[0] +
			math.Abs(o.Axes[1][i])*o.HalfExtents[1] +
			math.Abs(o.Axes[2][i])*o.HalfExtents[2]
	}

	return AABB{Min: o.Center.Sub(r), Max: o.Center.Add(r)}
}

// Corners returns the 8 corners of the box
func (o OBB) Corners() [8]mgl64.Vec3 {
	var corners [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		c := o.Center
		for axis := 0; axis < 3; axis++ {
			sign := 1.0
			if i&(1<<axis) == 0 {
				sign = -1.0
			}
			c = c.Add(o.Axes[axis].Mul(sign * o.HalfExtents[axis]))
		}
		corners[i] = c
	}

	return corners
}

// ContainsPoint checks the point against the box with a small tolerance
func (o OBB) ContainsPoint(p mgl64.Vec3) bool {
	d := p.Sub(o.Center)
	for i := 0; i < 3; i++ {
		if math.Abs(d.Dot(o.Axes[i])) > o.HalfExtents[i]+1e-9 {
			return false
		}
	}

	return true
}

// Support returns the corner furthest along direction
func (o OBB) Support(direction mgl64.Vec3) mgl64.Vec3 {
	p := o.Center
	for i := 0; i < 3; i++ {
		if direction.Dot(o.Axes[i]) < 0 {
			p = p.Sub(o.Axes[i].Mul(o.HalfExtents[i]))
		} else {
			p = p.Add(o.Axes[i].Mul(o.HalfExtents[i]))
		}
	}

	return p
}

// Centroid returns the center of the box
func (o OBB) Centroid() mgl64.Vec3 {
	return o.Center
}

// project returns the interval covered by the box along axis
func (o OBB) project(axis mgl64.Vec3) (float64, float64) {
	c := o.Center.Dot(axis)
	r := math.Abs(o.Axes[0].Dot(axis))*o.HalfExtents[0] +
		math.Abs(o.Axes[1].Dot(axis))*o.HalfExtents[1] +
		math.Abs(o.Axes[2].Dot(axis))*o.HalfExtents[2]

	return c - r, c + r
}

// principalAxes returns the eigenvectors of the covariance of points
func principalAxes(points []mgl64.Vec3) [3]mgl64.Vec3 {
	var mean mgl64.Vec3
	for _, p := range points {
		mean = mean.Add(p)
	}
	mean = mean.Mul(1 / float64(len(points)))

	var cov mgl64.Mat3
	for _, p := range points {
		d := p.Sub(mean)
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				cov.Set(row, col, cov.At(row, col)+d[row]*d[col])
			}
		}
	}
	cov = cov.Mul(1 / float64(len(points)))

	v := jacobiEigenvectors(cov)

	axes := [3]mgl64.Vec3{v.Col(0), v.Col(1), v.Col(2)}
	for i := range axes {
		axes[i] = axes[i].Normalize()
	}

	return axes
}

// jacobiEigenvectors diagonalizes the symmetric matrix a with cyclic Jacobi
// rotations and returns the accumulated rotation, whose columns are the
// eigenvectors.
func jacobiEigenvectors(a mgl64.Mat3) mgl64.Mat3 {
	v := mgl64.Ident3()

	for sweep := 0; sweep < jacobiMaxSweeps; sweep++ {
		off := a.At(0, 1)*a.At(0, 1) + a.At(0, 2)*a.At(0, 2) + a.At(1, 2)*a.At(1, 2)
		if off < jacobiEpsilon*jacobiEpsilon {
			break
		}

		for p := 0; p < 2; p++ {
			for q := p + 1; q < 3; q++ {
				apq := a.At(p, q)
				if math.Abs(apq) < jacobiEpsilon {
					continue
				}

				theta := (a.At(q, q) - a.At(p, p)) / (2 * apq)
				t := 1 / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				if theta < 0 {
					t = -t
				}
				c := 1 / math.Sqrt(t*t+1)
				s := t * c

				// a = Jᵀ a J, v = v J with J the (p, q) rotation
				rot := mgl64.Ident3()
				rot.Set(p, p, c)
				rot.Set(q, q, c)
				rot.Set(p, q, s)
				rot.Set(q, p, -s)

				a = rot.Transpose().Mul3(a).Mul3(rot)
				v = v.Mul3(rot)
			}
		}
	}

	return v
}
