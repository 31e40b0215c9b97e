package gjk

import (
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/culling/bounds"
	"github.com/go-gl/mathgl/mgl64"
)

var unitAxes = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func createBox(center, halfExtents mgl64.Vec3) bounds.OBB {
	return bounds.OBB{Center: center, Axes: unitAxes, HalfExtents: halfExtents}
}

func createRotatedBox(center, halfExtents mgl64.Vec3, angle float64, axis mgl64.Vec3) bounds.OBB {
	rotation := mgl64.HomogRotate3D(angle, axis.Normalize())
	var axes [3]mgl64.Vec3
	for i := range axes {
		axes[i] = rotation.Col(i).Vec3()
	}
	return bounds.OBB{Center: center, Axes: axes, HalfExtents: halfExtents}
}

// createHull returns a frustum-like hull: a box whose +z face is scaled by
// spread around the z axis.
func createHull(t testing.TB, center mgl64.Vec3, half, spread float64) *bounds.ConvexPolyhedron {
	t.Helper()
	points := []mgl64.Vec3{
		{half * spread, half * spread, half}, {half, half, -half}, {-half, half, -half}, {-half * spread, half * spread, half},
		{half * spread, -half * spread, half}, {half, -half, -half}, {-half, -half, -half}, {-half * spread, -half * spread, half},
	}
	for i := range points {
		points[i] = points[i].Add(center)
	}
	triangles := [][3]int{
		{0, 1, 2}, {2, 3, 0},
		{4, 5, 6}, {6, 7, 4},
		{0, 1, 4}, {4, 5, 1},
		{1, 2, 5}, {5, 6, 2},
		{2, 3, 6}, {6, 7, 3},
		{3, 0, 7}, {7, 4, 0},
	}
	hull, err := bounds.NewConvexPolyhedron(points, triangles)
	if err != nil {
		t.Fatalf("NewConvexPolyhedron: %v", err)
	}
	return hull
}

func TestMinkowskiSupport(t *testing.T) {
	a := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := createBox(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{1, 2, 3})

	tests := []struct {
		name      string
		direction mgl64.Vec3
		expected  mgl64.Vec3
	}{
		// furthest(a, +x) - furthest(b, -x)
		{"+x", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{-3, -1, -2}},
		{"-x", mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{-7, -1, -2}},
		{"diagonal", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{-3, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinkowskiSupport(a, b, tt.direction)
			if !got.ApproxEqualThreshold(tt.expected, 1e-9) {
				t.Errorf("MinkowskiSupport(%v) = %v, want %v", tt.direction, got, tt.expected)
			}
		})
	}
}

func TestGJK_Boxes(t *testing.T) {
	tests := []struct {
		name     string
		a, b     bounds.OBB
		expected bool
	}{
		{"overlapping", createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), createBox(mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{1, 1, 1}), true},
		{"same center", createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 2, 0.5}), true},
		{"contained", createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 5, 5}), createBox(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0.1, 0.1, 0.1}), true},
		{"touching face", createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), createBox(mgl64.Vec3{2, 0.5, 0.25}, mgl64.Vec3{1, 1, 1}), true},
		{"touching edge", createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), createBox(mgl64.Vec3{2, 2, 0.5}, mgl64.Vec3{1, 1, 1}), true},
		{"separated x", createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), createBox(mgl64.Vec3{3, 0, 0}, mgl64.Vec3{1, 1, 1}), false},
		{"separated diagonal", createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), createBox(mgl64.Vec3{2.5, 2.5, 2.5}, mgl64.Vec3{1, 1, 1}), false},
		{"rotated overlapping", createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), createRotatedBox(mgl64.Vec3{2.3, 0, 0}, mgl64.Vec3{1, 1, 1}, math.Pi/4, mgl64.Vec3{0, 0, 1}), true},
		{"rotated separated", createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}), createRotatedBox(mgl64.Vec3{2.5, 0, 0}, mgl64.Vec3{1, 1, 1}, math.Pi/4, mgl64.Vec3{0, 0, 1}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var simplex Simplex
			if got := GJK(tt.a, tt.b, &simplex); got != tt.expected {
				t.Errorf("GJK = %v, want %v", got, tt.expected)
			}
			if got := Intersects(tt.b, tt.a); got != tt.expected {
				t.Errorf("Intersects (swapped) = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGJK_HullAndBox(t *testing.T) {
	hull := createHull(t, mgl64.Vec3{0, 0, 0}, 1, 3)

	tests := []struct {
		name     string
		box      bounds.OBB
		expected bool
	}{
		{"inside", createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.2, 0.2, 0.2}), true},
		// the wide end reaches x = 3 at z = 1
		{"near wide end", createBox(mgl64.Vec3{2.5, 0, 0.9}, mgl64.Vec3{0.2, 0.2, 0.05}), true},
		{"near narrow end", createBox(mgl64.Vec3{2.5, 0, -0.9}, mgl64.Vec3{0.2, 0.2, 0.05}), false},
		{"behind", createBox(mgl64.Vec3{0, 0, -3}, mgl64.Vec3{1, 1, 1}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intersects(hull, tt.box); got != tt.expected {
				t.Errorf("Intersects = %v, want %v", got, tt.expected)
			}
			if got := hull.IntersectsOBB(tt.box); got != tt.expected {
				t.Errorf("IntersectsOBB = %v, want %v", got, tt.expected)
			}
		})
	}
}

func grow(obb bounds.OBB, margin float64) bounds.OBB {
	obb.HalfExtents = obb.HalfExtents.Add(mgl64.Vec3{margin, margin, margin})
	return obb
}

// GJK and the separating axis test must agree away from contact
func TestGJK_AgreesWithSAT(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	hull := createHull(t, mgl64.Vec3{0, 0, 0}, 2, 2.5)
	const margin = 1e-3

	compared := 0
	for i := 0; i < 500; i++ {
		box := createRotatedBox(
			mgl64.Vec3{(rng.Float64()*2 - 1) * 8, (rng.Float64()*2 - 1) * 8, (rng.Float64()*2 - 1) * 8},
			mgl64.Vec3{0.1 + rng.Float64()*2, 0.1 + rng.Float64()*2, 0.1 + rng.Float64()*2},
			rng.Float64()*2*math.Pi,
			mgl64.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() + 0.1},
		)

		shrunk := box
		shrunk.HalfExtents = box.HalfExtents.Sub(mgl64.Vec3{margin, margin, margin})
		inner, outer := hull.IntersectsOBB(shrunk), hull.IntersectsOBB(grow(box, margin))
		if inner != outer {
			// within margin of contact
			continue
		}
		compared++

		if got := Intersects(hull, box); got != inner {
			t.Fatalf("case %d: GJK = %v, SAT = %v for %+v", i, got, inner, box)
		}
	}

	if compared < 400 {
		t.Errorf("only %d cases compared", compared)
	}
}

func TestSimplexPool(t *testing.T) {
	simplex := SimplexPool.Get().(*Simplex)
	simplex.set(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})
	if simplex.Count != 2 {
		t.Errorf("Count = %d, want 2", simplex.Count)
	}
	simplex.Reset()
	if simplex.Count != 0 {
		t.Errorf("Count after Reset = %d", simplex.Count)
	}
	SimplexPool.Put(simplex)
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name          string
		a, b          mgl64.Vec3
		contains      bool
		expectedCount int
	}{
		{"origin between", mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0}, true, 2},
		{"origin beside", mgl64.Vec3{-1, 1, 0}, mgl64.Vec3{1, 1, 0}, false, 2},
		{"origin behind newest", mgl64.Vec3{2, 0, 0}, mgl64.Vec3{1, 0, 0}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var simplex Simplex
			simplex.set(tt.a, tt.b)
			var direction mgl64.Vec3
			if got := segment(&simplex, &direction); got != tt.contains {
				t.Errorf("segment = %v, want %v", got, tt.contains)
			}
			if simplex.Count != tt.expectedCount {
				t.Errorf("Count = %d, want %d", simplex.Count, tt.expectedCount)
			}
		})
	}
}

func TestTetrahedron(t *testing.T) {
	var simplex Simplex
	simplex.set(
		mgl64.Vec3{1, -1, -1},
		mgl64.Vec3{-1, -1, -1},
		mgl64.Vec3{0, 1, -1},
		mgl64.Vec3{0, 0, 1},
	)
	var direction mgl64.Vec3
	if !tetrahedron(&simplex, &direction) {
		t.Error("tetrahedron around the origin not detected")
	}

	// same tetrahedron moved along +x, the newest point is (3, 0, 1)
	simplex.set(
		mgl64.Vec3{4, -1, -1},
		mgl64.Vec3{2, -1, -1},
		mgl64.Vec3{3, 1, -1},
		mgl64.Vec3{3, 0, 1},
	)
	if tetrahedron(&simplex, &direction) {
		t.Error("tetrahedron beside the origin reported as containing it")
	}
	if simplex.Count > 3 {
		t.Errorf("Count = %d, want at most 3", simplex.Count)
	}
	if direction.Dot(mgl64.Vec3{-3, 0, -1}) <= 0 {
		t.Errorf("direction %v should point toward the origin", direction)
	}
}

func BenchmarkGJK_HullAndBox(b *testing.B) {
	hull := createHull(b, mgl64.Vec3{0, 0, 0}, 2, 2.5)
	box := createRotatedBox(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1}, 0.5, mgl64.Vec3{1, 1, 0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Intersects(hull, box)
	}
}

func BenchmarkSAT_HullAndBox(b *testing.B) {
	hull := createHull(b, mgl64.Vec3{0, 0, 0}, 2, 2.5)
	box := createRotatedBox(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1}, 0.5, mgl64.Vec3{1, 1, 0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hull.IntersectsOBB(box)
	}
}
