package culling

import (
	"github.com/akmonengine/culling/bounds"
	"github.com/akmonengine/culling/gjk"
	"github.com/akmonengine/culling/octree"
)

// Narrowphase selects the exact hull/OBB test of the octree registry
type Narrowphase int

const (
	// NarrowphaseSAT uses the separating axis test
	NarrowphaseSAT Narrowphase = iota
	// NarrowphaseGJK uses GJK on the support mappings
	NarrowphaseGJK
)

func (n Narrowphase) String() string {
	switch n {
	case NarrowphaseSAT:
		return "sat"
	case NarrowphaseGJK:
		return "gjk"
	}
	return "unknown"
}

// OctreeRegistry keys oriented boxes in a loose octree. The octree prunes
// with axis-aligned envelopes, candidates are then tested exactly against
// the frustum hull.
type OctreeRegistry[K Key] struct {
	tree        *octree.Tree[K, bounds.OBB]
	narrowphase Narrowphase
}

func NewOctreeRegistry[K Key](config octree.Config, narrowphase Narrowphase) *OctreeRegistry[K] {
	return &OctreeRegistry[K]{
		tree:        octree.New[K, bounds.OBB](config),
		narrowphase: narrowphase,
	}
}

// FitOBB returns the oriented box registered for info. The cached world axes
// of info are used when they form an orthonormal frame, which gives the exact
// box; sheared transforms fall back to a principal axis fit. Either way the
// extents are measured over the 8 corners, so the box is always enclosed.
func FitOBB(info *bounds.BoundingInfo) bounds.OBB {
	corners := info.Corners()
	if axes := info.Directions(); bounds.IsOrthonormal(axes) {
		return bounds.FitOBBAxes(corners[:], axes)
	}

	return bounds.FitOBB(corners[:])
}

// Add registers the oriented box of info under key
func (r *OctreeRegistry[K]) Add(key K, info *bounds.BoundingInfo) {
	obb := FitOBB(info)
	r.tree.Add(key, obb.AABB(), obb)
}

// Remove deletes key from the tree
func (r *OctreeRegistry[K]) Remove(key K) {
	r.tree.Remove(key)
}

// Len returns the number of live entries
func (r *OctreeRegistry[K]) Len() int {
	return r.tree.Len()
}

// CheckBoundingsOfTree appends the keys whose oriented box intersects the
// hull. The hull's envelope drives the octree range query.
func (r *OctreeRegistry[K]) CheckBoundingsOfTree(hull *bounds.ConvexPolyhedron, result []K) []K {
	r.tree.Query(hull.AABB(), bounds.AABB.OverlapsHalfOpen, func(key K, _ bounds.AABB, obb bounds.OBB) {
		if r.intersects(hull, obb) {
			result = append(result, key)
		}
	})

	return result
}

func (r *OctreeRegistry[K]) intersects(hull *bounds.ConvexPolyhedron, obb bounds.OBB) bool {
	if r.narrowphase == NarrowphaseGJK {
		return gjk.Intersects(hull, obb)
	}
	return hull.IntersectsOBB(obb)
}

// Query runs CheckBoundingsOfTree with the hull of view
func (r *OctreeRegistry[K]) Query(view *View, result []K) []K {
	if view.Hull == nil {
		return result
	}
	return r.CheckBoundingsOfTree(view.Hull, result)
}
