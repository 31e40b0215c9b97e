package culling

import (
	"github.com/akmonengine/culling/bounds"
	"golang.org/x/exp/constraints"
)

// BoundingKey identifies a registered object. A key is unique among the live
// entries of one registry and may be reused once removed.
type BoundingKey uint64

// Key is the constraint on registry keys: the array registry keeps them sorted
type Key interface {
	constraints.Ordered
}

// View is everything a registry may need to answer a visibility query for
// one camera and one frame.
type View struct {
	Camera string
	Planes bounds.FrustumPlanes
	Hull   *bounds.ConvexPolyhedron
}

// Registry stores the bounds of live objects and answers frustum queries.
//
// Add and Remove must not run concurrently with anything else on the same
// registry. Query is read-only and may run concurrently for several views.
type Registry[K Key] interface {
	// Add registers info under key, replacing a live entry with the same key
	Add(key K, info *bounds.BoundingInfo)
	// Remove forgets key, unknown keys are ignored
	Remove(key K)
	// Query appends the keys of potentially visible objects to result
	Query(view *View, result []K) []K
	// Len returns the number of live entries
	Len() int
}

// Strategy names a Registry implementation
type Strategy int

const (
	// StrategyArray scans every entry with the plane tests
	StrategyArray Strategy = iota
	// StrategyOctree queries a loose octree then runs an exact hull/OBB test
	StrategyOctree
	// StrategyGrid hashes entries into a uniform grid then runs the plane tests
	StrategyGrid
)

func (s Strategy) String() string {
	switch s {
	case StrategyArray:
		return "array"
	case StrategyOctree:
		return "octree"
	case StrategyGrid:
		return "grid"
	}
	return "unknown"
}

// NewRegistry builds the registry selected by config.Strategy
func NewRegistry[K Key](config Config) Registry[K] {
	switch config.Strategy {
	case StrategyOctree:
		return NewOctreeRegistry[K](config.Octree, config.Narrowphase)
	case StrategyGrid:
		return NewGridRegistry[K](config.GridCellSize, config.GridCells)
	default:
		return NewArrayRegistry[K]()
	}
}
