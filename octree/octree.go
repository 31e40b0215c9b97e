// Package octree implements a loose octree keyed by comparable identifiers.
//
// Each node covers a cubic region; its loose bounds are that region scaled by
// LooseFactor around the node center. An entry descends into a child as long
// as its box fits inside the child's loose bounds, so an entry is stored in
// exactly one node and removal by key is O(1) through the key index.
// Entries that do not fit the root stay at the root.
package octree

import (
	"github.com/akmonengine/culling/bounds"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultMaxDepth     = 8
	DefaultLooseFactor  = 2.0
	DefaultSplitTrigger = 8
)

// Config sizes the tree
type Config struct {
	// Bounds is the region covered by the root node, it is made cubic
	Bounds bounds.AABB
	// MaxDepth limits the subdivision, the root has depth 0
	MaxDepth int
	// LooseFactor scales node bounds, values below 1 are raised to 1
	LooseFactor float64
	// SplitTrigger is the number of entries a leaf holds before children are
	// created for it
	SplitTrigger int
}

// DefaultConfig covers a 2 km cube centered on the origin
func DefaultConfig() Config {
	return Config{
		Bounds: bounds.AABB{
			Min: mgl64.Vec3{-1024, -1024, -1024},
			Max: mgl64.Vec3{1024, 1024, 1024},
		},
		MaxDepth:     DefaultMaxDepth,
		LooseFactor:  DefaultLooseFactor,
		SplitTrigger: DefaultSplitTrigger,
	}
}

// Overlap decides whether an entry box matches the query box
type Overlap func(query, entry bounds.AABB) bool

// Visitor receives each entry matched by a query
type Visitor[K comparable, V any] func(key K, box bounds.AABB, value V)

type entry[K comparable, V any] struct {
	key   K
	box   bounds.AABB
	value V
}

type node[K comparable, V any] struct {
	center   mgl64.Vec3
	half     float64
	loose    bounds.AABB
	depth    int
	parent   *node[K, V]
	children [8]*node[K, V]
	entries  map[K]*entry[K, V]
	// count of entries in this subtree
	count int
	// set once the node has split, children are then created on demand
	subdivided bool
}

// Tree is a loose octree. It is not safe for concurrent mutation; concurrent
// queries without mutation are safe.
type Tree[K comparable, V any] struct {
	config Config
	root   *node[K, V]
	index  map[K]*node[K, V]
	splits int
}

// New creates an empty tree
func New[K comparable, V any](config Config) *Tree[K, V] {
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	if config.LooseFactor < 1 {
		config.LooseFactor = 1
	}
	if config.SplitTrigger <= 0 {
		config.SplitTrigger = DefaultSplitTrigger
	}

	size := config.Bounds.Max.Sub(config.Bounds.Min)
	half := max(size.X(), size.Y(), size.Z()) * 0.5
	if half <= 0 {
		half = 1
	}

	t := &Tree[K, V]{
		config: config,
		index:  make(map[K]*node[K, V]),
	}
	t.root = t.newNode(config.Bounds.Center(), half, 0, nil)

	return t
}

func (t *Tree[K, V]) newNode(center mgl64.Vec3, half float64, depth int, parent *node[K, V]) *node[K, V] {
	r := half * t.config.LooseFactor
	return &node[K, V]{
		center: center,
		half:   half,
		loose: bounds.AABB{
			Min: center.Sub(mgl64.Vec3{r, r, r}),
			Max: center.Add(mgl64.Vec3{r, r, r}),
		},
		depth:   depth,
		parent:  parent,
		entries: make(map[K]*entry[K, V]),
	}
}

// Len returns the number of entries
func (t *Tree[K, V]) Len() int {
	return len(t.index)
}

// Has reports whether key is stored
func (t *Tree[K, V]) Has(key K) bool {
	_, ok := t.index[key]
	return ok
}

// Add inserts an entry. A key already present is replaced.
func (t *Tree[K, V]) Add(key K, box bounds.AABB, value V) {
	t.Remove(key)

	e := &entry[K, V]{key: key, box: box, value: value}
	n := t.root
	for {
		n.count++
		child := t.childFor(n, box)
		if child == nil {
			break
		}
		n = child
	}

	n.entries[key] = e
	t.index[key] = n

	if len(n.entries) > t.config.SplitTrigger && n.depth < t.config.MaxDepth && !n.subdivided {
		t.split(n)
	}
}

// childFor returns the child whose loose bounds contain box, creating it if
// the node is subdivided. It returns nil when box stays at n.
func (t *Tree[K, V]) childFor(n *node[K, V], box bounds.AABB) *node[K, V] {
	if n.depth >= t.config.MaxDepth || !n.subdivided {
		return nil
	}

	octant := octantOf(n.center, box.Center())
	if child := n.children[octant]; child != nil {
		if !child.loose.Contains(box) {
			return nil
		}
		return child
	}

	if !t.childLoose(n, octant).Contains(box) {
		return nil
	}
	n.children[octant] = t.newChild(n, octant)

	return n.children[octant]
}

// childLoose returns the loose bounds the child of n at octant would have
func (t *Tree[K, V]) childLoose(n *node[K, V], octant int) bounds.AABB {
	center, half := childCenter(n, octant)
	r := half * t.config.LooseFactor

	return bounds.AABB{
		Min: center.Sub(mgl64.Vec3{r, r, r}),
		Max: center.Add(mgl64.Vec3{r, r, r}),
	}
}

func (t *Tree[K, V]) newChild(n *node[K, V], octant int) *node[K, V] {
	center, half := childCenter(n, octant)
	return t.newNode(center, half, n.depth+1, n)
}

func childCenter[K comparable, V any](n *node[K, V], octant int) (mgl64.Vec3, float64) {
	half := n.half * 0.5
	offset := mgl64.Vec3{-half, -half, -half}
	for axis := 0; axis < 3; axis++ {
		if octant&(1<<axis) != 0 {
			offset[axis] = half
		}
	}

	return n.center.Add(offset), half
}

// split marks n as subdivided and pushes down the entries that fit a child.
// Entries straddling the children stay at n; a node splits only once.
func (t *Tree[K, V]) split(n *node[K, V]) {
	n.subdivided = true
	t.splits++

	for key, e := range n.entries {
		child := t.childFor(n, e.box)
		if child == nil {
			continue
		}

		delete(n.entries, key)
		child.entries[key] = e
		child.count++
		t.index[key] = child
	}
}

// Remove deletes the entry of key. Unknown keys are ignored.
func (t *Tree[K, V]) Remove(key K) bool {
	n, ok := t.index[key]
	if !ok {
		return false
	}

	delete(n.entries, key)
	delete(t.index, key)
	for p := n; p != nil; p = p.parent {
		p.count--
	}

	// detach the highest empty node below the root, its whole subtree is empty
	for n.parent != nil && n.parent != t.root && n.parent.count == 0 {
		n = n.parent
	}
	if n.parent != nil && n.count == 0 {
		n.parent.detach(n)
	}

	return true
}

func (n *node[K, V]) detach(child *node[K, V]) {
	for i := range n.children {
		if n.children[i] == child {
			n.children[i] = nil
			return
		}
	}
}

// Query visits every entry whose box matches the query box according to
// overlap. Nodes are skipped when their loose bounds miss the query.
func (t *Tree[K, V]) Query(query bounds.AABB, overlap Overlap, visit Visitor[K, V]) {
	t.root.query(query, overlap, visit, true)
}

func (n *node[K, V]) query(query bounds.AABB, overlap Overlap, visit Visitor[K, V], isRoot bool) {
	if n.count == 0 {
		return
	}
	// the root also holds entries outside its loose bounds
	if !isRoot && !n.loose.Overlaps(query) {
		return
	}

	for _, e := range n.entries {
		if overlap(query, e.box) {
			visit(e.key, e.box, e.value)
		}
	}

	for _, child := range n.children {
		if child != nil {
			child.query(query, overlap, visit, false)
		}
	}
}

// Depth returns the depth of the node holding key, or -1
func (t *Tree[K, V]) Depth(key K) int {
	n, ok := t.index[key]
	if !ok {
		return -1
	}
	return n.depth
}

// Splits returns how many nodes have been subdivided since creation
func (t *Tree[K, V]) Splits() int {
	return t.splits
}

// Nodes returns the number of allocated nodes, the root included
func (t *Tree[K, V]) Nodes() int {
	return t.root.nodes()
}

func (n *node[K, V]) nodes() int {
	total := 1
	for _, child := range n.children {
		if child != nil {
			total += child.nodes()
		}
	}
	return total
}

func octantOf(center, p mgl64.Vec3) int {
	octant := 0
	for axis := 0; axis < 3; axis++ {
		if p[axis] >= center[axis] {
			octant |= 1 << axis
		}
	}
	return octant
}
