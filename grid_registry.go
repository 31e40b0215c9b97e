package culling

import (
	"math"
	"slices"

	"github.com/akmonengine/culling/bounds"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultGridCellSize = 16.0
	DefaultGridCells    = 4096

	maxCellCoordinate = 1 << 40
)

// CellKey - coordinates of a cell in 3D space
type CellKey struct {
	X, Y, Z int
}

// Cell - slots of the entries overlapping a cell
type Cell struct {
	slots []int
}

type gridEntry[K Key] struct {
	key     K
	info    bounds.BoundingInfo
	minCell CellKey
	maxCell CellKey
	// wide entries cover at least as many cells as the table holds, or have
	// an envelope out of integer cell range: they sit in every bucket
	wide bool
	live bool
}

// GridRegistry hashes entries into a uniform grid by their world envelope.
// Several cells may share a hash bucket, so candidates are always confirmed
// with BoundingInfo.IsInFrustum.
type GridRegistry[K Key] struct {
	cellSize float64
	cells    []Cell
	cellMask int

	entries []gridEntry[K]
	recycle []int
	slots   map[K]int
}

// NewGridRegistry creates a grid; numCells is rounded up to a power of two
func NewGridRegistry[K Key](cellSize float64, numCells int) *GridRegistry[K] {
	if cellSize <= 0 {
		cellSize = DefaultGridCellSize
	}
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].slots = make([]int, 0, 8)
	}

	return &GridRegistry[K]{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
		slots:    make(map[K]int),
	}
}

// nextPowerOfTwo - rounds up to the next power of two
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Add inserts the entry in every cell its world envelope covers
func (g *GridRegistry[K]) Add(key K, info *bounds.BoundingInfo) {
	g.Remove(key)

	aabb := info.BoundingBox.AABB()
	e := gridEntry[K]{
		key:  key,
		info: *info,
		wide: true,
		live: true,
	}
	if g.inCellRange(aabb.Min) && g.inCellRange(aabb.Max) {
		e.minCell = g.worldToCell(aabb.Min)
		e.maxCell = g.worldToCell(aabb.Max)
		e.wide = cellSpan(e.minCell, e.maxCell) >= float64(len(g.cells))
	}

	var slot int
	if n := len(g.recycle); n > 0 {
		slot = g.recycle[n-1]
		g.recycle = g.recycle[:n-1]
		g.entries[slot] = e
	} else {
		slot = len(g.entries)
		g.entries = append(g.entries, e)
	}
	g.slots[key] = slot

	g.forEachEntryCell(&e, func(cellIdx int) {
		cell := &g.cells[cellIdx]
		// a bucket hit twice by the same entry keeps a single reference
		if slices.Contains(cell.slots, slot) {
			return
		}
		cell.slots = append(cell.slots, slot)
	})
}

// Remove takes the entry out of its cells and recycles its slot
func (g *GridRegistry[K]) Remove(key K) {
	slot, ok := g.slots[key]
	if !ok {
		return
	}

	e := &g.entries[slot]
	g.forEachEntryCell(e, func(cellIdx int) {
		cell := &g.cells[cellIdx]
		if i := slices.Index(cell.slots, slot); i >= 0 {
			cell.slots = slices.Delete(cell.slots, i, i+1)
		}
	})

	e.live = false
	delete(g.slots, key)
	g.recycle = append(g.recycle, slot)
}

// Len returns the number of live entries
func (g *GridRegistry[K]) Len() int {
	return len(g.slots)
}

// Query walks the cells under the envelope of the frustum and tests each
// candidate once with the plane tests.
func (g *GridRegistry[K]) Query(view *View, result []K) []K {
	if view.Hull == nil {
		return g.scanAll(view, result)
	}
	region := view.Hull.AABB()

	minCell := g.worldToCell(region.Min)
	maxCell := g.worldToCell(region.Max)

	// beyond the table size every bucket is visited anyway
	if cellSpan(minCell, maxCell) >= float64(len(g.cells)) {
		return g.scanAll(view, result)
	}

	seen := make(map[int]struct{})
	g.forEachCell(minCell, maxCell, func(cellIdx int) {
		for _, slot := range g.cells[cellIdx].slots {
			if _, ok := seen[slot]; ok {
				continue
			}
			seen[slot] = struct{}{}

			e := &g.entries[slot]
			if !e.wide && !cellsOverlap(e.minCell, e.maxCell, minCell, maxCell) {
				continue
			}
			if e.info.IsInFrustum(&view.Planes) {
				result = append(result, e.key)
			}
		}
	})

	return result
}

func (g *GridRegistry[K]) scanAll(view *View, result []K) []K {
	for slot := range g.entries {
		e := &g.entries[slot]
		if e.live && e.info.IsInFrustum(&view.Planes) {
			result = append(result, e.key)
		}
	}
	return result
}

func (g *GridRegistry[K]) forEachCell(minCell, maxCell CellKey, fn func(cellIdx int)) {
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(g.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

// forEachEntryCell visits the buckets of e, each bucket once for wide entries
func (g *GridRegistry[K]) forEachEntryCell(e *gridEntry[K], fn func(cellIdx int)) {
	if e.wide {
		for cellIdx := range g.cells {
			fn(cellIdx)
		}
		return
	}
	g.forEachCell(e.minCell, e.maxCell, fn)
}

// cellSpan returns the number of cells between two corners, as a float so
// that huge envelopes do not overflow
func cellSpan(minCell, maxCell CellKey) float64 {
	return float64(maxCell.X-minCell.X+1) * float64(maxCell.Y-minCell.Y+1) * float64(maxCell.Z-minCell.Z+1)
}

// inCellRange reports whether pos converts to integer cell coordinates
func (g *GridRegistry[K]) inCellRange(pos mgl64.Vec3) bool {
	for i := range pos {
		c := pos[i] / g.cellSize
		if math.IsNaN(c) || math.Abs(c) > maxCellCoordinate {
			return false
		}
	}
	return true
}

func cellsOverlap(aMin, aMax, bMin, bMax CellKey) bool {
	return aMin.X <= bMax.X && aMax.X >= bMin.X &&
		aMin.Y <= bMax.Y && aMax.Y >= bMin.Y &&
		aMin.Z <= bMax.Z && aMax.Z >= bMin.Z
}

// worldToCell - converts a world position to cell coordinates
func (g *GridRegistry[K]) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / g.cellSize)),
		Y: int(math.Floor(pos.Y() / g.cellSize)),
		Z: int(math.Floor(pos.Z() / g.cellSize)),
	}
}

// hashCell - hashes a cell to an index in the table
func (g *GridRegistry[K]) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & g.cellMask
}
