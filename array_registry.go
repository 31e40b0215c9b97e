package culling

import (
	"slices"

	"github.com/akmonengine/culling/bounds"
)

type keySlot[K Key] struct {
	key  K
	slot int
}

// ArrayRegistry stores BoundingInfo values in dense slots. Removed slots are
// recycled by later additions; the data of a removed slot stays in place
// until it is overwritten.
type ArrayRegistry[K Key] struct {
	recycle []int
	keys    []K
	live    []bool
	list    []bounds.BoundingInfo

	// sorted by key, for O(log n) lookups
	index []keySlot[K]
}

func NewArrayRegistry[K Key]() *ArrayRegistry[K] {
	return &ArrayRegistry[K]{}
}

func (r *ArrayRegistry[K]) find(key K) (int, bool) {
	return slices.BinarySearchFunc(r.index, key, func(ks keySlot[K], key K) int {
		switch {
		case ks.key < key:
			return -1
		case ks.key > key:
			return 1
		}
		return 0
	})
}

// Add copies info into a recycled slot, or a new one
func (r *ArrayRegistry[K]) Add(key K, info *bounds.BoundingInfo) {
	pos, found := r.find(key)
	if found {
		r.list[r.index[pos].slot] = *info
		return
	}

	var slot int
	if n := len(r.recycle); n > 0 {
		slot = r.recycle[n-1]
		r.recycle = r.recycle[:n-1]
		r.list[slot] = *info
		r.keys[slot] = key
		r.live[slot] = true
	} else {
		slot = len(r.list)
		r.list = append(r.list, *info)
		r.keys = append(r.keys, key)
		r.live = append(r.live, true)
	}

	r.index = slices.Insert(r.index, pos, keySlot[K]{key: key, slot: slot})
}

// Remove recycles the slot of key
func (r *ArrayRegistry[K]) Remove(key K) {
	pos, found := r.find(key)
	if !found {
		return
	}

	slot := r.index[pos].slot
	r.index = slices.Delete(r.index, pos, pos+1)
	r.live[slot] = false
	r.recycle = append(r.recycle, slot)
}

// Len returns the number of live entries
func (r *ArrayRegistry[K]) Len() int {
	return len(r.index)
}

// Get returns the stored info of key
func (r *ArrayRegistry[K]) Get(key K) (*bounds.BoundingInfo, bool) {
	pos, found := r.find(key)
	if !found {
		return nil, false
	}
	return &r.list[r.index[pos].slot], true
}

// CheckBoundings scans every live slot in slot order and appends the keys
// that pass BoundingInfo.IsInFrustum.
func (r *ArrayRegistry[K]) CheckBoundings(frustum *bounds.FrustumPlanes, result []K) []K {
	for slot := range r.list {
		if !r.live[slot] {
			continue
		}
		if r.list[slot].IsInFrustum(frustum) {
			result = append(result, r.keys[slot])
		}
	}

	return result
}

// Query runs CheckBoundings with the planes of view
func (r *ArrayRegistry[K]) Query(view *View, result []K) []K {
	return r.CheckBoundings(&view.Planes, result)
}
