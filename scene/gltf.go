// Package scene turns glTF documents into objects a Culler can register:
// one object per mesh node, with the local bounds of its POSITION data and
// the world matrix composed along the node hierarchy.
package scene

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
)

// Object is a mesh instance placed in the world
type Object struct {
	Name    string
	Minimum mgl64.Vec3
	Maximum mgl64.Vec3
	World   mgl64.Mat4
}

// Load opens a .gltf or .glb file
func Load(path string) ([]Object, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	return FromDocument(doc)
}

// FromDocument walks the default scene, or every scene when none is set
func FromDocument(doc *gltf.Document) ([]Object, error) {
	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	default:
		for _, s := range doc.Scenes {
			roots = append(roots, s.Nodes...)
		}
	}

	var objects []Object
	visited := make(map[int]bool)
	for _, root := range roots {
		var err error
		objects, err = walk(doc, root, mgl64.Ident4(), visited, objects)
		if err != nil {
			return nil, err
		}
	}

	return objects, nil
}

func walk(doc *gltf.Document, nodeIdx int, parent mgl64.Mat4, visited map[int]bool, objects []Object) ([]Object, error) {
	if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
		return nil, fmt.Errorf("node %d out of range", nodeIdx)
	}
	if visited[nodeIdx] {
		return nil, fmt.Errorf("node %d: cycle in node hierarchy", nodeIdx)
	}
	visited[nodeIdx] = true
	defer delete(visited, nodeIdx)

	node := doc.Nodes[nodeIdx]
	world := parent.Mul4(LocalMatrix(node))

	if node.Mesh != nil {
		min, max, ok, err := meshBounds(doc, *node.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", node.Name, err)
		}
		if ok {
			objects = append(objects, Object{
				Name:    node.Name,
				Minimum: min,
				Maximum: max,
				World:   world,
			})
		}
	}

	for _, child := range node.Children {
		var err error
		objects, err = walk(doc, child, world, visited, objects)
		if err != nil {
			return nil, err
		}
	}

	return objects, nil
}

// LocalMatrix returns the node matrix, or T*R*S when no matrix is given.
// Zero rotation and zero scale are the unset values and read as identity.
func LocalMatrix(node *gltf.Node) mgl64.Mat4 {
	m := mgl64.Mat4(node.Matrix)
	if m != (mgl64.Mat4{}) && m != mgl64.Ident4() {
		return m
	}

	t := node.Translation
	r := node.Rotation
	s := node.Scale

	rotation := mgl64.QuatIdent()
	if r != ([4]float64{}) {
		rotation = mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize()
	}
	if s == ([3]float64{}) {
		s = [3]float64{1, 1, 1}
	}

	return mgl64.Translate3D(t[0], t[1], t[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

// meshBounds merges the POSITION bounds of the primitives of a mesh
func meshBounds(doc *gltf.Document, meshIdx int) (mgl64.Vec3, mgl64.Vec3, bool, error) {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return mgl64.Vec3{}, mgl64.Vec3{}, false, fmt.Errorf("mesh %d out of range", meshIdx)
	}

	min := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	found := false

	for _, prim := range doc.Meshes[meshIdx].Primitives {
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		if posIdx < 0 || posIdx >= len(doc.Accessors) {
			return min, max, false, fmt.Errorf("accessor %d out of range", posIdx)
		}

		pMin, pMax, err := accessorBounds(doc, doc.Accessors[posIdx])
		if err != nil {
			return min, max, false, fmt.Errorf("read positions: %w", err)
		}
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], pMin[i])
			max[i] = math.Max(max[i], pMax[i])
		}
		found = true
	}

	return min, max, found, nil
}

// accessorBounds uses the min/max declared by the accessor, which glTF
// requires for POSITION, and scans embedded float data otherwise.
func accessorBounds(doc *gltf.Document, accessor *gltf.Accessor) (mgl64.Vec3, mgl64.Vec3, error) {
	if accessor.Type != gltf.AccessorVec3 {
		return mgl64.Vec3{}, mgl64.Vec3{}, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if len(accessor.Min) == 3 && len(accessor.Max) == 3 {
		return mgl64.Vec3{accessor.Min[0], accessor.Min[1], accessor.Min[2]},
			mgl64.Vec3{accessor.Max[0], accessor.Max[1], accessor.Max[2]}, nil
	}

	points, err := readVec3Accessor(doc, accessor)
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, err
	}
	if len(points) == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}, fmt.Errorf("empty accessor")
	}

	min, max := points[0], points[0]
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], p[i])
			max[i] = math.Max(max[i], p[i])
		}
	}

	return min, max, nil
}

// readVec3Accessor reads float VEC3 data from an embedded buffer
func readVec3Accessor(doc *gltf.Document, accessor *gltf.Accessor) ([]mgl64.Vec3, error) {
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", accessor.ComponentType)
	}
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}

	if *accessor.BufferView < 0 || *accessor.BufferView >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer < 0 || bufferView.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bufferView.Buffer)
	}
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = 12
	}

	result := make([]mgl64.Vec3, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+12 > len(buffer.Data) {
			return nil, fmt.Errorf("accessor overruns buffer at element %d", i)
		}
		for j := range 3 {
			bits := binary.LittleEndian.Uint32(buffer.Data[offset+j*4:])
			result[i][j] = float64(math.Float32frombits(bits))
		}
	}

	return result, nil
}
