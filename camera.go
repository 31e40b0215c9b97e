package culling

import (
	"fmt"
	"math"

	"github.com/akmonengine/culling/bounds"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultFov  = 0.75
	DefaultMinZ = 0.1
	DefaultMaxZ = 1000.0

	// homogeneous w under which a frustum corner is considered at infinity
	wTolerance = 1e-12
)

// Camera holds the parameters the frustum is derived from. The viewport is
// (left, bottom, right, top) in normalized screen units.
type Camera struct {
	Name       string
	Fov        float64
	Viewport   mgl64.Vec4
	MinZ       float64
	MaxZ       float64
	View       mgl64.Mat4
	Projection mgl64.Mat4
}

func NewCamera(name string) *Camera {
	return &Camera{
		Name:     name,
		Fov:      DefaultFov,
		Viewport: mgl64.Vec4{0, 0, 1, 1},
		MinZ:     DefaultMinZ,
		MaxZ:     DefaultMaxZ,
		View:     mgl64.Ident4(),
	}
}

func (c *Camera) Aspect() float64 {
	return (c.Viewport[2] - c.Viewport[0]) / (c.Viewport[3] - c.Viewport[1])
}

// LookAt sets the view matrix
func (c *Camera) LookAt(eye, target, up mgl64.Vec3) {
	c.View = mgl64.LookAtV(eye, target, up)
}

// ProjectionMatrix returns Projection, or a perspective matrix built from
// Fov, Aspect, MinZ and MaxZ when Projection was never set.
func (c *Camera) ProjectionMatrix() mgl64.Mat4 {
	if c.Projection == (mgl64.Mat4{}) {
		return mgl64.Perspective(c.Fov, c.Aspect(), c.MinZ, c.MaxZ)
	}
	return c.Projection
}

func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.ProjectionMatrix().Mul4(c.View)
}

// Planes extracts the six frustum planes of the camera
func (c *Camera) Planes() bounds.FrustumPlanes {
	return bounds.FromTransformMatrix(c.ViewProjection())
}

// ndcCorners order is relied upon by frustumTriangles
var ndcCorners = [8]mgl64.Vec3{
	{1, 1, 1},
	{1, 1, -1},
	{-1, 1, -1},
	{-1, 1, 1},
	{1, -1, 1},
	{1, -1, -1},
	{-1, -1, -1},
	{-1, -1, 1},
}

var frustumTriangles = [12][3]int{
	{0, 1, 2}, {2, 3, 0},
	{4, 5, 6}, {6, 7, 4},
	{0, 1, 4}, {4, 5, 1},
	{1, 2, 5}, {5, 6, 2},
	{2, 3, 6}, {6, 7, 3},
	{3, 0, 7}, {7, 4, 0},
}

// ComputeFrustum returns the world space hull of the camera frustum: the NDC
// cube mapped back through the inverse view-projection matrix.
func ComputeFrustum(cam *Camera) (*bounds.ConvexPolyhedron, error) {
	m := cam.ViewProjection()
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("camera %q: non-finite view-projection matrix: %w", cam.Name, ErrFrustumConstructionFailed)
		}
	}

	det := m.Det()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return nil, fmt.Errorf("camera %q: singular view-projection matrix: %w", cam.Name, ErrFrustumConstructionFailed)
	}
	inv := m.Inv()

	points := make([]mgl64.Vec3, len(ndcCorners))
	for i, corner := range ndcCorners {
		p := inv.Mul4x1(corner.Vec4(1))
		if math.Abs(p[3]) < wTolerance {
			return nil, fmt.Errorf("camera %q: frustum corner %d at infinity: %w", cam.Name, i, ErrFrustumConstructionFailed)
		}
		points[i] = p.Vec3().Mul(1 / p[3])
		for _, c := range points[i] {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, fmt.Errorf("camera %q: non-finite frustum corner %d: %w", cam.Name, i, ErrFrustumConstructionFailed)
			}
		}
	}

	triangles := make([][3]int, len(frustumTriangles))
	copy(triangles, frustumTriangles[:])

	hull, err := bounds.NewConvexPolyhedron(points, triangles)
	if err != nil {
		return nil, fmt.Errorf("camera %q: %w: %w", cam.Name, ErrFrustumConstructionFailed, err)
	}

	return hull, nil
}

// NewView computes the planes and the hull of cam for one frame
func NewView(cam *Camera) (*View, error) {
	hull, err := ComputeFrustum(cam)
	if err != nil {
		return nil, err
	}

	return &View{
		Camera: cam.Name,
		Planes: cam.Planes(),
		Hull:   hull,
	}, nil
}
