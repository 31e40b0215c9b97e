package culling

import (
	"time"

	"github.com/akmonengine/culling/bounds"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

type object struct {
	key     BoundingKey
	minimum mgl64.Vec3
	maximum mgl64.Vec3
	world   mgl64.Mat4
	info    *bounds.BoundingInfo

	dirty   bool
	reset   bool
	removed bool
}

// CullResult is the outcome of one camera query
type CullResult struct {
	Camera string
	Keys   []BoundingKey
	Err    error
}

// Culler owns the bounds of a scene and answers visibility per camera.
// Objects changed through SetWorld, SetExtent or SetCullingStrategy are
// refreshed by the next Update, which must complete before culling.
type Culler struct {
	Registry Registry[BoundingKey]
	Workers  int
	Events   Events

	objects map[BoundingKey]*object
	dirty   []*object
	nextKey BoundingKey
	logger  logrus.FieldLogger
}

func NewCuller(config Config) *Culler {
	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Culler{
		Registry: NewRegistry[BoundingKey](config),
		Workers:  max(DEFAULT_WORKERS, config.Workers),
		Events:   NewEvents(),
		objects:  make(map[BoundingKey]*object),
		logger:   logger.WithField("strategy", config.Strategy.String()),
	}
}

// Len returns the number of objects
func (c *Culler) Len() int {
	return len(c.objects)
}

// AddObject registers an object with local bounds [min, max] placed by world
func (c *Culler) AddObject(min, max mgl64.Vec3, world mgl64.Mat4) BoundingKey {
	c.nextKey++
	o := &object{
		key:     c.nextKey,
		minimum: min,
		maximum: max,
		world:   world,
		info:    bounds.NewBoundingInfo(min, max, world),
	}
	c.objects[o.key] = o
	c.Registry.Add(o.key, o.info)

	return o.key
}

// Info returns the current bounds of key
func (c *Culler) Info(key BoundingKey) (*bounds.BoundingInfo, bool) {
	o, ok := c.objects[key]
	if !ok {
		return nil, false
	}
	return o.info, true
}

func (c *Culler) markDirty(o *object) {
	if !o.dirty {
		o.dirty = true
		c.dirty = append(c.dirty, o)
	}
}

// SetWorld changes the world matrix of key, false if key is unknown
func (c *Culler) SetWorld(key BoundingKey, world mgl64.Mat4) bool {
	o, ok := c.objects[key]
	if !ok {
		return false
	}
	o.world = world
	c.markDirty(o)

	return true
}

// SetExtent changes the local bounds of key, false if key is unknown
func (c *Culler) SetExtent(key BoundingKey, min, max mgl64.Vec3) bool {
	o, ok := c.objects[key]
	if !ok {
		return false
	}
	o.minimum, o.maximum = min, max
	o.reset = true
	c.markDirty(o)

	return true
}

func (c *Culler) SetCullingStrategy(key BoundingKey, strategy bounds.CullingStrategy) bool {
	o, ok := c.objects[key]
	if !ok {
		return false
	}
	o.info.CullingStrategy = strategy
	c.markDirty(o)

	return true
}

// RemoveObject forgets key. Unknown keys are ignored.
func (c *Culler) RemoveObject(key BoundingKey) {
	o, ok := c.objects[key]
	if !ok {
		return
	}

	o.removed = true
	delete(c.objects, key)
	c.Registry.Remove(key)
	c.Events.forget(key)
}

// Update refreshes the bounds of every dirty object in parallel, then
// registers them again.
func (c *Culler) Update() {
	if len(c.dirty) == 0 {
		return
	}

	start := time.Now()
	dirty := c.dirty[:0]
	for _, o := range c.dirty {
		if !o.removed {
			dirty = append(dirty, o)
		}
	}

	task(c.Workers, dirty, func(o *object) {
		if o.reset {
			o.info.Reset(o.minimum, o.maximum, o.world)
		} else {
			o.info.Update(o.world)
		}
	})

	// registries are not safe for concurrent mutation
	for _, o := range dirty {
		c.Registry.Add(o.key, o.info)
		o.dirty, o.reset = false, false
	}

	c.logger.WithFields(logrus.Fields{
		"updated":  len(dirty),
		"duration": time.Since(start),
	}).Debug("bounds updated")

	clear(c.dirty)
	c.dirty = c.dirty[:0]
}

// Cull returns the keys potentially visible to cam. An error wrapping
// ErrFrustumConstructionFailed means the camera has no usable frustum.
func (c *Culler) Cull(cam *Camera) ([]BoundingKey, error) {
	view, err := NewView(cam)
	if err != nil {
		return nil, err
	}

	return c.Registry.Query(view, nil), nil
}

// CullCameras queries every camera in parallel. Failed cameras are logged and
// reported in their result; the others are unaffected.
func (c *Culler) CullCameras(cams []*Camera) []CullResult {
	start := time.Now()
	results := make([]CullResult, len(cams))

	taskIndexed(c.Workers, cams, func(i int, cam *Camera) {
		keys, err := c.Cull(cam)
		results[i] = CullResult{Camera: cam.Name, Keys: keys, Err: err}
	})

	for _, result := range results {
		if result.Err != nil {
			c.logger.WithError(result.Err).WithField("camera", result.Camera).Warn("camera skipped")
			continue
		}
		if c.Events.hasListeners() {
			c.Events.recordVisible(result.Camera, result.Keys)
		}
		c.logger.WithFields(logrus.Fields{
			"camera":  result.Camera,
			"visible": len(result.Keys),
			"objects": c.Registry.Len(),
		}).Debug("camera culled")
	}

	c.logger.WithFields(logrus.Fields{
		"cameras":  len(cams),
		"duration": time.Since(start),
	}).Debug("cameras culled")

	return results
}

// Frame runs one frame: Update, CullCameras, then delivers visibility events
func (c *Culler) Frame(cams ...*Camera) []CullResult {
	c.Update()
	results := c.CullCameras(cams)
	c.Events.flush()

	return results
}
