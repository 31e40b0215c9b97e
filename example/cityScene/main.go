package main

import (
	"fmt"
	"math"

	"github.com/akmonengine/culling"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

// buildCity places a grid of buildings of varying height on the ground plane
func buildCity(culler *culling.Culler, blocks int, spacing float64) []culling.BoundingKey {
	var keys []culling.BoundingKey
	for x := -blocks; x <= blocks; x++ {
		for z := -blocks; z <= blocks; z++ {
			height := 5 + 20*math.Abs(math.Sin(float64(x*7+z*13)))
			world := mgl64.Translate3D(float64(x)*spacing, 0, float64(z)*spacing).
				Mul4(mgl64.HomogRotate3DY(float64(x+z) * 0.1))
			keys = append(keys, culler.AddObject(mgl64.Vec3{-4, 0, -4}, mgl64.Vec3{4, height, 4}, world))
		}
	}
	return keys
}

func main() {
	logrus.SetLevel(logrus.InfoLevel)

	config := culling.DefaultConfig()
	config.Strategy = culling.StrategyOctree
	config.Workers = 4
	culler := culling.NewCuller(config)

	keys := buildCity(culler, 20, 20)

	entered, exited := 0, 0
	culler.Events.Subscribe(culling.VISIBLE_ENTER, func(event culling.Event) {
		entered++
	})
	culler.Events.Subscribe(culling.VISIBLE_EXIT, func(event culling.Event) {
		exited++
	})

	street := culling.NewCamera("street")
	street.Fov = mgl64.DegToRad(70)
	street.Viewport = mgl64.Vec4{0, 0, 16, 9}
	street.MaxZ = 300

	aerial := culling.NewCamera("aerial")
	aerial.Viewport = mgl64.Vec4{0, 0, 1, 1}
	aerial.MaxZ = 1000
	aerial.LookAt(mgl64.Vec3{0, 400, -400}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0})

	// a moving bus
	bus := keys[len(keys)/2]

	for frame := 0; frame < 10; frame++ {
		angle := float64(frame) * math.Pi / 5
		eye := mgl64.Vec3{0, 2, 0}
		street.LookAt(eye, eye.Add(mgl64.Vec3{math.Sin(angle), 0, math.Cos(angle)}), mgl64.Vec3{0, 1, 0})

		culler.SetWorld(bus, mgl64.Translate3D(float64(frame)*10, 0, 10))

		entered, exited = 0, 0
		results := culler.Frame(street, aerial)
		for _, result := range results {
			if result.Err != nil {
				fmt.Printf("frame %d %s: %v\n", frame, result.Camera, result.Err)
				continue
			}
			fmt.Printf("frame %d %-6s visible %4d/%d\n", frame, result.Camera, len(result.Keys), culler.Len())
		}
		fmt.Printf("frame %d enter %d exit %d\n", frame, entered, exited)
	}
}
