package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/akmonengine/culling"
	"github.com/akmonengine/culling/bounds"
	"github.com/akmonengine/culling/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type cameraFlags struct {
	eye    []float64
	target []float64
	fov    float64
	near   float64
	far    float64
	aspect float64
}

func (f cameraFlags) camera(name string) (*culling.Camera, error) {
	if len(f.eye) != 3 || len(f.target) != 3 {
		return nil, fmt.Errorf("eye and target need 3 components")
	}

	cam := culling.NewCamera(name)
	cam.Fov = mgl64.DegToRad(f.fov)
	cam.MinZ = f.near
	cam.MaxZ = f.far
	cam.Viewport = mgl64.Vec4{0, 0, f.aspect, 1}
	cam.LookAt(mgl64.Vec3{f.eye[0], f.eye[1], f.eye[2]}, mgl64.Vec3{f.target[0], f.target[1], f.target[2]}, mgl64.Vec3{0, 1, 0})

	return cam, nil
}

func parseStrategy(name string) (culling.Strategy, error) {
	for _, s := range []culling.Strategy{culling.StrategyArray, culling.StrategyOctree, culling.StrategyGrid} {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

func main() {
	var (
		camFlags cameraFlags
		strategy string
		logLevel string
		workers  int
	)

	root := &cobra.Command{
		Use:          "cullscene",
		Short:        "Frustum culling of scenes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().IntVar(&workers, "workers", culling.DEFAULT_WORKERS, "number of goroutines")
	root.PersistentFlags().Float64SliceVar(&camFlags.eye, "eye", []float64{0, 0, 0}, "camera position x,y,z")
	root.PersistentFlags().Float64SliceVar(&camFlags.target, "target", []float64{0, 0, 1}, "camera target x,y,z")
	root.PersistentFlags().Float64Var(&camFlags.fov, "fov", 60, "vertical field of view in degrees")
	root.PersistentFlags().Float64Var(&camFlags.near, "near", 0.1, "near plane distance")
	root.PersistentFlags().Float64Var(&camFlags.far, "far", 1000, "far plane distance")
	root.PersistentFlags().Float64Var(&camFlags.aspect, "aspect", 16.0/9.0, "viewport aspect ratio")

	gltfCmd := &cobra.Command{
		Use:   "gltf <file>",
		Short: "Cull the mesh nodes of a glTF scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseStrategy(strategy)
			if err != nil {
				return err
			}
			objects, err := scene.Load(args[0])
			if err != nil {
				return err
			}
			cam, err := camFlags.camera("main")
			if err != nil {
				return err
			}

			config := culling.DefaultConfig()
			config.Strategy = s
			config.Workers = workers
			culler := culling.NewCuller(config)

			names := make(map[culling.BoundingKey]string, len(objects))
			for _, o := range objects {
				names[culler.AddObject(o.Minimum, o.Maximum, o.World)] = o.Name
			}

			results := culler.Frame(cam)
			if results[0].Err != nil {
				return results[0].Err
			}

			visible := lo.Map(results[0].Keys, func(key culling.BoundingKey, _ int) string {
				return names[key]
			})
			slices.Sort(visible)

			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d visible\n", len(visible), len(objects))
			for _, name := range visible {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	gltfCmd.Flags().StringVar(&strategy, "strategy", "octree", "registry strategy (array, octree, grid)")

	var (
		count int
		seed  int64
	)
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare the registry strategies on a random scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			cam, err := camFlags.camera("bench")
			if err != nil {
				return err
			}
			return bench(cmd, cam, count, seed, workers)
		},
	}
	benchCmd.Flags().IntVar(&count, "count", 10000, "number of objects")
	benchCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")

	root.AddCommand(gltfCmd, benchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type benchObject struct {
	min, max mgl64.Vec3
	world    mgl64.Mat4
}

func randomScene(count int, seed int64, extent float64) []benchObject {
	rng := rand.New(rand.NewSource(seed))
	objects := make([]benchObject, count)
	for i := range objects {
		half := mgl64.Vec3{0.5 + rng.Float64()*4, 0.5 + rng.Float64()*4, 0.5 + rng.Float64()*4}
		position := mgl64.Vec3{
			(rng.Float64()*2 - 1) * extent,
			(rng.Float64()*2 - 1) * extent,
			(rng.Float64()*2 - 1) * extent,
		}
		axis := mgl64.Vec3{rng.Float64(), rng.Float64() + 0.1, rng.Float64()}.Normalize()
		objects[i] = benchObject{
			min: half.Mul(-1),
			max: half,
			world: mgl64.Translate3D(position[0], position[1], position[2]).
				Mul4(mgl64.HomogRotate3D(rng.Float64()*2*math.Pi, axis)),
		}
	}
	return objects
}

func bench(cmd *cobra.Command, cam *culling.Camera, count int, seed int64, workers int) error {
	objects := randomScene(count, seed, 500)
	out := cmd.OutOrStdout()

	visible := make(map[culling.Strategy][]culling.BoundingKey)
	for _, s := range []culling.Strategy{culling.StrategyArray, culling.StrategyOctree, culling.StrategyGrid} {
		config := culling.DefaultConfig()
		config.Strategy = s
		config.Workers = workers
		culler := culling.NewCuller(config)

		start := time.Now()
		for _, o := range objects {
			culler.AddObject(o.min, o.max, o.world)
		}
		build := time.Since(start)

		start = time.Now()
		keys, err := culler.Cull(cam)
		if err != nil {
			return err
		}
		query := time.Since(start)

		visible[s] = keys
		fmt.Fprintf(out, "%-7s build %-12v query %-12v visible %d/%d\n", s, build, query, len(keys), count)
	}

	array, octree, grid := visible[culling.StrategyArray], visible[culling.StrategyOctree], visible[culling.StrategyGrid]
	onlyArray, onlyOctree := lo.Difference(array, octree)
	fmt.Fprintf(out, "array\\octree %d, octree\\array %d\n", len(onlyArray), len(onlyOctree))
	gridMissing, gridExtra := lo.Difference(array, grid)
	fmt.Fprintf(out, "array\\grid %d, grid\\array %d\n", len(gridMissing), len(gridExtra))

	infos := lo.Map(objects, func(o benchObject, _ int) *bounds.BoundingInfo {
		return bounds.NewBoundingInfo(o.min, o.max, o.world)
	})
	optimistic := lo.CountBy(infos, func(info *bounds.BoundingInfo) bool {
		info.CullingStrategy = bounds.CullingOptimistic
		planes := cam.Planes()
		return info.IsInFrustum(&planes)
	})
	fmt.Fprintf(out, "optimistic sphere test %d/%d\n", optimistic, count)

	return nil
}
