package culling

import (
	"github.com/akmonengine/culling/octree"
	"github.com/sirupsen/logrus"
)

const DEFAULT_WORKERS = 1

// Config holds the tuning of a Culler and of the registry it builds
type Config struct {
	// Strategy selects the registry implementation
	Strategy Strategy
	// Workers bounds the goroutines used by Update and CullCameras
	Workers int

	Octree      octree.Config
	Narrowphase Narrowphase

	GridCellSize float64
	GridCells    int

	Logger logrus.FieldLogger
}

func DefaultConfig() Config {
	return Config{
		Strategy:     StrategyArray,
		Workers:      DEFAULT_WORKERS,
		Octree:       octree.DefaultConfig(),
		Narrowphase:  NarrowphaseSAT,
		GridCellSize: DefaultGridCellSize,
		GridCells:    DefaultGridCells,
		Logger:       logrus.StandardLogger(),
	}
}
