package mcubes

import (
	"sync"

	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/ecopia-map/surface_mesher/internal/grid"
	"github.com/ecopia-map/surface_mesher/internal/search"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Approximate signed distance field of a point set: the distance to the nearest sample, signed by the
// side of the sample tangent plane the query falls on. Evaluations are cached per voxel coordinate.
type Field struct {
	points *data.PointBuffer
	tree   *search.SearchTree
	grid   *grid.HashGrid
	kd     int

	cache map[grid.Coord]float64
	sync.Mutex
}

func NewField(points *data.PointBuffer, tree *search.SearchTree, g *grid.HashGrid, kd int) *Field {
	return &Field{
		points: points,
		tree:   tree,
		grid:   g,
		kd:     kd,
		cache:  make(map[grid.Coord]float64),
	}
}

// Uncached evaluation of the field at p. Positive values are outside the sampled surface.
func (f *Field) Distance(p r3.Vec) float64 {
	neighbors := f.tree.KNearestNeighbors(p, f.kd)
	if len(neighbors) == 0 {
		return 1
	}

	distances := make([]float64, len(neighbors))
	for i, n := range neighbors {
		distances[i] = n.Distance
	}
	mean := stat.Mean(distances, nil)
	nearest := neighbors[0]

	sign := -1.0
	if normal, ok := f.points.Normal(nearest.Index); ok {
		if r3.Dot(r3.Sub(p, f.points.Point(nearest.Index)), normal) >= 0 {
			sign = 1
		}
	} else if nearest.Distance > mean {
		// the nearest distance never exceeds the mean, so without normals every sample is inside
		sign = 1
	}

	return sign * nearest.Distance
}

// Cached evaluation keyed by the voxel containing p
func (f *Field) At(p r3.Vec) float64 {
	return f.AtCell(f.grid.PointToCell(p), p)
}

// Cached evaluation at p, keyed by the given voxel coordinate
func (f *Field) AtCell(c grid.Coord, p r3.Vec) float64 {
	if d, ok := f.Cached(c); ok {
		return d
	}
	d := f.Distance(p)
	f.Store(c, d)
	return d
}

func (f *Field) Cached(c grid.Coord) (float64, bool) {
	f.Lock()
	d, ok := f.cache[c]
	f.Unlock()
	return d, ok
}

// Caches a value, mirroring it into the grid cell at c when one exists
func (f *Field) Store(c grid.Coord, d float64) {
	f.Lock()
	f.cache[c] = d
	f.Unlock()
	f.grid.StoreDistance(c, d)
}

func (f *Field) CacheSize() int {
	f.Lock()
	defer f.Unlock()
	return len(f.cache)
}

func (f *Field) Reset() {
	f.Lock()
	f.cache = make(map[grid.Coord]float64)
	f.Unlock()
}

func (f *Field) Grid() *grid.HashGrid {
	return f.grid
}
