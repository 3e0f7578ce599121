package normals

import (
	"sync"
	"time"

	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/internal/search"
	"github.com/ecopia-map/surface_mesher/tools"
	"gonum.org/v1/gonum/spatial/r3"
)

// Number of points handed to a worker at once
const batchSize = 256

type indexRange struct {
	start, end int
}

// Estimates per point normals by principal component analysis of the k nearest neighbours of each point
type Estimator struct {
	tree       *search.SearchTree
	k          int
	numThreads int
}

func NewEstimator(tree *search.SearchTree, k int, numThreads int) *Estimator {
	return &Estimator{
		tree:       tree,
		k:          k,
		numThreads: mesher.ResolveThreads(numThreads),
	}
}

// Returns one unit normal per point, in input order. Points are processed by a pool of workers,
// each one writing only the slots of the ranges it received.
func (e *Estimator) Estimate(points []r3.Vec) ([]r3.Vec, error) {
	if e.k < 1 {
		return nil, mesher.InvalidParameters("kn must be at least 1, got %d", e.k)
	}
	if len(points) < e.k {
		return nil, mesher.NotEnoughPoints(len(points), e.k)
	}
	defer tools.TimeTrack(time.Now(), "normal estimation")

	normals := make([]r3.Vec, len(points))
	progress := tools.NewProgress("normal estimation", len(points))

	work := make(chan indexRange, e.numThreads)
	var wg sync.WaitGroup
	for i := 0; i < e.numThreads; i++ {
		wg.Add(1)
		go e.launchWorker(points, normals, work, progress, &wg)
	}

	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		work <- indexRange{start: start, end: end}
	}
	close(work)
	wg.Wait()

	return normals, nil
}

func (e *Estimator) launchWorker(points []r3.Vec, normals []r3.Vec, work <-chan indexRange, progress *tools.Progress, wg *sync.WaitGroup) {
	defer wg.Done()
	for r := range work {
		for i := r.start; i < r.end; i++ {
			normals[i] = e.EstimateAt(points[i])
		}
		progress.Add(r.end - r.start)
	}
}

// Normal at a single position, the k+1 query absorbs the self match of indexed points
func (e *Estimator) EstimateAt(p r3.Vec) r3.Vec {
	return NormalFromNeighbors(e.tree.KNearest(p, e.k+1))
}
