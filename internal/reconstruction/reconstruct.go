package reconstruction

import (
	"time"

	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/ecopia-map/surface_mesher/internal/grid"
	"github.com/ecopia-map/surface_mesher/internal/mcubes"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/internal/normals"
	"github.com/ecopia-map/surface_mesher/internal/search"
	"github.com/ecopia-map/surface_mesher/tools"
	"github.com/golang/glog"
)

// Reconstructs a triangle mesh from the given points. The input buffer is left untouched: normals,
// when missing, are estimated and attached to a private copy.
// Errors of the inner stages are returned unchanged.
func Reconstruct(points *data.PointBuffer, opts *mesher.ReconstructionOptions) (*data.Mesh, error) {
	if points == nil || points.NumPoints() < mesher.MinReconstructionPoints {
		count := 0
		if points != nil {
			count = points.NumPoints()
		}
		return nil, mesher.NotEnoughPoints(count, mesher.MinReconstructionPoints)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	defer tools.TimeTrack(time.Now(), "reconstruction")

	threads := opts.Threads()
	working := points.Copy()

	tree, err := search.NewSearchTree(working.Points())
	if err != nil {
		return nil, err
	}

	if !working.HasNormals() {
		if err := attachNormals(working, tree, opts.Kn, opts.NormalOrientation, threads); err != nil {
			return nil, err
		}
	}

	g, err := grid.NewHashGrid(working.Points(), opts.VoxelSize, threads)
	if err != nil {
		return nil, err
	}

	field := mcubes.NewField(working, tree, g, opts.Kd)
	extractor, err := newExtractor(g, field, opts)
	if err != nil {
		return nil, err
	}
	return extractor.Extract()
}

func newExtractor(g *grid.HashGrid, field *mcubes.Field, opts *mesher.ReconstructionOptions) (mcubes.Extractor, error) {
	switch mesher.ParseExtractor(string(opts.Extractor)) {
	case mesher.Sparse:
		return mcubes.NewMarchingCubes(g, field, opts.FieldSampling, opts.Threads()), nil
	case mesher.Dense:
		return mcubes.NewDenseExtractor(field, g.BoundingBox(), opts.VoxelSize, opts.DenseCells), nil
	}
	return nil, mesher.InvalidParameters("unknown extractor %q", opts.Extractor)
}

// Returns a copy of the points carrying PCA normals estimated from the kn nearest neighbors.
// Normals already present in the input are replaced.
func EstimateNormals(points *data.PointBuffer, kn int, orientation mesher.NormalOrientation, numThreads int) (*data.PointBuffer, error) {
	if points == nil || points.NumPoints() == 0 {
		return nil, mesher.NotEnoughPoints(0, 1)
	}
	defer tools.TimeTrack(time.Now(), "normal estimation")

	working := points.Copy()
	tree, err := search.NewSearchTree(working.Points())
	if err != nil {
		return nil, err
	}
	if err := attachNormals(working, tree, kn, orientation, mesher.ResolveThreads(numThreads)); err != nil {
		return nil, err
	}
	return working, nil
}

func attachNormals(points *data.PointBuffer, tree *search.SearchTree, kn int, orientation mesher.NormalOrientation, threads int) error {
	glog.V(1).Infof("estimating normals of %d points with kn=%d", points.NumPoints(), kn)
	estimated, err := normals.NewEstimator(tree, kn, threads).Estimate(points.Points())
	if err != nil {
		return err
	}
	if err := normals.Orient(points.Points(), estimated, orientation); err != nil {
		return err
	}
	return points.SetNormals(estimated)
}
