package io

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ecopia-map/surface_mesher/internal/converters"
	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/ecopia-map/surface_mesher/internal/geometry"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/internal/postprocess"
	"github.com/ecopia-map/surface_mesher/internal/reconstruction"
	"github.com/ecopia-map/surface_mesher/tools"
	"github.com/golang/glog"
)

// Border faces smaller than this fraction of a voxel face are eroded by CleanContours
const contourAreaFactor = 0.125

type StandardConsumer struct {
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
}

func NewStandardConsumer(coordinateConverter converters.CoordinateConverter, elevationCorrector converters.ElevationCorrector) *StandardConsumer {
	return &StandardConsumer{
		coordinateConverter: coordinateConverter,
		elevationCorrector:  elevationCorrector,
	}
}

// Continually consumes WorkUnits submitted to a work channel writing the reconstructed mesh of each of them.
// Keeps working until the work channel is closed. Failed units are reported on the error channel, which
// must be buffered enough to hold one error per unit.
func (c *StandardConsumer) Consume(workchan chan *WorkUnit, errchan chan error, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()
	for work := range workchan {
		if err := c.doWork(work); err != nil {
			glog.Warningf("failed processing %s: %v", work.InputPath, err)
			errchan <- fmt.Errorf("%s: %w", filepath.Base(work.InputPath), err)
		}
	}
}

// Reads, reconstructs, post processes and writes a single file
func (c *StandardConsumer) doWork(workUnit *WorkUnit) error {
	defer tools.TimeTrack(time.Now(), filepath.Base(workUnit.InputPath))
	opts := workUnit.Opts

	points, err := ReadPointCloud(workUnit.InputPath)
	if err != nil {
		return err
	}
	tools.LogOutput("> read", points.NumPoints(), "points from", filepath.Base(workUnit.InputPath))

	if err := c.Prepare(points, opts); err != nil {
		return err
	}

	mesh, err := reconstruction.Reconstruct(points, opts.Reconstruction)
	if err != nil {
		return err
	}

	if err := PostProcess(mesh, opts); err != nil {
		return err
	}

	if err := tools.CreateDirectoryIfDoesNotExist(filepath.Dir(workUnit.OutputPath)); err != nil {
		return err
	}
	if err := WriteMesh(workUnit.OutputPath, mesh, opts.Format, opts.Precision); err != nil {
		return err
	}
	tools.LogOutput("> wrote", mesh.NumVertices(), "vertices and", mesh.NumFaces(), "faces to", workUnit.OutputPath)
	return nil
}

// Reprojects the points to the target srid and applies the elevation correction. Normals read from
// the input are dropped when reprojecting since they are no longer valid in the target system.
func (c *StandardConsumer) Prepare(points *data.PointBuffer, opts *mesher.PipelineOptions) error {
	coords := make([]geometry.Coordinate, points.NumPoints())
	for i, p := range points.Points() {
		coords[i] = geometry.NewCoordinate(p)
	}

	target := opts.EffectiveTargetSrid()
	if target != opts.Srid {
		if err := c.coordinateConverter.ConvertCoordinates(opts.Srid, target, coords); err != nil {
			return err
		}
		if points.HasNormals() {
			glog.Warningf("dropping input normals after reprojection from EPSG:%d to EPSG:%d", opts.Srid, target)
			points.ClearNormals()
		}
	}

	for i, coord := range coords {
		coord.Z = c.elevationCorrector.CorrectElevation(coord.X, coord.Y, coord.Z)
		points.SetPoint(i, coord.Vec())
	}
	return nil
}

// Applies the configured mesh cleanup. Stages run in a fixed order: degenerate faces, border erosion,
// small regions, hole filling, decimation, smoothing.
func PostProcess(mesh *data.Mesh, opts *mesher.PipelineOptions) error {
	rec := opts.Reconstruction

	postprocess.RemoveDegenerateFaces(mesh)

	if opts.CleanContours > 0 {
		threshold := rec.VoxelSize * rec.VoxelSize * contourAreaFactor
		removed := postprocess.CleanContours(mesh, opts.CleanContours, threshold)
		glog.V(1).Infof("removed %d border faces in %d passes", removed, opts.CleanContours)
	}

	if _, err := postprocess.RemoveSmallRegions(mesh, rec.SmallRegionThreshold); err != nil {
		return err
	}
	postprocess.RemoveUnreferencedVertices(mesh)

	if err := postprocess.FillHoles(mesh, rec.FillHoles); err != nil {
		if !errors.Is(err, postprocess.ErrNotImplemented) {
			return err
		}
		glog.Warningf("hole filling skipped: %v", err)
	}

	if err := postprocess.SimplifyMesh(mesh, opts.SimplifyRatio); err != nil {
		if !errors.Is(err, postprocess.ErrNotImplemented) {
			return err
		}
		glog.Warningf("simplification skipped: %v", err)
	}

	if opts.SmoothIterations > 0 {
		if err := postprocess.SmoothMesh(mesh, opts.SmoothIterations, opts.SmoothLambda); err != nil {
			return err
		}
	}

	if mesh.NumFaces() == 0 {
		return mesher.NewAlgorithmError("post processing removed every face")
	}
	return nil
}
