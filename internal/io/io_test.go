package io

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ecopia-map/surface_mesher/internal/converters"
	"github.com/ecopia-map/surface_mesher/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/internal/ply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func spherePoints(n int, radius float64) *data.PointBuffer {
	points := make([]r3.Vec, n)
	normals := make([]r3.Vec, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		r := math.Sqrt(1 - y*y)
		dir := r3.Vec{X: math.Cos(golden*float64(i)) * r, Y: y, Z: math.Sin(golden*float64(i)) * r}
		points[i] = r3.Scale(radius, dir)
		normals[i] = dir
	}
	buffer := data.NewPointBuffer(points)
	_ = buffer.SetNormals(normals)
	return buffer
}

func pipelineOptions(output string) *mesher.PipelineOptions {
	opts := mesher.DefaultPipelineOptions()
	opts.Output = output
	opts.Reconstruction.VoxelSize = 0.5
	opts.Reconstruction.NumThreads = 2
	return opts
}

func TestIsPointCloudFile(t *testing.T) {
	assert.True(t, IsPointCloudFile("a/b/cloud.PLY"))
	assert.True(t, IsPointCloudFile("scan.pts"))
	assert.True(t, IsPointCloudFile("scan.xyz"))
	assert.False(t, IsPointCloudFile("mesh.stl"))
	assert.False(t, IsPointCloudFile("notes"))
}

func TestReadDatasetUnsupported(t *testing.T) {
	_, err := ReadDataset("cloud.las")
	assert.Error(t, err)
}

func TestWriteMeshFormats(t *testing.T) {
	mesh := data.NewMesh()
	for _, v := range []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}} {
		mesh.AddVertex(v)
	}
	require.NoError(t, mesh.AddFace(0, 2, 1))
	require.NoError(t, mesh.AddFace(0, 1, 3))
	require.NoError(t, mesh.AddFace(0, 3, 2))
	require.NoError(t, mesh.AddFace(1, 2, 3))
	mesh.ComputeVertexNormals()

	dir := t.TempDir()
	for _, format := range []mesher.OutputFormat{mesher.FormatPly, mesher.FormatPlyBinary, mesher.FormatStl} {
		path := filepath.Join(dir, "tetra-"+string(format)+format.Extension())
		require.NoError(t, WriteMesh(path, mesh, format, 4), format)

		dataset, err := ReadDataset(path)
		require.NoError(t, err, format)
		require.NotNil(t, dataset.Mesh, format)
		assert.Equal(t, 4, dataset.Mesh.NumFaces(), format)
		assert.Equal(t, 4, dataset.Points.NumPoints(), format)
	}

	xyz := filepath.Join(dir, "tetra.xyz")
	require.NoError(t, WriteMesh(xyz, mesh, mesher.FormatXyz, 4))
	points, err := ReadPointCloud(xyz)
	require.NoError(t, err)
	assert.Equal(t, 4, points.NumPoints())

	assert.ErrorIs(t, WriteMesh(xyz, mesh, "OBJ", 4), mesher.ErrInvalidParameters)
	assert.ErrorIs(t, WritePointCloud(xyz, points, mesher.FormatStl, 4), mesher.ErrInvalidParameters)
}

func TestProducerOutputPaths(t *testing.T) {
	opts := pipelineOptions("out")
	opts.Format = mesher.FormatStl
	producer := NewStandardProducer("out", opts)

	work := make(chan *WorkUnit, 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go producer.Produce(work, &wg, []string{"in/a.ply", "in/sub/b.cloud.pts"})
	wg.Wait()

	var units []*WorkUnit
	for unit := range work {
		units = append(units, unit)
	}
	require.Len(t, units, 2)
	assert.Equal(t, filepath.Join("out", "a.stl"), units[0].OutputPath)
	assert.Equal(t, filepath.Join("out", "b.cloud.stl"), units[1].OutputPath)
	assert.Same(t, opts, units[1].Opts)
}

func TestPrepareAppliesOffset(t *testing.T) {
	consumer := NewStandardConsumer(converters.NewIdentityConverter(), offset_elevation_corrector.NewOffsetElevationCorrector(10))
	points := spherePoints(20, 1)
	opts := pipelineOptions("")

	require.NoError(t, consumer.Prepare(points, opts))
	assert.InDelta(t, 10+spherePoints(20, 1).Point(0).Z, points.Point(0).Z, 1e-12)
	assert.True(t, points.HasNormals())

	opts.TargetSrid = 3857
	assert.Error(t, consumer.Prepare(points, opts))
}

func TestConsumePipeline(t *testing.T) {
	input := t.TempDir()
	output := filepath.Join(t.TempDir(), "meshes")

	good := filepath.Join(input, "sphere.ply")
	require.NoError(t, ply.WritePointsFile(good, spherePoints(2000, 3), ply.WriteOptions{Precision: 8}))
	sparse := filepath.Join(input, "sparse.xyz")
	require.NoError(t, os.WriteFile(sparse, []byte("0 0 0\n1 1 1\n2 2 2\n"), 0644))

	opts := pipelineOptions(output)
	opts.SmoothIterations = 2
	producer := NewStandardProducer(output, opts)
	consumer := NewStandardConsumer(converters.NewIdentityConverter(), offset_elevation_corrector.NewOffsetElevationCorrector(0))

	files := []string{good, sparse}
	work := make(chan *WorkUnit, len(files))
	errs := make(chan error, len(files))
	var wg sync.WaitGroup
	wg.Add(2)
	go producer.Produce(work, &wg, files)
	go consumer.Consume(work, errs, &wg)
	wg.Wait()
	close(errs)

	var failures []error
	for err := range errs {
		failures = append(failures, err)
	}
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], mesher.ErrNotEnoughPoints)

	dataset, err := ReadDataset(filepath.Join(output, "sphere.ply"))
	require.NoError(t, err)
	require.NotNil(t, dataset.Mesh)
	assert.NotZero(t, dataset.Mesh.NumFaces())
	assert.True(t, dataset.Points.HasNormals())
	assert.NoFileExists(t, filepath.Join(output, "sparse.ply"))
}

func TestPostProcessStubsAreSkipped(t *testing.T) {
	mesh := data.NewMesh()
	for _, v := range []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}} {
		mesh.AddVertex(v)
	}
	require.NoError(t, mesh.AddFace(0, 2, 1))
	require.NoError(t, mesh.AddFace(0, 1, 3))
	require.NoError(t, mesh.AddFace(0, 3, 2))
	require.NoError(t, mesh.AddFace(1, 2, 3))

	opts := pipelineOptions("")
	opts.Reconstruction.SmallRegionThreshold = 0
	opts.Reconstruction.FillHoles = 8
	opts.SimplifyRatio = 0.5
	opts.CleanContours = 2

	require.NoError(t, PostProcess(mesh, opts))
	assert.Equal(t, 4, mesh.NumFaces())
}

func TestPostProcessRejectsEmptyResult(t *testing.T) {
	mesh := data.NewMesh()
	for _, v := range []r3.Vec{{}, {X: 1}, {Y: 1}} {
		mesh.AddVertex(v)
	}
	require.NoError(t, mesh.AddFace(0, 1, 2))

	opts := pipelineOptions("")
	err := PostProcess(mesh, opts)
	assert.ErrorIs(t, err, mesher.ErrAlgorithm)
}
