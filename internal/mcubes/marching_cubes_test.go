package mcubes

import (
	"errors"
	"math"
	"testing"

	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/ecopia-map/surface_mesher/internal/grid"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// Fibonacci sampling of a sphere with outward normals
func spherePoints(n int, radius float64) *data.PointBuffer {
	points := make([]r3.Vec, n)
	normals := make([]r3.Vec, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		r := math.Sqrt(1 - y*y)
		phi := golden * float64(i)
		dir := r3.Vec{X: math.Cos(phi) * r, Y: y, Z: math.Sin(phi) * r}
		points[i] = r3.Scale(radius, dir)
		normals[i] = dir
	}
	buffer := data.NewPointBuffer(points)
	_ = buffer.SetNormals(normals)
	return buffer
}

func cubeCornerPoints() *data.PointBuffer {
	points := make([]r3.Vec, 0, 8)
	normals := make([]r3.Vec, 0, 8)
	for _, x := range []float64{-0.5, 0.5} {
		for _, y := range []float64{-0.5, 0.5} {
			for _, z := range []float64{-0.5, 0.5} {
				p := r3.Vec{X: x, Y: y, Z: z}
				points = append(points, p)
				normals = append(normals, r3.Unit(p))
			}
		}
	}
	buffer := data.NewPointBuffer(points)
	_ = buffer.SetNormals(normals)
	return buffer
}

func newExtractor(t *testing.T, points *data.PointBuffer, voxelSize float64, kd int, sampling mesher.FieldSampling) (*MarchingCubes, *Field) {
	tree, err := search.NewSearchTree(points.Points())
	require.NoError(t, err)
	g, err := grid.NewHashGrid(points.Points(), voxelSize, 4)
	require.NoError(t, err)
	field := NewField(points, tree, g, kd)
	return NewMarchingCubes(g, field, sampling, 4), field
}

func TestInterpolate(t *testing.T) {
	p1, p2 := r3.Vec{X: 0}, r3.Vec{X: 1}
	assert.Equal(t, p1, interpolate(p1, p2, 1e-12, 1))
	assert.Equal(t, p2, interpolate(p1, p2, 1, -1e-12))
	assert.Equal(t, p1, interpolate(p1, p2, 0.5, 0.5))
	assert.InDelta(t, 0.25, interpolate(p1, p2, -1, 3).X, 1e-12)
	assert.InDelta(t, 0.75, interpolate(p1, p2, 3, -1).X, 1e-12)
}

func TestCanonicalEdgeSharedBetweenNeighbours(t *testing.T) {
	c := grid.Coord{X: 4, Y: 4, Z: 4}
	// edge 1 of c joins corners 1 and 2, the same lattice edge as edge 3 of the voxel on its +x side
	assert.Equal(t, canonicalEdge(c, 1), canonicalEdge(c.Add(1, 0, 0), 3))
	// edge 6 of c is edge 4 of the voxel above along y
	assert.Equal(t, canonicalEdge(c, 6), canonicalEdge(c.Add(0, 1, 0), 4))
	// edge 10 of c is edge 8 of the diagonal neighbour
	assert.Equal(t, canonicalEdge(c, 10), canonicalEdge(c.Add(1, 1, 0), 8))
	assert.NotEqual(t, canonicalEdge(c, 0), canonicalEdge(c, 2))
}

func TestFieldSign(t *testing.T) {
	points := spherePoints(500, 2)
	mc, field := newExtractor(t, points, 0.5, 5, mesher.SampleCenters)
	require.NotNil(t, mc)

	assert.Less(t, field.Distance(r3.Vec{}), 0.0)
	assert.Greater(t, field.Distance(r3.Vec{X: 5}), 0.0)
	assert.InDelta(t, 3.0, field.Distance(r3.Vec{X: 5}), 0.2)
}

func TestFieldWithoutNormalsIsInside(t *testing.T) {
	points := data.NewPointBuffer([]r3.Vec{{X: 0}, {X: 1}, {X: 2}})
	_, field := newExtractor(t, points, 1, 3, mesher.SampleCenters)
	assert.InDelta(t, -3.0, field.Distance(r3.Vec{X: -3}), 1e-12)
}

func TestFieldCache(t *testing.T) {
	points := spherePoints(200, 2)
	_, field := newExtractor(t, points, 0.5, 5, mesher.SampleCenters)
	g := field.Grid()

	p := points.Point(0)
	first := field.At(p)
	assert.Equal(t, 1, field.CacheSize())
	// any position inside the same voxel hits the cached value
	assert.Equal(t, first, field.At(r3.Add(g.CellCorner(g.PointToCell(p)), r3.Vec{X: 1e-3, Y: 1e-3, Z: 1e-3})))
	assert.Equal(t, 1, field.CacheSize())

	cell, ok := g.Cell(g.PointToCell(p))
	require.True(t, ok)
	assert.True(t, cell.HasDistance)
	assert.Equal(t, first, cell.Distance)

	field.Reset()
	assert.Equal(t, 0, field.CacheSize())
}

func TestCubeCornerScenario(t *testing.T) {
	mc, _ := newExtractor(t, cubeCornerPoints(), 1.0, 3, mesher.SampleCenters)
	mesh, err := mc.Extract()
	require.NoError(t, err)
	require.NotZero(t, mesh.NumVertices())
	require.NotZero(t, mesh.NumFaces())

	for _, v := range mesh.Vertices {
		assert.True(t, math.Abs(v.X) <= 1.5 && math.Abs(v.Y) <= 1.5 && math.Abs(v.Z) <= 1.5, "vertex %v", v)
	}
	for _, face := range mesh.Faces {
		for _, i := range face {
			assert.True(t, i >= 0 && i < mesh.NumVertices())
		}
	}
	require.True(t, mesh.HasNormals())
}

func TestSphereReconstruction(t *testing.T) {
	for _, sampling := range []mesher.FieldSampling{mesher.SampleCenters, mesher.SampleCorners} {
		t.Run(string(sampling), func(t *testing.T) {
			mc, _ := newExtractor(t, spherePoints(3000, 3), 0.5, 5, sampling)
			mesh, err := mc.Extract()
			require.NoError(t, err)

			for _, v := range mesh.Vertices {
				assert.InDelta(t, 3.0, r3.Norm(v), 0.5)
			}

			outward := 0
			for f := range mesh.Faces {
				face := mesh.Faces[f]
				center := r3.Scale(1.0/3, r3.Add(mesh.Vertices[face[0]], r3.Add(mesh.Vertices[face[1]], mesh.Vertices[face[2]])))
				if r3.Dot(mesh.FaceNormal(f), center) > 0 {
					outward++
				}
			}
			assert.Greater(t, float64(outward), 0.95*float64(mesh.NumFaces()))
		})
	}
}

func TestSharedVerticesAreDeduplicated(t *testing.T) {
	mc, _ := newExtractor(t, spherePoints(2000, 3), 0.5, 5, mesher.SampleCenters)
	mesh, err := mc.Extract()
	require.NoError(t, err)

	seen := make(map[r3.Vec]bool, mesh.NumVertices())
	for _, v := range mesh.Vertices {
		assert.False(t, seen[v], "duplicated vertex %v", v)
		seen[v] = true
	}
	assert.Less(t, mesh.NumVertices(), 3*mesh.NumFaces())
}

func TestExtractIsRepeatable(t *testing.T) {
	mc, _ := newExtractor(t, spherePoints(1500, 3), 0.6, 5, mesher.SampleCenters)
	first, err := mc.Extract()
	require.NoError(t, err)
	second, err := mc.Extract()
	require.NoError(t, err)
	assert.Equal(t, first.Vertices, second.Vertices)
	assert.Equal(t, first.Faces, second.Faces)

	mc.grid.ForEachCell(func(c grid.Coord, cell *grid.Cell) {
		assert.True(t, cell.Processed)
	})
}

func TestExtractWithoutSurface(t *testing.T) {
	// without normals every sample is inside, so no voxel straddles the zero level
	points := make([]r3.Vec, 20)
	for i := range points {
		points[i] = r3.Vec{X: float64(i) * 0.1}
	}
	mc, _ := newExtractor(t, data.NewPointBuffer(points), 1, 3, mesher.SampleCenters)
	_, err := mc.Extract()
	require.Error(t, err)
	assert.True(t, errors.Is(err, mesher.ErrAlgorithm))
}

func TestDenseExtractor(t *testing.T) {
	points := spherePoints(2000, 3)
	_, field := newExtractor(t, points, 0.5, 5, mesher.SampleCenters)

	dense := NewDenseExtractor(field, field.Grid().BoundingBox(), 0.5, 0)
	assert.GreaterOrEqual(t, dense.cells, 13)

	mesh, err := dense.Extract()
	require.NoError(t, err)
	require.NotZero(t, mesh.NumFaces())
	for _, v := range mesh.Vertices {
		assert.InDelta(t, 3.0, r3.Norm(v), 0.6)
	}
}

func TestFieldUnitSphere(t *testing.T) {
	points := spherePoints(400, 1)
	_, field := newExtractor(t, points, 0.25, 5, mesher.SampleCenters)

	assert.Less(t, field.Distance(r3.Vec{}), 0.0)
	for _, axis := range []r3.Vec{{X: 2}, {Y: 2}, {Z: 2}, {X: -2}, {Y: -2}, {Z: -2}} {
		assert.Greater(t, field.Distance(axis), 0.0, "query %v", axis)
	}
}
