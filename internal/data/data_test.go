package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestPointBufferFromPoints(t *testing.T) {
	withNormal := NewPoint(1, 2, 3, 10, 20, 30, 5)
	withNormal.SetNormal(r3.Vec{X: 0, Y: 0, Z: 1})
	withoutNormal := NewPoint(4, 5, 6, 1, 2, 3, 0)

	buffer := NewPointBufferFromPoints([]*Point{withNormal, withoutNormal})
	require.Equal(t, 2, buffer.NumPoints())
	assert.Equal(t, r3.Vec{X: 4, Y: 5, Z: 6}, buffer.Point(1))
	assert.False(t, buffer.HasNormals(), "normals are attached only when every point has one")
	assert.True(t, buffer.HasColors())
	c, ok := buffer.Color(0)
	assert.True(t, ok)
	assert.Equal(t, Color{R: 10, G: 20, B: 30}, c)
	assert.Equal(t, uint8(5), buffer.Intensity(0))

	withoutNormal.SetNormal(r3.Vec{X: 1})
	buffer = NewPointBufferFromPoints([]*Point{withNormal, withoutNormal})
	n, ok := buffer.Normal(1)
	assert.True(t, ok)
	assert.Equal(t, r3.Vec{X: 1}, n)
}

func TestPointBufferSetNormals(t *testing.T) {
	buffer := NewPointBuffer([]r3.Vec{{X: 0}, {X: 1}})
	_, ok := buffer.Normal(0)
	assert.False(t, ok)
	assert.Error(t, buffer.SetNormals([]r3.Vec{{Z: 1}}))
	require.NoError(t, buffer.SetNormals([]r3.Vec{{Z: 1}, {Z: 1}}))
	assert.True(t, buffer.HasNormals())
}

func TestPointBufferCopyIsIndependent(t *testing.T) {
	buffer := NewPointBuffer([]r3.Vec{{X: 0}, {X: 1}})
	clone := buffer.Copy()
	require.NoError(t, clone.SetNormals([]r3.Vec{{Z: 1}, {Z: 1}}))
	clone.SetPoint(0, r3.Vec{X: 9})

	assert.False(t, buffer.HasNormals())
	assert.Equal(t, r3.Vec{X: 0}, buffer.Point(0))
	assert.Equal(t, 2, len(clone.ToPoints()))
}

func TestMeshNormals(t *testing.T) {
	mesh := NewMesh()
	a := mesh.AddVertex(r3.Vec{X: 0, Y: 0, Z: 0})
	b := mesh.AddVertex(r3.Vec{X: 1, Y: 0, Z: 0})
	c := mesh.AddVertex(r3.Vec{X: 0, Y: 1, Z: 0})
	isolated := mesh.AddVertex(r3.Vec{X: 5, Y: 5, Z: 5})
	require.NoError(t, mesh.AddFace(a, b, c))
	assert.Error(t, mesh.AddFace(a, b, 10))

	assert.Equal(t, r3.Vec{X: 0, Y: 0, Z: 1}, mesh.FaceNormal(0))

	mesh.ComputeVertexNormals()
	require.True(t, mesh.HasNormals())
	for i := a; i <= c; i++ {
		assert.InDelta(t, 1.0, mesh.VertexNormals[i].Z, 1e-12)
	}
	assert.Equal(t, DefaultNormal, mesh.VertexNormals[isolated])
	assert.Equal(t, 5.0, mesh.BoundingBox().Zmax)
}
