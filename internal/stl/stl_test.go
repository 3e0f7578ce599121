package stl

import (
	"path/filepath"
	"testing"

	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestStlRoundTrip(t *testing.T) {
	mesh := data.NewMesh()
	for _, v := range []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}} {
		mesh.AddVertex(v)
	}
	require.NoError(t, mesh.AddFace(0, 2, 1))
	require.NoError(t, mesh.AddFace(0, 1, 3))
	require.NoError(t, mesh.AddFace(0, 3, 2))
	require.NoError(t, mesh.AddFace(1, 2, 3))

	assert.Len(t, Triangles(mesh), 4)

	path := filepath.Join(t.TempDir(), "tetra.stl")
	require.NoError(t, WriteStlFile(path, mesh))

	read, err := ReadStlFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, read.NumVertices())
	assert.Equal(t, 4, read.NumFaces())
	assert.Equal(t, mesh.Faces, read.Faces)
}

func TestStlEmptyMesh(t *testing.T) {
	assert.Error(t, WriteStlFile(filepath.Join(t.TempDir(), "empty.stl"), data.NewMesh()))
}
