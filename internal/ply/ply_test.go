package ply

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func sampleMesh() *data.Mesh {
	mesh := data.NewMesh()
	mesh.AddVertex(r3.Vec{X: 0, Y: 0, Z: 0})
	mesh.AddVertex(r3.Vec{X: 1.25, Y: 0, Z: 0})
	mesh.AddVertex(r3.Vec{X: 0, Y: 2.5, Z: -1})
	mesh.AddVertex(r3.Vec{X: 1024.5, Y: 2048.25, Z: 12})
	_ = mesh.AddFace(0, 1, 2)
	_ = mesh.AddFace(1, 3, 2)
	mesh.ComputeVertexNormals()
	return mesh
}

func TestMeshRoundTrip(t *testing.T) {
	for _, binaryFormat := range []bool{false, true} {
		t.Run(map[bool]string{false: "ascii", true: "binary"}[binaryFormat], func(t *testing.T) {
			mesh := sampleMesh()
			path := filepath.Join(t.TempDir(), "mesh.ply")
			require.NoError(t, WritePlyFile(path, mesh, WriteOptions{Binary: binaryFormat, Precision: 6}))

			cloud, err := ReadPlyFile(path)
			require.NoError(t, err)
			read := cloud.Mesh()

			require.Equal(t, mesh.NumVertices(), read.NumVertices())
			assert.Equal(t, mesh.Faces, read.Faces)
			require.True(t, read.HasNormals())
			for i := range mesh.Vertices {
				assert.InDelta(t, mesh.Vertices[i].X, read.Vertices[i].X, 1e-4)
				assert.InDelta(t, mesh.Vertices[i].Y, read.Vertices[i].Y, 1e-4)
				assert.InDelta(t, mesh.Vertices[i].Z, read.Vertices[i].Z, 1e-4)
				assert.InDelta(t, mesh.VertexNormals[i].Z, read.VertexNormals[i].Z, 1e-4)
			}
		})
	}
}

func TestAsciiPrecision(t *testing.T) {
	mesh := data.NewMesh()
	mesh.AddVertex(r3.Vec{X: 1.23456, Y: -7.891, Z: 0.005})
	mesh.AddVertex(r3.Vec{X: 2, Y: 0, Z: 0})
	mesh.AddVertex(r3.Vec{X: 0, Y: 3, Z: 0})
	_ = mesh.AddFace(0, 1, 2)

	var buf bytes.Buffer
	require.NoError(t, WriteMesh(&buf, mesh, WriteOptions{Precision: 2}))
	assert.True(t, strings.HasPrefix(buf.String(), "ply"))

	cloud, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, cloud.Points, 3)
	assert.InDelta(t, 1.23, cloud.Points[0].X, 1e-6)
	assert.InDelta(t, -7.89, cloud.Points[0].Y, 1e-6)
	assert.InDelta(t, 0.01, cloud.Points[0].Z, 1e-6)
	assert.Equal(t, [][3]int{{0, 1, 2}}, cloud.Faces)
}

func TestPointsRoundTrip(t *testing.T) {
	points := []*data.Point{data.NewPoint(1, 2, 3, 255, 128, 0, 0), data.NewPoint(4, 5, 6, 1, 2, 3, 0)}
	points[0].SetNormal(r3.Vec{Z: 1})
	points[1].SetNormal(r3.Vec{X: 1})
	buffer := data.NewPointBufferFromPoints(points)

	for _, binaryFormat := range []bool{false, true} {
		t.Run(map[bool]string{false: "ascii", true: "binary"}[binaryFormat], func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WritePoints(&buf, buffer, WriteOptions{Binary: binaryFormat, Precision: 6}))
			cloud, err := Read(&buf)
			require.NoError(t, err)

			assert.Empty(t, cloud.Faces)
			read := cloud.PointBuffer()
			require.Equal(t, 2, read.NumPoints())
			require.True(t, read.HasNormals())
			require.True(t, read.HasColors())
			assert.Equal(t, r3.Vec{X: 4, Y: 5, Z: 6}, read.Point(1))
			n, _ := read.Normal(1)
			assert.Equal(t, r3.Vec{X: 1}, n)
			c, _ := read.Color(0)
			assert.Equal(t, data.Color{R: 255, G: 128, B: 0}, c)
		})
	}
}

func TestReadErrors(t *testing.T) {
	header := "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n"
	for name, content := range map[string]string{
		"magic":            "obj\n",
		"no end of header": "ply\nformat ascii 1.0\nelement vertex 0\n",
		"no format":        "ply\nelement vertex 0\nend_header\n",
		"no elements":      "ply\nformat ascii 1.0\nproperty float x\nend_header\n",
		"bad type":         "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n1\n",
		"truncated":        "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nend_header\n1\n",
		"short record":     header + "element face 0\nproperty list uchar int vertex_indices\nend_header\n0 0\n1 0 0\n0 1 0\n",
		"negative list":    header + "element face 1\nproperty list int int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n-1\n",
		"long list":        header + "element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n4 0 1 2\n",
		"huge count":       "ply\nformat binary_little_endian 1.0\nelement vertex 4000000000\nproperty float x\nend_header\n\x00\x00\x00\x00",
		"short binary":     "ply\nformat binary_little_endian 1.0\nelement vertex 2\nproperty double x\nend_header\n\x00\x00\x00\x00\x00\x00\x00\x00",
		"bad face":         header + "element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 7\n",
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := Read(strings.NewReader(content))
				assert.Error(t, err)
			})
		})
	}

	_, err := ReadPlyFile(filepath.Join(t.TempDir(), "missing.ply"))
	assert.Error(t, err)
}

func TestCheckLayout(t *testing.T) {
	valid := "ply\nformat ascii 1.0\ncomment two faces\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
		"element face 2\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n\n0 1 0\n3 0 1 2\n3 0 2 1\n"
	assert.NoError(t, checkLayout([]byte(valid)))

	binaryContent := "ply\nformat binary_little_endian 1.0\nelement vertex 1\nproperty float x\nproperty uchar red\nend_header\n\x00\x00\x80\x3f\xff"
	assert.NoError(t, checkLayout([]byte(binaryContent)))
}
