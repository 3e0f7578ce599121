package data

import (
	"fmt"

	"github.com/ecopia-map/surface_mesher/internal/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vertex normal used when no incident face defines a direction
var DefaultNormal = r3.Vec{X: 0, Y: 0, Z: 1}

// Triangle mesh: vertex positions, faces as triples of vertex indices and optional per vertex normals
type Mesh struct {
	Vertices      []r3.Vec
	Faces         [][3]int
	VertexNormals []r3.Vec
}

func NewMesh() *Mesh {
	return &Mesh{
		Vertices: make([]r3.Vec, 0),
		Faces:    make([][3]int, 0),
	}
}

func (m *Mesh) NumVertices() int {
	return len(m.Vertices)
}

func (m *Mesh) NumFaces() int {
	return len(m.Faces)
}

func (m *Mesh) HasNormals() bool {
	return len(m.VertexNormals) == len(m.Vertices) && len(m.Vertices) > 0
}

// Appends a vertex and returns its index
func (m *Mesh) AddVertex(v r3.Vec) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

func (m *Mesh) AddFace(a, b, c int) error {
	n := len(m.Vertices)
	if a < 0 || b < 0 || c < 0 || a >= n || b >= n || c >= n {
		return fmt.Errorf("face (%d, %d, %d) references a vertex out of range [0, %d)", a, b, c, n)
	}
	m.Faces = append(m.Faces, [3]int{a, b, c})
	return nil
}

// Unnormalized normal of the given face, its length is twice the face area
func (m *Mesh) FaceNormal(f int) r3.Vec {
	face := m.Faces[f]
	v0, v1, v2 := m.Vertices[face[0]], m.Vertices[face[1]], m.Vertices[face[2]]
	return r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0))
}

// Sets every vertex normal to the normalized sum of the unit normals of the incident faces
func (m *Mesh) ComputeVertexNormals() {
	sums := make([]r3.Vec, len(m.Vertices))
	for f, face := range m.Faces {
		n := m.FaceNormal(f)
		if r3.Norm(n) < 1e-10 {
			continue
		}
		n = r3.Unit(n)
		for _, v := range face {
			sums[v] = r3.Add(sums[v], n)
		}
	}
	m.VertexNormals = make([]r3.Vec, len(m.Vertices))
	for i, s := range sums {
		if r3.Norm(s) > 1e-10 {
			m.VertexNormals[i] = r3.Unit(s)
		} else {
			m.VertexNormals[i] = DefaultNormal
		}
	}
}

func (m *Mesh) BoundingBox() *geometry.BoundingBox {
	return geometry.NewBoundingBoxFromVecs(m.Vertices)
}
