package stl

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ecopia-map/surface_mesher/internal/data"
	"gonum.org/v1/gonum/spatial/r3"
)

func toV3(v r3.Vec) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Converts the faces of a mesh to the triangle soup written by sdfx
func Triangles(mesh *data.Mesh) []*sdf.Triangle3 {
	triangles := make([]*sdf.Triangle3, 0, mesh.NumFaces())
	for _, face := range mesh.Faces {
		triangles = append(triangles, &sdf.Triangle3{
			toV3(mesh.Vertices[face[0]]),
			toV3(mesh.Vertices[face[1]]),
			toV3(mesh.Vertices[face[2]]),
		})
	}
	return triangles
}

// Writes the mesh as a binary STL file
func WriteStlFile(path string, mesh *data.Mesh) error {
	if mesh.NumFaces() == 0 {
		return fmt.Errorf("writing %s: mesh has no faces", path)
	}
	if err := render.SaveSTL(path, Triangles(mesh)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Reads a binary STL file, welding the triangle corners by exact position
func ReadStlFile(path string) (*data.Mesh, error) {
	triangles, err := render.LoadSTL(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	mesh := data.NewMesh()
	welded := make(map[r3.Vec]int)
	for _, tri := range triangles {
		var face [3]int
		for j := 0; j < 3; j++ {
			v := r3.Vec{X: tri[j].X, Y: tri[j].Y, Z: tri[j].Z}
			index, ok := welded[v]
			if !ok {
				index = mesh.AddVertex(v)
				welded[v] = index
			}
			face[j] = index
		}
		mesh.Faces = append(mesh.Faces, face)
	}
	return mesh, nil
}
