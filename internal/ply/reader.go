package ply

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	plyformat "github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/ecopia-map/surface_mesher/internal/data"
	"gonum.org/v1/gonum/spatial/r3"
)

// Content of a ply file: the vertex records and, for meshes, the triangulated faces
type Cloud struct {
	Points []*data.Point
	Faces  [][3]int
}

func (c *Cloud) PointBuffer() *data.PointBuffer {
	return data.NewPointBufferFromPoints(c.Points)
}

// Builds a mesh from the vertices and faces of the file
func (c *Cloud) Mesh() *data.Mesh {
	mesh := data.NewMesh()
	for _, p := range c.Points {
		mesh.AddVertex(p.Position())
	}
	mesh.Faces = append(mesh.Faces, c.Faces...)
	if len(c.Points) > 0 && c.Points[0].HasNormal {
		for _, p := range c.Points {
			mesh.VertexNormals = append(mesh.VertexNormals, p.Normal())
		}
	}
	return mesh
}

func ReadPlyFile(path string) (*Cloud, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cloud, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return cloud, nil
}

// Decodes an ascii or binary ply stream
func Read(r io.Reader) (*Cloud, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := checkLayout(content); err != nil {
		return nil, err
	}
	model, err := decode(content)
	if err != nil {
		return nil, err
	}
	return newCloud(model)
}

// Decoder panics on malformed records are returned as errors
func decode(content []byte) (model *modeling.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			model, err = nil, fmt.Errorf("malformed ply records: %v", r)
		}
	}()
	return plyformat.ReadMesh(bytes.NewReader(content))
}

func newCloud(model *modeling.Mesh) (*Cloud, error) {
	view := model.View()
	positions := view.Float3Data[modeling.PositionAttribute]
	normals := view.Float3Data[modeling.NormalAttribute]
	colors := view.Float3Data[modeling.ColorAttribute]
	hasNormals := len(normals) == len(positions) && len(positions) > 0
	hasColors := len(colors) == len(positions) && len(positions) > 0

	cloud := &Cloud{Points: make([]*data.Point, len(positions))}
	for i, p := range positions {
		point := &data.Point{X: p.X(), Y: p.Y(), Z: p.Z()}
		if hasNormals {
			point.SetNormal(r3.Vec{X: normals[i].X(), Y: normals[i].Y(), Z: normals[i].Z()})
		}
		if hasColors {
			point.R, point.G, point.B = toColor(colors[i].X()), toColor(colors[i].Y()), toColor(colors[i].Z())
			point.HasColor = true
		}
		cloud.Points[i] = point
	}

	if model.Topology() != modeling.TriangleTopology {
		return cloud, nil
	}
	indices := view.Indices
	cloud.Faces = make([][3]int, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		face := [3]int{indices[i], indices[i+1], indices[i+2]}
		for _, v := range face {
			if v < 0 || v >= len(positions) {
				return nil, fmt.Errorf("face references vertex %d out of %d", v, len(positions))
			}
		}
		cloud.Faces = append(cloud.Faces, face)
	}
	return cloud, nil
}

// Scales a color channel in [0,1] to 8 bits
func toColor(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v*255))))
}
