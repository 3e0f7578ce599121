package ply

import (
	"fmt"
	"io"
	"os"

	plyformat "github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/EliCDavis/vector/vector3"
	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/spatial/r3"
)

// Encoding options of the written files
type WriteOptions struct {
	Binary    bool // binary little endian instead of ascii
	Precision int  // decimal places kept in ascii coordinates
}

// Rounds ascii values to the configured number of decimal places
func (o WriteOptions) round(v float64) float64 {
	if o.Binary {
		return v
	}
	rounded, _ := decimal.NewFromFloat(v).Round(int32(o.Precision)).Float64()
	return rounded
}

func (o WriteOptions) vectors(values []r3.Vec) []vector3.Vector[float64] {
	out := make([]vector3.Vector[float64], len(values))
	for i, v := range values {
		out[i] = vector3.New(o.round(v.X), o.round(v.Y), o.round(v.Z))
	}
	return out
}

// Writes the mesh to a ply file, creating or truncating it
func WritePlyFile(path string, mesh *data.Mesh, opts WriteOptions) error {
	return writeFile(path, func(w io.Writer) error { return WriteMesh(w, mesh, opts) })
}

// Writes the point cloud, with normals and colors when present, to a ply file
func WritePointsFile(path string, points *data.PointBuffer, opts WriteOptions) error {
	return writeFile(path, func(w io.Writer) error { return WritePoints(w, points, opts) })
}

func writeFile(path string, write func(w io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

func WriteMesh(w io.Writer, mesh *data.Mesh, opts WriteOptions) error {
	indices := make([]int, 0, 3*mesh.NumFaces())
	for _, face := range mesh.Faces {
		indices = append(indices, face[0], face[1], face[2])
	}

	model := modeling.NewTriangleMesh(indices).
		SetFloat3Attribute(modeling.PositionAttribute, opts.vectors(mesh.Vertices))
	if mesh.HasNormals() {
		model = model.SetFloat3Attribute(modeling.NormalAttribute, opts.vectors(mesh.VertexNormals))
	}
	return encode(w, model, opts)
}

func WritePoints(w io.Writer, points *data.PointBuffer, opts WriteOptions) error {
	attributes := map[string][]vector3.Vector[float64]{
		modeling.PositionAttribute: opts.vectors(points.Points()),
	}
	if points.HasNormals() {
		attributes[modeling.NormalAttribute] = opts.vectors(points.Normals())
	}
	if points.HasColors() {
		colors := make([]vector3.Vector[float64], points.NumPoints())
		for i := range colors {
			c, _ := points.Color(i)
			colors[i] = vector3.New(float64(c.R), float64(c.G), float64(c.B)).DivByConstant(255.)
		}
		attributes[modeling.ColorAttribute] = colors
	}

	return encode(w, modeling.NewPointCloud(attributes, nil, nil, nil), opts)
}

func encode(w io.Writer, model modeling.Mesh, opts WriteOptions) error {
	if opts.Binary {
		return plyformat.WriteBinary(w, model)
	}
	return plyformat.WriteASCII(w, model)
}
