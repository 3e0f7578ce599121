package mcubes

import (
	"math"
	"time"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/ecopia-map/surface_mesher/internal/geometry"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/tools"
	"github.com/golang/glog"
	"gonum.org/v1/gonum/spatial/r3"
)

// fieldSDF exposes the uncached field as an sdfx solid bounded by box
type fieldSDF struct {
	field *Field
	box   sdf.Box3
}

func (s *fieldSDF) Evaluate(p v3.Vec) float64 {
	return s.field.Distance(r3.Vec{X: p.X, Y: p.Y, Z: p.Z})
}

func (s *fieldSDF) BoundingBox() sdf.Box3 {
	return s.box
}

// Uniform marching cubes over the whole bounding box of the grid. Unlike the sparse extractor it also
// samples voxels without points, at the price of evaluating the field on the full lattice.
type DenseExtractor struct {
	field *Field
	box   *geometry.BoundingBox
	cells int
}

// Builds a dense extractor over box. With cells 0 the resolution along the longest axis is derived from voxelSize.
func NewDenseExtractor(field *Field, box *geometry.BoundingBox, voxelSize float64, cells int) *DenseExtractor {
	if cells <= 0 {
		size := box.Size()
		longest := math.Max(size.X, math.Max(size.Y, size.Z))
		cells = int(math.Ceil(longest / voxelSize))
		if cells < 1 {
			cells = 1
		}
	}
	return &DenseExtractor{field: field, box: box, cells: cells}
}

func (d *DenseExtractor) Extract() (*data.Mesh, error) {
	defer tools.TimeTrack(time.Now(), "dense marching cubes")

	solid := &fieldSDF{
		field: d.field,
		box: sdf.Box3{
			Min: v3.Vec{X: d.box.Xmin, Y: d.box.Ymin, Z: d.box.Zmin},
			Max: v3.Vec{X: d.box.Xmax, Y: d.box.Ymax, Z: d.box.Zmax},
		},
	}
	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(d.cells))

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
		if face[0] == face[1] || face[1] == face[2] || face[0] == face[2] {
			continue
		}
		mesh.Faces = append(mesh.Faces, face)
	}

	if mesh.NumVertices() == 0 {
		return nil, mesher.NewAlgorithmError("no surface found in the dense lattice")
	}

	mesh.ComputeVertexNormals()
	glog.V(1).Infof("dense marching cubes: %d cells, %d vertices, %d faces", d.cells, mesh.NumVertices(), mesh.NumFaces())
	return mesh, nil
}
