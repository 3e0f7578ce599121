package postprocess

import (
	"github.com/ecopia-map/surface_mesher/internal/data"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Summary of a mesh, as printed by the info command
type Stats struct {
	NumVertices    int     `json:"num_vertices"`
	NumFaces       int     `json:"num_faces"`
	NumEdges       int     `json:"num_edges"`
	BoundaryEdges  int     `json:"boundary_edges"`
	MinEdgeLength  float64 `json:"min_edge_length"`
	MaxEdgeLength  float64 `json:"max_edge_length"`
	MeanEdgeLength float64 `json:"mean_edge_length"`
	StdEdgeLength  float64 `json:"std_edge_length"`
	SurfaceArea    float64 `json:"surface_area"`
}

func ComputeStats(mesh *data.Mesh) Stats {
	stats := Stats{
		NumVertices: mesh.NumVertices(),
		NumFaces:    mesh.NumFaces(),
	}
	if mesh.NumFaces() == 0 {
		return stats
	}

	usage := edgeUsage(mesh)
	lengths := make([]float64, 0, len(usage))
	for e, count := range usage {
		lengths = append(lengths, r3.Norm(r3.Sub(mesh.Vertices[e.a], mesh.Vertices[e.b])))
		if count == 1 {
			stats.BoundaryEdges++
		}
	}
	stats.NumEdges = len(lengths)
	stats.MinEdgeLength = floats.Min(lengths)
	stats.MaxEdgeLength = floats.Max(lengths)
	stats.MeanEdgeLength, stats.StdEdgeLength = stat.MeanStdDev(lengths, nil)

	areas := make([]float64, mesh.NumFaces())
	for f := range mesh.Faces {
		areas[f] = faceArea(mesh, f)
	}
	stats.SurfaceArea = floats.Sum(areas)
	return stats
}
