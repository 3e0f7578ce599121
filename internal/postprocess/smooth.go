package postprocess

import (
	"sort"

	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/golang/glog"
	"gonum.org/v1/gonum/spatial/r3"
)

// Laplacian smoothing: every iteration moves each vertex by lambda towards the centroid of its
// neighbours. Vertex normals are recomputed at the end.
func SmoothMesh(mesh *data.Mesh, iterations int, lambda float64) error {
	if iterations < 0 || lambda < 0 || lambda > 1 {
		return mesher.InvalidParameters("smoothing needs iterations >= 0 and lambda in [0,1], got %d and %v", iterations, lambda)
	}
	if iterations == 0 {
		return nil
	}
	glog.Infof("smoothing mesh with %d iterations, lambda=%v", iterations, lambda)

	adjacency := make([][]int, mesh.NumVertices())
	for _, face := range mesh.Faces {
		for i := 0; i < 3; i++ {
			v := face[i]
			adjacency[v] = append(adjacency[v], face[(i+1)%3], face[(i+2)%3])
		}
	}
	for v, neighbors := range adjacency {
		adjacency[v] = unique(neighbors)
	}

	positions := make([]r3.Vec, mesh.NumVertices())
	for it := 0; it < iterations; it++ {
		for v, p := range mesh.Vertices {
			neighbors := adjacency[v]
			if len(neighbors) == 0 {
				positions[v] = p
				continue
			}
			var centroid r3.Vec
			for _, n := range neighbors {
				centroid = r3.Add(centroid, mesh.Vertices[n])
			}
			centroid = r3.Scale(1/float64(len(neighbors)), centroid)
			positions[v] = r3.Add(p, r3.Scale(lambda, r3.Sub(centroid, p)))
		}
		mesh.Vertices, positions = positions, mesh.Vertices
	}

	mesh.ComputeVertexNormals()
	return nil
}

func unique(values []int) []int {
	sort.Ints(values)
	out := values[:0]
	for i, v := range values {
		if i == 0 || v != values[i-1] {
			out = append(out, v)
		}
	}
	return out
}

// Edge collapse decimation keeping targetRatio of the faces. Only the trivial ratio is supported.
func SimplifyMesh(mesh *data.Mesh, targetRatio float64) error {
	if !(targetRatio > 0) {
		return mesher.InvalidParameters("target ratio must be positive, got %v", targetRatio)
	}
	if targetRatio >= 1 {
		return nil
	}
	return ErrNotImplemented
}

// Closes the boundary loops with at most maxEdges edges. Only the disabled value 0 is supported.
func FillHoles(mesh *data.Mesh, maxEdges int) error {
	if maxEdges < 0 {
		return mesher.InvalidParameters("hole size cannot be negative, got %d", maxEdges)
	}
	if maxEdges == 0 {
		return nil
	}
	return ErrNotImplemented
}
