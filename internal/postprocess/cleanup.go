package postprocess

import (
	"errors"

	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/golang/glog"
	"gonum.org/v1/gonum/spatial/r3"
)

var ErrNotImplemented = errors.New("not implemented")

const degenerateArea = 1e-12

type edge struct {
	a, b int
}

func newEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a: a, b: b}
}

func faceArea(mesh *data.Mesh, f int) float64 {
	return r3.Norm(mesh.FaceNormal(f)) / 2
}

// Keeps only the faces for which keep returns true. Vertex normals are left as they are.
func filterFaces(mesh *data.Mesh, keep func(f int) bool) int {
	kept := mesh.Faces[:0]
	removed := 0
	for f, face := range mesh.Faces {
		if keep(f) {
			kept = append(kept, face)
		} else {
			removed++
		}
	}
	mesh.Faces = kept
	return removed
}

// Removes faces with repeated vertices or with a negligible area. Returns the number of removed faces.
func RemoveDegenerateFaces(mesh *data.Mesh) int {
	removed := filterFaces(mesh, func(f int) bool {
		face := mesh.Faces[f]
		if face[0] == face[1] || face[1] == face[2] || face[0] == face[2] {
			return false
		}
		return faceArea(mesh, f) >= degenerateArea
	})
	glog.V(1).Infof("removed %d degenerate faces", removed)
	return removed
}

// Drops the vertices not referenced by any face, remapping the face indices. Returns the number of removed vertices.
func RemoveUnreferencedVertices(mesh *data.Mesh) int {
	remap := make([]int, len(mesh.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	for _, face := range mesh.Faces {
		for _, v := range face {
			remap[v] = 0
		}
	}

	hasNormals := mesh.HasNormals()
	next := 0
	for i := range mesh.Vertices {
		if remap[i] < 0 {
			continue
		}
		remap[i] = next
		mesh.Vertices[next] = mesh.Vertices[i]
		if hasNormals {
			mesh.VertexNormals[next] = mesh.VertexNormals[i]
		}
		next++
	}

	removed := len(mesh.Vertices) - next
	mesh.Vertices = mesh.Vertices[:next]
	if hasNormals {
		mesh.VertexNormals = mesh.VertexNormals[:next]
	}
	for f, face := range mesh.Faces {
		mesh.Faces[f] = [3]int{remap[face[0]], remap[face[1]], remap[face[2]]}
	}
	return removed
}

// Removes the connected regions, faces linked through shared vertices, made of fewer than minFaces faces.
// Unreferenced vertices are dropped afterwards. Returns the number of removed faces.
func RemoveSmallRegions(mesh *data.Mesh, minFaces int) (int, error) {
	if minFaces < 0 {
		return 0, mesher.InvalidParameters("small region threshold cannot be negative, got %d", minFaces)
	}
	if minFaces == 0 || mesh.NumFaces() == 0 {
		return 0, nil
	}

	regions := newUnionFind(mesh.NumVertices())
	for _, face := range mesh.Faces {
		regions.union(face[0], face[1])
		regions.union(face[1], face[2])
	}
	sizes := make(map[int]int)
	for _, face := range mesh.Faces {
		sizes[regions.find(face[0])]++
	}

	removed := filterFaces(mesh, func(f int) bool {
		return sizes[regions.find(mesh.Faces[f][0])] >= minFaces
	})
	RemoveUnreferencedVertices(mesh)
	glog.V(1).Infof("removed %d faces in %d regions smaller than %d faces", removed, countBelow(sizes, minFaces), minFaces)
	return removed, nil
}

func countBelow(sizes map[int]int, threshold int) int {
	count := 0
	for _, s := range sizes {
		if s < threshold {
			count++
		}
	}
	return count
}

// Counts how many faces use each undirected edge
func edgeUsage(mesh *data.Mesh) map[edge]int {
	usage := make(map[edge]int, mesh.NumFaces()*3/2)
	for _, face := range mesh.Faces {
		for i := 0; i < 3; i++ {
			usage[newEdge(face[i], face[(i+1)%3])]++
		}
	}
	return usage
}

// Erodes ragged borders: faces with two or three boundary edges are removed, faces with a single boundary
// edge are removed when their area is below areaThreshold. Returns the number of removed faces.
func CleanContours(mesh *data.Mesh, iterations int, areaThreshold float64) int {
	total := 0
	for it := 0; it < iterations; it++ {
		usage := edgeUsage(mesh)
		removed := filterFaces(mesh, func(f int) bool {
			face := mesh.Faces[f]
			boundary := 0
			for i := 0; i < 3; i++ {
				if usage[newEdge(face[i], face[(i+1)%3])] == 1 {
					boundary++
				}
			}
			switch {
			case boundary >= 2:
				return false
			case boundary == 1:
				return faceArea(mesh, f) >= areaThreshold
			}
			return true
		})
		total += removed
		if removed == 0 {
			break
		}
	}
	return total
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}
