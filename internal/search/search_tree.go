package search

import (
	"sort"

	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Result of a neighbour query: index of the point in the indexed set and its distance from the query
type Neighbor struct {
	Index    int
	Distance float64
}

// Static spatial index over an immutable point set. Queries never mutate the tree and can be issued
// concurrently from multiple goroutines.
type SearchTree struct {
	points []r3.Vec
	tree   *kdtree.Tree
}

// Builds the index over the given points. The slice is retained, callers must not modify it afterwards.
func NewSearchTree(points []r3.Vec) (*SearchTree, error) {
	if len(points) == 0 {
		return nil, mesher.NotEnoughPoints(0, 1)
	}

	nodes := make(treePoints, len(points))
	for i, p := range points {
		nodes[i] = treePoint{pos: p, index: i}
	}

	return &SearchTree{
		points: points,
		tree:   kdtree.New(nodes, false),
	}, nil
}

func (t *SearchTree) Len() int {
	return len(t.points)
}

// Returns the min(k, N) nearest neighbours of q, ascending by distance. Equal distances are ordered by index.
func (t *SearchTree) KNearestNeighbors(q r3.Vec, k int) []Neighbor {
	if k <= 0 {
		return []Neighbor{}
	}
	if k > len(t.points) {
		k = len(t.points)
	}

	keeper := kdtree.NewNKeeper(k)
	t.tree.NearestSet(keeper, treePoint{pos: q, index: -1})

	neighbors := collect(keeper.Heap)
	sortNeighbors(neighbors)
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

func (t *SearchTree) KNearest(q r3.Vec, k int) []r3.Vec {
	return t.positions(t.KNearestNeighbors(q, k))
}

func (t *SearchTree) KNearestIndices(q r3.Vec, k int) []int {
	return indices(t.KNearestNeighbors(q, k))
}

// Returns every point within distance r of q, boundary included
func (t *SearchTree) RadiusNeighbors(q r3.Vec, r float64) []Neighbor {
	if r < 0 {
		return []Neighbor{}
	}

	keeper := kdtree.NewDistKeeper(r * r)
	t.tree.NearestSet(keeper, treePoint{pos: q, index: -1})

	neighbors := collect(keeper.Heap)
	sortNeighbors(neighbors)
	return neighbors
}

func (t *SearchTree) Radius(q r3.Vec, r float64) []r3.Vec {
	return t.positions(t.RadiusNeighbors(q, r))
}

func (t *SearchTree) RadiusIndices(q r3.Vec, r float64) []int {
	return indices(t.RadiusNeighbors(q, r))
}

func (t *SearchTree) positions(neighbors []Neighbor) []r3.Vec {
	out := make([]r3.Vec, len(neighbors))
	for i, n := range neighbors {
		out[i] = t.points[n.Index]
	}
	return out
}

func indices(neighbors []Neighbor) []int {
	out := make([]int, len(neighbors))
	for i, n := range neighbors {
		out[i] = n.Index
	}
	return out
}

func sortNeighbors(neighbors []Neighbor) {
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].Index < neighbors[j].Index
	})
}
