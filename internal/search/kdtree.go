package search

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// treePoint is a point stored in the kd tree together with its index in the originating point set
type treePoint struct {
	pos   r3.Vec
	index int
}

func (p treePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(treePoint)
	switch d {
	case 0:
		return p.pos.X - q.pos.X
	case 1:
		return p.pos.Y - q.pos.Y
	case 2:
		return p.pos.Z - q.pos.Z
	}
	panic("illegal dimension")
}

func (p treePoint) Dims() int { return 3 }

// Squared euclidean distance, the kd tree pruning compares squared plane offsets against it
func (p treePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(treePoint)
	return r3.Norm2(r3.Sub(p.pos, q.pos))
}

type treePoints []treePoint

func (p treePoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p treePoints) Len() int                              { return len(p) }
func (p treePoints) Pivot(d kdtree.Dim) int                { return plane{Dim: d, treePoints: p}.Pivot() }
func (p treePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts points along a single dimension during tree construction
type plane struct {
	kdtree.Dim
	treePoints
}

func (p plane) Less(i, j int) bool {
	return p.treePoints[i].Compare(p.treePoints[j], p.Dim) < 0
}

func (p plane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.treePoints = p.treePoints[start:end]
	return p
}

func (p plane) Swap(i, j int) {
	p.treePoints[i], p.treePoints[j] = p.treePoints[j], p.treePoints[i]
}

// Unpacks the content of a keeper heap, dropping the sentinel entries the keepers start with.
// Distances are converted back from squared to euclidean.
func collect(heap kdtree.Heap) []Neighbor {
	out := make([]Neighbor, 0, len(heap))
	for _, item := range heap {
		if item.Comparable == nil {
			continue
		}
		out = append(out, Neighbor{
			Index:    item.Comparable.(treePoint).index,
			Distance: math.Sqrt(item.Dist),
		})
	}
	return out
}
