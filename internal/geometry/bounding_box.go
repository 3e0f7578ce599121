package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Contains data needed to represent a axis aligned bounding box of a set of points. Mid values are
// precomputed at construction time.
type BoundingBox struct {
	Xmin, Xmax, Ymin, Ymax, Zmin, Zmax float64
	Xmid, Ymid, Zmid                   float64
}

// Constructor to properly initialize a boundingBox struct computing the mids
func NewBoundingBox(Xmin, Xmax, Ymin, Ymax, Zmin, Zmax float64) *BoundingBox {
	return &BoundingBox{
		Xmin: Xmin,
		Xmax: Xmax,
		Ymin: Ymin,
		Ymax: Ymax,
		Zmin: Zmin,
		Zmax: Zmax,
		Xmid: (Xmin + Xmax) / 2,
		Ymid: (Ymin + Ymax) / 2,
		Zmid: (Zmin + Zmax) / 2,
	}
}

// Computes the tight bounding box of the given vectors. Returns nil for an empty slice.
func NewBoundingBoxFromVecs(vecs []r3.Vec) *BoundingBox {
	if len(vecs) == 0 {
		return nil
	}
	minX, minY, minZ := math.Inf(1), math.Inf(1), math.Inf(1)
	maxX, maxY, maxZ := math.Inf(-1), math.Inf(-1), math.Inf(-1)
	for _, v := range vecs {
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
		minZ, maxZ = math.Min(minZ, v.Z), math.Max(maxZ, v.Z)
	}
	return NewBoundingBox(minX, maxX, minY, maxY, minZ, maxZ)
}

// Returns a new box grown by pad on every side
func (b *BoundingBox) Expand(pad float64) *BoundingBox {
	return NewBoundingBox(b.Xmin-pad, b.Xmax+pad, b.Ymin-pad, b.Ymax+pad, b.Zmin-pad, b.Zmax+pad)
}

// Returns the smallest box containing both boxes
func (b *BoundingBox) Merge(other *BoundingBox) *BoundingBox {
	if other == nil {
		return b
	}
	return NewBoundingBox(
		math.Min(b.Xmin, other.Xmin), math.Max(b.Xmax, other.Xmax),
		math.Min(b.Ymin, other.Ymin), math.Max(b.Ymax, other.Ymax),
		math.Min(b.Zmin, other.Zmin), math.Max(b.Zmax, other.Zmax),
	)
}

func (b *BoundingBox) Min() r3.Vec {
	return r3.Vec{X: b.Xmin, Y: b.Ymin, Z: b.Zmin}
}

func (b *BoundingBox) Max() r3.Vec {
	return r3.Vec{X: b.Xmax, Y: b.Ymax, Z: b.Zmax}
}

func (b *BoundingBox) Center() r3.Vec {
	return r3.Vec{X: b.Xmid, Y: b.Ymid, Z: b.Zmid}
}

// Extent of the box along each axis
func (b *BoundingBox) Size() r3.Vec {
	return r3.Vec{X: b.Xmax - b.Xmin, Y: b.Ymax - b.Ymin, Z: b.Zmax - b.Zmin}
}

func (b *BoundingBox) Contains(p r3.Vec) bool {
	return p.X >= b.Xmin && p.X <= b.Xmax &&
		p.Y >= b.Ymin && p.Y <= b.Ymax &&
		p.Z >= b.Zmin && p.Z <= b.Zmax
}
