package grid

import "fmt"

// Integer voxel coordinate, used as key of the hash grid
type Coord struct {
	X, Y, Z int
}

func (c Coord) Add(dx, dy, dz int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Orders coordinates by z, then y, then x
func (c Coord) Less(o Coord) bool {
	if c.Z != o.Z {
		return c.Z < o.Z
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// Offsets of the 8 corners of a voxel relative to its coordinate, in marching cubes corner order
var CornerOffsets = [8]Coord{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// Content of a voxel: the indices of the points falling inside it, the cached scalar field
// value at the voxel coordinate and the processed flag of the extractor
type Cell struct {
	PointIndices []int
	Distance     float64
	HasDistance  bool
	Processed    bool
}

func (c *Cell) NumPoints() int {
	return len(c.PointIndices)
}
