package grid

import (
	"math"
	"sort"
	"sync"

	"github.com/ecopia-map/surface_mesher/internal/geometry"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/golang/glog"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sparse uniform voxel grid. Voxels are created lazily on first insertion and keyed by their integer
// coordinate relative to the padded bounding box minimum.
type HashGrid struct {
	cells       map[Coord]*Cell
	voxelSize   float64
	origin      r3.Vec
	dims        Coord
	boundingBox *geometry.BoundingBox

	sync.RWMutex
}

// Builds the grid over the given points. The bounding box is padded by one voxel on every side and
// points are distributed across numThreads shards whose partial grids are merged in shard order.
func NewHashGrid(points []r3.Vec, voxelSize float64, numThreads int) (*HashGrid, error) {
	if !(voxelSize > 0) || math.IsInf(voxelSize, 0) {
		return nil, mesher.InvalidParameters("voxel size must be a positive finite number, got %v", voxelSize)
	}
	if len(points) == 0 {
		return nil, mesher.NotEnoughPoints(0, 1)
	}

	box := geometry.NewBoundingBoxFromVecs(points).Expand(voxelSize)
	size := box.Size()
	g := &HashGrid{
		cells:       make(map[Coord]*Cell),
		voxelSize:   voxelSize,
		origin:      box.Min(),
		boundingBox: box,
		dims: Coord{
			X: int(math.Ceil(size.X/voxelSize)) + 1,
			Y: int(math.Ceil(size.Y/voxelSize)) + 1,
			Z: int(math.Ceil(size.Z/voxelSize)) + 1,
		},
	}

	g.insertParallel(points, mesher.ResolveThreads(numThreads))

	glog.V(1).Infof("hash grid: %d points in %d voxels, voxel size %v, dims %v", len(points), len(g.cells), voxelSize, g.dims)
	return g, nil
}

func (g *HashGrid) insertParallel(points []r3.Vec, numThreads int) {
	if numThreads > len(points) {
		numThreads = len(points)
	}
	shardSize := (len(points) + numThreads - 1) / numThreads
	shards := make([]map[Coord][]int, numThreads)

	var wg sync.WaitGroup
	for s := 0; s < numThreads; s++ {
		start, end := s*shardSize, (s+1)*shardSize
		if end > len(points) {
			end = len(points)
		}
		wg.Add(1)
		go func(slot, start, end int) {
			defer wg.Done()
			local := make(map[Coord][]int)
			for i := start; i < end; i++ {
				c := g.PointToCell(points[i])
				local[c] = append(local[c], i)
			}
			shards[slot] = local
		}(s, start, end)
	}
	wg.Wait()

	// shards cover ascending index ranges, merging them in order keeps every index list sorted
	for _, local := range shards {
		for c, indices := range local {
			cell := g.cells[c]
			if cell == nil {
				cell = &Cell{}
				g.cells[c] = cell
			}
			cell.PointIndices = append(cell.PointIndices, indices...)
		}
	}
}

// Voxel containing the given position
func (g *HashGrid) PointToCell(p r3.Vec) Coord {
	return Coord{
		X: int(math.Floor((p.X - g.origin.X) / g.voxelSize)),
		Y: int(math.Floor((p.Y - g.origin.Y) / g.voxelSize)),
		Z: int(math.Floor((p.Z - g.origin.Z) / g.voxelSize)),
	}
}

// World position of the minimum corner of a voxel
func (g *HashGrid) CellCorner(c Coord) r3.Vec {
	return r3.Vec{
		X: g.origin.X + float64(c.X)*g.voxelSize,
		Y: g.origin.Y + float64(c.Y)*g.voxelSize,
		Z: g.origin.Z + float64(c.Z)*g.voxelSize,
	}
}

func (g *HashGrid) CellCenter(c Coord) r3.Vec {
	half := g.voxelSize / 2
	return r3.Add(g.CellCorner(c), r3.Vec{X: half, Y: half, Z: half})
}

// Coordinates of the 8 voxels sharing the corners of the cube anchored at c
func (g *HashGrid) CellCorners(c Coord) [8]Coord {
	var out [8]Coord
	for i, o := range CornerOffsets {
		out[i] = c.Add(o.X, o.Y, o.Z)
	}
	return out
}

// Looks up a voxel without creating it
func (g *HashGrid) Cell(c Coord) (*Cell, bool) {
	g.RLock()
	cell, ok := g.cells[c]
	g.RUnlock()
	return cell, ok
}

func (g *HashGrid) SetCell(c Coord, cell *Cell) {
	g.Lock()
	g.cells[c] = cell
	g.Unlock()
}

// Inserts the point with the given index, creating its voxel when missing
func (g *HashGrid) AddPoint(index int, p r3.Vec) Coord {
	c := g.PointToCell(p)

	g.RLock()
	cell := g.cells[c]
	g.RUnlock()

	if cell == nil {
		g.Lock()
		cell = g.cells[c]
		if cell == nil {
			cell = &Cell{}
			g.cells[c] = cell
		}
		g.Unlock()
	}

	g.Lock()
	cell.PointIndices = append(cell.PointIndices, index)
	g.Unlock()
	return c
}

// Coordinates of all the voxels, sorted by z, y, x
func (g *HashGrid) Coords() []Coord {
	g.RLock()
	coords := make([]Coord, 0, len(g.cells))
	for c := range g.cells {
		coords = append(coords, c)
	}
	g.RUnlock()

	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}

// Visits the voxels in Coords order
func (g *HashGrid) ForEachCell(fn func(c Coord, cell *Cell)) {
	for _, c := range g.Coords() {
		cell, _ := g.Cell(c)
		fn(c, cell)
	}
}

func (g *HashGrid) NumCells() int {
	g.RLock()
	defer g.RUnlock()
	return len(g.cells)
}

func (g *HashGrid) VoxelSize() float64 {
	return g.voxelSize
}

func (g *HashGrid) Origin() r3.Vec {
	return g.origin
}

// Number of voxels along each axis of the padded bounding box. Informational only, coordinates outside
// this range are valid keys.
func (g *HashGrid) Dims() Coord {
	return g.dims
}

func (g *HashGrid) BoundingBox() *geometry.BoundingBox {
	return g.boundingBox
}

func (g *HashGrid) ResetProcessed() {
	g.Lock()
	for _, cell := range g.cells {
		cell.Processed = false
		cell.HasDistance = false
		cell.Distance = 0
	}
	g.Unlock()
}

func (g *HashGrid) MarkProcessed(c Coord) {
	g.Lock()
	if cell := g.cells[c]; cell != nil {
		cell.Processed = true
	}
	g.Unlock()
}

// Stores a field value in the voxel at c, if the voxel exists
func (g *HashGrid) StoreDistance(c Coord, d float64) {
	g.Lock()
	if cell := g.cells[c]; cell != nil {
		cell.Distance = d
		cell.HasDistance = true
	}
	g.Unlock()
}
