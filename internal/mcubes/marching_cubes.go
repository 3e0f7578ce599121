package mcubes

import (
	"math"
	"sort"
	"time"

	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/ecopia-map/surface_mesher/internal/grid"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/tools"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

const interpolationEpsilon = 1e-10

// Produces a triangle mesh approximating the zero level set of a field
type Extractor interface {
	Extract() (*data.Mesh, error)
}

// Corner pairs joined by each of the 12 cube edges
var edgeCorners = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Edges leaving corner 0 along x, y and z
const (
	edgeAlongX = 0
	edgeAlongY = 3
	edgeAlongZ = 8
)

// Identifies a lattice edge independently of the voxel it is seen from: the lower endpoint and the axis
type edgeKey struct {
	origin grid.Coord
	axis   uint8
}

// Marching cubes over the non empty voxels of a hash grid
type MarchingCubes struct {
	grid       *grid.HashGrid
	field      *Field
	sampling   mesher.FieldSampling
	numThreads int
}

func NewMarchingCubes(g *grid.HashGrid, field *Field, sampling mesher.FieldSampling, numThreads int) *MarchingCubes {
	if parsed := mesher.ParseFieldSampling(string(sampling)); parsed != "" {
		sampling = parsed
	} else {
		sampling = mesher.SampleCenters
	}
	return &MarchingCubes{
		grid:       g,
		field:      field,
		sampling:   sampling,
		numThreads: mesher.ResolveThreads(numThreads),
	}
}

// World position of the field sample with the given lattice coordinate
func (mc *MarchingCubes) samplePosition(c grid.Coord) r3.Vec {
	if mc.sampling == mesher.SampleCorners {
		return mc.grid.CellCorner(c)
	}
	return mc.grid.CellCenter(c)
}

// Runs the extraction. Every run starts from a clean field cache and clears the processed flags,
// so repeated runs return identical meshes.
//
// Vertices are shared per lattice edge rather than per (voxel, edge id): a crossing on an edge common
// to adjacent voxels yields a single vertex, which keeps the surface connected across voxels.
// Faces are emitted with the table's winding reversed, (v0, v2, v1), so that face normals point
// towards the positive side of the field.
func (mc *MarchingCubes) Extract() (*data.Mesh, error) {
	defer tools.TimeTrack(time.Now(), "marching cubes")

	mc.field.Reset()
	mc.grid.ResetProcessed()

	coords := mc.grid.Coords()
	if err := mc.prefetch(coords); err != nil {
		return nil, err
	}

	mesh := data.NewMesh()
	vertexIndex := make(map[edgeKey]int)
	progress := tools.NewProgress("marching cubes", len(coords))

	for _, c := range coords {
		mc.polygonize(c, mesh, vertexIndex)
		mc.grid.MarkProcessed(c)
		progress.Step()
	}

	if mesh.NumVertices() == 0 {
		return nil, mesher.NewAlgorithmError("no surface found, the voxel size may not match the point density")
	}

	mesh.ComputeVertexNormals()
	glog.V(1).Infof("marching cubes: %d voxels, %d vertices, %d faces", len(coords), mesh.NumVertices(), mesh.NumFaces())
	return mesh, nil
}

// Evaluates the field at every sample touched by the voxels. Evaluations run in parallel into
// per slot results that are merged into the cache afterwards.
func (mc *MarchingCubes) prefetch(coords []grid.Coord) error {
	unique := make(map[grid.Coord]struct{}, len(coords)*2)
	for _, c := range coords {
		for _, s := range mc.grid.CellCorners(c) {
			unique[s] = struct{}{}
		}
	}
	samples := make([]grid.Coord, 0, len(unique))
	for s := range unique {
		samples = append(samples, s)
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Less(samples[j]) })

	values := make([]float64, len(samples))
	chunk := (len(samples) + mc.numThreads - 1) / mc.numThreads
	if chunk < 64 {
		chunk = 64
	}

	var group errgroup.Group
	group.SetLimit(mc.numThreads)
	for start := 0; start < len(samples); start += chunk {
		start, end := start, start+chunk
		if end > len(samples) {
			end = len(samples)
		}
		group.Go(func() error {
			for i := start; i < end; i++ {
				values[i] = mc.field.Distance(mc.samplePosition(samples[i]))
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for i, s := range samples {
		mc.field.Store(s, values[i])
	}
	return nil
}

// Triangulates a single voxel, appending the new vertices and faces to the mesh
func (mc *MarchingCubes) polygonize(c grid.Coord, mesh *data.Mesh, vertexIndex map[edgeKey]int) {
	corners := mc.grid.CellCorners(c)

	var positions [8]r3.Vec
	var values [8]float64
	cubeIndex := 0
	for i, s := range corners {
		positions[i] = mc.samplePosition(s)
		values[i] = mc.field.AtCell(s, positions[i])
		if values[i] < 0 {
			cubeIndex |= 1 << uint(i)
		}
	}

	if cubeIndex == 0 || cubeIndex == 255 {
		return
	}
	mask := edgeTable[cubeIndex]
	if mask == 0 {
		return
	}

	var crossings [12]r3.Vec
	for e := 0; e < 12; e++ {
		if mask&(1<<uint(e)) == 0 {
			continue
		}
		a, b := edgeCorners[e][0], edgeCorners[e][1]
		crossings[e] = interpolate(positions[a], positions[b], values[a], values[b])
	}

	row := triTable[cubeIndex]
	for t := 0; t+2 < len(row) && row[t] != -1; t += 3 {
		var face [3]int
		for j := 0; j < 3; j++ {
			e := int(row[t+j])
			key := canonicalEdge(c, e)
			index, ok := vertexIndex[key]
			if !ok {
				index = mesh.AddVertex(crossings[e])
				vertexIndex[key] = index
			}
			face[j] = index
		}
		// the table winds faces towards negative values, flip them to face outwards
		mesh.Faces = append(mesh.Faces, [3]int{face[0], face[2], face[1]})
	}
}

// Maps a local edge of the cube anchored at c to the lattice edge it lies on
func canonicalEdge(c grid.Coord, e int) edgeKey {
	oa, ob := grid.CornerOffsets[edgeCorners[e][0]], grid.CornerOffsets[edgeCorners[e][1]]
	a, b := c.Add(oa.X, oa.Y, oa.Z), c.Add(ob.X, ob.Y, ob.Z)
	lower := a
	if b.Less(a) {
		lower = b
	}
	switch {
	case a.X != b.X:
		return edgeKey{origin: lower, axis: edgeAlongX}
	case a.Y != b.Y:
		return edgeKey{origin: lower, axis: edgeAlongY}
	}
	return edgeKey{origin: lower, axis: edgeAlongZ}
}

// Point of the segment p1-p2 where the linearly interpolated field crosses zero
func interpolate(p1, p2 r3.Vec, d1, d2 float64) r3.Vec {
	if math.Abs(d1) < interpolationEpsilon {
		return p1
	}
	if math.Abs(d2) < interpolationEpsilon {
		return p2
	}
	if math.Abs(d1-d2) < interpolationEpsilon {
		return p1
	}
	t := d1 / (d1 - d2)
	return r3.Add(p1, r3.Scale(t, r3.Sub(p2, p1)))
}
