package proj4_coordinate_converter

import (
	"fmt"
	"math"
	"sync"

	"github.com/ecopia-map/surface_mesher/internal/converters"
	"github.com/ecopia-map/surface_mesher/internal/geometry"
	"github.com/golang/glog"
	proj "github.com/xeonx/proj4"
	"gonum.org/v1/gonum/spatial/r3"
)

const toRadians = math.Pi / 180
const toDegrees = 180 / math.Pi

// Reprojects coordinates between EPSG systems through proj4. Initialized projections are cached
// until Cleanup is called.
type proj4CoordinateConverter struct {
	sync.Mutex
	projections map[int]*proj.Proj
}

func NewProj4CoordinateConverter() converters.CoordinateConverter {
	return &proj4CoordinateConverter{
		projections: make(map[int]*proj.Proj),
	}
}

func (cc *proj4CoordinateConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error) {
	coords := []geometry.Coordinate{coord}
	if err := cc.ConvertCoordinates(sourceSrid, targetSrid, coords); err != nil {
		return coord, err
	}
	return coords[0], nil
}

// Converts the coordinates in place
func (cc *proj4CoordinateConverter) ConvertCoordinates(sourceSrid int, targetSrid int, coords []geometry.Coordinate) error {
	if sourceSrid == targetSrid || len(coords) == 0 {
		return nil
	}

	cc.Lock()
	defer cc.Unlock()

	src, err := cc.projection(sourceSrid)
	if err != nil {
		return err
	}
	dst, err := cc.projection(targetSrid)
	if err != nil {
		return err
	}

	x := make([]float64, len(coords))
	y := make([]float64, len(coords))
	z := make([]float64, len(coords))
	for i, c := range coords {
		x[i], y[i], z[i] = c.X, c.Y, c.Z
		if isGeographic(sourceSrid) {
			x[i] *= toRadians
			y[i] *= toRadians
		}
	}

	if err := proj.TransformRaw(src, dst, x, y, z); err != nil {
		return fmt.Errorf("reprojecting EPSG:%d to EPSG:%d: %w", sourceSrid, targetSrid, err)
	}

	for i := range coords {
		if isGeographic(targetSrid) {
			x[i] *= toDegrees
			y[i] *= toDegrees
		}
		coords[i] = geometry.Coordinate{X: x[i], Y: y[i], Z: z[i]}
	}
	return nil
}

// Reprojects the eight corners of the box and returns their bounds
func (cc *proj4CoordinateConverter) ConvertBoundingBox(sourceSrid int, targetSrid int, bbox *geometry.BoundingBox) (*geometry.BoundingBox, error) {
	corners := make([]geometry.Coordinate, 0, 8)
	for _, x := range []float64{bbox.Xmin, bbox.Xmax} {
		for _, y := range []float64{bbox.Ymin, bbox.Ymax} {
			for _, z := range []float64{bbox.Zmin, bbox.Zmax} {
				corners = append(corners, geometry.Coordinate{X: x, Y: y, Z: z})
			}
		}
	}
	if err := cc.ConvertCoordinates(sourceSrid, targetSrid, corners); err != nil {
		return nil, err
	}

	vecs := make([]r3.Vec, len(corners))
	for i, c := range corners {
		vecs[i] = c.Vec()
	}
	return geometry.NewBoundingBoxFromVecs(vecs), nil
}

// Releases all the cached projections
func (cc *proj4CoordinateConverter) Cleanup() {
	cc.Lock()
	defer cc.Unlock()
	for srid, p := range cc.projections {
		p.Close()
		delete(cc.projections, srid)
	}
}

// Must be called holding the lock
func (cc *proj4CoordinateConverter) projection(srid int) (*proj.Proj, error) {
	if p, ok := cc.projections[srid]; ok {
		return p, nil
	}
	def, err := definition(srid)
	if err != nil {
		return nil, err
	}
	p, err := proj.InitPlus(def)
	if err != nil {
		return nil, fmt.Errorf("initializing projection EPSG:%d: %w", srid, err)
	}
	glog.V(1).Infof("initialized projection EPSG:%d (%s)", srid, def)
	cc.projections[srid] = p
	return p, nil
}
