package converters

import (
	"fmt"

	"github.com/ecopia-map/surface_mesher/internal/geometry"
)

type CoordinateConverter interface {
	ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error)
	ConvertCoordinates(sourceSrid int, targetSrid int, coords []geometry.Coordinate) error
	ConvertBoundingBox(sourceSrid int, targetSrid int, bbox *geometry.BoundingBox) (*geometry.BoundingBox, error)
	Cleanup()
}

type ElevationCorrector interface {
	CorrectElevation(x, y, z float64) float64
}

func errSridMismatch(sourceSrid, targetSrid int) error {
	return fmt.Errorf("identity converter cannot reproject EPSG:%d to EPSG:%d", sourceSrid, targetSrid)
}
