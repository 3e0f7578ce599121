package converters

import "github.com/ecopia-map/surface_mesher/internal/geometry"

// Converter used when input and output share the same reference system
type identityConverter struct{}

func NewIdentityConverter() CoordinateConverter {
	return identityConverter{}
}

func (identityConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error) {
	if sourceSrid != targetSrid {
		return coord, errSridMismatch(sourceSrid, targetSrid)
	}
	return coord, nil
}

func (identityConverter) ConvertCoordinates(sourceSrid int, targetSrid int, coords []geometry.Coordinate) error {
	if sourceSrid != targetSrid {
		return errSridMismatch(sourceSrid, targetSrid)
	}
	return nil
}

func (identityConverter) ConvertBoundingBox(sourceSrid int, targetSrid int, bbox *geometry.BoundingBox) (*geometry.BoundingBox, error) {
	if sourceSrid != targetSrid {
		return nil, errSridMismatch(sourceSrid, targetSrid)
	}
	copied := *bbox
	return &copied, nil
}

func (identityConverter) Cleanup() {}
