package offset_elevation_corrector

import "github.com/ecopia-map/surface_mesher/internal/converters"

// Shifts every elevation by a constant amount
type OffsetElevationCorrector struct {
	Offset float64
}

func NewOffsetElevationCorrector(offset float64) converters.ElevationCorrector {
	return &OffsetElevationCorrector{
		Offset: offset,
	}
}

func (c *OffsetElevationCorrector) CorrectElevation(x, y, z float64) float64 {
	return z + c.Offset
}
