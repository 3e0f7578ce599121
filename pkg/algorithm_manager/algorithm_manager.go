package algorithm_manager

import (
	"github.com/ecopia-map/surface_mesher/internal/converters"
)

type AlgorithmManager interface {
	GetElevationCorrectionAlgorithm() converters.ElevationCorrector
	GetCoordinateConverterAlgorithm() converters.CoordinateConverter
}
