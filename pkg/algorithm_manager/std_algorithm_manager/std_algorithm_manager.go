package std_algorithm_manager

import (
	"github.com/ecopia-map/surface_mesher/internal/converters"
	"github.com/ecopia-map/surface_mesher/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/surface_mesher/internal/converters/proj4_coordinate_converter"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	options             *mesher.PipelineOptions
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
}

// Uses the proj4 converter only when the target srid differs from the input one
func NewAlgorithmManager(opts *mesher.PipelineOptions) algorithm_manager.AlgorithmManager {
	var converter converters.CoordinateConverter
	if opts.EffectiveTargetSrid() != opts.Srid {
		converter = proj4_coordinate_converter.NewProj4CoordinateConverter()
	} else {
		converter = converters.NewIdentityConverter()
	}

	return &StandardAlgorithmManager{
		options:             opts,
		coordinateConverter: converter,
		elevationCorrector:  offset_elevation_corrector.NewOffsetElevationCorrector(opts.ZOffset),
	}
}

func (m *StandardAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return m.elevationCorrector
}

func (m *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return m.coordinateConverter
}
