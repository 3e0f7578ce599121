package offset_elevation_corrector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectElevation(t *testing.T) {
	corrector := NewOffsetElevationCorrector(-12.5)
	assert.Equal(t, 87.5, corrector.CorrectElevation(10, 20, 100))
	assert.Equal(t, 3.0, NewOffsetElevationCorrector(0).CorrectElevation(0, 0, 3))
}
