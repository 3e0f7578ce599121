package converters

import (
	"testing"

	"github.com/ecopia-map/surface_mesher/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityConverter(t *testing.T) {
	cc := NewIdentityConverter()
	defer cc.Cleanup()

	coord := geometry.Coordinate{X: 1, Y: 2, Z: 3}
	converted, err := cc.ConvertCoordinateSrid(4326, 4326, coord)
	require.NoError(t, err)
	assert.Equal(t, coord, converted)

	_, err = cc.ConvertCoordinateSrid(4326, 3857, coord)
	assert.Error(t, err)

	bbox := geometry.NewBoundingBox(0, 1, 0, 1, 0, 1)
	copied, err := cc.ConvertBoundingBox(32632, 32632, bbox)
	require.NoError(t, err)
	assert.Equal(t, *bbox, *copied)
	assert.NotSame(t, bbox, copied)
}
