package mcubes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeTableMatchesCornerParity(t *testing.T) {
	for cube := 0; cube < 256; cube++ {
		var expected uint16
		for e, corners := range edgeCorners {
			inA := cube&(1<<uint(corners[0])) != 0
			inB := cube&(1<<uint(corners[1])) != 0
			if inA != inB {
				expected |= 1 << uint(e)
			}
		}
		require.Equal(t, expected, edgeTable[cube], "cube index %d", cube)
	}
}

func TestTriTableUsesExactlyTheCrossedEdges(t *testing.T) {
	for cube := 0; cube < 256; cube++ {
		row := triTable[cube]
		var used uint16
		count := 0
		for _, e := range row {
			if e == -1 {
				break
			}
			require.True(t, e >= 0 && e < 12, "cube index %d", cube)
			used |= 1 << uint(e)
			count++
		}
		assert.Equal(t, 0, count%3, "cube index %d has a partial triangle", cube)
		assert.LessOrEqual(t, count, 15)
		assert.Equal(t, edgeTable[cube], used, "cube index %d", cube)
		for i := count; i < len(row); i++ {
			assert.Equal(t, int8(-1), row[i], "cube index %d is not terminated", cube)
		}
	}
}

func TestTablesTrivialCases(t *testing.T) {
	assert.Equal(t, uint16(0), edgeTable[0])
	assert.Equal(t, uint16(0), edgeTable[255])
	assert.Equal(t, int8(-1), triTable[0][0])
	assert.Equal(t, int8(-1), triTable[255][0])
	assert.Equal(t, [16]int8{0, 8, 3, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1}, triTable[1])
}
