package pts

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestReadColumns(t *testing.T) {
	content := strings.Join([]string{
		"4",
		"# comment",
		"// another comment",
		"1 2 3",
		"1 2 3 42",
		"1 2 3 10 20 30",
		"1 2 3 7 10 20 30",
		"not a point",
		"1 2",
	}, "\n")

	points, err := Read(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, points, 4)

	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, points[0].Position())
	assert.False(t, points[0].HasColor)
	assert.Equal(t, uint8(42), points[1].Intensity)
	assert.True(t, points[2].HasColor)
	assert.Equal(t, uint8(20), points[2].G)
	assert.Equal(t, uint8(0), points[2].Intensity)
	assert.Equal(t, uint8(7), points[3].Intensity)
	assert.Equal(t, uint8(30), points[3].B)
}

func TestReadCountOnlyOnFirstRecord(t *testing.T) {
	points, err := Read(strings.NewReader("1 1 1\n5\n2 2 2\n"))
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader("# nothing\n12\n"))
	assert.Error(t, err)

	_, err = ReadPtsFile(filepath.Join(t.TempDir(), "missing.xyz"))
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	buffer := data.NewPointBuffer([]r3.Vec{{X: 1.23456, Y: 2, Z: 3}, {X: -4, Y: 5.5, Z: 6}})
	require.NoError(t, buffer.SetNormals([]r3.Vec{{Z: 1}, {X: 1}}))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, buffer, 3))
	assert.Equal(t, "1.235 2.000 3.000 0.000 0.000 1.000\n-4.000 5.500 6.000 1.000 0.000 0.000\n", buf.String())

	path := filepath.Join(t.TempDir(), "points.xyz")
	require.NoError(t, WritePtsFile(path, buffer, 4))
	points, err := ReadPtsFile(path)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, r3.Vec{X: -4, Y: 5.5, Z: 6}, points[1].Position())
}
