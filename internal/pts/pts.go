package pts

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/shopspring/decimal"
)

// Reads a PTS or XYZ file. Each record is "x y z [intensity] [r g b]": 4 columns carry an intensity,
// 6 columns a color and 7 columns both. An optional point count may precede the records and lines
// starting with # or // are comments. Malformed records are skipped.
func ReadPtsFile(path string) ([]*data.Point, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	points, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return points, nil
}

func Read(r io.Reader) ([]*data.Point, error) {
	scanner := bufio.NewScanner(r)
	points := make([]*data.Point, 0)
	firstRecord := true

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		fields := strings.Fields(line)

		if firstRecord {
			firstRecord = false
			if len(fields) == 1 {
				if _, err := strconv.Atoi(fields[0]); err == nil {
					continue
				}
			}
		}

		if point, ok := parseRecord(fields); ok {
			points = append(points, point)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no valid points found")
	}
	return points, nil
}

func parseRecord(fields []string) (*data.Point, bool) {
	if len(fields) < 3 {
		return nil, false
	}
	var coords [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, false
		}
		coords[i] = v
	}

	point := &data.Point{X: coords[0], Y: coords[1], Z: coords[2]}
	switch {
	case len(fields) >= 7:
		point.Intensity = parseChannel(fields[3], 0)
		point.R, point.G, point.B = parseChannel(fields[4], 128), parseChannel(fields[5], 128), parseChannel(fields[6], 128)
		point.HasColor = true
	case len(fields) >= 6:
		point.R, point.G, point.B = parseChannel(fields[3], 128), parseChannel(fields[4], 128), parseChannel(fields[5], 128)
		point.HasColor = true
	case len(fields) == 4:
		point.Intensity = parseChannel(fields[3], 0)
	}
	return point, true
}

// Parses an 8 bit channel, falling back to the given value
func parseChannel(field string, fallback uint8) uint8 {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return fallback
	}
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

// Writes "x y z" records, followed by "nx ny nz" when the buffer has normals
func WritePtsFile(path string, points *data.PointBuffer, precision int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, points, precision); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

func Write(w io.Writer, points *data.PointBuffer, precision int) error {
	out := bufio.NewWriter(w)
	format := func(v float64) string {
		return decimal.NewFromFloat(v).StringFixed(int32(precision))
	}

	for i := 0; i < points.NumPoints(); i++ {
		p := points.Point(i)
		fields := []string{format(p.X), format(p.Y), format(p.Z)}
		if n, ok := points.Normal(i); ok {
			fields = append(fields, format(n.X), format(n.Y), format(n.Z))
		}
		if _, err := out.WriteString(strings.Join(fields, " ") + "\n"); err != nil {
			return err
		}
	}
	return out.Flush()
}
