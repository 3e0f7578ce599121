package data

import (
	"fmt"

	"github.com/ecopia-map/surface_mesher/internal/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// Color of a point, 8 bits per component
type Color struct {
	R, G, B uint8
}

// Ordered, index addressable set of points with optional per point normals, colors and intensities.
// Indices are stable for the lifetime of the buffer.
type PointBuffer struct {
	points      []r3.Vec
	normals     []r3.Vec
	colors      []Color
	intensities []uint8
}

func NewPointBuffer(points []r3.Vec) *PointBuffer {
	return &PointBuffer{points: points}
}

// Builds a buffer from decoded file records. Normals and colors are attached only when every record has them.
func NewPointBufferFromPoints(points []*Point) *PointBuffer {
	buffer := &PointBuffer{points: make([]r3.Vec, len(points))}
	allNormals, allColors := len(points) > 0, len(points) > 0
	for i, p := range points {
		buffer.points[i] = p.Position()
		allNormals = allNormals && p.HasNormal
		allColors = allColors && p.HasColor
	}
	if allNormals {
		buffer.normals = make([]r3.Vec, len(points))
		for i, p := range points {
			buffer.normals[i] = p.Normal()
		}
	}
	if allColors {
		buffer.colors = make([]Color, len(points))
		for i, p := range points {
			buffer.colors[i] = Color{R: p.R, G: p.G, B: p.B}
		}
	}
	buffer.intensities = make([]uint8, len(points))
	for i, p := range points {
		buffer.intensities[i] = p.Intensity
	}
	return buffer
}

func (b *PointBuffer) NumPoints() int {
	return len(b.points)
}

func (b *PointBuffer) Point(i int) r3.Vec {
	return b.points[i]
}

// Returns the backing slice, callers must not modify it
func (b *PointBuffer) Points() []r3.Vec {
	return b.points
}

// Replaces the position of the i-th point
func (b *PointBuffer) SetPoint(i int, p r3.Vec) {
	b.points[i] = p
}

func (b *PointBuffer) HasNormals() bool {
	return b.normals != nil
}

func (b *PointBuffer) Normal(i int) (r3.Vec, bool) {
	if b.normals == nil || i < 0 || i >= len(b.normals) {
		return r3.Vec{}, false
	}
	return b.normals[i], true
}

func (b *PointBuffer) Normals() []r3.Vec {
	return b.normals
}

// Attaches normals to the buffer, the slice must have one entry per point
func (b *PointBuffer) SetNormals(normals []r3.Vec) error {
	if len(normals) != len(b.points) {
		return fmt.Errorf("normal count %d does not match point count %d", len(normals), len(b.points))
	}
	b.normals = normals
	return nil
}

func (b *PointBuffer) ClearNormals() {
	b.normals = nil
}

func (b *PointBuffer) HasColors() bool {
	return b.colors != nil
}

func (b *PointBuffer) Color(i int) (Color, bool) {
	if b.colors == nil || i < 0 || i >= len(b.colors) {
		return Color{}, false
	}
	return b.colors[i], true
}

func (b *PointBuffer) Intensity(i int) uint8 {
	if i < 0 || i >= len(b.intensities) {
		return 0
	}
	return b.intensities[i]
}

// Deep copy of the buffer
func (b *PointBuffer) Copy() *PointBuffer {
	return &PointBuffer{
		points:      append([]r3.Vec(nil), b.points...),
		normals:     copyOrNil(b.normals),
		colors:      append([]Color(nil), b.colors...),
		intensities: append([]uint8(nil), b.intensities...),
	}
}

func copyOrNil(v []r3.Vec) []r3.Vec {
	if v == nil {
		return nil
	}
	return append(make([]r3.Vec, 0, len(v)), v...)
}

func (b *PointBuffer) BoundingBox() *geometry.BoundingBox {
	return geometry.NewBoundingBoxFromVecs(b.points)
}

// Converts the buffer back to file records
func (b *PointBuffer) ToPoints() []*Point {
	out := make([]*Point, len(b.points))
	for i, v := range b.points {
		p := &Point{X: v.X, Y: v.Y, Z: v.Z, Intensity: b.Intensity(i)}
		if n, ok := b.Normal(i); ok {
			p.SetNormal(n)
		}
		if c, ok := b.Color(i); ok {
			p.R, p.G, p.B, p.HasColor = c.R, c.G, c.B, true
		}
		out[i] = p
	}
	return out
}
