package geometry

import "gonum.org/v1/gonum/spatial/r3"

// Point coordinate as handled by the coordinate converters
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

func NewCoordinate(v r3.Vec) Coordinate {
	return Coordinate{X: v.X, Y: v.Y, Z: v.Z}
}

func (c Coordinate) Vec() r3.Vec {
	return r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
}
