package data

import "gonum.org/v1/gonum/spatial/r3"

// Contains data of a Point Cloud Point as read from the input files, namely X,Y,Z coords,
// the optional normal components, R,G,B color components and Intensity
type Point struct {
	X         float64
	Y         float64
	Z         float64
	NX        float64
	NY        float64
	NZ        float64
	R         uint8
	G         uint8
	B         uint8
	Intensity uint8

	// attributes actually present in the source record
	HasNormal bool
	HasColor  bool
}

// Builds a new Point from the given coordinates, colors and intensity values
func NewPoint(X, Y, Z float64, R, G, B, Intensity uint8) *Point {
	return &Point{
		X:         X,
		Y:         Y,
		Z:         Z,
		R:         R,
		G:         G,
		B:         B,
		Intensity: Intensity,
		HasColor:  true,
	}
}

func (p *Point) Position() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

func (p *Point) Normal() r3.Vec {
	return r3.Vec{X: p.NX, Y: p.NY, Z: p.NZ}
}

func (p *Point) SetNormal(n r3.Vec) {
	p.NX, p.NY, p.NZ = n.X, n.Y, n.Z
	p.HasNormal = true
}
