package normals

import (
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"gonum.org/v1/gonum/spatial/r3"
)

// Applies the requested orientation to the normals in place.
// With OrientationCentroid every normal is flipped to point away from the centroid of the points.
func Orient(points []r3.Vec, normals []r3.Vec, mode mesher.NormalOrientation) error {
	if len(points) != len(normals) {
		return mesher.InvalidParameters("normal count %d does not match point count %d", len(normals), len(points))
	}

	switch mesher.ParseNormalOrientation(string(mode)) {
	case mesher.OrientationNone:
		return nil
	case mesher.OrientationCentroid:
		var centroid r3.Vec
		for _, p := range points {
			centroid = r3.Add(centroid, p)
		}
		if len(points) > 0 {
			centroid = r3.Scale(1/float64(len(points)), centroid)
		}
		for i, p := range points {
			if r3.Dot(r3.Sub(p, centroid), normals[i]) < 0 {
				normals[i] = r3.Scale(-1, normals[i])
			}
		}
		return nil
	}
	return mesher.InvalidParameters("unknown normal orientation %q", mode)
}
