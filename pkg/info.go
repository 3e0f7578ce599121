package pkg

import (
	"github.com/ecopia-map/surface_mesher/internal/geometry"
	"github.com/ecopia-map/surface_mesher/internal/io"
	"github.com/ecopia-map/surface_mesher/internal/postprocess"
)

type Info struct {
	Path        string                `json:"path"`
	NumPoints   int                   `json:"num_points"`
	HasNormals  bool                  `json:"has_normals"`
	HasColors   bool                  `json:"has_colors"`
	BoundingBox *geometry.BoundingBox `json:"bounding_box"`
	Mesh        *postprocess.Stats    `json:"mesh,omitempty"`
}

// Describes a point cloud or mesh file
func RunInfo(path string) (*Info, error) {
	dataset, err := io.ReadDataset(path)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Path:        path,
		NumPoints:   dataset.Points.NumPoints(),
		HasNormals:  dataset.Points.HasNormals(),
		HasColors:   dataset.Points.HasColors(),
		BoundingBox: dataset.Points.BoundingBox(),
	}
	if dataset.Mesh != nil {
		stats := postprocess.ComputeStats(dataset.Mesh)
		info.Mesh = &stats
	}
	return info, nil
}
