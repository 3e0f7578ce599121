package pkg

import (
	"path/filepath"

	"github.com/ecopia-map/surface_mesher/internal/io"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/internal/reconstruction"
	"github.com/ecopia-map/surface_mesher/tools"
)

type NormalsOptions struct {
	Input             string
	Output            string
	Kn                int
	NormalOrientation mesher.NormalOrientation
	NumThreads        int
	Format            mesher.OutputFormat
	Precision         int
}

// Estimates the normals of a point cloud and writes the cloud with its normals
func RunNormals(opts *NormalsOptions) error {
	format := mesher.ParseOutputFormat(string(opts.Format))
	if format == "" || format == mesher.FormatStl {
		return mesher.InvalidParameters("unsupported point cloud format %q", opts.Format)
	}
	orientation := mesher.ParseNormalOrientation(string(opts.NormalOrientation))
	if orientation == "" {
		return mesher.InvalidParameters("unknown normal orientation %q", opts.NormalOrientation)
	}

	points, err := io.ReadPointCloud(opts.Input)
	if err != nil {
		return err
	}
	tools.LogOutput("> read", points.NumPoints(), "points from", filepath.Base(opts.Input))

	withNormals, err := reconstruction.EstimateNormals(points, opts.Kn, orientation, opts.NumThreads)
	if err != nil {
		return err
	}

	if err := tools.CreateDirectoryIfDoesNotExist(filepath.Dir(opts.Output)); err != nil {
		return err
	}
	if err := io.WritePointCloud(opts.Output, withNormals, format, opts.Precision); err != nil {
		return err
	}
	tools.LogOutput("> wrote", withNormals.NumPoints(), "points with normals to", opts.Output)
	return nil
}
