package io

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/surface_mesher/internal/data"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/internal/ply"
	"github.com/ecopia-map/surface_mesher/internal/pts"
	"github.com/ecopia-map/surface_mesher/internal/stl"
)

// Extensions of the point cloud files accepted as reconstruction input
var PointCloudExtensions = []string{".ply", ".pts", ".xyz", ".txt"}

func IsPointCloudFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range PointCloudExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Content of an input file. Mesh is nil unless the file describes faces.
type Dataset struct {
	Points *data.PointBuffer
	Mesh   *data.Mesh
}

// Reads a point cloud or mesh file, picking the decoder from the extension
func ReadDataset(path string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		cloud, err := ply.ReadPlyFile(path)
		if err != nil {
			return nil, err
		}
		dataset := &Dataset{Points: cloud.PointBuffer()}
		if len(cloud.Faces) > 0 {
			dataset.Mesh = cloud.Mesh()
		}
		return dataset, nil
	case ".pts", ".xyz", ".txt":
		points, err := pts.ReadPtsFile(path)
		if err != nil {
			return nil, err
		}
		return &Dataset{Points: data.NewPointBufferFromPoints(points)}, nil
	case ".stl":
		mesh, err := stl.ReadStlFile(path)
		if err != nil {
			return nil, err
		}
		return &Dataset{Points: data.NewPointBuffer(mesh.Vertices), Mesh: mesh}, nil
	}
	return nil, fmt.Errorf("unsupported file type: %s", path)
}

func ReadPointCloud(path string) (*data.PointBuffer, error) {
	dataset, err := ReadDataset(path)
	if err != nil {
		return nil, err
	}
	return dataset.Points, nil
}

// Writes the mesh in the given format. XYZ output keeps only the vertices and their normals.
func WriteMesh(path string, mesh *data.Mesh, format mesher.OutputFormat, precision int) error {
	switch format {
	case mesher.FormatPly:
		return ply.WritePlyFile(path, mesh, ply.WriteOptions{Precision: precision})
	case mesher.FormatPlyBinary:
		return ply.WritePlyFile(path, mesh, ply.WriteOptions{Binary: true})
	case mesher.FormatStl:
		return stl.WriteStlFile(path, mesh)
	case mesher.FormatXyz:
		vertices := data.NewPointBuffer(mesh.Vertices)
		if mesh.HasNormals() {
			if err := vertices.SetNormals(mesh.VertexNormals); err != nil {
				return err
			}
		}
		return pts.WritePtsFile(path, vertices, precision)
	}
	return mesher.InvalidParameters("unknown output format %q", format)
}

func WritePointCloud(path string, points *data.PointBuffer, format mesher.OutputFormat, precision int) error {
	switch format {
	case mesher.FormatPly:
		return ply.WritePointsFile(path, points, ply.WriteOptions{Precision: precision})
	case mesher.FormatPlyBinary:
		return ply.WritePointsFile(path, points, ply.WriteOptions{Binary: true})
	case mesher.FormatXyz:
		return pts.WritePtsFile(path, points, precision)
	case mesher.FormatStl:
		return mesher.InvalidParameters("point clouds cannot be written as STL")
	}
	return mesher.InvalidParameters("unknown output format %q", format)
}
