package io

import "github.com/ecopia-map/surface_mesher/internal/mesher"

// Contains the data needed to turn a single input point cloud into a mesh file
type WorkUnit struct {
	InputPath  string
	OutputPath string
	Opts       *mesher.PipelineOptions
}
