package mesher

import (
	"math"
	"runtime"
	"strings"
)

type Extractor string
type FieldSampling string
type NormalOrientation string
type OutputFormat string

const (
	// Marching cubes over the non empty voxels of the hash grid
	Sparse Extractor = "SPARSE"

	// Uniform marching cubes over the whole padded bounding box, rendered by sdfx.
	// Slower, but does not depend on point coverage of the voxels.
	Dense Extractor = "DENSE"
)

const (
	// Samples the field at the centers of the 2x2x2 voxel block anchored at each voxel.
	// Default, as corner samples miss surfaces of clouds spanning a single voxel, e.g. 8 cube corners.
	SampleCenters FieldSampling = "CENTER"

	// Samples the field at the minimum corners of the 2x2x2 voxel block, i.e. the voxel corners
	SampleCorners FieldSampling = "CORNER"
)

const (
	// Keeps the sign produced by the covariance analysis
	OrientationNone NormalOrientation = "NONE"

	// Flips normals so that they point away from the centroid of the cloud
	OrientationCentroid NormalOrientation = "CENTROID"
)

const (
	FormatPly       OutputFormat = "PLY"
	FormatPlyBinary OutputFormat = "PLY-BINARY"
	FormatStl       OutputFormat = "STL"
	FormatXyz       OutputFormat = "XYZ"
)

// Minimum number of input points accepted by the reconstruction
const MinReconstructionPoints = 10

func normalize(value string) string {
	return strings.Trim(strings.ToUpper(value), " ")
}

func ParseExtractor(value string) Extractor {
	switch normalize(value) {
	case "SPARSE", "":
		return Sparse
	case "DENSE":
		return Dense
	}
	return ""
}

func ParseFieldSampling(value string) FieldSampling {
	switch normalize(value) {
	case "CENTER", "CENTRE", "":
		return SampleCenters
	case "CORNER":
		return SampleCorners
	}
	return ""
}

func ParseNormalOrientation(value string) NormalOrientation {
	switch normalize(value) {
	case "NONE", "":
		return OrientationNone
	case "CENTROID":
		return OrientationCentroid
	}
	return ""
}

func ParseOutputFormat(value string) OutputFormat {
	switch strings.ReplaceAll(normalize(value), "_", "-") {
	case "PLY", "":
		return FormatPly
	case "PLY-BINARY":
		return FormatPlyBinary
	case "STL":
		return FormatStl
	case "XYZ":
		return FormatXyz
	}
	return ""
}

// Canonical spelling of an enum value. Unknown values are returned unchanged so that Validate rejects them.
func canonical[T ~string](value T, parse func(string) T) T {
	if parsed := parse(string(value)); parsed != "" {
		return parsed
	}
	return value
}

// Extension of the files written in the given format
func (f OutputFormat) Extension() string {
	switch f {
	case FormatStl:
		return ".stl"
	case FormatXyz:
		return ".xyz"
	}
	return ".ply"
}

// Contains the options recognized by the surface reconstruction
type ReconstructionOptions struct {
	VoxelSize            float64           `yaml:"voxel_size" json:"voxel_size"`                         // Edge length of the grid voxels
	Kn                   int               `yaml:"kn" json:"kn"`                                         // Neighbors used for normal estimation
	Ki                   int               `yaml:"ki" json:"ki"`                                         // Neighbors for normal interpolation, reserved
	Kd                   int               `yaml:"kd" json:"kd"`                                         // Neighbors used for field evaluation
	FillHoles            int               `yaml:"fill_holes" json:"fill_holes"`                         // Max hole size to fill, 0 disables
	SmallRegionThreshold int               `yaml:"small_region_threshold" json:"small_region_threshold"` // Regions with fewer faces are removed
	NumThreads           int               `yaml:"num_threads" json:"num_threads"`                       // Parallelism hint, 0 means one per CPU
	Extractor            Extractor         `yaml:"extractor" json:"extractor"`                           // Isosurface extractor to use
	FieldSampling        FieldSampling     `yaml:"field_sampling" json:"field_sampling"`                 // Sample positions of the sparse extractor
	NormalOrientation    NormalOrientation `yaml:"normal_orientation" json:"normal_orientation"`         // Orientation applied to estimated normals
	DenseCells           int               `yaml:"dense_cells" json:"dense_cells"`                       // Cells along the longest axis for DENSE, 0 derives it from VoxelSize
}

func DefaultReconstructionOptions() *ReconstructionOptions {
	return &ReconstructionOptions{
		VoxelSize:            10,
		Kn:                   10,
		Ki:                   10,
		Kd:                   5,
		FillHoles:            0,
		SmallRegionThreshold: 10,
		NumThreads:           0,
		Extractor:            Sparse,
		FieldSampling:        SampleCenters,
		NormalOrientation:    OrientationNone,
		DenseCells:           0,
	}
}

// Validates the options, returning an InvalidParametersError describing the first problem found
func (opt *ReconstructionOptions) Validate() error {
	if opt == nil {
		return InvalidParameters("missing reconstruction options")
	}
	if !(opt.VoxelSize > 0) || math.IsInf(opt.VoxelSize, 0) {
		return InvalidParameters("voxel size must be a positive finite number, got %v", opt.VoxelSize)
	}
	if opt.Kn < 1 {
		return InvalidParameters("kn must be at least 1, got %d", opt.Kn)
	}
	if opt.Kd < 1 {
		return InvalidParameters("kd must be at least 1, got %d", opt.Kd)
	}
	if opt.Ki < 0 || opt.FillHoles < 0 || opt.SmallRegionThreshold < 0 {
		return InvalidParameters("ki, fill_holes and small_region_threshold cannot be negative")
	}
	if opt.NumThreads < 0 {
		return InvalidParameters("num_threads cannot be negative, got %d", opt.NumThreads)
	}
	if opt.DenseCells < 0 {
		return InvalidParameters("dense_cells cannot be negative, got %d", opt.DenseCells)
	}
	if ParseExtractor(string(opt.Extractor)) == "" {
		return InvalidParameters("unknown extractor %q", opt.Extractor)
	}
	if ParseFieldSampling(string(opt.FieldSampling)) == "" {
		return InvalidParameters("unknown field sampling %q", opt.FieldSampling)
	}
	if ParseNormalOrientation(string(opt.NormalOrientation)) == "" {
		return InvalidParameters("unknown normal orientation %q", opt.NormalOrientation)
	}
	return nil
}

// Number of worker goroutines to use, resolving 0 to the number of CPUs
func (opt *ReconstructionOptions) Threads() int {
	return ResolveThreads(opt.NumThreads)
}

func ResolveThreads(numThreads int) int {
	if numThreads <= 0 {
		return runtime.NumCPU()
	}
	return numThreads
}

// Rewrites the enum fields in their canonical spelling
func (opt *ReconstructionOptions) Normalize() {
	opt.Extractor = canonical(opt.Extractor, ParseExtractor)
	opt.FieldSampling = canonical(opt.FieldSampling, ParseFieldSampling)
	opt.NormalOrientation = canonical(opt.NormalOrientation, ParseNormalOrientation)
}

func (opt *ReconstructionOptions) Copy() *ReconstructionOptions {
	newOpt := *opt
	return &newOpt
}

// Contains the options of the file based pipeline built around the reconstruction
type PipelineOptions struct {
	Input            string       `yaml:"input" json:"input"`                         // Input point cloud file/folder
	Output           string       `yaml:"output" json:"output"`                       // Output folder
	FolderProcessing bool         `yaml:"folder" json:"folder"`                       // Processes every point cloud file of the input folder
	Recursive        bool         `yaml:"recursive" json:"recursive"`                 // Recursive lookup of files in subfolders
	Srid             int          `yaml:"srid" json:"srid"`                           // EPSG code of the input points
	TargetSrid       int          `yaml:"target_srid" json:"target_srid"`             // EPSG code to reproject to before reconstructing, 0 keeps Srid
	ZOffset          float64      `yaml:"zoffset" json:"zoffset"`                     // Vertical offset applied to the input points
	Format           OutputFormat `yaml:"format" json:"format"`                       // Output file format
	Precision        int          `yaml:"precision" json:"precision"`                 // Decimal places of ASCII outputs
	SmoothIterations int          `yaml:"smooth_iterations" json:"smooth_iterations"` // Laplacian smoothing iterations, 0 disables
	SmoothLambda     float64      `yaml:"smooth_lambda" json:"smooth_lambda"`         // Laplacian smoothing factor
	CleanContours    int          `yaml:"clean_contours" json:"clean_contours"`       // Border erosion passes, 0 disables
	SimplifyRatio    float64      `yaml:"simplify_ratio" json:"simplify_ratio"`       // Target face ratio of the decimation, 1 disables
	FileWorkers      int          `yaml:"file_workers" json:"file_workers"`           // Files processed concurrently

	Command        string                 `yaml:"-" json:"command"`
	Reconstruction *ReconstructionOptions `yaml:"reconstruction" json:"reconstruction"`
}

func DefaultPipelineOptions() *PipelineOptions {
	return &PipelineOptions{
		Srid:             4326,
		TargetSrid:       0,
		Format:           FormatPly,
		Precision:        6,
		SmoothIterations: 0,
		SmoothLambda:     0.5,
		CleanContours:    0,
		SimplifyRatio:    1,
		FileWorkers:      1,
		Reconstruction:   DefaultReconstructionOptions(),
	}
}

// Target srid of the reprojection, falling back to the input srid
func (opt *PipelineOptions) EffectiveTargetSrid() int {
	if opt.TargetSrid == 0 {
		return opt.Srid
	}
	return opt.TargetSrid
}

func (opt *PipelineOptions) Normalize() {
	opt.Format = canonical(opt.Format, ParseOutputFormat)
	if opt.Reconstruction != nil {
		opt.Reconstruction.Normalize()
	}
}

func (opt *PipelineOptions) Validate() error {
	if ParseOutputFormat(string(opt.Format)) == "" {
		return InvalidParameters("unknown output format %q", opt.Format)
	}
	if opt.Precision < 0 || opt.Precision > 15 {
		return InvalidParameters("precision must be between 0 and 15, got %d", opt.Precision)
	}
	if opt.SmoothIterations < 0 {
		return InvalidParameters("smooth iterations cannot be negative")
	}
	if opt.SmoothLambda < 0 || opt.SmoothLambda > 1 {
		return InvalidParameters("smooth lambda must be in [0,1], got %v", opt.SmoothLambda)
	}
	if opt.CleanContours < 0 {
		return InvalidParameters("clean contours cannot be negative")
	}
	if !(opt.SimplifyRatio > 0) || opt.SimplifyRatio > 1 {
		return InvalidParameters("simplify ratio must be in (0,1], got %v", opt.SimplifyRatio)
	}
	if opt.FileWorkers < 1 {
		return InvalidParameters("file workers must be at least 1, got %d", opt.FileWorkers)
	}
	return opt.Reconstruction.Validate()
}

func (opt *PipelineOptions) Copy() *PipelineOptions {
	newOpt := *opt
	if opt.Reconstruction != nil {
		newOpt.Reconstruction = opt.Reconstruction.Copy()
	}
	return &newOpt
}
