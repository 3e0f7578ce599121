package mesher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	err := NotEnoughPoints(3, 10)
	assert.True(t, errors.Is(err, ErrNotEnoughPoints))
	assert.False(t, errors.Is(err, ErrInvalidParameters))

	var nep *NotEnoughPointsError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &nep))
	assert.Equal(t, 3, nep.Count)
	assert.Equal(t, 10, nep.Required)

	err = InvalidParameters("voxel size %v", -1.0)
	assert.True(t, errors.Is(err, ErrInvalidParameters))
	assert.Contains(t, err.Error(), "voxel size -1")

	err = NewAlgorithmError("no vertices")
	assert.True(t, errors.Is(err, ErrAlgorithm))
	assert.Equal(t, "algorithm error: no vertices", err.Error())
}

func TestDefaultOptionsAreValid(t *testing.T) {
	opts := DefaultReconstructionOptions()
	assert.NoError(t, opts.Validate())
	assert.Equal(t, 10.0, opts.VoxelSize)
	assert.Equal(t, 10, opts.Kn)
	assert.Equal(t, 5, opts.Kd)
	assert.Equal(t, runtime.NumCPU(), opts.Threads())

	assert.NoError(t, DefaultPipelineOptions().Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(o *ReconstructionOptions){
		"zero voxel":       func(o *ReconstructionOptions) { o.VoxelSize = 0 },
		"negative voxel":   func(o *ReconstructionOptions) { o.VoxelSize = -2 },
		"zero kn":          func(o *ReconstructionOptions) { o.Kn = 0 },
		"zero kd":          func(o *ReconstructionOptions) { o.Kd = 0 },
		"negative threads": func(o *ReconstructionOptions) { o.NumThreads = -1 },
		"unknown sampling": func(o *ReconstructionOptions) { o.FieldSampling = "EDGE" },
		"unknown extractor": func(o *ReconstructionOptions) {
			o.Extractor = "POISSON"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			opts := DefaultReconstructionOptions()
			mutate(opts)
			assert.ErrorIs(t, opts.Validate(), ErrInvalidParameters)
		})
	}

	var missing *ReconstructionOptions
	assert.ErrorIs(t, missing.Validate(), ErrInvalidParameters)
}

func TestParseEnums(t *testing.T) {
	assert.Equal(t, Dense, ParseExtractor(" dense"))
	assert.Equal(t, Sparse, ParseExtractor(""))
	assert.Equal(t, Extractor(""), ParseExtractor("other"))
	assert.Equal(t, SampleCorners, ParseFieldSampling("corner"))
	assert.Equal(t, OrientationCentroid, ParseNormalOrientation("Centroid"))
	assert.Equal(t, FormatPlyBinary, ParseOutputFormat("ply_binary"))
	assert.Equal(t, ".stl", FormatStl.Extension())
	assert.Equal(t, ".ply", FormatPlyBinary.Extension())
}

func TestCopyIsDeep(t *testing.T) {
	opts := DefaultPipelineOptions()
	copied := opts.Copy()
	copied.Reconstruction.VoxelSize = 1
	assert.Equal(t, 10.0, opts.Reconstruction.VoxelSize)
}

func TestLoadOptionsFile(t *testing.T) {
	content := `
input: cloud.ply
output: out
format: stl
smooth_iterations: 3
reconstruction:
  voxel_size: 0.25
  kd: 8
  extractor: dense
  field_sampling: corner
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	opts, err := LoadOptionsFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cloud.ply", opts.Input)
	assert.Equal(t, FormatStl, opts.Format)
	assert.Equal(t, 3, opts.SmoothIterations)
	assert.Equal(t, 0.5, opts.SmoothLambda)
	assert.Equal(t, 4326, opts.Srid)
	assert.Equal(t, 0.25, opts.Reconstruction.VoxelSize)
	assert.Equal(t, 8, opts.Reconstruction.Kd)
	assert.Equal(t, 10, opts.Reconstruction.Kn)
	assert.Equal(t, Dense, opts.Reconstruction.Extractor)
	assert.Equal(t, SampleCorners, opts.Reconstruction.FieldSampling)
	assert.NoError(t, opts.Validate())
}

func TestLoadOptionsFileErrors(t *testing.T) {
	_, err := LoadOptionsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseOptions([]byte("reconstruction: [1, 2"))
	assert.Error(t, err)

	opts, err := ParseOptions([]byte("format: obj"))
	require.NoError(t, err)
	assert.ErrorIs(t, opts.Validate(), ErrInvalidParameters)
}

func TestParseOptionsKeepsUnknownEnums(t *testing.T) {
	opts, err := ParseOptions([]byte("format: obj\nreconstruction:\n  extractor: poisson\n  field_sampling: random\n  normal_orientation: up\n"))
	require.NoError(t, err)
	assert.Equal(t, OutputFormat("obj"), opts.Format)
	assert.Equal(t, Extractor("poisson"), opts.Reconstruction.Extractor)
	assert.ErrorIs(t, opts.Validate(), ErrInvalidParameters)

	for name, mutate := range map[string]func(o *PipelineOptions){
		"extractor":          func(o *PipelineOptions) { o.Format = FormatPly },
		"field sampling":     func(o *PipelineOptions) { o.Format, o.Reconstruction.Extractor = FormatPly, Sparse },
		"normal orientation": func(o *PipelineOptions) { o.Format, o.Reconstruction.Extractor, o.Reconstruction.FieldSampling = FormatPly, Sparse, SampleCenters },
	} {
		t.Run(name, func(t *testing.T) {
			copied := opts.Copy()
			mutate(copied)
			assert.ErrorIs(t, copied.Validate(), ErrInvalidParameters)
		})
	}
}

func TestNormalizeCanonicalSpelling(t *testing.T) {
	opts, err := ParseOptions([]byte("format: ply_binary\nreconstruction:\n  extractor: ' dense'\n  field_sampling: centre\n  normal_orientation: centroid\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatPlyBinary, opts.Format)
	assert.Equal(t, Dense, opts.Reconstruction.Extractor)
	assert.Equal(t, SampleCenters, opts.Reconstruction.FieldSampling)
	assert.Equal(t, OrientationCentroid, opts.Reconstruction.NormalOrientation)
	assert.NoError(t, opts.Validate())
}
