package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructFlagsDefaults(t *testing.T) {
	flags := ParseFlagsForCommandReconstruct([]string{"-i", "cloud.ply", "-output", "out", "-s", "0.5", "-format", "stl"})

	opts, err := flags.PipelineOptions()
	require.NoError(t, err)
	assert.Equal(t, CommandReconstruct, opts.Command)
	assert.Equal(t, "cloud.ply", opts.Input)
	assert.Equal(t, "out", opts.Output)
	assert.Equal(t, mesher.FormatStl, opts.Format)
	assert.Equal(t, 0.5, opts.Reconstruction.VoxelSize)
	assert.Equal(t, 10, opts.Reconstruction.Kn)
	assert.Equal(t, mesher.SampleCenters, opts.Reconstruction.FieldSampling)
	assert.NoError(t, opts.Validate())
}

func TestReconstructFlagsOverrideConfig(t *testing.T) {
	config := filepath.Join(t.TempDir(), "options.yaml")
	content := "input: from-config.pts\nsrid: 32633\nreconstruction:\n  voxel_size: 2\n  kd: 7\n"
	require.NoError(t, os.WriteFile(config, []byte(content), 0644))

	flags := ParseFlagsForCommandReconstruct([]string{"-config", config, "-kd", "3", "-e", "4326"})
	opts, err := flags.PipelineOptions()
	require.NoError(t, err)

	assert.Equal(t, "from-config.pts", opts.Input)
	assert.Equal(t, 2.0, opts.Reconstruction.VoxelSize)
	assert.Equal(t, 3, opts.Reconstruction.Kd)
	assert.Equal(t, 4326, opts.Srid)
	assert.Equal(t, 10, opts.Reconstruction.Kn)
}

func TestReconstructFlagsUnknownEnums(t *testing.T) {
	for _, args := range [][]string{
		{"-i", "cloud.ply", "-format", "obj"},
		{"-i", "cloud.ply", "-extractor", "poisson"},
		{"-i", "cloud.ply", "-field-sampling", "random"},
		{"-i", "cloud.ply", "-normal-orientation", "up"},
	} {
		t.Run(args[2], func(t *testing.T) {
			flags := ParseFlagsForCommandReconstruct(args)
			opts, err := flags.PipelineOptions()
			require.NoError(t, err)
			assert.ErrorIs(t, opts.Validate(), mesher.ErrInvalidParameters)
		})
	}

	flags := ParseFlagsForCommandReconstruct([]string{"-i", "cloud.ply", "-format", "ply_binary", "-extractor", "dense"})
	opts, err := flags.PipelineOptions()
	require.NoError(t, err)
	assert.Equal(t, mesher.FormatPlyBinary, opts.Format)
	assert.Equal(t, mesher.Dense, opts.Reconstruction.Extractor)
}

func TestReconstructFlagsMissingConfig(t *testing.T) {
	flags := ParseFlagsForCommandReconstruct([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")})
	_, err := flags.PipelineOptions()
	assert.Error(t, err)
}

func TestNormalsAndInfoFlags(t *testing.T) {
	normals := ParseFlagsForCommandNormals([]string{"-i", "in.xyz", "-o", "out.ply", "-kn", "12"})
	assert.Equal(t, "in.xyz", *normals.Input)
	assert.Equal(t, "out.ply", *normals.Output)
	assert.Equal(t, 12, *normals.Kn)
	assert.Equal(t, "CENTROID", *normals.NormalOrientation)

	info := ParseFlagsForCommandInfo([]string{"-input", "mesh.stl"})
	assert.Equal(t, "mesh.stl", *info.Input)
	assert.False(t, *info.Help)
}

func TestFileFinder(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))
	for _, name := range []string{filepath.Join(root, "b.PLY"), filepath.Join(root, "a.xyz"), filepath.Join(root, "notes.md"), filepath.Join(sub, "c.pts")} {
		require.NoError(t, os.WriteFile(name, []byte("0 0 0\n"), 0644))
	}

	finder := NewStandardFileFinder(".ply", ".pts", ".xyz")
	opts := mesher.DefaultPipelineOptions()
	opts.Input = root
	opts.FolderProcessing = true

	files, err := finder.GetFilesToProcess(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.xyz"), filepath.Join(root, "b.PLY")}, files)

	opts.Recursive = true
	files, err = finder.GetFilesToProcess(opts)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	opts.FolderProcessing = false
	opts.Input = filepath.Join(root, "a.xyz")
	files, err = finder.GetFilesToProcess(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{opts.Input}, files)

	opts.Input = filepath.Join(root, "missing.ply")
	_, err = finder.GetFilesToProcess(opts)
	assert.Error(t, err)
}

func TestProgress(t *testing.T) {
	progress := NewProgress("test", 20)
	for i := 0; i < 15; i++ {
		progress.Step()
	}
	progress.Add(5)
	assert.Equal(t, 20, progress.Done())
}

func TestLoggerToggle(t *testing.T) {
	DisableLogger()
	assert.False(t, IsLoggerEnabled())
	LogOutput("silenced")
	EnableLogger()
	assert.True(t, IsLoggerEnabled())

	EnableLoggerTimestamp()
	LogOutput("with timestamp")
	DisableLoggerTimestamp()
}
