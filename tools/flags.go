package tools

import (
	"flag"
	"strings"

	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/golang/glog"
)

const (
	CommandReconstruct = "reconstruct"
	CommandNormals     = "normals"
	CommandInfo        = "info"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type ReconstructionFlags struct {
	VoxelSize            *float64 `json:"voxel_size"`
	Kn                   *int     `json:"kn"`
	Ki                   *int     `json:"ki"`
	Kd                   *int     `json:"kd"`
	FillHoles            *int     `json:"fill_holes"`
	SmallRegionThreshold *int     `json:"small_region_threshold"`
	NumThreads           *int     `json:"num_threads"`
	Extractor            *string  `json:"extractor"`
	FieldSampling        *string  `json:"field_sampling"`
	NormalOrientation    *string  `json:"normal_orientation"`
	DenseCells           *int     `json:"dense_cells"`
}

type FlagsForCommandReconstruct struct {
	ReconstructionFlags
	Input            *string  `json:"input"`
	Output           *string  `json:"output"`
	FolderProcessing *bool    `json:"folder"`
	Recursive        *bool    `json:"recursive"`
	Srid             *int     `json:"srid"`
	TargetSrid       *int     `json:"target_srid"`
	ZOffset          *float64 `json:"zoffset"`
	Format           *string  `json:"format"`
	Precision        *int     `json:"precision"`
	SmoothIterations *int     `json:"smooth_iterations"`
	SmoothLambda     *float64 `json:"smooth_lambda"`
	CleanContours    *int     `json:"clean_contours"`
	SimplifyRatio    *float64 `json:"simplify_ratio"`
	FileWorkers      *int     `json:"file_workers"`
	Config           *string  `json:"config"`
	Silent           *bool    `json:"silent"`
	LogTimestamp     *bool    `json:"timestamp"`
	Help             *bool    `json:"help"`

	explicit map[string]bool
}

type FlagsForCommandNormals struct {
	Input             *string `json:"input"`
	Output            *string `json:"output"`
	Kn                *int    `json:"kn"`
	NormalOrientation *string `json:"normal_orientation"`
	NumThreads        *int    `json:"num_threads"`
	Format            *string `json:"format"`
	Precision         *int    `json:"precision"`
	Silent            *bool   `json:"silent"`
	Help              *bool   `json:"help"`
}

type FlagsForCommandInfo struct {
	Input *string `json:"input"`
	Help  *bool   `json:"help"`
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "", false, "Displays the version of the surface mesher.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func ParseFlagsForCommandReconstruct(args []string) FlagsForCommandReconstruct {
	glog.V(1).Infof("reconstruct args: %s", FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-reconstruct", flag.ExitOnError)
	defaults := mesher.DefaultPipelineOptions()
	rec := defaults.Reconstruction

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input point cloud file/folder (.ply, .pts, .xyz).")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output folder where to write the meshes.")
	folderProcessing := defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of all point cloud files from input folder. Input must be a folder if specified")
	recursive := defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for all point cloud files inside the subfolders")
	srid := defineIntFlagCommand(flagCommand, "srid", "e", defaults.Srid, "EPSG srid code of input points.")
	targetSrid := defineIntFlagCommand(flagCommand, "target-srid", "", defaults.TargetSrid, "EPSG srid code to reproject the points to before reconstructing. 0 keeps the input srid.")
	zOffset := defineFloat64FlagCommand(flagCommand, "zoffset", "z", defaults.ZOffset, "Vertical offset to apply to points, in meters.")
	format := defineStringFlagCommand(flagCommand, "format", "", string(defaults.Format), "Output format, one of PLY, PLY-BINARY, STL, XYZ.")
	precision := defineIntFlagCommand(flagCommand, "precision", "p", defaults.Precision, "Decimal places of the coordinates written in ascii formats.")
	smoothIterations := defineIntFlagCommand(flagCommand, "smooth-iterations", "", defaults.SmoothIterations, "Laplacian smoothing iterations applied to the mesh. 0 disables smoothing.")
	smoothLambda := defineFloat64FlagCommand(flagCommand, "smooth-lambda", "", defaults.SmoothLambda, "Laplacian smoothing factor in [0,1].")
	cleanContours := defineIntFlagCommand(flagCommand, "clean-contours", "", defaults.CleanContours, "Passes eroding the ragged borders of the mesh. 0 disables the erosion.")
	simplifyRatio := defineFloat64FlagCommand(flagCommand, "simplify-ratio", "", defaults.SimplifyRatio, "Fraction of the faces kept by mesh decimation. 1 disables decimation.")
	fileWorkers := defineIntFlagCommand(flagCommand, "file-workers", "", defaults.FileWorkers, "Number of files reconstructed concurrently.")
	config := defineStringFlagCommand(flagCommand, "config", "c", "", "YAML file with the options. Flags given explicitly override its values.")

	voxelSize := defineFloat64FlagCommand(flagCommand, "voxel-size", "s", rec.VoxelSize, "Edge length of the voxels of the reconstruction grid, in input units.")
	kn := defineIntFlagCommand(flagCommand, "kn", "", rec.Kn, "Number of neighbors used to estimate the normals.")
	ki := defineIntFlagCommand(flagCommand, "ki", "", rec.Ki, "Number of neighbors used for normal interpolation.")
	kd := defineIntFlagCommand(flagCommand, "kd", "", rec.Kd, "Number of neighbors used to evaluate the distance field.")
	fillHoles := defineIntFlagCommand(flagCommand, "fill-holes", "", rec.FillHoles, "Maximum size of the holes to fill. 0 disables hole filling.")
	smallRegions := defineIntFlagCommand(flagCommand, "small-region-threshold", "", rec.SmallRegionThreshold, "Connected regions with fewer faces are removed.")
	numThreads := defineIntFlagCommand(flagCommand, "threads", "t", rec.NumThreads, "Worker threads of the reconstruction. 0 uses one per CPU.")
	extractor := defineStringFlagCommand(flagCommand, "extractor", "", string(rec.Extractor), "Isosurface extractor, SPARSE or DENSE.")
	fieldSampling := defineStringFlagCommand(flagCommand, "field-sampling", "", string(rec.FieldSampling), "Positions where the sparse extractor samples the field, CENTER or CORNER.")
	orientation := defineStringFlagCommand(flagCommand, "normal-orientation", "", string(rec.NormalOrientation), "Orientation of the estimated normals, NONE or CENTROID.")
	denseCells := defineIntFlagCommand(flagCommand, "dense-cells", "", rec.DenseCells, "Cells along the longest axis for the DENSE extractor. 0 derives it from the voxel size.")

	silent := defineBoolFlagCommand(flagCommand, "silent", "", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")

	_ = flagCommand.Parse(args)

	return FlagsForCommandReconstruct{
		ReconstructionFlags: ReconstructionFlags{
			VoxelSize:            voxelSize,
			Kn:                   kn,
			Ki:                   ki,
			Kd:                   kd,
			FillHoles:            fillHoles,
			SmallRegionThreshold: smallRegions,
			NumThreads:           numThreads,
			Extractor:            extractor,
			FieldSampling:        fieldSampling,
			NormalOrientation:    orientation,
			DenseCells:           denseCells,
		},
		Input:            input,
		Output:           output,
		FolderProcessing: folderProcessing,
		Recursive:        recursive,
		Srid:             srid,
		TargetSrid:       targetSrid,
		ZOffset:          zOffset,
		Format:           format,
		Precision:        precision,
		SmoothIterations: smoothIterations,
		SmoothLambda:     smoothLambda,
		CleanContours:    cleanContours,
		SimplifyRatio:    simplifyRatio,
		FileWorkers:      fileWorkers,
		Config:           config,
		Silent:           silent,
		LogTimestamp:     logTimestamp,
		Help:             help,
		explicit:         explicitFlags(flagCommand),
	}
}

// Builds the pipeline options. Values of the config file, when given, replace the defaults and
// are in turn overridden by the flags set on the command line.
func (f *FlagsForCommandReconstruct) PipelineOptions() (*mesher.PipelineOptions, error) {
	opts := mesher.DefaultPipelineOptions()
	if *f.Config != "" {
		loaded, err := mesher.LoadOptionsFile(*f.Config)
		if err != nil {
			return nil, err
		}
		opts = loaded
	}
	opts.Command = CommandReconstruct
	rec := opts.Reconstruction

	setters := map[string]func(){
		"input":                  func() { opts.Input = *f.Input },
		"output":                 func() { opts.Output = *f.Output },
		"folder":                 func() { opts.FolderProcessing = *f.FolderProcessing },
		"recursive":              func() { opts.Recursive = *f.Recursive },
		"srid":                   func() { opts.Srid = *f.Srid },
		"target-srid":            func() { opts.TargetSrid = *f.TargetSrid },
		"zoffset":                func() { opts.ZOffset = *f.ZOffset },
		"format":                 func() { opts.Format = mesher.OutputFormat(*f.Format) },
		"precision":              func() { opts.Precision = *f.Precision },
		"smooth-iterations":      func() { opts.SmoothIterations = *f.SmoothIterations },
		"smooth-lambda":          func() { opts.SmoothLambda = *f.SmoothLambda },
		"clean-contours":         func() { opts.CleanContours = *f.CleanContours },
		"simplify-ratio":         func() { opts.SimplifyRatio = *f.SimplifyRatio },
		"file-workers":           func() { opts.FileWorkers = *f.FileWorkers },
		"voxel-size":             func() { rec.VoxelSize = *f.VoxelSize },
		"kn":                     func() { rec.Kn = *f.Kn },
		"ki":                     func() { rec.Ki = *f.Ki },
		"kd":                     func() { rec.Kd = *f.Kd },
		"fill-holes":             func() { rec.FillHoles = *f.FillHoles },
		"small-region-threshold": func() { rec.SmallRegionThreshold = *f.SmallRegionThreshold },
		"threads":                func() { rec.NumThreads = *f.NumThreads },
		"extractor":              func() { rec.Extractor = mesher.Extractor(*f.Extractor) },
		"field-sampling":         func() { rec.FieldSampling = mesher.FieldSampling(*f.FieldSampling) },
		"normal-orientation":     func() { rec.NormalOrientation = mesher.NormalOrientation(*f.NormalOrientation) },
		"dense-cells":            func() { rec.DenseCells = *f.DenseCells },
	}
	for name, set := range setters {
		if *f.Config == "" || f.explicit[name] {
			set()
		}
	}
	opts.Normalize()
	return opts, nil
}

func ParseFlagsForCommandNormals(args []string) FlagsForCommandNormals {
	glog.V(1).Infof("normals args: %s", FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-normals", flag.ExitOnError)
	rec := mesher.DefaultReconstructionOptions()

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input point cloud file.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output point cloud file.")
	kn := defineIntFlagCommand(flagCommand, "kn", "", rec.Kn, "Number of neighbors used to estimate the normals.")
	orientation := defineStringFlagCommand(flagCommand, "normal-orientation", "", string(mesher.OrientationCentroid), "Orientation of the estimated normals, NONE or CENTROID.")
	numThreads := defineIntFlagCommand(flagCommand, "threads", "t", 0, "Worker threads. 0 uses one per CPU.")
	format := defineStringFlagCommand(flagCommand, "format", "", string(mesher.FormatPly), "Output format, one of PLY, PLY-BINARY, XYZ.")
	precision := defineIntFlagCommand(flagCommand, "precision", "p", 6, "Decimal places of the values written in ascii formats.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "", false, "Use to suppress all the non-error messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")

	_ = flagCommand.Parse(args)

	return FlagsForCommandNormals{
		Input:             input,
		Output:            output,
		Kn:                kn,
		NormalOrientation: orientation,
		NumThreads:        numThreads,
		Format:            format,
		Precision:         precision,
		Silent:            silent,
		Help:              help,
	}
}

func ParseFlagsForCommandInfo(args []string) FlagsForCommandInfo {
	flagCommand := flag.NewFlagSet("command-info", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the point cloud or mesh file to describe.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")

	_ = flagCommand.Parse(args)

	return FlagsForCommandInfo{
		Input: input,
		Help:  help,
	}
}

const shorthandSuffix = " (shorthand for "

// Names of the flags set on the command line, shorthands resolved to their long name
func explicitFlags(flagCommand *flag.FlagSet) map[string]bool {
	explicit := make(map[string]bool)
	flagCommand.Visit(func(f *flag.Flag) {
		name := f.Name
		if i := strings.LastIndex(f.Usage, shorthandSuffix); i >= 0 {
			name = strings.TrimSuffix(f.Usage[i+len(shorthandSuffix):], ")")
		}
		explicit[name] = true
	})
	return explicit
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+shorthandSuffix+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+shorthandSuffix+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+shorthandSuffix+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+shorthandSuffix+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+shorthandSuffix+name+")")
	}
	return &output
}
