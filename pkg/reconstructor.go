package pkg

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ecopia-map/surface_mesher/internal/io"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/pkg/algorithm_manager"
	"github.com/ecopia-map/surface_mesher/tools"
	"github.com/golang/glog"
)

type IReconstructor interface {
	RunReconstructor(opts *mesher.PipelineOptions) error
}

type Reconstructor struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewReconstructor(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) IReconstructor {
	return &Reconstructor{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// Reconstructs a mesh for every input file. A failing file does not stop the others, the
// failures are reported together at the end.
func (r *Reconstructor) RunReconstructor(opts *mesher.PipelineOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	defer r.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()

	tools.LogOutput("Preparing list of files to process...")
	files, err := r.fileFinder.GetFilesToProcess(opts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no point cloud files found in %s", opts.Input)
	}
	for i, filePath := range files {
		glog.V(1).Infof("input file %d [%s]", i, filePath)
	}

	if err := tools.CreateDirectoryIfDoesNotExist(opts.Output); err != nil {
		return err
	}
	return r.exportMeshes(opts, files)
}

func (r *Reconstructor) exportMeshes(opts *mesher.PipelineOptions, files []string) error {
	numConsumers := opts.FileWorkers
	if numConsumers > len(files) {
		numConsumers = len(files)
	}

	workChannel := make(chan *io.WorkUnit, numConsumers*5)

	// one slot per file so that consumers never block on reporting
	errorChannel := make(chan error, len(files))

	var waitGroup sync.WaitGroup

	waitGroup.Add(1)
	producer := io.NewStandardProducer(opts.Output, opts)
	go producer.Produce(workChannel, &waitGroup, files)

	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		consumer := io.NewStandardConsumer(
			r.algorithmManager.GetCoordinateConverterAlgorithm(),
			r.algorithmManager.GetElevationCorrectionAlgorithm(),
		)
		go consumer.Consume(workChannel, errorChannel, &waitGroup)
	}

	waitGroup.Wait()
	close(errorChannel)

	var failures []error
	for err := range errorChannel {
		failures = append(failures, err)
	}
	tools.LogOutput(fmt.Sprintf("Processed %d files, %d failed", len(files), len(failures)))
	return errors.Join(failures...)
}
