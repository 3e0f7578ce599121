package io

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/ecopia-map/surface_mesher/internal/mesher"
)

type StandardProducer struct {
	basePath string
	options  *mesher.PipelineOptions
}

func NewStandardProducer(basePath string, options *mesher.PipelineOptions) *StandardProducer {
	return &StandardProducer{
		basePath: basePath,
		options:  options,
	}
}

// Submits a WorkUnit per input file to the provided work channel.
// Closes the channel when all work is submitted.
func (p *StandardProducer) Produce(work chan *WorkUnit, wg *sync.WaitGroup, files []string) {
	defer wg.Done()
	for _, file := range files {
		work <- &WorkUnit{
			InputPath:  file,
			OutputPath: p.OutputPath(file),
			Opts:       p.options,
		}
	}
	close(work)
}

// Output file of the given input: same base name in the output folder, extension of the output format
func (p *StandardProducer) OutputPath(inputPath string) string {
	return filepath.Join(p.basePath, FilenameWithoutExtension(inputPath)+p.options.Format.Extension())
}

func FilenameWithoutExtension(filePath string) string {
	name := filepath.Base(filePath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
