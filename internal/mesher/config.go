package mesher

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loads pipeline options from a YAML file. Keys missing from the file keep their default value.
func LoadOptionsFile(path string) (*PipelineOptions, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseOptions(content)
}

func ParseOptions(content []byte) (*PipelineOptions, error) {
	opts := DefaultPipelineOptions()
	if err := yaml.Unmarshal(content, opts); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if opts.Reconstruction == nil {
		opts.Reconstruction = DefaultReconstructionOptions()
	}
	opts.Normalize()
	return opts, nil
}
