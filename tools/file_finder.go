package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ecopia-map/surface_mesher/internal/mesher"
)

type FileFinder interface {
	GetFilesToProcess(opts *mesher.PipelineOptions) ([]string, error)
}

// Finds input files by extension, case insensitive
type StandardFileFinder struct {
	extensions []string
}

func NewStandardFileFinder(extensions ...string) FileFinder {
	lower := make([]string, len(extensions))
	for i, ext := range extensions {
		lower[i] = strings.ToLower(ext)
	}
	return &StandardFileFinder{extensions: lower}
}

func (f *StandardFileFinder) GetFilesToProcess(opts *mesher.PipelineOptions) ([]string, error) {
	// If folder processing is not enabled then the file is given by -input flag, otherwise look for files in
	// the -input folder eventually excluding nested folders if Recursive flag is disabled
	if !opts.FolderProcessing {
		if _, err := os.Stat(opts.Input); err != nil {
			return nil, err
		}
		return []string{opts.Input}, nil
	}

	return f.getFilesFromInputFolder(opts)
}

func (f *StandardFileFinder) getFilesFromInputFolder(opts *mesher.PipelineOptions) ([]string, error) {
	baseInfo, err := os.Stat(opts.Input)
	if err != nil {
		return nil, err
	}
	if !baseInfo.IsDir() {
		return nil, fmt.Errorf("%s is not a folder", opts.Input)
	}

	files := make([]string, 0)
	err = filepath.Walk(
		opts.Input,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if !opts.Recursive && !os.SameFile(info, baseInfo) {
					return filepath.SkipDir
				}
				return nil
			}
			if f.matches(info.Name()) {
				files = append(files, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (f *StandardFileFinder) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range f.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
