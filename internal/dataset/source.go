package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Source produces the patient dataset.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// FileSource reads the dataset from a CSV file on disk.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	if path == "" {
		path = DefaultFile
	}
	return &FileSource{Path: path}
}

func (s *FileSource) Load(ctx context.Context) (*Dataset, error) {
	return LoadFile(s.Path)
}

// LoadFile opens and parses the CSV at path.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}
