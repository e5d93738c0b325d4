package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

// Writer writes a possibly compressed file.
type Writer struct {
	io.Writer
	file       *os.File
	compressor io.Closer
}

// Create creates path for writing, compressing output for .gz and .xz
// names. If createParentDir is true, missing parent directories are
// created.
func Create(path string, createParentDir bool) (*Writer, error) {
	if createParentDir {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create corpus file: %w", err)
	}

	w := &Writer{Writer: f, file: f}
	switch Detect(path) {
	case XZ:
		xzw, err := xz.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz writer: %w", err)
		}
		w.Writer, w.compressor = xzw, xzw
	case Gzip:
		gzw := gzip.NewWriter(f)
		w.Writer, w.compressor = gzw, gzw
	}
	return w, nil
}

// Close flushes the compressor, if any, and closes the file.
func (w *Writer) Close() error {
	var errs []error
	if w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
