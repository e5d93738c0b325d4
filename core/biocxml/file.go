package biocxml

import (
	"github.com/FocuswithJustin/bioc/core/bioc"
	"github.com/FocuswithJustin/bioc/internal/archive"
)

// OpenFile returns a Reader over the BioC file at path. Files ending in .gz
// or .xz are decompressed. Close the reader to release the file.
func OpenFile(path string, level Level, opts ...Option) (*Reader, error) {
	f, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(f, level, opts...)
	r.path = path
	return r, nil
}

// OpenDocuments returns a DocumentReader over the BioC file at path.
func OpenDocuments(path string, opts ...Option) (*DocumentReader, error) {
	r, err := OpenFile(path, LevelDocument, opts...)
	if err != nil {
		return nil, err
	}
	dr, err := newDocumentReader(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	return dr, nil
}

// ReadFile reads the whole collection stored at path.
func ReadFile(path string, opts ...Option) (*bioc.Collection, error) {
	r, err := OpenFile(path, LevelCollection, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rec, err := r.Next()
	if err != nil {
		return nil, err
	}
	return rec.(*bioc.Collection), nil
}

// CreateFile returns a Writer to a new file at path, creating parent
// directories as needed. Names ending in .gz or .xz are compressed.
func CreateFile(path string, opts ...Option) (*Writer, error) {
	f, err := archive.Create(path, true)
	if err != nil {
		return nil, err
	}
	return NewWriter(f, opts...), nil
}

// WriteFile writes c to a new file at path.
func WriteFile(path string, c *bioc.Collection, opts ...Option) error {
	w, err := CreateFile(path, opts...)
	if err != nil {
		return err
	}
	if err := w.WriteCollection(c); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
