package fio

import (
	"bytes"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// rawImage is a flat sector dump. The file is memory-mapped read-only; when
// mapping fails (empty files, exotic filesystems) reads go through the file
// handle instead.
type rawImage struct {
	path   string
	handle *os.File
	mapped mmap.MMap
	reader io.ReaderAt
	size   int64
}

func openRaw(path string) (*rawImage, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	handle, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	img := &rawImage{path: path, handle: handle, size: info.Size()}
	mapped, err := mmap.Map(handle, mmap.RDONLY, 0)
	if err == nil {
		img.mapped = mapped
		img.reader = bytes.NewReader(mapped)
	} else {
		img.reader = handle
	}
	return img, nil
}

func (r *rawImage) ReadAt(p []byte, off int64) (int, error) {
	return r.reader.ReadAt(p, off)
}

func (r *rawImage) Size() int64 {
	return r.size
}

func (r *rawImage) Path() string {
	return r.path
}

func (r *rawImage) Close() error {
	if r.mapped != nil {
		if err := r.mapped.Unmap(); err != nil {
			return err
		}
		r.mapped = nil
	}
	return r.handle.Close()
}
