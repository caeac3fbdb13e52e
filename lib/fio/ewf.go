package fio

import (
	"histex/lib/cnst"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ewf "github.com/asalih/go-ewf/evf1"
	"github.com/pkg/errors"
)

// ewfImage wraps a segmented EWF evidence container (.E01/.Ex01/.S01) behind
// the uniform Image byte source. Segment discovery globs the image stem and
// filters siblings by the segment numbering scheme, so image.E01 picks up
// image.E02 through image.E99 and the lettered continuations beyond.
type ewfImage struct {
	path     string
	segments []*os.File
	reader   *ewf.EWFReader
}

func openEWF(path string) (*ewfImage, error) {
	names, err := globSegments(path)
	if err != nil {
		return nil, err
	}

	img := &ewfImage{path: path}
	for _, name := range names {
		segment, err := os.Open(name)
		if err != nil {
			img.Close()
			return nil, errors.Wrapf(cnst.ErrSegmentMissing, "%s: %v", name, err)
		}
		img.segments = append(img.segments, segment)
	}

	readers := make([]io.ReadSeeker, 0, len(img.segments))
	for _, segment := range img.segments {
		readers = append(readers, segment)
	}
	img.reader, err = ewf.OpenEWF(readers...)
	if err != nil {
		img.Close()
		return nil, err
	}
	return img, nil
}

func globSegments(path string) ([]string, error) {
	ext := filepath.Ext(path)
	names, err := filepath.Glob(strings.TrimSuffix(path, ext) + ".*")
	if err != nil {
		return nil, err
	}

	var segments []string
	for _, name := range names {
		if isSegmentExt(ext, filepath.Ext(name)) {
			segments = append(segments, name)
		}
	}
	if len(segments) == 0 {
		return nil, errors.Wrapf(cnst.ErrSegmentMissing, "no segments match %s", path)
	}
	sort.Strings(segments)
	return segments, nil
}

// isSegmentExt reports whether candidate continues the segment numbering of
// the first segment's extension: .e01-.e99, then .eaa-.ezz, and past that
// the letter itself rolls (.faa and onward). Lettered tails sort after the
// numbered ones, so lexical order is segment order.
func isSegmentExt(first, candidate string) bool {
	first = strings.ToLower(first)
	candidate = strings.ToLower(candidate)
	if len(first) < 4 || len(candidate) != len(first) {
		return false
	}

	split := len(first) - 3 // index of the rolling letter
	if candidate[:split] != first[:split] {
		return false
	}
	letter, base := candidate[split], first[split]
	if letter < base || letter > 'z' {
		return false
	}

	tail := candidate[split+1:]
	digits := tail[0] >= '0' && tail[0] <= '9' && tail[1] >= '0' && tail[1] <= '9'
	letters := tail[0] >= 'a' && tail[0] <= 'z' && tail[1] >= 'a' && tail[1] <= 'z'
	if letter == base {
		return digits || letters
	}
	return letters
}

func (e *ewfImage) ReadAt(p []byte, off int64) (int, error) {
	return e.reader.ReadAt(p, off)
}

func (e *ewfImage) Size() int64 {
	return e.reader.Size()
}

func (e *ewfImage) Path() string {
	return e.path
}

func (e *ewfImage) Close() error {
	var firstErr error
	for _, segment := range e.segments {
		if err := segment.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.segments = nil
	return firstErr
}
