package fio

import (
	"histex/lib/cnst"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Image is the one uniform byte source every downstream component sees.
// ReadAt truncates at end-of-source instead of erroring, per io.ReaderAt.
type Image interface {
	io.ReaderAt
	Size() int64
	Path() string
	Close() error
}

// Open dispatches on the file extension: EWF evidence containers go through
// the segmented codec, anything else is treated as a flat raw image.
func Open(path string) (Image, error) {
	var img Image
	var err error

	if IsEvidenceExt(filepath.Ext(path)) {
		img, err = openEWF(path)
	} else {
		img, err = openRaw(path)
	}
	if err != nil {
		return nil, errors.Wrapf(cnst.ErrContainerOpen, "%s: %v", path, err)
	}
	return img, nil
}

// IsEvidenceExt reports whether ext names a segmented evidence container.
func IsEvidenceExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, evidenceExt := range cnst.EvidenceExtensions() {
		if ext == evidenceExt {
			return true
		}
	}
	return false
}
