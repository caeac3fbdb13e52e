// Package fsys turns a slice of an image byte source into an io/fs
// filesystem. The parsers are tried in a fixed order; forensic images of
// Windows systems are overwhelmingly NTFS, so it goes first.
package fsys

import (
	"histex/lib/cnst"
	"io"
	"io/fs"

	"github.com/forensicanalysis/fslib/fat16"
	"github.com/forensicanalysis/fslib/ntfs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// OpenFunc is the filesystem-open contract the orchestrator depends on,
// kept as a type so tests can substitute synthetic filesystems.
type OpenFunc func(r io.ReaderAt, offset, size int64) (fs.FS, error)

// Open parses the filesystem starting at offset within r.
func Open(r io.ReaderAt, offset, size int64) (fs.FS, error) {
	if size <= offset {
		return nil, errors.Wrapf(cnst.ErrFilesystemOpen, "offset %d beyond image size %d", offset, size)
	}
	section := io.NewSectionReader(r, offset, size-offset)

	ntfsFS, err := ntfs.New(section)
	if err == nil {
		return ntfsFS, nil
	}
	logrus.WithError(err).WithField("offset", offset).Debug("not NTFS, trying FAT16")

	// fat16.New wants the section rewound after the NTFS probe.
	if _, err := section.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrapf(cnst.ErrFilesystemOpen, "rewind: %v", err)
	}
	fatFS, err := fat16.New(section)
	if err == nil {
		return fatFS, nil
	}

	return nil, errors.Wrapf(cnst.ErrFilesystemOpen, "offset %d: %v", offset, err)
}
