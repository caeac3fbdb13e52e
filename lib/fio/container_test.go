package fio

import (
	"histex/lib/cnst"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRawImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evidence.dd")
	content := []byte("raw image payload")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	img, err := Open(path)
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, path, img.Path())
	assert.Equal(t, int64(len(content)), img.Size())

	buf := make([]byte, 5)
	n, err := img.ReadAt(buf, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("image"), buf)
}

func TestOpenMissingRawImage(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.dd"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cnst.ErrContainerOpen))
}

func TestOpenEvidenceWithoutSegments(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.E01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cnst.ErrContainerOpen))
}

func TestGlobSegmentsFollowsLetterRoll(t *testing.T) {
	dir := t.TempDir()
	siblings := []string{
		"image.E01", "image.E02", // numbered segments
		"image.EAA", "image.FAB", // lettered continuations past .E99
		"image.F01",              // a rolled letter never has a numbered tail
		"image.A01",              // letters only roll forward
		"image.dd",               // wrong extension shape
	}
	for _, name := range siblings {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{0}, 0o644))
	}

	names, err := globSegments(filepath.Join(dir, "image.E01"))
	require.NoError(t, err)

	expected := []string{"image.E01", "image.E02", "image.EAA", "image.FAB"}
	require.Len(t, names, len(expected))
	for i, want := range expected {
		assert.Equal(t, filepath.Join(dir, want), names[i])
	}
}

func TestIsEvidenceExt(t *testing.T) {
	for _, ext := range []string{".E01", ".e01", ".Ex01", ".s01", ".S01"} {
		assert.True(t, IsEvidenceExt(ext), ext)
	}
	for _, ext := range []string{".dd", ".img", ".raw", "", ".E02"} {
		assert.False(t, IsEvidenceExt(ext), ext)
	}
}
