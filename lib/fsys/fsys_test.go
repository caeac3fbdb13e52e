package fsys

import (
	"bytes"
	"histex/lib/cnst"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsGarbage(t *testing.T) {
	garbage := bytes.Repeat([]byte{0xde, 0xad}, 4096)
	_, err := Open(bytes.NewReader(garbage), 0, int64(len(garbage)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cnst.ErrFilesystemOpen))
}

func TestOpenRejectsEmptySection(t *testing.T) {
	_, err := Open(bytes.NewReader(nil), 512, 512)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cnst.ErrFilesystemOpen))
}
