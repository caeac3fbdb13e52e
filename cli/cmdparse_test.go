package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHistory(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ConsoleHost_history.txt")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestParseHistoryFile(t *testing.T) {
	path := writeHistory(t, []byte("Get-Process\r\n\r\nGet-Service\r\n"))

	result, err := parseHistoryFile(path, false)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "utf-8", result.Encoding)
	assert.Equal(t, 3, result.TotalLines)
	assert.Equal(t, 2, result.CommandCount)
	require.Len(t, result.Commands, 2)
	assert.Equal(t, 1, result.Commands[0].LineNumber)
	assert.Equal(t, "Get-Process", result.Commands[0].Command)
	assert.Equal(t, 3, result.Commands[1].LineNumber)
	assert.Equal(t, "Get-Service", result.Commands[1].Command)
}

func TestParseHistoryFileIncludeEmpty(t *testing.T) {
	path := writeHistory(t, []byte("a\n\nb"))

	result, err := parseHistoryFile(path, true)
	require.NoError(t, err)

	require.Len(t, result.Commands, 3)
	assert.Equal(t, "", result.Commands[1].Command)
	assert.Equal(t, 2, result.CommandCount, "blank lines are listed but not counted as commands")
}

func TestParseHistoryFileWithBOM(t *testing.T) {
	path := writeHistory(t, append([]byte{0xef, 0xbb, 0xbf}, "whoami\n"...))

	result, err := parseHistoryFile(path, false)
	require.NoError(t, err)

	assert.Equal(t, "utf-8-sig", result.Encoding)
	require.Len(t, result.Commands, 1)
	assert.Equal(t, "whoami", result.Commands[0].Command)
}

func TestParseHistoryFileMissing(t *testing.T) {
	result, err := parseHistoryFile(filepath.Join(t.TempDir(), "absent.txt"), false)
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestParseHistoryFileRejectsDirectory(t *testing.T) {
	result, err := parseHistoryFile(t.TempDir(), false)
	require.Error(t, err)
	assert.False(t, result.Success)
}
