package extract

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"histex/lib/cnst"
	"histex/lib/decode"
	"histex/lib/fio"
	"histex/lib/fsys"
	"histex/lib/structs"
	"histex/lib/util"
	"io"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyPath = "Users/bob/AppData/Roaming/Microsoft/Windows/PowerShell/PSReadLine/ConsoleHost_history.txt"

type fakeImage struct {
	data []byte
}

func (f fakeImage) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(f.data).ReadAt(p, off)
}
func (f fakeImage) Size() int64  { return int64(len(f.data)) }
func (f fakeImage) Path() string { return "" }
func (f fakeImage) Close() error { return nil }

func openFake(data []byte) OpenImageFunc {
	return func(string) (fio.Image, error) {
		return fakeImage{data: data}, nil
	}
}

func openMapFS(m fstest.MapFS) fsys.OpenFunc {
	return func(io.ReaderAt, int64, int64) (fs.FS, error) {
		return m, nil
	}
}

func TestRunExtractsHistoryFromWholeImage(t *testing.T) {
	content := []byte("Get-Process\n\nGet-Service")
	outFs := afero.NewMemMapFs()

	result := Run(Options{
		ImagePath: "evidence.dd",
		OutputDir: "out",
		Partition: cnst.AllPartitions,
		OutFs:     outFs,
		OpenImage: openFake(nil),
		OpenFS: openMapFS(fstest.MapFS{
			historyPath: &fstest.MapFile{Data: content},
		}),
	})

	require.True(t, result.Success, result.Error)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.FilesFound)
	assert.Equal(t, 1, result.FilesExtracted)
	require.Len(t, result.ExtractedFiles, 1)

	artifact := result.ExtractedFiles[0]
	assert.Equal(t, "bob", artifact.Username)
	assert.Equal(t, "/"+historyPath, artifact.SourcePath)
	assert.Equal(t, "N/A", artifact.Partition)
	assert.Equal(t, "utf-8", artifact.Encoding)
	assert.Equal(t, int64(len(content)), artifact.FileSize)
	assert.Equal(t, util.Digest(content), artifact.SHA3)

	// Blank lines are dropped; line numbers still count them.
	require.Equal(t, 2, artifact.CommandCount)
	assert.Equal(t, structs.Command{LineNumber: 1, Command: "Get-Process"}, artifact.Commands[0])
	assert.Equal(t, structs.Command{LineNumber: 3, Command: "Get-Service"}, artifact.Commands[1])

	persisted, err := afero.ReadFile(outFs, "out/ConsoleHost_history_bob_1.txt")
	require.NoError(t, err)
	assert.Equal(t, content, persisted, "persisted bytes must be verbatim, decoding happens on a copy")
}

func TestRunCountsEmptyArtifactAsFoundNotExtracted(t *testing.T) {
	result := Run(Options{
		ImagePath: "evidence.dd",
		OutputDir: "out",
		Partition: cnst.AllPartitions,
		OutFs:     afero.NewMemMapFs(),
		OpenImage: openFake(nil),
		OpenFS: openMapFS(fstest.MapFS{
			historyPath: &fstest.MapFile{Data: nil},
		}),
	})

	require.True(t, result.Success)
	assert.Equal(t, 1, result.FilesFound)
	assert.Equal(t, 0, result.FilesExtracted)
	assert.Empty(t, result.ExtractedFiles)
}

// unreadableFS lists the artifact fine but refuses to open it, the shape a
// corrupt MFT record takes.
type unreadableFS struct {
	fstest.MapFS
}

func (u unreadableFS) Open(name string) (fs.File, error) {
	if strings.HasSuffix(name, "ConsoleHost_history.txt") {
		return nil, errors.New("record is corrupt")
	}
	return u.MapFS.Open(name)
}

func TestRunSurvivesUnreadableArtifact(t *testing.T) {
	inner := fstest.MapFS{
		historyPath: &fstest.MapFile{Data: []byte("Get-Date\n")},
	}
	result := Run(Options{
		ImagePath: "evidence.dd",
		OutputDir: "out",
		Partition: cnst.AllPartitions,
		OutFs:     afero.NewMemMapFs(),
		OpenImage: openFake(nil),
		OpenFS: func(io.ReaderAt, int64, int64) (fs.FS, error) {
			return unreadableFS{MapFS: inner}, nil
		},
	})

	require.True(t, result.Success)
	assert.Equal(t, 1, result.FilesFound)
	assert.Equal(t, 0, result.FilesExtracted)
}

func TestRunWithoutMatchesMarshalsEmptyList(t *testing.T) {
	result := Run(Options{
		ImagePath: "evidence.dd",
		OutputDir: "out",
		Partition: cnst.AllPartitions,
		OutFs:     afero.NewMemMapFs(),
		OpenImage: openFake(nil),
		OpenFS:    openMapFS(fstest.MapFS{}),
	})

	require.True(t, result.Success)
	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"extracted_files":[]`)
}

func TestRunDecodeFailureLeavesNoOutputFile(t *testing.T) {
	outFs := afero.NewMemMapFs()
	rejectAll := []decode.Candidate{
		{Name: "strict", Decode: func([]byte) (string, bool) { return "", false }},
	}

	result := Run(Options{
		ImagePath: "evidence.dd",
		OutputDir: "out",
		Partition: cnst.AllPartitions,
		Chain:     rejectAll,
		OutFs:     outFs,
		OpenImage: openFake(nil),
		OpenFS: openMapFS(fstest.MapFS{
			historyPath: &fstest.MapFile{Data: []byte("Get-Process\n")},
		}),
	})

	require.True(t, result.Success)
	assert.Equal(t, 1, result.FilesFound)
	assert.Equal(t, 0, result.FilesExtracted)

	exists, err := afero.Exists(outFs, "out/ConsoleHost_history_bob_1.txt")
	require.NoError(t, err)
	assert.False(t, exists, "an undecodable artifact must leave no output file")
}

func TestRunFailsWhenImageDoesNotOpen(t *testing.T) {
	result := Run(Options{
		ImagePath: "missing.E01",
		OutputDir: "out",
		OutFs:     afero.NewMemMapFs(),
		OpenImage: func(string) (fio.Image, error) {
			return nil, errors.Wrap(cnst.ErrContainerOpen, "missing.E01")
		},
	})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, 0, result.FilesFound)
}

func TestRunFailsWhenNothingMounts(t *testing.T) {
	result := Run(Options{
		ImagePath: "evidence.dd",
		OutputDir: "out",
		Partition: cnst.AllPartitions,
		OutFs:     afero.NewMemMapFs(),
		OpenImage: openFake(nil),
		OpenFS: func(io.ReaderAt, int64, int64) (fs.FS, error) {
			return nil, errors.Wrap(cnst.ErrFilesystemOpen, "not ntfs, not fat16")
		},
	})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

// partitionedImage returns 8 MB of zeros with an MBR describing two NTFS
// partitions, so the run takes the volume-system route.
func partitionedImage() []byte {
	data := make([]byte, 8*cnst.MB)
	for slot, lba := range []uint32{2048, 8192} {
		offset := 446 + slot*16
		data[offset+4] = 0x07
		binary.LittleEndian.PutUint32(data[offset+8:], lba)
		binary.LittleEndian.PutUint32(data[offset+12:], 2048)
	}
	data[510] = 0x55
	data[511] = 0xaa
	return data
}

func perPartitionFS(t *testing.T) fsys.OpenFunc {
	t.Helper()
	alicePath := strings.Replace(historyPath, "bob", "alice", 1)
	volumes := map[int64]fstest.MapFS{
		2048 * 512: {alicePath: &fstest.MapFile{Data: []byte("whoami\n")}},
		8192 * 512: {historyPath: &fstest.MapFile{Data: []byte("ipconfig /all\n")}},
	}
	return func(_ io.ReaderAt, offset, _ int64) (fs.FS, error) {
		volume, ok := volumes[offset]
		if !ok {
			t.Fatalf("unexpected filesystem offset %d", offset)
		}
		return volume, nil
	}
}

func TestRunScansEveryAllocatedPartition(t *testing.T) {
	outFs := afero.NewMemMapFs()
	result := Run(Options{
		ImagePath: "evidence.dd",
		OutputDir: "out",
		Partition: cnst.AllPartitions,
		OutFs:     outFs,
		OpenImage: openFake(partitionedImage()),
		OpenFS:    perPartitionFS(t),
	})

	require.True(t, result.Success, result.Error)
	require.Equal(t, 2, result.FilesExtracted)

	assert.Equal(t, "alice", result.ExtractedFiles[0].Username)
	assert.Equal(t, "bob", result.ExtractedFiles[1].Username)
	assert.Equal(t, "NTFS / exFAT (0x07)", result.ExtractedFiles[0].Partition)

	// Sequence numbers are global across partitions.
	_, err := outFs.Stat("out/ConsoleHost_history_alice_1.txt")
	assert.NoError(t, err)
	_, err = outFs.Stat("out/ConsoleHost_history_bob_2.txt")
	assert.NoError(t, err)
}

func TestRunHonorsPartitionFilter(t *testing.T) {
	outFs := afero.NewMemMapFs()
	result := Run(Options{
		ImagePath: "evidence.dd",
		OutputDir: "out",
		Partition: 1,
		OutFs:     outFs,
		OpenImage: openFake(partitionedImage()),
		OpenFS:    perPartitionFS(t),
	})

	require.True(t, result.Success, result.Error)
	require.Equal(t, 1, result.FilesExtracted)
	assert.Equal(t, "bob", result.ExtractedFiles[0].Username)

	// The single extracted artifact starts the sequence at one.
	_, err := outFs.Stat("out/ConsoleHost_history_bob_1.txt")
	assert.NoError(t, err)
}
