// Package extract drives the whole pipeline: container open, volume
// enumeration, per-partition search, content extraction, decoding and
// result assembly. Fatal failures surface in the returned result with
// Success=false; everything else degrades to a skipped item so a corrupt
// partition or file never aborts the run.
package extract

import (
	"fmt"
	"histex/lib/cnst"
	"histex/lib/decode"
	"histex/lib/fio"
	"histex/lib/fsys"
	"histex/lib/parser"
	"histex/lib/search"
	"histex/lib/structs"
	"histex/lib/util"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type OpenImageFunc func(path string) (fio.Image, error)

// Options configures one extraction run. Zero-value fields fall back to the
// real collaborators, so tests can swap in synthetic images and filesystems.
type Options struct {
	ImagePath string
	OutputDir string
	Partition int // cnst.AllPartitions scans every allocated partition

	Target search.Target
	Chain  []decode.Candidate

	OutFs     afero.Fs
	OpenImage OpenImageFunc
	OpenFS    fsys.OpenFunc
}

func (o *Options) fillDefaults() {
	if o.Target.Filename == "" {
		o.Target = search.DefaultTarget()
	}
	if o.Chain == nil {
		o.Chain = decode.DefaultChain()
	}
	if o.OutFs == nil {
		o.OutFs = afero.NewOsFs()
	}
	if o.OpenImage == nil {
		o.OpenImage = fio.Open
	}
	if o.OpenFS == nil {
		o.OpenFS = fsys.Open
	}
}

// Run executes the pipeline and always returns a usable result.
func Run(opts Options) *structs.RunResult {
	opts.fillDefaults()

	result := &structs.RunResult{
		RunID:          uuid.NewString(),
		ImagePath:      opts.ImagePath,
		OutputDir:      opts.OutputDir,
		ExtractedFiles: []structs.ExtractedArtifact{},
		CreatedAt:      time.Now().UTC(),
	}

	img, err := opts.OpenImage(opts.ImagePath)
	if err != nil {
		return failure(result, err)
	}
	defer img.Close()

	if err := opts.OutFs.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return failure(result, errors.Wrapf(err, "create output dir %s", opts.OutputDir))
	}

	matches, err := collectMatches(img, opts)
	if err != nil {
		return failure(result, err)
	}
	result.FilesFound = len(matches)

	sequence := 0
	for _, match := range matches {
		artifact, ok := processMatch(match, sequence+1, opts)
		if !ok {
			continue
		}
		sequence++
		result.ExtractedFiles = append(result.ExtractedFiles, artifact)
	}

	result.FilesExtracted = len(result.ExtractedFiles)
	result.Success = true
	return result
}

// collectMatches runs the search engine across all allocated partitions, or
// against the whole image when no volume system is found. A filesystem that
// will not open on one partition is skipped; with no partitions to fall
// back to, the same failure is fatal.
func collectMatches(img fio.Image, opts Options) ([]structs.Match, error) {
	partitions := parser.GetPartitions(img)

	if len(partitions) == 0 {
		fsysHandle, err := opts.OpenFS(img, 0, img.Size())
		if err != nil {
			return nil, errors.Wrapf(cnst.ErrNoFilesystem, "%v", err)
		}
		return search.Find(fsysHandle, opts.Target), nil
	}

	var matches []structs.Match
	bar := progressbar.Default(int64(len(partitions)), "scanning partitions")
	defer bar.Finish()

	for i := range partitions {
		partition := partitions[i]
		bar.Add(1)

		if !partition.Allocated {
			continue
		}
		if opts.Partition != cnst.AllPartitions && uint32(opts.Partition) != partition.Index {
			continue
		}

		end := partition.Start + partition.Size
		if partition.Size <= 0 || end > img.Size() {
			end = img.Size()
		}
		fsysHandle, err := opts.OpenFS(img, partition.Start, end)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"partition":   partition.Index,
				"description": partition.Description,
			}).Warn("skipping partition, filesystem did not open")
			continue
		}

		found := search.Find(fsysHandle, opts.Target)
		for j := range found {
			found[j].Partition = &partition
		}
		matches = append(matches, found...)
	}

	return matches, nil
}

// processMatch extracts, persists and decodes one located artifact.
// Any failure makes the artifact found-but-not-extracted.
func processMatch(match structs.Match, sequence int, opts Options) (structs.ExtractedArtifact, bool) {
	var artifact structs.ExtractedArtifact

	content := extractContent(match)
	if len(content) == 0 {
		logrus.WithField("path", match.Path).Warn("found artifact but could not read content")
		return artifact, false
	}

	// Decode before persisting so a decode failure leaves no orphaned
	// output file holding a sequence number.
	text, encodingName, err := decode.Decode(content, opts.Chain)
	if err != nil {
		logrus.WithError(err).WithField("path", match.Path).Warn("could not decode extracted content")
		return artifact, false
	}
	commands := decode.SplitCommands(text, false)

	username := util.UsernameFromPath(match.Path)
	outputPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_%s_%d.txt", cnst.OutputPrefix, username, sequence))
	if err := afero.WriteFile(opts.OutFs, outputPath, content, 0o644); err != nil {
		logrus.WithError(err).WithField("path", outputPath).Warn("could not persist extracted content")
		return artifact, false
	}

	partitionDesc := "N/A"
	if match.Partition != nil {
		partitionDesc = match.Partition.Description
	}

	artifact = structs.ExtractedArtifact{
		Username:     username,
		SourcePath:   match.Path,
		OutputPath:   outputPath,
		FileSize:     match.Size,
		Partition:    partitionDesc,
		Encoding:     encodingName,
		SHA3:         util.Digest(content),
		CommandCount: len(commands),
		Commands:     commands,
	}
	return artifact, true
}

// extractContent reads the entry's full data stream in one bounded read.
// Nil means "found but not extractable" and is never an error.
func extractContent(match structs.Match) []byte {
	if match.Size <= 0 || match.Size > cnst.MaxArtifactSize {
		return nil
	}

	file, err := match.Fsys.Open(match.FSPath)
	if err != nil {
		return nil
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, match.Size))
	if err != nil {
		return nil
	}
	return content
}

func failure(result *structs.RunResult, err error) *structs.RunResult {
	result.Success = false
	result.Error = err.Error()
	logrus.WithError(err).Error("extraction run failed")
	return result
}
