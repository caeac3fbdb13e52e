package cnst

import "errors"

const (
	B  int64 = 1
	KB       = B << 10
	MB       = KB << 10
	GB       = MB << 10
)

const (
	SectorSize int64 = 512
	// MaxArtifactSize bounds a single content read; a ConsoleHost history
	// larger than this is corrupt metadata, not a real shell history.
	MaxArtifactSize = 64 * MB
)

// Target artifact. The filename match is case-insensitive and every path
// part must appear as a substring of the lower-cased full path.
const TargetFilename = "consolehost_history.txt"

func TargetPathParts() []string {
	return []string{"appdata", "roaming", "microsoft", "windows", "powershell", "psreadline"}
}

// AnchorDirs are the profile roots whose immediate children are user
// directories with unpredictable names.
func AnchorDirs() []string {
	return []string{"users", "documents and settings"}
}

func EvidenceExtensions() []string {
	return []string{".e01", ".ex01", ".s01"}
}

const (
	UnknownUser  = "unknown"
	OutputPrefix = "ConsoleHost_history"
	ReportName   = "extraction_report.json"
)

const (
	RunNamespace       = "R|||:"
	NamespaceSeperator = "|||:"
)

var (
	ErrContainerOpen   = errors.New("unable to open image container")
	ErrSegmentMissing  = errors.New("evidence segment files missing or incomplete")
	ErrFilesystemOpen  = errors.New("no supported filesystem found")
	ErrNoFilesystem    = errors.New("could not process filesystem")
	ErrDecodeExhausted = errors.New("unable to decode content with any candidate encoding")
	ErrRunNotFound     = errors.New("no catalogued run with that id")
)

const (
	CmdExtract = "extract"
	CmdParse   = "parse"
	CmdRuns    = "runs"
	CmdInfo    = "info"
	CmdReset   = "reset"

	FlagDBPath         = "dbpath"
	FlagDBPathShort    = 'd'
	FlagVerbose        = "verbose"
	FlagVerboseShort   = 'v'
	FlagOutput         = "output"
	FlagOutputShort    = 'o'
	FlagPartition      = "partition"
	FlagPartitionShort = 'n'
	FlagReport         = "report"
	FlagReportShort    = 'r'
	FlagNoCatalog      = "no-catalog"
	FlagIncludeEmpty   = "include-empty"

	OperandImage = "IMAGE"
	OperandFile  = "FILE"
	OperandRunID = "RUNID"
)

const AllPartitions = -1

const Version = "1.0.0"
