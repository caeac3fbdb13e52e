package structs

import "time"

type Command struct {
	LineNumber int    `json:"line_number"`
	Command    string `json:"command"`
}

type ExtractedArtifact struct {
	Username     string    `json:"username"`
	SourcePath   string    `json:"source_path"`
	OutputPath   string    `json:"output_path"`
	FileSize     int64     `json:"file_size"`
	Partition    string    `json:"partition"`
	Encoding     string    `json:"encoding,omitempty"`
	SHA3         string    `json:"sha3"`
	CommandCount int       `json:"command_count"`
	Commands     []Command `json:"commands"`
}

// RunResult is the structured outcome of one extraction run. Fatal errors
// surface here as Success=false rather than as a returned Go error.
type RunResult struct {
	Success        bool                `json:"success"`
	Error          string              `json:"error,omitempty"`
	RunID          string              `json:"run_id"`
	ImagePath      string              `json:"image_path"`
	OutputDir      string              `json:"output_dir"`
	FilesFound     int                 `json:"files_found"`
	FilesExtracted int                 `json:"files_extracted"`
	ExtractedFiles []ExtractedArtifact `json:"extracted_files"`
	CreatedAt      time.Time           `json:"created_at"`
}

type RunSummary struct {
	RunID          string    `json:"run_id"`
	ImagePath      string    `json:"image_path"`
	FilesFound     int       `json:"files_found"`
	FilesExtracted int       `json:"files_extracted"`
	CreatedAt      time.Time `json:"created_at"`
}

// ParseResult is the outcome of decoding a history file already sitting on
// the local disk, outside any image.
type ParseResult struct {
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	FilePath      string    `json:"file_path"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	TotalLines    int       `json:"total_lines"`
	CommandCount  int       `json:"command_count"`
	Encoding      string    `json:"encoding,omitempty"`
	Commands      []Command `json:"commands"`
}
