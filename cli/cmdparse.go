package cli

import (
	"histex/lib/decode"
	"histex/lib/structs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ParseData decodes a history file already extracted to the local disk and
// prints the command list, mirroring what extraction reports per artifact.
func ParseData(filePath string, includeEmpty bool) error {
	result, err := parseHistoryFile(filePath, includeEmpty)
	if printErr := printJSON(result); printErr != nil {
		return printErr
	}
	return err
}

func parseHistoryFile(filePath string, includeEmpty bool) (*structs.ParseResult, error) {
	result := &structs.ParseResult{FilePath: filePath}

	info, err := os.Stat(filePath)
	if err != nil {
		return fail(result, err)
	}
	if info.IsDir() {
		return fail(result, errors.Errorf("path is not a file: %s", filePath))
	}
	result.FileSizeBytes = info.Size()
	if abs, err := filepath.Abs(filePath); err == nil {
		result.FilePath = abs
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fail(result, err)
	}

	text, encodingName, err := decode.Decode(data, decode.DefaultChain())
	if err != nil {
		return fail(result, err)
	}

	commands := decode.SplitCommands(text, includeEmpty)
	result.Success = true
	result.Encoding = encodingName
	result.TotalLines = decode.CountLines(text)
	result.Commands = commands
	for _, command := range commands {
		if command.Command != "" {
			result.CommandCount++
		}
	}
	return result, nil
}

func fail(result *structs.ParseResult, err error) (*structs.ParseResult, error) {
	result.Success = false
	result.Error = err.Error()
	return result, err
}
