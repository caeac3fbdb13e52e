package cli

import (
	"histex/lib/cnst"
	"histex/lib/decode"
)

type capabilities struct {
	Name               string   `json:"name"`
	Version            string   `json:"version"`
	Description        string   `json:"description"`
	Capabilities       []string `json:"capabilities"`
	TargetFile         string   `json:"target_file"`
	DefaultLocation    string   `json:"default_location"`
	SupportedEncodings []string `json:"supported_encodings"`
	SupportedImages    []string `json:"supported_images"`
}

// InfoData prints what this build can do, so automation can discover the
// supported containers and encodings without trial runs.
func InfoData() error {
	var encodings []string
	for _, candidate := range decode.DefaultChain() {
		encodings = append(encodings, candidate.Name)
	}

	return printJSON(capabilities{
		Name:        "ConsoleHost History Extractor",
		Version:     cnst.Version,
		Description: "PowerShell ConsoleHost_history.txt extraction and parsing from forensic disk images",
		Capabilities: []string{
			cnst.CmdExtract + " - locate, extract and parse histories from raw/EWF images",
			cnst.CmdParse + " - parse an already-extracted history file to JSON",
			cnst.CmdRuns + " - list catalogued extraction runs",
			cnst.CmdInfo + " - print this capability report",
			cnst.CmdReset + " - delete the run catalog",
		},
		TargetFile:         "ConsoleHost_history.txt",
		DefaultLocation:    `%USERPROFILE%\AppData\Roaming\Microsoft\Windows\PowerShell\PSReadLine\ConsoleHost_history.txt`,
		SupportedEncodings: encodings,
		SupportedImages:    []string{"raw/dd", "E01", "Ex01", "S01"},
	})
}
