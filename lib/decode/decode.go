// Package decode turns extracted artifact bytes into text without knowing
// the source encoding. Candidates are tried in a fixed order; the last one
// accepts any byte sequence, so the chain as shipped cannot fail.
package decode

import (
	"bytes"
	"histex/lib/cnst"
	"histex/lib/structs"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Candidate is one encoding attempt: Decode returns ok=false when the bytes
// are not valid in that encoding.
type Candidate struct {
	Name   string
	Decode func(data []byte) (string, bool)
}

// DefaultChain mirrors the encodings PowerShell histories show up in on
// Windows systems: UTF-8 with and without BOM, Korean Windows code pages,
// then Latin-1 as the total fallback. x/text's EUC-KR implements the
// windows-949 superset, so it covers both cp949 and euc-kr labelled files.
func DefaultChain() []Candidate {
	return []Candidate{
		{Name: "utf-8", Decode: decodeUTF8},
		{Name: "utf-8-sig", Decode: decodeUTF8SIG},
		{Name: "euc-kr", Decode: transformWith(korean.EUCKR)},
		{Name: "latin-1", Decode: transformWith(charmap.ISO8859_1)},
	}
}

// Decode tries each candidate in order and returns the first success with
// the encoding name that produced it. With the default chain the error path
// is theoretical, but a reconfigured chain may not end in a total fallback.
func Decode(data []byte, chain []Candidate) (string, string, error) {
	for _, candidate := range chain {
		if text, ok := candidate.Decode(data); ok {
			return text, candidate.Name, nil
		}
	}
	return "", "", errors.Wrapf(cnst.ErrDecodeExhausted, "%d candidates", len(chain))
}

// decodeUTF8 rejects BOM-prefixed input so the sig variant claims it and the
// marker never leaks into the first command.
func decodeUTF8(data []byte) (string, bool) {
	if bytes.HasPrefix(data, utf8BOM) {
		return "", false
	}
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

func decodeUTF8SIG(data []byte) (string, bool) {
	if !bytes.HasPrefix(data, utf8BOM) {
		return "", false
	}
	return decodeUTF8(data[len(utf8BOM):])
}

func transformWith(enc encoding.Encoding) func([]byte) (string, bool) {
	return func(data []byte) (string, bool) {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		// The x/text decoders substitute U+FFFD instead of erroring on
		// invalid input; treat substitution as decode failure.
		if bytes.ContainsRune(decoded, utf8.RuneError) {
			return "", false
		}
		return string(decoded), true
	}
}

// SplitCommands turns decoded text into one record per line, keeping the
// 1-based line number of the original file. Empty lines are dropped unless
// includeEmpty is set, in which case they stay as empty command records.
// The result is never nil so it serializes as [] rather than null.
func SplitCommands(text string, includeEmpty bool) []structs.Command {
	commands := []structs.Command{}
	for number, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" && !includeEmpty {
			continue
		}
		commands = append(commands, structs.Command{
			LineNumber: number + 1,
			Command:    trimmed,
		})
	}
	return commands
}

// CountLines reports how many lines the text has before empty-line
// filtering, matching the splitting used by SplitCommands.
func CountLines(text string) int {
	return len(splitLines(text))
}

// splitLines handles \n, \r\n and bare \r line endings; a trailing
// terminator does not produce a final empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	normalized = strings.TrimSuffix(normalized, "\n")
	return strings.Split(normalized, "\n")
}
