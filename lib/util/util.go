package util

import (
	"encoding/hex"
	"histex/lib/cnst"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/sha3"
)

// UsernameFromPath derives the account name owning an artifact: the path
// segment immediately after a case-insensitive "users" segment. Profiles
// under "Documents and Settings" or paths with no users segment fall back
// to the unknown marker.
func UsernameFromPath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if strings.EqualFold(part, "users") && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return cnst.UnknownUser
}

// Digest returns the hex SHA3-256 of extracted content, recorded in results
// so a reviewer can tie output files back to the run that produced them.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GetDBPath resolves the default run-catalog location, ~/.histex, creating
// the directory when absent.
func GetDBPath() (string, error) {
	const dbdir = ".histex"

	path, err := os.UserHomeDir()
	if err != nil {
		path, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	fullpath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	dbpath := filepath.Join(fullpath, dbdir)
	err = os.MkdirAll(dbpath, 0o755)

	return dbpath, err
}
