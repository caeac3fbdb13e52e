// Package search locates the target artifact with a pruned depth-first
// walk. Unrestricted enumeration of a multi-hundred-gigabyte image is
// prohibitively slow; the artifact path is known up to the username
// segment, so the walk is confined to the profile-root subtrees and, below
// a user directory, to paths that keep matching the required components.
package search

import (
	"histex/lib/cnst"
	"histex/lib/structs"
	"io/fs"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
)

// Target is explicit configuration, not package state, so the engine can be
// re-pointed at other artifacts in tests. All fields are lower-cased.
type Target struct {
	Filename  string
	PathParts []string
	Anchors   []string
}

func DefaultTarget() Target {
	return Target{
		Filename:  cnst.TargetFilename,
		PathParts: cnst.TargetPathParts(),
		Anchors:   cnst.AnchorDirs(),
	}
}

type frame struct {
	fsPath  string // io/fs form: "." for root, no leading slash
	display string // /-rooted form reported in results
}

// Find walks fsys from the root and returns every entry matching the
// target. A directory that cannot be listed is skipped with its subtree;
// one corrupt node must never abort the whole search.
func Find(fsys fs.FS, target Target) []structs.Match {
	var matches []structs.Match
	stack := []frame{{fsPath: ".", display: "/"}}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := fs.ReadDir(fsys, current.fsPath)
		if err != nil {
			logrus.WithError(err).WithField("path", current.display).Debug("skipping unreadable directory")
			continue
		}

		// Children are pushed in reverse so the LIFO stack visits them in
		// directory order.
		for i := len(entries) - 1; i >= 0; i-- {
			entry := entries[i]
			name := entry.Name()
			if name == "." || name == ".." {
				continue
			}

			display := childDisplay(current.display, name)
			fsPath := childFSPath(current.fsPath, name)

			if entry.IsDir() {
				if descend(current.display, display, name, target) {
					stack = append(stack, frame{fsPath: fsPath, display: display})
				}
				continue
			}

			if !entry.Type().IsRegular() {
				continue
			}
			if !matchesTarget(display, name, target) {
				continue
			}

			var size int64
			if info, err := entry.Info(); err == nil {
				size = info.Size()
			}
			matches = append(matches, structs.Match{
				Path:   display,
				FSPath: fsPath,
				Size:   size,
				Fsys:   fsys,
			})
		}
	}

	return matches
}

func matchesTarget(display, name string, target Target) bool {
	if strings.ToLower(name) != target.Filename {
		return false
	}
	pathLower := strings.ToLower(display)
	for _, part := range target.PathParts {
		if !strings.Contains(pathLower, part) {
			return false
		}
	}
	return true
}

// descend is the pruning policy. A directory is entered when it is a
// profile root, one of the required path components, already under an
// AppData subtree, or an immediate child of a profile root (usernames are
// unpredictable, subpaths below them are not).
func descend(parentDisplay, display, name string, target Target) bool {
	nameLower := strings.ToLower(name)

	for _, anchor := range target.Anchors {
		if nameLower == anchor {
			return true
		}
	}
	for _, part := range target.PathParts {
		if nameLower == part {
			return true
		}
	}
	if strings.Contains(strings.ToLower(display), "appdata") {
		return true
	}

	parentLower := strings.ToLower(parentDisplay)
	for _, anchor := range target.Anchors {
		if parentLower == "/"+anchor {
			return true
		}
	}
	return false
}

func childDisplay(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func childFSPath(parent, name string) string {
	if parent == "." {
		return name
	}
	return path.Join(parent, name)
}
