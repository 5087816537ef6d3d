// Package pathutil converts caller-supplied paths to the project-relative,
// forward-slash form the store keys files by. Callers of the MCP tools pass
// whatever their editor hands them — absolute native paths included — and
// lookups must still land on the same store entries the indexing pipeline
// created.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to one relative to rootDir. It falls
// back to the original (or absolute) path whenever a clean relative form
// isn't available: already-relative input, empty input, a path outside
// rootDir, or a filepath.Rel failure (e.g. different Windows drives).
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return absPath
	}
	return filepath.ToSlash(relPath)
}
