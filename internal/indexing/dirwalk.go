package indexing

import (
	"os"
	"path/filepath"

	"github.com/kensave/CodeCortX-MCP/internal/config"
)

// dirWalker is the pipeline's recursive directory scan. Unlike
// filepath.WalkDir it follows symlinked directories one level, keyed by
// resolved real path so that a link cycle is entered at most once.
type dirWalker struct {
	root     string
	excluder *config.Excluder
	visited  map[string]bool
	admit    func(path string, size int64) bool
	maxFiles int
	paths    []string
}

// walk descends into dir. atRoot distinguishes the one directory whose
// read failure is fatal (the walk has nothing to index) from subtrees,
// whose failures are skipped. Each physical directory is entered at most
// once regardless of how many paths (symlinked or direct) lead to it.
func (w *dirWalker) walk(dir string, atRoot bool) error {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		if w.visited[resolved] && !atRoot {
			return nil
		}
		w.visited[resolved] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if atRoot {
			return err
		}
		return nil
	}

	for _, e := range entries {
		if w.maxFiles > 0 && len(w.paths) >= w.maxFiles {
			return nil
		}
		path := filepath.Join(dir, e.Name())
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		isDir := e.IsDir()
		if !isDir && e.Type()&os.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				continue // dangling link
			}
			if target.IsDir() {
				if w.excluder.ShouldSkip(rel + "/") {
					continue
				}
				if err := w.walk(path, false); err != nil {
					return err
				}
				continue
			}
		}

		if isDir {
			if w.excluder.ShouldSkip(rel + "/") {
				continue
			}
			if err := w.walk(path, false); err != nil {
				return err
			}
			continue
		}

		if w.excluder.ShouldSkip(rel) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			info, err = os.Stat(path)
			if err != nil {
				continue
			}
		}
		if !w.admit(path, info.Size()) {
			continue
		}
		w.paths = append(w.paths, path)
	}
	return nil
}
