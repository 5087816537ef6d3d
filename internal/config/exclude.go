package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
)

// Excluder answers whether a project-relative path should be skipped by the
// indexing pipeline, combining the configured include/exclude globs with an
// optional .gitignore.
type Excluder struct {
	include   []string
	exclude   []string
	gitignore *gitignore.GitIgnore
}

// NewExcluder builds an Excluder for cfg, loading root/.gitignore when
// RespectGitignore is set.
func NewExcluder(cfg *Config) *Excluder {
	e := &Excluder{
		include: cfg.Include,
		exclude: cfg.Exclude,
	}
	if cfg.Index.RespectGitignore {
		path := filepath.Join(cfg.Project.Root, ".gitignore")
		if _, err := os.Stat(path); err == nil {
			if gi, err := gitignore.CompileIgnoreFile(path); err == nil {
				e.gitignore = gi
			}
		}
	}
	return e
}

// ShouldSkip reports whether relPath (forward-slash, project-relative)
// should be excluded from indexing.
func (e *Excluder) ShouldSkip(relPath string) bool {
	relPath = filepath.ToSlash(relPath)

	if len(e.include) > 0 && !e.matchesAny(e.include, relPath) {
		return true
	}
	if e.matchesAny(e.exclude, relPath) {
		return true
	}
	if e.gitignore != nil && e.gitignore.MatchesPath(relPath) {
		return true
	}
	return false
}

func (e *Excluder) matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
		// Allow simple substring directory patterns like "**/vendor/**" to
		// also match when path itself has no leading component.
		if strings.HasPrefix(p, "**/") {
			if ok, _ := doublestar.Match(p[3:], path); ok {
				return true
			}
		}
	}
	return false
}
