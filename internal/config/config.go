// Package config loads project and user settings for CodeCortX-MCP from
// .codecortx.kdl files, merges them with built-in defaults, and exposes the
// effective include/exclude globs, memory budget and eviction threshold to
// the rest of the module.
package config

import (
	"os"
	"path/filepath"
)

// Project identifies the root being indexed.
type Project struct {
	Root string
	Name string
}

// Index controls what the pipeline walks and how it treats large inputs.
type Index struct {
	MaxFileSize      int64 // bytes; files larger than this are skipped
	MaxFileCount     int
	RespectGitignore bool
	WatchMode        bool
	WatchDebounceMs  int
}

// Memory controls the LRU eviction manager's budget.
type Memory struct {
	MaxMemoryMB       int
	EvictionThreshold float64 // fraction of MaxMemoryMB at which eviction starts, e.g. 0.8
}

// Config is the fully merged, effective configuration for one project.
type Config struct {
	Version int
	Project Project
	Index   Index
	Memory  Memory
	Include []string
	Exclude []string
}

const (
	defaultMaxFileSize       = 10 * 1024 * 1024
	defaultMaxFileCount      = 50000
	defaultWatchDebounceMs   = 200
	defaultMaxMemoryMB       = 1024
	defaultEvictionThreshold = 0.8
)

// defaultExclusions lists directory and file patterns excluded from every
// project unless explicitly overridden.
func defaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/node_modules/**",
		"**/target/**",
		"**/build/**",
		"**/dist/**",
		"**/vendor/**",
		"**/.venv/**",
		"**/venv/**",
		"**/__pycache__/**",
		"**/.tox/**",
		"**/*.min.js",
		"**/*.pb.go",
		"**/*.lock",
		"**/*.{png,jpg,jpeg,gif,svg,ico,woff,woff2,ttf,eot,pdf,zip,tar,gz}",
	}
}

// Default returns the built-in configuration for a project root with no
// .codecortx.kdl file present.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Index: Index{
			MaxFileSize:      defaultMaxFileSize,
			MaxFileCount:     defaultMaxFileCount,
			RespectGitignore: true,
			WatchMode:        true,
			WatchDebounceMs:  defaultWatchDebounceMs,
		},
		Memory: Memory{
			MaxMemoryMB:       defaultMaxMemoryMB,
			EvictionThreshold: defaultEvictionThreshold,
		},
		Include: []string{},
		Exclude: defaultExclusions(),
	}
}

// Load reads the effective configuration for projectRoot: built-in
// defaults, overridden by ~/.codecortx.kdl, overridden by
// <projectRoot>/.codecortx.kdl. Environment variables
// CODECORTEXT_MAX_MEMORY_MB and CODECORTEXT_EVICTION_THRESHOLD take
// precedence over both files.
func Load(projectRoot string) (*Config, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		absRoot = projectRoot
	}

	cfg := Default(absRoot)

	if home, err := os.UserHomeDir(); err == nil {
		if userCfg, err := LoadKDL(home, ".codecortx.kdl"); err == nil && userCfg != nil {
			applyOverlay(cfg, userCfg)
		}
	}

	if projCfg, err := LoadKDL(absRoot, ".codecortx.kdl"); err == nil && projCfg != nil {
		applyOverlay(cfg, projCfg)
	}

	applyEnvOverrides(cfg)
	cfg.Project.Root = absRoot
	return cfg, nil
}

// applyOverlay layers a parsed .codecortx.kdl file's settings onto cfg.
// Only settings the file actually specified are applied; include/exclude
// lists are unioned rather than replaced, so a project file can add
// exclusions without having to repeat the built-in list.
func applyOverlay(cfg *Config, o *Overlay) {
	if o.ProjectRoot != nil {
		cfg.Project.Root = *o.ProjectRoot
	}
	if o.ProjectName != nil {
		cfg.Project.Name = *o.ProjectName
	}
	if o.MaxFileSize != nil {
		cfg.Index.MaxFileSize = *o.MaxFileSize
	}
	if o.MaxFileCount != nil {
		cfg.Index.MaxFileCount = *o.MaxFileCount
	}
	if o.RespectGitignore != nil {
		cfg.Index.RespectGitignore = *o.RespectGitignore
	}
	if o.WatchMode != nil {
		cfg.Index.WatchMode = *o.WatchMode
	}
	if o.WatchDebounceMs != nil {
		cfg.Index.WatchDebounceMs = *o.WatchDebounceMs
	}
	if o.MaxMemoryMB != nil {
		cfg.Memory.MaxMemoryMB = *o.MaxMemoryMB
	}
	if o.EvictionThreshold != nil {
		cfg.Memory.EvictionThreshold = *o.EvictionThreshold
	}

	cfg.Include = unionStrings(cfg.Include, o.Include)
	cfg.Exclude = unionStrings(cfg.Exclude, o.Exclude)
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CODECORTEXT_MAX_MEMORY_MB"); v != "" {
		if n, err := parseIntEnv(v); err == nil && n > 0 {
			cfg.Memory.MaxMemoryMB = n
		}
	}
	if v := os.Getenv("CODECORTEXT_EVICTION_THRESHOLD"); v != "" {
		if f, err := parseFloatEnv(v); err == nil && f > 0 && f <= 1 {
			cfg.Memory.EvictionThreshold = f
		}
	}
}
