package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultExcludesBuildArtifacts(t *testing.T) {
	cfg := Default(t.TempDir())
	e := NewExcluder(cfg)

	for _, dir := range []string{"node_modules/", ".git/", "target/", "build/", "dist/", ".venv/"} {
		assert.True(t, e.ShouldSkip(dir), "%s should be excluded by default", dir)
		assert.True(t, e.ShouldSkip("sub/"+dir), "nested %s should be excluded too", dir)
	}
	assert.False(t, e.ShouldSkip("src/main.go"))
}

func TestParseKDLReadsEverySection(t *testing.T) {
	overlay, err := parseKDL(`
project {
    name "widget-factory"
}
index {
    max_file_size 2048
    max_file_count 100
    respect_gitignore false
    watch_debounce_ms 500
}
memory {
    max_memory_mb 64
    eviction_threshold 0.5
}
exclude "**/generated/**" "**/*.gen.go"
`)
	require.NoError(t, err)

	require.NotNil(t, overlay.ProjectName)
	assert.Equal(t, "widget-factory", *overlay.ProjectName)
	require.NotNil(t, overlay.MaxFileSize)
	assert.EqualValues(t, 2048, *overlay.MaxFileSize)
	require.NotNil(t, overlay.RespectGitignore)
	assert.False(t, *overlay.RespectGitignore)
	require.NotNil(t, overlay.MaxMemoryMB)
	assert.Equal(t, 64, *overlay.MaxMemoryMB)
	require.NotNil(t, overlay.EvictionThreshold)
	assert.InDelta(t, 0.5, *overlay.EvictionThreshold, 1e-9)
	assert.Equal(t, []string{"**/generated/**", "**/*.gen.go"}, overlay.Exclude)

	// Settings the file does not mention stay unset.
	assert.Nil(t, overlay.WatchMode)
	assert.Nil(t, overlay.ProjectRoot)
}

func TestApplyOverlayLeavesUnmentionedSettingsAlone(t *testing.T) {
	cfg := Default("/repo")
	overlay, err := parseKDL(`
memory {
    max_memory_mb 64
}
`)
	require.NoError(t, err)

	applyOverlay(cfg, overlay)

	assert.Equal(t, 64, cfg.Memory.MaxMemoryMB)
	// A file that says nothing about these must not reset them.
	assert.True(t, cfg.Index.RespectGitignore)
	assert.True(t, cfg.Index.WatchMode)
	assert.Equal(t, defaultEvictionThreshold, cfg.Memory.EvictionThreshold)
	assert.NotEmpty(t, cfg.Exclude)
}

func TestApplyOverlayUnionsExclusions(t *testing.T) {
	cfg := Default("/repo")
	before := len(cfg.Exclude)

	applyOverlay(cfg, &Overlay{Exclude: []string{"**/generated/**", "**/.git/**"}})

	// One new pattern added, the duplicate de-duplicated.
	assert.Len(t, cfg.Exclude, before+1)
}

func TestLoadMergesProjectFileOverDefaults(t *testing.T) {
	root := t.TempDir()
	kdl := `
memory {
    max_memory_mb 128
}
index {
    watch_mode false
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".codecortx.kdl"), []byte(kdl), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, 128, cfg.Memory.MaxMemoryMB)
	assert.False(t, cfg.Index.WatchMode)
	assert.Equal(t, int64(defaultMaxFileSize), cfg.Index.MaxFileSize)
}

func TestEnvOverridesBeatConfigFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".codecortx.kdl"), []byte(`
memory {
    max_memory_mb 128
    eviction_threshold 0.5
}
`), 0o644))

	t.Setenv("CODECORTEXT_MAX_MEMORY_MB", "256")
	t.Setenv("CODECORTEXT_EVICTION_THRESHOLD", "0.7")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Memory.MaxMemoryMB)
	assert.InDelta(t, 0.7, cfg.Memory.EvictionThreshold, 1e-9)
}

func TestEnvOverridesIgnoreGarbageValues(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CODECORTEXT_MAX_MEMORY_MB", "a lot")
	t.Setenv("CODECORTEXT_EVICTION_THRESHOLD", "2.5") // above 1.0 is nonsense

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, defaultMaxMemoryMB, cfg.Memory.MaxMemoryMB)
	assert.Equal(t, defaultEvictionThreshold, cfg.Memory.EvictionThreshold)
}

func TestExcluderHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("secrets.env\n"), 0o644))

	cfg := Default(root)
	e := NewExcluder(cfg)

	assert.True(t, e.ShouldSkip("secrets.env"))
	assert.False(t, e.ShouldSkip("main.go"))
}

func TestIncludeListRestrictsWalk(t *testing.T) {
	cfg := Default("/repo")
	cfg.Include = []string{"src/**"}
	e := NewExcluder(cfg)

	assert.False(t, e.ShouldSkip("src/main.go"))
	assert.True(t, e.ShouldSkip("docs/readme.md"))
}
