package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/astdiff/domain"
	"github.com/ludo-technologies/astdiff/internal/config"
)

const projectConfig = `
[matcher]
strategy = "gumtree-complete"
min_height = 2
sim_threshold = 0.6

[generator]
strict = true

[output]
format = "json"
color = false

[input]
exclude_patterns = ["build/**"]
recursive = false

[performance]
max_goroutines = 2
timeout_seconds = 30
`

func TestConfigurationLoader_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	createTestFile(t, dir, config.ConfigFileName, projectConfig)
	nested := filepath.Join(dir, "src", "pkg")
	createTestFile(t, nested, "a.py", "")

	loader := NewConfigurationLoader(nil)

	req, err := loader.LoadConfig("", nested)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "gumtree-complete", req.Matcher)
	assert.Equal(t, 2, req.MinHeight)
	assert.Equal(t, 0.6, req.SimThreshold)
	assert.True(t, req.Strict)
	assert.Equal(t, domain.OutputFormatJSON, req.OutputFormat)
	assert.True(t, req.NoColor)

	dirReq, err := loader.LoadDirConfig("", nested)
	require.NoError(t, err)
	require.NotNil(t, dirReq)
	assert.False(t, dirReq.Recursive)
	assert.Equal(t, []string{"build/**"}, dirReq.ExcludePatterns)
	assert.Equal(t, 2, dirReq.MaxGoroutines)
	assert.Equal(t, 30*time.Second, dirReq.Timeout)
	assert.Equal(t, "gumtree-complete", dirReq.Diff.Matcher)
}

func TestConfigurationLoader_NoConfigFile(t *testing.T) {
	req, err := NewConfigurationLoader(nil).LoadConfig("", t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, req)
}

func TestConfigurationLoader_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "custom.toml", "[matcher]\nstrategy = \"zs\"\n")

	req, err := NewConfigurationLoader(nil).LoadConfig(path, "")
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "zs", req.Matcher)

	_, err = NewConfigurationLoader(nil).LoadConfig(filepath.Join(dir, "absent.toml"), "")
	assert.Error(t, err)
}

func TestConfigurationLoader_MergeConfig(t *testing.T) {
	base := &domain.DiffRequest{
		Matcher:      "gumtree-complete",
		MinHeight:    2,
		SimThreshold: 0.6,
		Strict:       true,
		OutputFormat: domain.OutputFormatJSON,
	}
	override := &domain.DiffRequest{
		SourcePath:   "a.py",
		TargetPath:   "b.py",
		Matcher:      domain.DefaultMatcher,
		MinHeight:    1,
		SimThreshold: domain.DefaultSimThreshold,
		OutputFormat: domain.OutputFormatText,
	}

	t.Run("unset flags keep configuration", func(t *testing.T) {
		merged := NewConfigurationLoader(config.NewFlagTracker()).MergeConfig(base, override)
		assert.Equal(t, "a.py", merged.SourcePath)
		assert.Equal(t, "b.py", merged.TargetPath)
		assert.Equal(t, "gumtree-complete", merged.Matcher)
		assert.Equal(t, 2, merged.MinHeight)
		assert.True(t, merged.Strict)
		assert.Equal(t, domain.OutputFormatJSON, merged.OutputFormat)
	})

	t.Run("set flags win", func(t *testing.T) {
		tracker := config.NewFlagTrackerWithFlags(map[string]bool{
			config.FlagMinHeight: true,
			config.FlagStrict:    true,
			config.FlagFormat:    true,
		})
		merged := NewConfigurationLoader(tracker).MergeConfig(base, override)
		assert.Equal(t, "gumtree-complete", merged.Matcher)
		assert.Equal(t, 1, merged.MinHeight)
		assert.False(t, merged.Strict)
		assert.Equal(t, domain.OutputFormatText, merged.OutputFormat)
	})

	t.Run("nil sides", func(t *testing.T) {
		loader := NewConfigurationLoader(nil)
		assert.Same(t, override, loader.MergeConfig(nil, override))
		assert.Same(t, base, loader.MergeConfig(base, nil))
	})
}

func TestConfigurationLoader_MergeDirConfig(t *testing.T) {
	base := &domain.DirDiffRequest{
		Recursive:       false,
		ExcludePatterns: []string{"build/**"},
		MaxGoroutines:   2,
		Timeout:         30 * time.Second,
		Diff:            domain.DiffRequest{Matcher: "zs"},
	}
	override := &domain.DirDiffRequest{
		SourceDir:       "v1",
		TargetDir:       "v2",
		Recursive:       true,
		IncludePatterns: []string{"*.py"},
		MaxGoroutines:   8,
		Timeout:         time.Minute,
		Diff:            domain.DiffRequest{Matcher: domain.DefaultMatcher},
	}

	tracker := config.NewFlagTrackerWithFlags(map[string]bool{
		config.FlagWorkers: true,
		config.FlagInclude: true,
	})
	merged := NewConfigurationLoader(tracker).MergeDirConfig(base, override)

	assert.Equal(t, "v1", merged.SourceDir)
	assert.Equal(t, "v2", merged.TargetDir)
	assert.False(t, merged.Recursive)
	assert.Equal(t, []string{"*.py"}, merged.IncludePatterns)
	assert.Equal(t, []string{"build/**"}, merged.ExcludePatterns)
	assert.Equal(t, 8, merged.MaxGoroutines)
	assert.Equal(t, 30*time.Second, merged.Timeout)
	assert.Equal(t, "zs", merged.Diff.Matcher)
}
