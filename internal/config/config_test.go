package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/astdiff/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, domain.DefaultMatcher, cfg.Matcher.Strategy)
	assert.Equal(t, 0, cfg.Matcher.MinHeight)
	assert.Equal(t, 0.5, cfg.Matcher.SimThreshold)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.True(t, cfg.Input.Recursive)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown strategy",
			mutate:  func(c *Config) { c.Matcher.Strategy = "rted" },
			wantErr: "invalid matcher.strategy 'rted'",
		},
		{
			name:    "negative min height",
			mutate:  func(c *Config) { c.Matcher.MinHeight = -1 },
			wantErr: "matcher.min_height must be >= 0",
		},
		{
			name:    "zero similarity",
			mutate:  func(c *Config) { c.Matcher.SimThreshold = 0 },
			wantErr: "matcher.sim_threshold",
		},
		{
			name:    "similarity above one",
			mutate:  func(c *Config) { c.Matcher.SimThreshold = 1.5 },
			wantErr: "matcher.sim_threshold",
		},
		{
			name:    "negative size threshold",
			mutate:  func(c *Config) { c.Matcher.SizeThreshold = -5 },
			wantErr: "matcher.size_threshold",
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Output.Format = "html" },
			wantErr: "invalid output.format 'html'",
		},
		{
			name:    "bad pattern",
			mutate:  func(c *Config) { c.Input.IncludePatterns = []string{"[a-"} },
			wantErr: "invalid input pattern",
		},
		{
			name:    "no workers",
			mutate:  func(c *Config) { c.Performance.MaxGoroutines = 0 },
			wantErr: "performance.max_goroutines",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Performance.TimeoutSeconds = -1 },
			wantErr: "performance.timeout_seconds",
		},
		{
			name:   "optimal strategy",
			mutate: func(c *Config) { c.Matcher.Strategy = "zs" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_YAMLViaViper(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "astdiff.yaml", `
matcher:
  strategy: gumtree-complete
  sim_threshold: 0.7
output:
  format: json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gumtree-complete", cfg.Matcher.Strategy)
	assert.Equal(t, 0.7, cfg.Matcher.SimThreshold)
	assert.Equal(t, "json", cfg.Output.Format)
	// untouched keys keep their defaults
	assert.Equal(t, domain.DefaultMaxGoroutines, cfg.Performance.MaxGoroutines)
	assert.True(t, cfg.Input.Recursive)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.toml", "[output]\nformat = \"pdf\"\n")
	_, err = LoadConfig(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestTomlConfigLoader_WalksUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ConfigFileName, `
[matcher]
strategy = "gumtree-hungarian"
min_height = 2

[generator]
strict = true

[input]
recursive = false
exclude_patterns = ["**/*.min.js"]
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	loader := NewTomlConfigLoader()
	path, err := loader.FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ConfigFileName), path)

	cfg, err := loader.LoadConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, "gumtree-hungarian", cfg.Matcher.Strategy)
	assert.Equal(t, 2, cfg.Matcher.MinHeight)
	assert.True(t, cfg.Generator.Strict)
	assert.False(t, cfg.Input.Recursive)
	assert.Equal(t, []string{"**/*.min.js"}, cfg.Input.ExcludePatterns)
	assert.Equal(t, 0.5, cfg.Matcher.SimThreshold)
}

func TestTomlConfigLoader_ExplicitZeroOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, "[output]\ncolor = false\n\n[performance]\ntimeout_seconds = 0\n")

	cfg, err := NewTomlConfigLoader().LoadConfig(dir)
	require.NoError(t, err)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, 0, cfg.Performance.TimeoutSeconds)
}

func TestTomlConfigLoader_NoFileGivesDefaults(t *testing.T) {
	cfg, err := NewTomlConfigLoader().LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestTomlConfigLoader_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, "[matcher\n")

	_, err := NewTomlConfigLoader().LoadConfig(dir)
	assert.Error(t, err)
}

func TestGenerateDefaultConfigTOML(t *testing.T) {
	content, err := GenerateDefaultConfigTOML()
	require.NoError(t, err)
	assert.Contains(t, content, `strategy = "gumtree"`)
	assert.Contains(t, content, "zs")

	var parsed astdiffToml
	require.NoError(t, toml.Unmarshal([]byte(content), &parsed))

	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, WriteDefaultConfig(path, false))
	assert.Error(t, WriteDefaultConfig(path, false), "refuses to overwrite")
	require.NoError(t, WriteDefaultConfig(path, true))

	cfg, err := NewTomlConfigLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestFlagTracker(t *testing.T) {
	ft := NewFlagTrackerWithFlags(map[string]bool{FlagMatcher: true, FlagStrict: false})

	assert.True(t, ft.WasSet(FlagMatcher))
	assert.False(t, ft.WasSet(FlagStrict))
	assert.Equal(t, 1, ft.Count())

	assert.Equal(t, "zs", ft.MergeString("gumtree", "zs", FlagMatcher))
	assert.Equal(t, 3, ft.MergeInt(3, 9, FlagMinHeight))
	assert.True(t, ft.MergeBool(true, false, FlagStrict))
	assert.Equal(t, []string{"a"}, ft.MergeStringSlice([]string{"a"}, nil, FlagMatcher))

	ft.Set(FlagSimThreshold)
	assert.Equal(t, 0.8, ft.MergeFloat64(0.5, 0.8, FlagSimThreshold))
	assert.Len(t, ft.GetAll(), 2)

	var nilTracker *FlagTracker
	assert.False(t, nilTracker.WasSet(FlagMatcher))
}

func TestNewFlagTrackerFromFlagSet(t *testing.T) {
	fs := pflag.NewFlagSet("diff", pflag.ContinueOnError)
	fs.String(FlagMatcher, "gumtree", "")
	fs.Int(FlagMinHeight, 0, "")
	fs.Bool(FlagStrict, false, "")
	require.NoError(t, fs.Parse([]string{"--matcher", "zs", "--strict=false"}))

	ft := NewFlagTrackerFromFlagSet(fs)
	assert.True(t, ft.WasSet(FlagMatcher))
	assert.True(t, ft.WasSet(FlagStrict))
	assert.False(t, ft.WasSet(FlagMinHeight))
	assert.Equal(t, 0, NewFlagTrackerFromFlagSet(nil).Count())
}
