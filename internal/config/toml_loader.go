package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the dedicated configuration file discovered upward
// from the diffed files
const ConfigFileName = ".astdiff.toml"

// astdiffToml mirrors .astdiff.toml. Pointers tell unset keys apart from
// zero values.
type astdiffToml struct {
	Matcher     matcherToml     `toml:"matcher"`
	Generator   generatorToml   `toml:"generator"`
	Output      outputToml      `toml:"output"`
	Input       inputToml       `toml:"input"`
	Performance performanceToml `toml:"performance"`
}

type matcherToml struct {
	Strategy      string   `toml:"strategy"`
	MinHeight     *int     `toml:"min_height"`
	SimThreshold  *float64 `toml:"sim_threshold"`
	SizeThreshold *int     `toml:"size_threshold"`
}

type generatorToml struct {
	Strict             *bool `toml:"strict"`
	DistinguishPermute *bool `toml:"distinguish_permute"`
}

type outputToml struct {
	Format             string `toml:"format"`
	ShowMappings       *bool  `toml:"show_mappings"`
	ShowClassification *bool  `toml:"show_classification"`
	Color              *bool  `toml:"color"`
}

type inputToml struct {
	Language        string   `toml:"language"`
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	Recursive       *bool    `toml:"recursive"`
}

type performanceToml struct {
	MaxGoroutines  int  `toml:"max_goroutines"`
	TimeoutSeconds *int `toml:"timeout_seconds"`
}

// TomlConfigLoader handles .astdiff.toml discovery and loading
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig loads the nearest .astdiff.toml at or above startDir, merged
// over the defaults. Without a config file the defaults are returned.
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, error) {
	path, err := l.FindConfigFile(startDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return l.LoadFile(path)
}

// LoadFile parses a single TOML file and validates the result
func (l *TomlConfigLoader) LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var parsed astdiffToml
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	config := DefaultConfig()
	l.mergeToml(config, &parsed)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return config, nil
}

// FindConfigFile walks up the directory tree to find .astdiff.toml
func (l *TomlConfigLoader) FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// mergeToml copies every key present in the file onto config
func (l *TomlConfigLoader) mergeToml(config *Config, t *astdiffToml) {
	if t.Matcher.Strategy != "" {
		config.Matcher.Strategy = t.Matcher.Strategy
	}
	if t.Matcher.MinHeight != nil {
		config.Matcher.MinHeight = *t.Matcher.MinHeight
	}
	if t.Matcher.SimThreshold != nil {
		config.Matcher.SimThreshold = *t.Matcher.SimThreshold
	}
	if t.Matcher.SizeThreshold != nil {
		config.Matcher.SizeThreshold = *t.Matcher.SizeThreshold
	}

	if t.Generator.Strict != nil {
		config.Generator.Strict = *t.Generator.Strict
	}
	if t.Generator.DistinguishPermute != nil {
		config.Generator.DistinguishPermute = *t.Generator.DistinguishPermute
	}

	if t.Output.Format != "" {
		config.Output.Format = t.Output.Format
	}
	if t.Output.ShowMappings != nil {
		config.Output.ShowMappings = *t.Output.ShowMappings
	}
	if t.Output.ShowClassification != nil {
		config.Output.ShowClassification = *t.Output.ShowClassification
	}
	if t.Output.Color != nil {
		config.Output.Color = *t.Output.Color
	}

	if t.Input.Language != "" {
		config.Input.Language = t.Input.Language
	}
	if len(t.Input.IncludePatterns) > 0 {
		config.Input.IncludePatterns = t.Input.IncludePatterns
	}
	if len(t.Input.ExcludePatterns) > 0 {
		config.Input.ExcludePatterns = t.Input.ExcludePatterns
	}
	if t.Input.Recursive != nil {
		config.Input.Recursive = *t.Input.Recursive
	}

	if t.Performance.MaxGoroutines > 0 {
		config.Performance.MaxGoroutines = t.Performance.MaxGoroutines
	}
	if t.Performance.TimeoutSeconds != nil {
		config.Performance.TimeoutSeconds = *t.Performance.TimeoutSeconds
	}
}
