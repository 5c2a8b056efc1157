package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/ludo-technologies/astdiff/domain"
	"github.com/ludo-technologies/astdiff/internal/matcher"
)

// Config represents the main configuration structure
type Config struct {
	// Matcher holds strategy selection and tuning
	Matcher MatcherConfig `mapstructure:"matcher" yaml:"matcher" toml:"matcher"`

	// Generator holds edit script generation settings
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator" toml:"generator"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" toml:"output"`

	// Input holds file selection settings
	Input InputConfig `mapstructure:"input" yaml:"input" toml:"input"`

	// Performance holds concurrency limits for directory diffs
	Performance PerformanceConfig `mapstructure:"performance" yaml:"performance" toml:"performance"`
}

// MatcherConfig holds configuration for node matching
type MatcherConfig struct {
	// Strategy is a registered matcher name (gumtree, gumtree-complete, gumtree-hungarian, zs)
	Strategy string `mapstructure:"strategy" yaml:"strategy" toml:"strategy"`

	// MinHeight is the smallest subtree height used as a top-down anchor
	MinHeight int `mapstructure:"min_height" yaml:"min_height" toml:"min_height"`

	// SimThreshold is the minimum bottom-up similarity for a container match
	SimThreshold float64 `mapstructure:"sim_threshold" yaml:"sim_threshold" toml:"sim_threshold"`

	// SizeThreshold bounds optimal refinement; 0 keeps the strategy default
	SizeThreshold int `mapstructure:"size_threshold" yaml:"size_threshold" toml:"size_threshold"`
}

// GeneratorConfig holds configuration for edit script generation
type GeneratorConfig struct {
	// Strict fails the diff when the script does not reproduce the target
	Strict bool `mapstructure:"strict" yaml:"strict" toml:"strict"`

	// DistinguishPermute reports same-parent reorders as permute actions
	DistinguishPermute bool `mapstructure:"distinguish_permute" yaml:"distinguish_permute" toml:"distinguish_permute"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml
	Format string `mapstructure:"format" yaml:"format" toml:"format"`

	// ShowMappings includes the node mapping in the output
	ShowMappings bool `mapstructure:"show_mappings" yaml:"show_mappings" toml:"show_mappings"`

	// ShowClassification includes the roots-and-leaves classification
	ShowClassification bool `mapstructure:"show_classification" yaml:"show_classification" toml:"show_classification"`

	// Color enables ANSI colors in text output when writing to a terminal
	Color bool `mapstructure:"color" yaml:"color" toml:"color"`
}

// InputConfig holds configuration for file selection
type InputConfig struct {
	// Language forces a front-end instead of detecting it from file names
	Language string `mapstructure:"language" yaml:"language" toml:"language"`

	// IncludePatterns limits directory diffs to matching files
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns" toml:"include_patterns"`

	// ExcludePatterns removes matching files from directory diffs
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" toml:"exclude_patterns"`

	// Recursive walks subdirectories in directory diffs
	Recursive bool `mapstructure:"recursive" yaml:"recursive" toml:"recursive"`
}

// PerformanceConfig holds limits for directory diffs
type PerformanceConfig struct {
	// MaxGoroutines is the number of file pairs diffed concurrently
	MaxGoroutines int `mapstructure:"max_goroutines" yaml:"max_goroutines" toml:"max_goroutines"`

	// TimeoutSeconds bounds a whole directory diff; 0 disables the limit
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Matcher: MatcherConfig{
			Strategy:      domain.DefaultMatcher,
			MinHeight:     domain.DefaultMinHeight,
			SimThreshold:  domain.DefaultSimThreshold,
			SizeThreshold: domain.DefaultSizeThreshold,
		},
		Generator: GeneratorConfig{
			Strict:             false,
			DistinguishPermute: false,
		},
		Output: OutputConfig{
			Format: string(domain.DefaultOutputFormat),
			Color:  true,
		},
		Input: InputConfig{
			IncludePatterns: []string{},
			ExcludePatterns: append([]string(nil), domain.DefaultExcludePatterns...),
			Recursive:       true,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  domain.DefaultMaxGoroutines,
			TimeoutSeconds: domain.DefaultTimeoutSeconds,
		},
	}
}

// LoadConfig loads configuration from file or returns default config.
// Any format viper understands is accepted (toml, yaml, json).
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		configPath = findDefaultConfig()
	}
	if configPath == "" {
		return config, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if ext := strings.TrimPrefix(filepath.Ext(configPath), "."); ext == "" {
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// findDefaultConfig looks for a configuration file in the current
// directory and then in the home directory
func findDefaultConfig() string {
	candidates := []string{
		ConfigFileName,
		"astdiff.toml",
		"astdiff.yaml",
		".astdiff.yaml",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		for _, candidate := range candidates {
			path := filepath.Join(home, candidate)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if err := c.validateMatcherConfig(); err != nil {
		return err
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml", c.Output.Format)
	}

	for _, pattern := range append(append([]string{}, c.Input.IncludePatterns...), c.Input.ExcludePatterns...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid input pattern '%s'", pattern)
		}
	}

	if c.Performance.MaxGoroutines < 1 {
		return fmt.Errorf("performance.max_goroutines must be >= 1, got %d", c.Performance.MaxGoroutines)
	}

	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return nil
}

// validateMatcherConfig validates the matcher configuration
func (c *Config) validateMatcherConfig() error {
	registry := matcher.NewRegistry()
	if _, ok := registry.Lookup(c.Matcher.Strategy); !ok {
		return fmt.Errorf("invalid matcher.strategy '%s', must be one of: %s",
			c.Matcher.Strategy, strings.Join(registry.Names(), ", "))
	}

	if c.Matcher.MinHeight < 0 {
		return fmt.Errorf("matcher.min_height must be >= 0, got %d", c.Matcher.MinHeight)
	}

	if c.Matcher.SimThreshold <= 0.0 || c.Matcher.SimThreshold > 1.0 {
		return fmt.Errorf("matcher.sim_threshold must be in (0.0, 1.0], got %.2f", c.Matcher.SimThreshold)
	}

	if c.Matcher.SizeThreshold < 0 {
		return fmt.Errorf("matcher.size_threshold must be >= 0, got %d", c.Matcher.SizeThreshold)
	}

	return nil
}
