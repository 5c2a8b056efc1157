package service

import (
	"errors"
	"os"
	"time"

	"github.com/ludo-technologies/astdiff/domain"
	"github.com/ludo-technologies/astdiff/internal/config"
)

// ConfigurationLoaderImpl loads astdiff configuration and merges it with
// request values. Request values win only for flags the user set, which
// the tracker records.
type ConfigurationLoaderImpl struct {
	toml        *config.TomlConfigLoader
	flagTracker *config.FlagTracker
}

// NewConfigurationLoader creates a loader. A nil tracker treats every
// request value as unset, so the configuration always wins.
func NewConfigurationLoader(flagTracker *config.FlagTracker) *ConfigurationLoaderImpl {
	if flagTracker == nil {
		flagTracker = config.NewFlagTracker()
	}
	return &ConfigurationLoaderImpl{
		toml:        config.NewTomlConfigLoader(),
		flagTracker: flagTracker,
	}
}

// load resolves the configuration for path or, when path is empty, the
// nearest .astdiff.toml above dir. It returns nil when nothing is found.
func (c *ConfigurationLoaderImpl) load(path, dir string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	if dir == "" {
		dir = "."
	}
	found, err := c.toml.FindConfigFile(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.toml.LoadFile(found)
}

// LoadConfig loads diff settings
func (c *ConfigurationLoaderImpl) LoadConfig(path, dir string) (*domain.DiffRequest, error) {
	cfg, err := c.load(path, dir)
	if err != nil || cfg == nil {
		return nil, err
	}
	return c.convertToDiffRequest(cfg), nil
}

// LoadDirConfig loads directory diff settings
func (c *ConfigurationLoaderImpl) LoadDirConfig(path, dir string) (*domain.DirDiffRequest, error) {
	cfg, err := c.load(path, dir)
	if err != nil || cfg == nil {
		return nil, err
	}
	return &domain.DirDiffRequest{
		Recursive:       cfg.Input.Recursive,
		IncludePatterns: cfg.Input.IncludePatterns,
		ExcludePatterns: cfg.Input.ExcludePatterns,
		Diff:            *c.convertToDiffRequest(cfg),
		MaxGoroutines:   cfg.Performance.MaxGoroutines,
		Timeout:         time.Duration(cfg.Performance.TimeoutSeconds) * time.Second,
	}, nil
}

func (c *ConfigurationLoaderImpl) convertToDiffRequest(cfg *config.Config) *domain.DiffRequest {
	return &domain.DiffRequest{
		Language:           cfg.Input.Language,
		Matcher:            cfg.Matcher.Strategy,
		MinHeight:          cfg.Matcher.MinHeight,
		SimThreshold:       cfg.Matcher.SimThreshold,
		SizeThreshold:      cfg.Matcher.SizeThreshold,
		Strict:             cfg.Generator.Strict,
		DistinguishPermute: cfg.Generator.DistinguishPermute,
		OutputFormat:       domain.OutputFormat(cfg.Output.Format),
		ShowMappings:       cfg.Output.ShowMappings,
		ShowClassification: cfg.Output.ShowClassification,
		NoColor:            !cfg.Output.Color,
	}
}

// MergeConfig lays explicitly set request values over the configuration.
// Inputs, the writer and the config path always come from the request.
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.DiffRequest, override *domain.DiffRequest) *domain.DiffRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	ft := c.flagTracker
	merged := *base

	merged.SourcePath = override.SourcePath
	merged.TargetPath = override.TargetPath
	merged.SourceContent = override.SourceContent
	merged.TargetContent = override.TargetContent
	merged.OutputWriter = override.OutputWriter
	merged.OutputPath = override.OutputPath
	merged.ConfigPath = override.ConfigPath

	merged.Language = ft.MergeString(merged.Language, override.Language, config.FlagLanguage)
	merged.Matcher = ft.MergeString(merged.Matcher, override.Matcher, config.FlagMatcher)
	merged.MinHeight = ft.MergeInt(merged.MinHeight, override.MinHeight, config.FlagMinHeight)
	merged.SimThreshold = ft.MergeFloat64(merged.SimThreshold, override.SimThreshold, config.FlagSimThreshold)
	merged.SizeThreshold = ft.MergeInt(merged.SizeThreshold, override.SizeThreshold, config.FlagSizeThreshold)
	merged.Strict = ft.MergeBool(merged.Strict, override.Strict, config.FlagStrict)
	merged.DistinguishPermute = ft.MergeBool(merged.DistinguishPermute, override.DistinguishPermute, config.FlagPermute)
	merged.ShowMappings = ft.MergeBool(merged.ShowMappings, override.ShowMappings, config.FlagShowMappings)
	merged.ShowClassification = ft.MergeBool(merged.ShowClassification, override.ShowClassification, config.FlagShowClassification)
	merged.NoColor = ft.MergeBool(merged.NoColor, override.NoColor, config.FlagNoColor)

	// --json and --yaml are shortcuts for --format
	if ft.WasSet(config.FlagFormat) || ft.WasSet("json") || ft.WasSet("yaml") {
		merged.OutputFormat = override.OutputFormat
	}

	return &merged
}

// MergeDirConfig lays explicitly set request values over the configuration
func (c *ConfigurationLoaderImpl) MergeDirConfig(base *domain.DirDiffRequest, override *domain.DirDiffRequest) *domain.DirDiffRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	ft := c.flagTracker
	merged := *base

	merged.SourceDir = override.SourceDir
	merged.TargetDir = override.TargetDir
	merged.ShowProgress = override.ShowProgress
	merged.Diff = *c.MergeConfig(&base.Diff, &override.Diff)

	merged.Recursive = ft.MergeBool(merged.Recursive, override.Recursive, config.FlagRecursive)
	merged.IncludePatterns = ft.MergeStringSlice(merged.IncludePatterns, override.IncludePatterns, config.FlagInclude)
	merged.ExcludePatterns = ft.MergeStringSlice(merged.ExcludePatterns, override.ExcludePatterns, config.FlagExclude)
	merged.MaxGoroutines = ft.MergeInt(merged.MaxGoroutines, override.MaxGoroutines, config.FlagWorkers)
	if ft.WasSet(config.FlagTimeout) {
		merged.Timeout = override.Timeout
	}

	return &merged
}
