package mcp

import (
	"io"
	"log"

	"github.com/ludo-technologies/astdiff/app"
	"github.com/ludo-technologies/astdiff/domain"
	"github.com/ludo-technologies/astdiff/internal/config"
	"github.com/ludo-technologies/astdiff/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	diffService *service.DiffServiceImpl
	fileReader  domain.FileReader
	configPath  string
}

// NewDependencies constructs the dependency set. An empty configPath makes
// each call search for .astdiff.toml next to its inputs.
func NewDependencies(configPath string, logger *log.Logger) *Dependencies {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Dependencies{
		diffService: service.NewDiffService(logger),
		fileReader:  service.NewFileReader(),
		configPath:  configPath,
	}
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// DiffService exposes the shared diff service.
func (d *Dependencies) DiffService() *service.DiffServiceImpl {
	return d.diffService
}

// BuildDiffUseCase assembles a DiffUseCase. Only arguments named in set
// override configuration values.
func (d *Dependencies) BuildDiffUseCase(set map[string]bool) (*app.DiffUseCase, error) {
	return app.NewDiffUseCaseBuilder().
		WithService(d.diffService).
		WithFormatter(service.NewDiffFormatter(true)).
		WithConfigLoader(service.NewConfigurationLoader(config.NewFlagTrackerWithFlags(set))).
		Build()
}

// BuildDirDiffUseCase assembles a DirDiffUseCase without a progress bar.
func (d *Dependencies) BuildDirDiffUseCase(set map[string]bool) (*app.DirDiffUseCase, error) {
	return app.NewDirDiffUseCaseBuilder().
		WithService(d.diffService).
		WithComparator(service.NewDirectoryComparator(d.fileReader)).
		WithFormatter(service.NewDiffFormatter(true)).
		WithConfigLoader(service.NewConfigurationLoader(config.NewFlagTrackerWithFlags(set))).
		WithProgressManager(silentProgress{}).
		WithDefaultIncludePatterns(d.diffService.Generators().Patterns()).
		Build()
}

// silentProgress discards progress; stdout carries the JSON-RPC stream.
type silentProgress struct{}

func (silentProgress) Initialize(int)      {}
func (silentProgress) Start()              {}
func (silentProgress) Complete(bool)       {}
func (silentProgress) Update(int, int)     {}
func (silentProgress) SetWriter(io.Writer) {}
func (silentProgress) IsInteractive() bool { return false }
func (silentProgress) Close()              {}
