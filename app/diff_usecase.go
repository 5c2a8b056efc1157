package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ludo-technologies/astdiff/domain"
	svc "github.com/ludo-technologies/astdiff/service"
)

// DiffUseCase orchestrates diffing two files or two in-memory sources
type DiffUseCase struct {
	service      domain.DiffService
	formatter    domain.DiffOutputFormatter
	configLoader domain.DiffConfigurationLoader
	output       domain.ReportWriter
}

// NewDiffUseCase creates a new diff use case. A nil formatter means one is
// created per run so the merged no-color setting applies.
func NewDiffUseCase(service domain.DiffService, formatter domain.DiffOutputFormatter, configLoader domain.DiffConfigurationLoader) *DiffUseCase {
	return &DiffUseCase{
		service:      service,
		formatter:    formatter,
		configLoader: configLoader,
		output:       svc.NewFileOutputWriter(nil),
	}
}

// Execute loads configuration, diffs the inputs and writes the report. The
// response is returned so callers can derive an exit status from it.
func (uc *DiffUseCase) Execute(ctx context.Context, req domain.DiffRequest) (*domain.DiffResponse, error) {
	if err := uc.validateRequest(&req); err != nil {
		return nil, err
	}

	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}
	if err := finalReq.Validate(); err != nil {
		return nil, err
	}

	var response *domain.DiffResponse
	if finalReq.HasContent() {
		response, err = uc.service.DiffSources(ctx, finalReq)
	} else {
		response, err = uc.service.Diff(ctx, finalReq)
	}
	if err != nil {
		return nil, err
	}

	if err := uc.write(response, finalReq); err != nil {
		return response, err
	}
	return response, nil
}

func (uc *DiffUseCase) validateRequest(req *domain.DiffRequest) error {
	if req.OutputWriter == nil && req.OutputPath == "" {
		return domain.NewInvalidInputError("output writer or output path is required", nil)
	}
	return req.Validate()
}

// loadAndMergeConfig applies the configuration file, if any, under the
// explicitly set request values. Without an explicit path the search
// starts next to the source file.
func (uc *DiffUseCase) loadAndMergeConfig(req domain.DiffRequest) (*domain.DiffRequest, error) {
	if uc.configLoader == nil {
		return &req, nil
	}

	configReq, err := uc.configLoader.LoadConfig(req.ConfigPath, searchDir(req.SourcePath))
	if err != nil {
		if req.ConfigPath != "" {
			return nil, fmt.Errorf("failed to load config from %s: %w", req.ConfigPath, err)
		}
		return nil, err
	}
	if configReq == nil {
		return &req, nil
	}
	return uc.configLoader.MergeConfig(configReq, &req), nil
}

func (uc *DiffUseCase) write(response *domain.DiffResponse, req *domain.DiffRequest) error {
	formatter := uc.formatter
	if formatter == nil {
		formatter = svc.NewDiffFormatter(req.NoColor)
	}

	var out io.Writer
	if req.OutputPath == "" {
		out = req.OutputWriter
	}
	if err := uc.output.Write(out, req.OutputPath, req.OutputFormat, func(w io.Writer) error {
		return formatter.Write(response, req.OutputFormat, w)
	}); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// searchDir is where the configuration search starts for path
func searchDir(path string) string {
	if path == "" {
		return "."
	}
	return filepath.Dir(path)
}

// DiffUseCaseBuilder provides a fluent builder for DiffUseCase
type DiffUseCaseBuilder struct {
	service      domain.DiffService
	formatter    domain.DiffOutputFormatter
	configLoader domain.DiffConfigurationLoader
	output       domain.ReportWriter
}

func NewDiffUseCaseBuilder() *DiffUseCaseBuilder { return &DiffUseCaseBuilder{} }

func (b *DiffUseCaseBuilder) WithService(s domain.DiffService) *DiffUseCaseBuilder {
	b.service = s
	return b
}
func (b *DiffUseCaseBuilder) WithFormatter(f domain.DiffOutputFormatter) *DiffUseCaseBuilder {
	b.formatter = f
	return b
}
func (b *DiffUseCaseBuilder) WithConfigLoader(l domain.DiffConfigurationLoader) *DiffUseCaseBuilder {
	b.configLoader = l
	return b
}
func (b *DiffUseCaseBuilder) WithOutputWriter(w domain.ReportWriter) *DiffUseCaseBuilder {
	b.output = w
	return b
}

// Build creates the use case. Only the service is required.
func (b *DiffUseCaseBuilder) Build() (*DiffUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("diff service is required")
	}
	uc := NewDiffUseCase(b.service, b.formatter, b.configLoader)
	if b.output != nil {
		uc.output = b.output
	}
	return uc, nil
}
