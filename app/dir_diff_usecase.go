package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/ludo-technologies/astdiff/domain"
	svc "github.com/ludo-technologies/astdiff/service"
)

// DirDiffUseCase diffs every file present in both directories and reports
// files that exist on one side only
type DirDiffUseCase struct {
	service          domain.DiffService
	comparator       domain.DirectoryComparator
	formatter        domain.DiffOutputFormatter
	configLoader     domain.DirDiffConfigurationLoader
	output           domain.ReportWriter
	progressManager  domain.ProgressManager
	parallelExecutor domain.ParallelExecutor
	defaultInclude   []string
}

// Execute runs the directory diff and writes the report
func (uc *DirDiffUseCase) Execute(ctx context.Context, req domain.DirDiffRequest) (*domain.DirDiffResponse, error) {
	startTime := time.Now()

	if req.Diff.OutputWriter == nil && req.Diff.OutputPath == "" {
		return nil, domain.NewInvalidInputError("output writer or output path is required", nil)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}
	if err := finalReq.Validate(); err != nil {
		return nil, err
	}
	if len(finalReq.IncludePatterns) == 0 && finalReq.Diff.Language == "" {
		finalReq.IncludePatterns = uc.defaultInclude
	}

	pairing, err := uc.comparator.Compare(finalReq.SourceDir, finalReq.TargetDir,
		finalReq.Recursive, finalReq.IncludePatterns, finalReq.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	results, err := uc.diffPairs(ctx, finalReq, pairing.Paired)
	if err != nil {
		return nil, err
	}

	response := &domain.DirDiffResponse{
		SourceDir: finalReq.SourceDir,
		TargetDir: finalReq.TargetDir,
		Files:     collectFiles(results, pairing),
	}
	response.Summary = summarizeDir(response.Files, len(pairing.Paired))
	response.GeneratedAt = time.Now().Format(time.RFC3339)
	response.Duration = time.Since(startTime).Milliseconds()

	if err := uc.write(response, &finalReq.Diff); err != nil {
		return response, err
	}
	return response, nil
}

func (uc *DirDiffUseCase) loadAndMergeConfig(req domain.DirDiffRequest) (*domain.DirDiffRequest, error) {
	if uc.configLoader == nil {
		return &req, nil
	}
	configReq, err := uc.configLoader.LoadDirConfig(req.Diff.ConfigPath, req.SourceDir)
	if err != nil {
		return nil, err
	}
	if configReq == nil {
		return &req, nil
	}
	return uc.configLoader.MergeDirConfig(configReq, &req), nil
}

// diffPairs diffs each pair on the parallel executor. Per-file failures are
// recorded in the result; only an executor failure aborts the run.
func (uc *DirDiffUseCase) diffPairs(ctx context.Context, req *domain.DirDiffRequest, pairs []domain.FilePair) ([]domain.FileDiff, error) {
	results := make([]domain.FileDiff, len(pairs))
	if len(pairs) == 0 {
		return results, nil
	}

	showProgress := req.ShowProgress && uc.progressManager != nil
	if showProgress {
		uc.progressManager.Initialize(len(pairs))
		uc.progressManager.Start()
		defer uc.progressManager.Close()
	}

	var (
		mu   sync.Mutex
		done int
	)
	tasks := make([]domain.ExecutableTask, len(pairs))
	for i, pair := range pairs {
		i, pair := i, pair
		tasks[i] = svc.NewSimpleTask(pair.RelPath, true, func(ctx context.Context) (interface{}, error) {
			results[i] = uc.diffPair(ctx, req.Diff, pair)

			if showProgress {
				mu.Lock()
				done++
				uc.progressManager.Update(done, len(pairs))
				mu.Unlock()
			}
			return results[i], nil
		})
	}

	if req.MaxGoroutines > 0 {
		uc.parallelExecutor.SetMaxConcurrency(req.MaxGoroutines)
	}
	if req.Timeout > 0 {
		uc.parallelExecutor.SetTimeout(req.Timeout)
	}

	err := uc.parallelExecutor.Execute(ctx, tasks)
	if showProgress {
		uc.progressManager.Complete(err == nil)
	}
	if err != nil {
		return nil, domain.NewAnalysisError("directory diff failed", err)
	}
	return results, nil
}

func (uc *DirDiffUseCase) diffPair(ctx context.Context, base domain.DiffRequest, pair domain.FilePair) domain.FileDiff {
	req := base
	req.SourcePath = pair.Source
	req.TargetPath = pair.Target
	req.SourceContent = nil
	req.TargetContent = nil

	response, err := uc.service.Diff(ctx, &req)
	if err != nil {
		return domain.FileDiff{Path: pair.RelPath, Status: domain.FileFailed, Error: err.Error()}
	}
	if len(response.Actions) == 0 && response.Verified {
		return domain.FileDiff{Path: pair.RelPath, Status: domain.FileUnchanged}
	}
	return domain.FileDiff{Path: pair.RelPath, Status: domain.FileModified, Diff: response}
}

func (uc *DirDiffUseCase) write(response *domain.DirDiffResponse, req *domain.DiffRequest) error {
	formatter := uc.formatter
	if formatter == nil {
		formatter = svc.NewDiffFormatter(req.NoColor)
	}

	var out io.Writer
	if req.OutputPath == "" {
		out = req.OutputWriter
	}
	if err := uc.output.Write(out, req.OutputPath, req.OutputFormat, func(w io.Writer) error {
		return formatter.WriteDir(response, req.OutputFormat, w)
	}); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// collectFiles merges paired results with one-sided files, sorted by path
func collectFiles(results []domain.FileDiff, pairing *domain.DirectoryPairing) []domain.FileDiff {
	files := make([]domain.FileDiff, 0, len(results)+len(pairing.Added)+len(pairing.Deleted))
	files = append(files, results...)
	for _, p := range pairing.Added {
		files = append(files, domain.FileDiff{Path: p, Status: domain.FileAdded})
	}
	for _, p := range pairing.Deleted {
		files = append(files, domain.FileDiff{Path: p, Status: domain.FileDeleted})
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

func summarizeDir(files []domain.FileDiff, compared int) domain.DirDiffSummary {
	summary := domain.DirDiffSummary{FilesCompared: compared}
	for _, f := range files {
		switch f.Status {
		case domain.FileModified:
			summary.FilesChanged++
			if f.Diff != nil {
				summary.TotalActions += f.Diff.Summary.TotalActions
			}
		case domain.FileAdded:
			summary.FilesAdded++
		case domain.FileDeleted:
			summary.FilesDeleted++
		case domain.FileFailed:
			summary.FilesFailed++
		}
	}
	return summary
}

// DirDiffUseCaseBuilder provides a fluent builder for DirDiffUseCase
type DirDiffUseCaseBuilder struct {
	service          domain.DiffService
	comparator       domain.DirectoryComparator
	formatter        domain.DiffOutputFormatter
	configLoader     domain.DirDiffConfigurationLoader
	output           domain.ReportWriter
	progressManager  domain.ProgressManager
	parallelExecutor domain.ParallelExecutor
	defaultInclude   []string
}

// NewDirDiffUseCaseBuilder creates a new builder
func NewDirDiffUseCaseBuilder() *DirDiffUseCaseBuilder {
	return &DirDiffUseCaseBuilder{}
}

// WithService sets the diff service
func (b *DirDiffUseCaseBuilder) WithService(s domain.DiffService) *DirDiffUseCaseBuilder {
	b.service = s
	return b
}

// WithComparator sets the directory comparator
func (b *DirDiffUseCaseBuilder) WithComparator(c domain.DirectoryComparator) *DirDiffUseCaseBuilder {
	b.comparator = c
	return b
}

// WithFormatter sets the output formatter
func (b *DirDiffUseCaseBuilder) WithFormatter(f domain.DiffOutputFormatter) *DirDiffUseCaseBuilder {
	b.formatter = f
	return b
}

// WithConfigLoader sets the configuration loader
func (b *DirDiffUseCaseBuilder) WithConfigLoader(l domain.DirDiffConfigurationLoader) *DirDiffUseCaseBuilder {
	b.configLoader = l
	return b
}

// WithOutputWriter sets the report writer
func (b *DirDiffUseCaseBuilder) WithOutputWriter(w domain.ReportWriter) *DirDiffUseCaseBuilder {
	b.output = w
	return b
}

// WithProgressManager sets the progress manager
func (b *DirDiffUseCaseBuilder) WithProgressManager(pm domain.ProgressManager) *DirDiffUseCaseBuilder {
	b.progressManager = pm
	return b
}

// WithParallelExecutor sets the parallel executor
func (b *DirDiffUseCaseBuilder) WithParallelExecutor(pe domain.ParallelExecutor) *DirDiffUseCaseBuilder {
	b.parallelExecutor = pe
	return b
}

// WithDefaultIncludePatterns sets the patterns used when neither the request
// nor the configuration names any and no language is forced
func (b *DirDiffUseCaseBuilder) WithDefaultIncludePatterns(patterns []string) *DirDiffUseCaseBuilder {
	b.defaultInclude = patterns
	return b
}

// Build creates the use case, filling optional dependencies with defaults
func (b *DirDiffUseCaseBuilder) Build() (*DirDiffUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("diff service is required")
	}
	if b.comparator == nil {
		b.comparator = svc.NewDirectoryComparator(svc.NewFileReader())
	}
	if b.output == nil {
		b.output = svc.NewFileOutputWriter(nil)
	}
	if b.progressManager == nil {
		b.progressManager = svc.NewProgressManager("Diffing files")
	}
	if b.parallelExecutor == nil {
		b.parallelExecutor = svc.NewParallelExecutor()
	}

	return &DirDiffUseCase{
		service:          b.service,
		comparator:       b.comparator,
		formatter:        b.formatter,
		configLoader:     b.configLoader,
		output:           b.output,
		progressManager:  b.progressManager,
		parallelExecutor: b.parallelExecutor,
		defaultInclude:   b.defaultInclude,
	}, nil
}
