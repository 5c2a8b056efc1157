package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/astdiff/domain"
	svc "github.com/ludo-technologies/astdiff/service"
)

type mockComparator struct {
	mock.Mock
}

func (m *mockComparator) Compare(sourceDir, targetDir string, recursive bool, include, exclude []string) (*domain.DirectoryPairing, error) {
	args := m.Called(sourceDir, targetDir, recursive, include, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DirectoryPairing), args.Error(1)
}

type mockDirConfigLoader struct {
	mock.Mock
}

func (m *mockDirConfigLoader) LoadDirConfig(path, dir string) (*domain.DirDiffRequest, error) {
	args := m.Called(path, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DirDiffRequest), args.Error(1)
}

func (m *mockDirConfigLoader) MergeDirConfig(base *domain.DirDiffRequest, override *domain.DirDiffRequest) *domain.DirDiffRequest {
	args := m.Called(base, override)
	return args.Get(0).(*domain.DirDiffRequest)
}

type recordingProgress struct {
	initialized int
	updates     []int
	completed   *bool
	closed      bool
}

func (p *recordingProgress) Initialize(max int)      { p.initialized = max }
func (p *recordingProgress) Start()                  {}
func (p *recordingProgress) Complete(success bool)   { p.completed = &success }
func (p *recordingProgress) Update(processed, _ int) { p.updates = append(p.updates, processed) }
func (p *recordingProgress) SetWriter(io.Writer)     {}
func (p *recordingProgress) IsInteractive() bool     { return false }
func (p *recordingProgress) Close()                  { p.closed = true }

func dirPairing() *domain.DirectoryPairing {
	return &domain.DirectoryPairing{
		Paired: []domain.FilePair{
			{RelPath: "a.py", Source: "v1/a.py", Target: "v2/a.py"},
			{RelPath: "b.py", Source: "v1/b.py", Target: "v2/b.py"},
			{RelPath: "c.py", Source: "v1/c.py", Target: "v2/c.py"},
		},
		Added:   []string{"new.py"},
		Deleted: []string{"0_old.py"},
	}
}

func sourceIs(path string) interface{} {
	return mock.MatchedBy(func(r *domain.DiffRequest) bool { return r.SourcePath == path })
}

func TestDirDiffUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	service := &mockDiffService{}
	comparator := &mockComparator{}
	formatter := &mockDiffFormatter{}
	var out bytes.Buffer

	req := domain.DirDiffRequest{
		SourceDir:     "v1",
		TargetDir:     "v2",
		Recursive:     true,
		MaxGoroutines: 2,
		Diff:          *domain.DefaultDiffRequest(),
	}
	req.Diff.OutputWriter = &out

	changed := createMockDiffResponse(3)
	comparator.On("Compare", "v1", "v2", true, []string(nil), []string(nil)).Return(dirPairing(), nil)
	service.On("Diff", mock.Anything, sourceIs("v1/a.py")).Return(changed, nil)
	service.On("Diff", mock.Anything, sourceIs("v1/b.py")).Return(createMockDiffResponse(0), nil)
	service.On("Diff", mock.Anything, sourceIs("v1/c.py")).Return(nil, errors.New("syntax error"))
	formatter.On("WriteDir", mock.Anything, domain.OutputFormatText, &out).Return(nil)

	uc, err := NewDirDiffUseCaseBuilder().
		WithService(service).
		WithComparator(comparator).
		WithFormatter(formatter).
		Build()
	require.NoError(t, err)

	resp, err := uc.Execute(ctx, req)
	require.NoError(t, err)

	require.Len(t, resp.Files, 5)
	assert.Equal(t, domain.FileDiff{Path: "0_old.py", Status: domain.FileDeleted}, resp.Files[0])
	assert.Equal(t, domain.FileDiff{Path: "a.py", Status: domain.FileModified, Diff: changed}, resp.Files[1])
	assert.Equal(t, domain.FileDiff{Path: "b.py", Status: domain.FileUnchanged}, resp.Files[2])
	assert.Equal(t, domain.FileDiff{Path: "c.py", Status: domain.FileFailed, Error: "syntax error"}, resp.Files[3])
	assert.Equal(t, domain.FileDiff{Path: "new.py", Status: domain.FileAdded}, resp.Files[4])

	assert.Equal(t, domain.DirDiffSummary{
		FilesCompared: 3,
		FilesChanged:  1,
		FilesAdded:    1,
		FilesDeleted:  1,
		FilesFailed:   1,
		TotalActions:  3,
	}, resp.Summary)
	assert.Equal(t, "v1", resp.SourceDir)

	service.AssertExpectations(t)
	formatter.AssertExpectations(t)
}

func TestDirDiffUseCase_Progress(t *testing.T) {
	ctx := context.Background()
	service := &mockDiffService{}
	comparator := &mockComparator{}
	formatter := &mockDiffFormatter{}
	progress := &recordingProgress{}

	comparator.On("Compare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(dirPairing(), nil)
	service.On("Diff", mock.Anything, mock.Anything).Return(createMockDiffResponse(0), nil)
	formatter.On("WriteDir", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	uc, err := NewDirDiffUseCaseBuilder().
		WithService(service).
		WithComparator(comparator).
		WithFormatter(formatter).
		WithProgressManager(progress).
		WithParallelExecutor(svc.NewParallelExecutor()).
		Build()
	require.NoError(t, err)

	req := domain.DirDiffRequest{SourceDir: "v1", TargetDir: "v2", ShowProgress: true, Diff: *domain.DefaultDiffRequest()}
	req.Diff.OutputWriter = &bytes.Buffer{}
	_, err = uc.Execute(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 3, progress.initialized)
	assert.ElementsMatch(t, []int{1, 2, 3}, progress.updates)
	require.NotNil(t, progress.completed)
	assert.True(t, *progress.completed)
	assert.True(t, progress.closed)
}

func TestDirDiffUseCase_Config(t *testing.T) {
	ctx := context.Background()
	service := &mockDiffService{}
	comparator := &mockComparator{}
	formatter := &mockDiffFormatter{}
	loader := &mockDirConfigLoader{}

	req := domain.DirDiffRequest{SourceDir: "v1", TargetDir: "v2", Diff: *domain.DefaultDiffRequest()}
	req.Diff.OutputWriter = &bytes.Buffer{}

	fromConfig := &domain.DirDiffRequest{ExcludePatterns: []string{"build/**"}}
	merged := req
	merged.ExcludePatterns = []string{"build/**"}
	merged.Timeout = time.Minute

	loader.On("LoadDirConfig", "", "v1").Return(fromConfig, nil)
	loader.On("MergeDirConfig", fromConfig, mock.Anything).Return(&merged)
	comparator.On("Compare", "v1", "v2", false, []string(nil), []string{"build/**"}).
		Return(&domain.DirectoryPairing{}, nil)
	formatter.On("WriteDir", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	uc, err := NewDirDiffUseCaseBuilder().
		WithService(service).
		WithComparator(comparator).
		WithFormatter(formatter).
		WithConfigLoader(loader).
		Build()
	require.NoError(t, err)

	resp, err := uc.Execute(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, resp.Files)
	comparator.AssertExpectations(t)
	service.AssertNotCalled(t, "Diff", mock.Anything, mock.Anything)
}

func TestDirDiffUseCase_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing directories", func(t *testing.T) {
		uc, err := NewDirDiffUseCaseBuilder().WithService(&mockDiffService{}).Build()
		require.NoError(t, err)
		req := domain.DirDiffRequest{SourceDir: "v1", Diff: domain.DiffRequest{OutputWriter: &bytes.Buffer{}}}
		_, err = uc.Execute(ctx, req)
		assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidInput))
	})

	t.Run("comparator failure", func(t *testing.T) {
		comparator := &mockComparator{}
		cmpErr := domain.NewFileNotFoundError("v2", nil)
		comparator.On("Compare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, cmpErr)

		uc, err := NewDirDiffUseCaseBuilder().WithService(&mockDiffService{}).WithComparator(comparator).Build()
		require.NoError(t, err)
		req := domain.DirDiffRequest{SourceDir: "v1", TargetDir: "v2", Diff: *domain.DefaultDiffRequest()}
		req.Diff.OutputWriter = &bytes.Buffer{}
		_, err = uc.Execute(ctx, req)
		assert.Equal(t, cmpErr, err)
	})

	t.Run("service required", func(t *testing.T) {
		_, err := NewDirDiffUseCaseBuilder().Build()
		assert.Error(t, err)
	})
}
