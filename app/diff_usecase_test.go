package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/astdiff/domain"
)

// Mock implementations
type mockDiffService struct {
	mock.Mock
}

func (m *mockDiffService) Diff(ctx context.Context, req *domain.DiffRequest) (*domain.DiffResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiffResponse), args.Error(1)
}

func (m *mockDiffService) DiffSources(ctx context.Context, req *domain.DiffRequest) (*domain.DiffResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiffResponse), args.Error(1)
}

type mockDiffFormatter struct {
	mock.Mock
}

func (m *mockDiffFormatter) Write(response *domain.DiffResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(response, format, writer)
	return args.Error(0)
}

func (m *mockDiffFormatter) WriteDir(response *domain.DirDiffResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(response, format, writer)
	return args.Error(0)
}

type mockDiffConfigLoader struct {
	mock.Mock
}

func (m *mockDiffConfigLoader) LoadConfig(path, dir string) (*domain.DiffRequest, error) {
	args := m.Called(path, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiffRequest), args.Error(1)
}

func (m *mockDiffConfigLoader) MergeConfig(base *domain.DiffRequest, override *domain.DiffRequest) *domain.DiffRequest {
	args := m.Called(base, override)
	return args.Get(0).(*domain.DiffRequest)
}

func createValidDiffRequest(out io.Writer) domain.DiffRequest {
	req := domain.DefaultDiffRequest()
	req.SourcePath = filepath.Join("src", "old.py")
	req.TargetPath = filepath.Join("src", "new.py")
	req.OutputWriter = out
	return *req
}

func createMockDiffResponse(actions int) *domain.DiffResponse {
	resp := &domain.DiffResponse{Source: "old.py", Target: "new.py", Language: "python", Matcher: "gumtree", Verified: true}
	for i := 0; i < actions; i++ {
		resp.Actions = append(resp.Actions, domain.ActionView{Action: "delete"})
	}
	resp.Summary.TotalActions = actions
	resp.Summary.Deletes = actions
	return resp
}

func TestDiffUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("diffs files and writes report", func(t *testing.T) {
		service := &mockDiffService{}
		formatter := &mockDiffFormatter{}
		loader := &mockDiffConfigLoader{}
		var out bytes.Buffer
		req := createValidDiffRequest(&out)
		resp := createMockDiffResponse(2)

		loader.On("LoadConfig", "", "src").Return(nil, nil)
		service.On("Diff", ctx, mock.MatchedBy(func(r *domain.DiffRequest) bool {
			return r.SourcePath == req.SourcePath
		})).Return(resp, nil)
		formatter.On("Write", resp, domain.OutputFormatText, &out).Return(nil)

		uc, err := NewDiffUseCaseBuilder().
			WithService(service).
			WithFormatter(formatter).
			WithConfigLoader(loader).
			Build()
		require.NoError(t, err)

		got, err := uc.Execute(ctx, req)
		require.NoError(t, err)
		assert.Same(t, resp, got)
		service.AssertExpectations(t)
		formatter.AssertExpectations(t)
		loader.AssertExpectations(t)
		service.AssertNotCalled(t, "DiffSources", mock.Anything, mock.Anything)
	})

	t.Run("in-memory sources use DiffSources", func(t *testing.T) {
		service := &mockDiffService{}
		formatter := &mockDiffFormatter{}
		var out bytes.Buffer
		req := domain.DiffRequest{
			Language:      "sexpr",
			SourceContent: []byte("a"),
			TargetContent: []byte("b"),
			Matcher:       domain.DefaultMatcher,
			SimThreshold:  domain.DefaultSimThreshold,
			OutputFormat:  domain.OutputFormatJSON,
			OutputWriter:  &out,
		}
		resp := createMockDiffResponse(1)

		service.On("DiffSources", ctx, mock.Anything).Return(resp, nil)
		formatter.On("Write", resp, domain.OutputFormatJSON, &out).Return(nil)

		uc := NewDiffUseCase(service, formatter, nil)
		_, err := uc.Execute(ctx, req)
		require.NoError(t, err)
		service.AssertExpectations(t)
	})

	t.Run("configuration is merged", func(t *testing.T) {
		service := &mockDiffService{}
		formatter := &mockDiffFormatter{}
		loader := &mockDiffConfigLoader{}
		var out bytes.Buffer
		req := createValidDiffRequest(&out)
		req.ConfigPath = "custom.toml"

		fromConfig := &domain.DiffRequest{Matcher: "zs", SimThreshold: 0.5}
		merged := req
		merged.Matcher = "zs"
		resp := createMockDiffResponse(0)

		loader.On("LoadConfig", "custom.toml", "src").Return(fromConfig, nil)
		loader.On("MergeConfig", fromConfig, mock.Anything).Return(&merged)
		service.On("Diff", ctx, &merged).Return(resp, nil)
		formatter.On("Write", resp, domain.OutputFormatText, &out).Return(nil)

		uc := NewDiffUseCase(service, formatter, loader)
		_, err := uc.Execute(ctx, req)
		require.NoError(t, err)
		loader.AssertExpectations(t)
		service.AssertExpectations(t)
	})

	t.Run("config error", func(t *testing.T) {
		loader := &mockDiffConfigLoader{}
		req := createValidDiffRequest(&bytes.Buffer{})
		loader.On("LoadConfig", "", "src").Return(nil, errors.New("bad toml"))

		uc := NewDiffUseCase(&mockDiffService{}, &mockDiffFormatter{}, loader)
		_, err := uc.Execute(ctx, req)
		assert.True(t, domain.HasCode(err, domain.ErrCodeConfigError))
	})

	t.Run("service error passes through", func(t *testing.T) {
		service := &mockDiffService{}
		req := createValidDiffRequest(&bytes.Buffer{})
		svcErr := domain.NewUnknownMatcherError("rted", nil)
		service.On("Diff", ctx, mock.Anything).Return(nil, svcErr)

		uc := NewDiffUseCase(service, &mockDiffFormatter{}, nil)
		_, err := uc.Execute(ctx, req)
		assert.Equal(t, svcErr, err)
	})

	t.Run("output error", func(t *testing.T) {
		service := &mockDiffService{}
		formatter := &mockDiffFormatter{}
		req := createValidDiffRequest(&bytes.Buffer{})
		resp := createMockDiffResponse(1)
		service.On("Diff", ctx, mock.Anything).Return(resp, nil)
		formatter.On("Write", resp, mock.Anything, mock.Anything).Return(errors.New("disk full"))

		uc := NewDiffUseCase(service, formatter, nil)
		got, err := uc.Execute(ctx, req)
		assert.True(t, domain.HasCode(err, domain.ErrCodeOutputError))
		assert.Same(t, resp, got)
	})

	t.Run("invalid requests", func(t *testing.T) {
		uc := NewDiffUseCase(&mockDiffService{}, &mockDiffFormatter{}, nil)

		noWriter := createValidDiffRequest(nil)
		_, err := uc.Execute(ctx, noWriter)
		assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidInput))

		noTarget := createValidDiffRequest(&bytes.Buffer{})
		noTarget.TargetPath = ""
		_, err = uc.Execute(ctx, noTarget)
		assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidInput))

		badThreshold := createValidDiffRequest(&bytes.Buffer{})
		badThreshold.SimThreshold = 1.5
		_, err = uc.Execute(ctx, badThreshold)
		assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidInput))
	})

	t.Run("default formatter", func(t *testing.T) {
		service := &mockDiffService{}
		var out bytes.Buffer
		req := createValidDiffRequest(&out)
		req.NoColor = true
		service.On("Diff", ctx, mock.Anything).Return(createMockDiffResponse(0), nil)

		uc := NewDiffUseCase(service, nil, nil)
		_, err := uc.Execute(ctx, req)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "no changes")
	})
}

func TestDiffUseCaseBuilder_RequiresService(t *testing.T) {
	_, err := NewDiffUseCaseBuilder().Build()
	assert.Error(t, err)
}
