package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffRequestValidate(t *testing.T) {
	valid := func() *DiffRequest {
		req := DefaultDiffRequest()
		req.SourcePath = "a.py"
		req.TargetPath = "b.py"
		return req
	}

	tests := []struct {
		name    string
		mutate  func(*DiffRequest)
		wantErr string
	}{
		{"defaults with paths", func(*DiffRequest) {}, ""},
		{"missing target path", func(r *DiffRequest) { r.TargetPath = "" }, "source and target paths are required"},
		{"content with language", func(r *DiffRequest) {
			r.SourcePath, r.TargetPath = "", ""
			r.SourceContent, r.TargetContent = []byte("a"), []byte("b")
			r.Language = "sexpr"
		}, ""},
		{"content without language or name", func(r *DiffRequest) {
			r.SourcePath, r.TargetPath = "", ""
			r.SourceContent, r.TargetContent = []byte("a"), []byte("b")
		}, "language is required"},
		{"content named by path", func(r *DiffRequest) {
			r.TargetPath = ""
			r.SourceContent, r.TargetContent = []byte("a"), []byte("b")
		}, ""},
		{"negative min height", func(r *DiffRequest) { r.MinHeight = -1 }, "min_height"},
		{"similarity above one", func(r *DiffRequest) { r.SimThreshold = 1.5 }, "sim_threshold"},
		{"negative size threshold", func(r *DiffRequest) { r.SizeThreshold = -3 }, "size_threshold"},
		{"unsupported format", func(r *DiffRequest) { r.OutputFormat = "html" }, "html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDirDiffRequestValidate(t *testing.T) {
	assert.NoError(t, (&DirDiffRequest{SourceDir: "a", TargetDir: "b"}).Validate())
	assert.Error(t, (&DirDiffRequest{SourceDir: "a"}).Validate())
	assert.Error(t, (&DirDiffRequest{SourceDir: "a", TargetDir: "b", MaxGoroutines: -1}).Validate())
	assert.Error(t, (&DirDiffRequest{SourceDir: "a", TargetDir: "b", Timeout: -1}).Validate())
}

func TestHasCode(t *testing.T) {
	cause := errors.New("boom")
	err := NewParseError("a.py", cause)

	assert.True(t, HasCode(err, ErrCodeParseError))
	assert.False(t, HasCode(err, ErrCodeConfigError))
	assert.True(t, HasCode(fmt.Errorf("wrapped: %w", err), ErrCodeParseError))
	assert.False(t, HasCode(cause, ErrCodeParseError))
	assert.ErrorIs(t, err, cause)

	assert.True(t, HasCode(NewValidationError("bad"), ErrCodeInvalidInput))
	assert.True(t, HasCode(NewUnsupportedFormatError("xml"), ErrCodeUnsupportedFormat))
}

func TestDiffSummaryHasChanges(t *testing.T) {
	assert.False(t, DiffSummary{}.HasChanges())
	assert.True(t, DiffSummary{TotalActions: 1, Moves: 1}.HasChanges())
}
