package e2e

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourcePython = `def greet(name):
    return "Hello, " + name


def farewell(name):
    return "Bye, " + name
`

const targetPython = `def farewell(name):
    return "Bye, " + name


def greet(person):
    return "Hello, " + person
`

type diffReport struct {
	Language string `json:"language"`
	Matcher  string `json:"matcher"`
	Actions  []struct {
		Action string `json:"action"`
		Tree   string `json:"tree"`
	} `json:"actions"`
	Summary struct {
		TotalActions int `json:"total_actions"`
		Moves        int `json:"moves"`
		Updates      int `json:"updates"`
	} `json:"summary"`
	Verified bool `json:"verified"`
}

type dirReport struct {
	Files []struct {
		Path   string `json:"path"`
		Status string `json:"status"`
	} `json:"files"`
	Summary struct {
		FilesCompared int `json:"files_compared"`
		FilesChanged  int `json:"files_changed"`
		FilesAdded    int `json:"files_added"`
		FilesDeleted  int `json:"files_deleted"`
	} `json:"summary"`
}

// TestDiffE2EJSONOutput diffs two Python files end to end
func TestDiffE2EJSONOutput(t *testing.T) {
	binaryPath := buildAstdiffBinary(t)

	testDir := t.TempDir()
	createEmptyConfigFile(t, testDir)
	src := createTestFile(t, testDir, "before.py", sourcePython)
	dst := createTestFile(t, testDir, "after.py", targetPython)

	stdout, stderr, code := runBinary(t, binaryPath, "diff", "--json", src, dst)
	require.Equal(t, 0, code, "stderr: %s", stderr)

	var report diffReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report), stdout)
	assert.Equal(t, "python", report.Language)
	assert.Equal(t, "gumtree", report.Matcher)
	assert.True(t, report.Verified)
	assert.Equal(t, len(report.Actions), report.Summary.TotalActions)
	assert.GreaterOrEqual(t, report.Summary.Moves, 1)
	assert.GreaterOrEqual(t, report.Summary.Updates, 1)
}

func TestDiffE2ETextOutput(t *testing.T) {
	binaryPath := buildAstdiffBinary(t)

	testDir := t.TempDir()
	createEmptyConfigFile(t, testDir)
	src := createTestFile(t, testDir, "a.json", `{"name": "astdiff", "tags": ["x"]}`)
	dst := createTestFile(t, testDir, "b.json", `{"name": "astdiff", "tags": ["y"]}`)

	stdout, stderr, code := runBinary(t, binaryPath, "diff", "--no-color", src, dst)
	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, "update")
	assert.Contains(t, stdout, "[-x-]{+y+}")
	assert.NotContains(t, stdout, "\x1b[")
}

func TestDiffE2EExitCode(t *testing.T) {
	binaryPath := buildAstdiffBinary(t)

	testDir := t.TempDir()
	createEmptyConfigFile(t, testDir)
	src := createTestFile(t, testDir, "before.py", sourcePython)
	dst := createTestFile(t, testDir, "after.py", targetPython)
	same := createTestFile(t, testDir, "same.py", sourcePython)

	_, _, code := runBinary(t, binaryPath, "diff", "--exit-code", src, dst)
	assert.Equal(t, 1, code)

	_, _, code = runBinary(t, binaryPath, "diff", "--exit-code", src, same)
	assert.Equal(t, 0, code)

	// without --exit-code a difference is still a success
	_, _, code = runBinary(t, binaryPath, "diff", src, dst)
	assert.Equal(t, 0, code)
}

func TestDiffE2EErrors(t *testing.T) {
	binaryPath := buildAstdiffBinary(t)

	testDir := t.TempDir()
	createEmptyConfigFile(t, testDir)
	src := createTestFile(t, testDir, "before.py", sourcePython)
	unknown := createTestFile(t, testDir, "notes.txt", "hello")

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"diff", src, filepath.Join(testDir, "missing.py")}},
		{"unknown language", []string{"diff", unknown, unknown}},
		{"unknown matcher", []string{"diff", "--matcher", "rted", src, src}},
		{"wrong arg count", []string{"diff", src}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runBinary(t, binaryPath, tt.args...)
			assert.Equal(t, 2, code)
			assert.NotEmpty(t, strings.TrimSpace(stderr))
		})
	}
}

func TestDiffE2EOutputFile(t *testing.T) {
	binaryPath := buildAstdiffBinary(t)

	testDir := t.TempDir()
	createEmptyConfigFile(t, testDir)
	src := createTestFile(t, testDir, "before.py", sourcePython)
	dst := createTestFile(t, testDir, "after.py", targetPython)
	reportPath := filepath.Join(testDir, "report.yaml")

	stdout, stderr, code := runBinary(t, binaryPath, "diff", "--yaml", "-o", reportPath, src, dst)
	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "YAML report written")

	content, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "language: python")
}

// TestDirE2E diffs two directory trees with files on one side only
func TestDirE2E(t *testing.T) {
	binaryPath := buildAstdiffBinary(t)

	testDir := t.TempDir()
	createEmptyConfigFile(t, testDir)
	srcDir := filepath.Join(testDir, "v1")
	dstDir := filepath.Join(testDir, "v2")

	createTestFile(t, srcDir, "pkg/greet.py", sourcePython)
	createTestFile(t, dstDir, "pkg/greet.py", targetPython)
	createTestFile(t, srcDir, "same.json", `{"a": 1}`)
	createTestFile(t, dstDir, "same.json", `{"a": 1}`)
	createTestFile(t, srcDir, "old.go", "package old\n")
	createTestFile(t, dstDir, "new.go", "package new\n")
	createTestFile(t, dstDir, "README.md", "ignored\n")

	stdout, stderr, code := runBinary(t, binaryPath, "dir", "--json", "--no-progress", srcDir, dstDir)
	require.Equal(t, 0, code, "stderr: %s", stderr)

	var report dirReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report), stdout)
	assert.Equal(t, 2, report.Summary.FilesCompared)
	assert.Equal(t, 1, report.Summary.FilesChanged)
	assert.Equal(t, 1, report.Summary.FilesAdded)
	assert.Equal(t, 1, report.Summary.FilesDeleted)

	statuses := make(map[string]string)
	for _, f := range report.Files {
		statuses[filepath.ToSlash(f.Path)] = f.Status
	}
	assert.Equal(t, "modified", statuses["pkg/greet.py"])
	assert.Equal(t, "unchanged", statuses["same.json"])
	assert.Equal(t, "deleted", statuses["old.go"])
	assert.Equal(t, "added", statuses["new.go"])
	assert.NotContains(t, statuses, "README.md")

	_, _, code = runBinary(t, binaryPath, "dir", "--exit-code", "--no-progress", srcDir, dstDir)
	assert.Equal(t, 1, code)
}

func TestListE2E(t *testing.T) {
	binaryPath := buildAstdiffBinary(t)

	stdout, stderr, code := runBinary(t, binaryPath, "list")
	require.Equal(t, 0, code, "stderr: %s", stderr)
	for _, name := range []string{"gumtree", "gumtree-complete", "gumtree-hungarian", "zs", "python", "json", "sexpr"} {
		assert.Contains(t, stdout, name)
	}
}
