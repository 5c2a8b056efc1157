package e2e

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// buildAstdiffBinary builds the CLI into a temporary directory
func buildAstdiffBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "astdiff")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/astdiff")
	cmd.Dir = projectRoot(t)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build binary: %v\nStderr: %s", err, stderr.String())
	}
	return binaryPath
}

func projectRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return filepath.Dir(wd)
}

// createTestFile writes content to dir/name, creating parent directories
func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

// createEmptyConfigFile keeps configuration files above the temp dir out of the run
func createEmptyConfigFile(t *testing.T, dir string) string {
	t.Helper()
	return createTestFile(t, dir, ".astdiff.toml", "")
}

// runBinary runs the CLI and returns stdout, stderr and the exit status
func runBinary(t *testing.T, binaryPath string, args ...string) (string, string, int) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return stdout.String(), stderr.String(), 0
	case errors.As(err, &exitErr):
		return stdout.String(), stderr.String(), exitErr.ExitCode()
	default:
		t.Fatalf("Failed to run binary: %v", err)
		return "", "", -1
	}
}
