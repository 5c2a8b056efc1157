package service

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ludo-technologies/astdiff/domain"
)

// FileReaderImpl implements the FileReader interface
type FileReaderImpl struct{}

// NewFileReader creates a new file reader service
func NewFileReader() *FileReaderImpl {
	return &FileReaderImpl{}
}

// ReadFile reads the content of a file
func (f *FileReaderImpl) ReadFile(p string) ([]byte, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, domain.NewFileNotFoundError(p, err)
	}
	if info.IsDir() {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("%s is a directory", p), nil)
	}
	if info.Size() > domain.MaxFileSizeBytes {
		return nil, domain.NewInvalidInputError(
			fmt.Sprintf("%s exceeds the maximum size of %d bytes", p, domain.MaxFileSizeBytes), nil)
	}
	content, err := os.ReadFile(p)
	if err != nil {
		return nil, domain.NewFileNotFoundError(p, err)
	}
	return content, nil
}

// FileExists checks if a regular file exists
func (f *FileReaderImpl) FileExists(p string) (bool, error) {
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// CollectFiles lists the regular files under root as slash-separated paths
// relative to root, sorted. Patterns are doublestar globs matched against
// the relative path; patterns without a slash also match the base name.
func (f *FileReaderImpl) CollectFiles(root string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.NewFileNotFoundError(root, err)
	}
	if !info.IsDir() {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("%s is not a directory", root), nil)
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if !recursive || matchesAny(excludePatterns, rel) || matchesAny(excludePatterns, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matchesAny(excludePatterns, rel) {
			return nil
		}
		if len(includePatterns) > 0 && !matchesAny(includePatterns, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// matchesAny reports whether rel matches one of the patterns
func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if matched, _ := doublestar.Match(pattern, path.Base(strings.TrimSuffix(rel, "/"))); matched {
				return true
			}
		}
	}
	return false
}
