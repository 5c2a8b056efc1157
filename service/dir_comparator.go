package service

import (
	"path/filepath"
	"sort"

	"github.com/ludo-technologies/astdiff/domain"
)

// DirectoryComparatorImpl pairs files with the same relative path in two
// directories
type DirectoryComparatorImpl struct {
	fileReader domain.FileReader
}

// NewDirectoryComparator creates a comparator over fileReader
func NewDirectoryComparator(fileReader domain.FileReader) *DirectoryComparatorImpl {
	return &DirectoryComparatorImpl{fileReader: fileReader}
}

// Compare returns paired, added (target only) and deleted (source only)
// files, each sorted by relative path
func (c *DirectoryComparatorImpl) Compare(sourceDir, targetDir string, recursive bool, includePatterns, excludePatterns []string) (*domain.DirectoryPairing, error) {
	srcFiles, err := c.fileReader.CollectFiles(sourceDir, recursive, includePatterns, excludePatterns)
	if err != nil {
		return nil, err
	}
	dstFiles, err := c.fileReader.CollectFiles(targetDir, recursive, includePatterns, excludePatterns)
	if err != nil {
		return nil, err
	}

	inTarget := make(map[string]bool, len(dstFiles))
	for _, rel := range dstFiles {
		inTarget[rel] = true
	}

	pairing := &domain.DirectoryPairing{
		Paired:  []domain.FilePair{},
		Added:   []string{},
		Deleted: []string{},
	}
	inSource := make(map[string]bool, len(srcFiles))
	for _, rel := range srcFiles {
		inSource[rel] = true
		if inTarget[rel] {
			pairing.Paired = append(pairing.Paired, domain.FilePair{
				RelPath: rel,
				Source:  filepath.Join(sourceDir, filepath.FromSlash(rel)),
				Target:  filepath.Join(targetDir, filepath.FromSlash(rel)),
			})
		} else {
			pairing.Deleted = append(pairing.Deleted, rel)
		}
	}
	for _, rel := range dstFiles {
		if !inSource[rel] {
			pairing.Added = append(pairing.Added, rel)
		}
	}

	sort.Slice(pairing.Paired, func(i, j int) bool { return pairing.Paired[i].RelPath < pairing.Paired[j].RelPath })
	sort.Strings(pairing.Added)
	sort.Strings(pairing.Deleted)
	return pairing, nil
}
