package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/utils"
)

// DirectoryScanner finds source files that may hold annotated traits
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
	suffix        string
}

// NewDirectoryScanner creates a scanner that skips generated files ending in
// suffix and paths matching exclude
func NewDirectoryScanner(fileProcessor *utils.FileProcessor, suffix string, exclude []string) (*DirectoryScanner, error) {
	if err := fileProcessor.SetExclude(exclude); err != nil {
		return nil, errors.WrapConfigurationError(ConfigName, "validate", err)
	}
	return &DirectoryScanner{
		fileProcessor: fileProcessor,
		suffix:        suffix,
	}, nil
}

// ScanDirectories returns the source files named by patterns in a stable
// order. Supports Go-style patterns like "./..." for recursive scanning.
func (s *DirectoryScanner) ScanDirectories(patterns []string) ([]string, error) {
	cleaned := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		dir, recursive := utils.ExpandPattern(pattern)
		if strings.TrimSpace(dir) == "" {
			return nil, errors.WrapWithOperation("process", fmt.Sprintf("pattern %q", pattern), fmt.Errorf("empty path"))
		}
		dir = filepath.Clean(dir)
		if recursive {
			dir += "/..."
		}
		cleaned = append(cleaned, dir)
	}

	files, err := s.fileProcessor.SourceFiles(cleaned, s.suffix)
	if err != nil {
		return nil, errors.WrapWithOperation("scan", strings.Join(patterns, ", "), err)
	}
	return files, nil
}

// GeneratedFiles returns the generated files under patterns
func (s *DirectoryScanner) GeneratedFiles(patterns []string) ([]string, error) {
	return s.fileProcessor.GeneratedFiles(patterns, s.suffix)
}

// Candidates filters files down to those whose text mentions attribute, so
// files that cannot hold an invocation are never tokenized
func (s *DirectoryScanner) Candidates(files []string, attribute string) ([]string, error) {
	reader := s.fileProcessor.GetFileReader()

	var candidates []string
	for _, path := range files {
		content, err := reader.ReadFile(path)
		if err != nil {
			return nil, errors.WrapFileSystemError("read", path, err)
		}
		if strings.Contains(content, attribute) {
			candidates = append(candidates, path)
		}
	}
	return candidates, nil
}
