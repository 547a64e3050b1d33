package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SourceExtension is the extension of files scanned for annotated traits
const SourceExtension = ".rs"

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct {
	fileReader *FileReader
	exclude    []string
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// SetExclude sets the doublestar patterns of paths to skip. Patterns are
// matched against slash-separated paths relative to the walk root.
func (fp *FileProcessor) SetExclude(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	fp.exclude = patterns
	return nil
}

// Excluded reports whether rel matches any exclude pattern
func (fp *FileProcessor) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range fp.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
	Recursive       bool
}

// SourceFileFilter matches source files, skipping generated outputs that end in suffix
func SourceFileFilter(suffix string) FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		return strings.HasSuffix(name, SourceExtension) &&
			(suffix == "" || !strings.HasSuffix(name, suffix))
	}
}

// GeneratedFileFilter matches generated outputs
func GeneratedFileFilter(suffix string) FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() || suffix == "" {
			return false
		}

		return strings.HasSuffix(info.Name(), suffix)
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		".git":         true,
		".svn":         true,
		".hg":          true,
		"build":        true,
		"dist":         true,
		"target":       true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// Skip hidden directories
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// WalkFiles walks through files under rootDir with filtering. Without
// Recursive only the files directly in rootDir are considered.
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			rel = path
		}

		if entry.IsDir() {
			if path == rootDir {
				return nil
			}
			if !options.Recursive || fp.Excluded(rel) {
				return filepath.SkipDir
			}
			if options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if fp.Excluded(rel) {
			return nil
		}
		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, WrapProcessError(fmt.Sprintf("directory walk %s", rootDir), err)
	}

	sort.Strings(matchedFiles)
	return matchedFiles, nil
}

// ExpandPattern splits a Go-style `dir/...` pattern into its directory and
// whether it recurses
func ExpandPattern(pattern string) (string, bool) {
	switch {
	case pattern == "..." || pattern == "./...":
		return ".", true
	case strings.HasSuffix(pattern, "/..."):
		return strings.TrimSuffix(pattern, "/..."), true
	case pattern == "":
		return ".", false
	default:
		return pattern, false
	}
}

// SourceFiles returns the source files named by patterns, skipping outputs
// that end in suffix. A pattern may be a file, a directory or `dir/...`.
func (fp *FileProcessor) SourceFiles(patterns []string, suffix string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, pattern := range patterns {
		dir, recursive := ExpandPattern(pattern)

		info, err := os.Stat(dir)
		if err != nil {
			return nil, WrapProcessError(fmt.Sprintf("path %s", dir), err)
		}
		if !info.IsDir() {
			add(dir)
			continue
		}

		matched, err := fp.WalkFiles(dir, FileWalkOptions{
			FileFilter:      SourceFileFilter(suffix),
			DirectoryFilter: DefaultDirectoryFilter(),
			Recursive:       recursive,
		})
		if err != nil {
			return nil, err
		}
		for _, path := range matched {
			add(path)
		}
	}

	return files, nil
}

// GeneratedFiles returns the generated files ending in suffix under the
// directories named by patterns. Missing directories are skipped.
func (fp *FileProcessor) GeneratedFiles(patterns []string, suffix string) ([]string, error) {
	var files []string

	for _, pattern := range patterns {
		dir, recursive := ExpandPattern(pattern)
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err == nil && !info.IsDir() {
			continue
		}

		generated, err := fp.WalkFiles(dir, FileWalkOptions{
			FileFilter:      GeneratedFileFilter(suffix),
			DirectoryFilter: DefaultDirectoryFilter(),
			Recursive:       recursive,
			SkipErrors:      true,
		})
		if err != nil {
			return files, err
		}
		files = append(files, generated...)
	}

	return files, nil
}

// CleanDirectories removes generated files ending in suffix from the
// directories named by patterns
func (fp *FileProcessor) CleanDirectories(patterns []string, suffix string) ([]string, error) {
	var removedFiles []string

	generated, err := fp.GeneratedFiles(patterns, suffix)
	if err != nil {
		return nil, err
	}

	for _, path := range generated {
		if err := os.Remove(path); err != nil {
			return removedFiles, WrapProcessError(fmt.Sprintf("file removal %s", path), err)
		}
		fp.fileReader.InvalidateFile(path)
		removedFiles = append(removedFiles, path)
	}

	return removedFiles, nil
}

// OutputPath returns the generated file path for a source file
func OutputPath(source, suffix string) string {
	return strings.TrimSuffix(source, SourceExtension) + suffix
}

// GetFileReader returns the underlying FileReader for advanced operations
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
