package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileReader reads source files, caching contents until the file changes
type FileReader struct {
	contentCache *Cache[string, string]
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{
		contentCache: NewCache[string, string](),
	}
}

// ReadFile reads a file and returns its contents as a string with caching
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	cleanPath, err := fr.validateAndCleanPath(filePath)
	if err != nil {
		return "", err
	}

	if cached, exists := fr.contentCache.GetWithFileValidation(cleanPath, cleanPath); exists {
		return cached, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filepath.Base(cleanPath), err)
	}

	contentStr := string(content)
	_ = fr.contentCache.SetWithFileInfo(cleanPath, contentStr, cleanPath)
	return contentStr, nil
}

// WriteFile writes content and drops any cached copy
func (fr *FileReader) WriteFile(filePath, content string) error {
	cleanPath, err := fr.validateAndCleanPath(filePath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filepath.Base(cleanPath), err)
	}
	if err := os.WriteFile(cleanPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filepath.Base(cleanPath), err)
	}

	fr.contentCache.Delete(cleanPath)
	return nil
}

// ClearCache clears all cached data
func (fr *FileReader) ClearCache() {
	fr.contentCache.Clear()
}

// InvalidateFile removes a specific file from the cache
func (fr *FileReader) InvalidateFile(filePath string) {
	fr.contentCache.Delete(filepath.Clean(filePath))
}

// GetCacheStats returns cache statistics
func (fr *FileReader) GetCacheStats() CacheStats {
	return fr.contentCache.GetStats()
}

// validateAndCleanPath validates and cleans a file path
func (fr *FileReader) validateAndCleanPath(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	return filepath.Clean(filePath), nil
}
