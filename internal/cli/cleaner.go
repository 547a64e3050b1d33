package cli

import (
	"fmt"

	"github.com/toyz/blanket/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	fileProcessor *utils.FileProcessor
	suffix        string
}

// NewCleaner creates a cleaner for files ending in suffix
func NewCleaner(suffix string) *Cleaner {
	return &Cleaner{
		fileProcessor: utils.NewFileProcessor(),
		suffix:        suffix,
	}
}

// CleanGeneratedFiles removes all generated files from the directories named
// by patterns and returns the removed paths. Missing directories are skipped.
func (c *Cleaner) CleanGeneratedFiles(patterns []string) ([]string, error) {
	if err := utils.ValidateOutputSuffix("suffix")(c.suffix); err != nil {
		return nil, err
	}

	removed, err := c.fileProcessor.CleanDirectories(patterns, c.suffix)
	if err != nil {
		return removed, fmt.Errorf("failed to clean %v: %w", patterns, err)
	}
	return removed, nil
}
