package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/utils"
)

// StaleFile is a generated file whose content differs from a fresh expansion
type StaleFile struct {
	Path string
	Diff string // line diff from the file on disk to the expected content
}

// CheckResult is the outcome of comparing generated files with a fresh run
type CheckResult struct {
	UpToDate []string
	Stale    []StaleFile
	Missing  []string // expected outputs that do not exist
	Orphaned []string // outputs whose source no longer has an annotated trait
}

// OK reports whether every generated file is current
func (r *CheckResult) OK() bool {
	return len(r.Stale) == 0 && len(r.Missing) == 0 && len(r.Orphaned) == 0
}

// Checker verifies that generated files on disk match their sources
type Checker struct {
	generator *Generator
}

// NewChecker creates a checker that expands through generator
func NewChecker(generator *Generator) *Checker {
	return &Checker{generator: generator}
}

// Check expands every source in memory and compares the result with the
// files on disk. Expansion failures are returned alongside the result.
func (c *Checker) Check() (*CheckResult, error) {
	planned, planErr := c.generator.Plan()
	if planErr != nil && len(c.generator.summary.FailedFiles) == 0 {
		return nil, planErr
	}

	result := &CheckResult{}
	expected := make(map[string]bool)
	for _, file := range planned {
		expected[filepath.Clean(file.OutputPath)] = true

		current, err := os.ReadFile(file.OutputPath)
		switch {
		case os.IsNotExist(err):
			result.Missing = append(result.Missing, file.OutputPath)
		case err != nil:
			planErr = appendError(planErr, errors.WrapFileSystemError("read", file.OutputPath, err))
		case string(current) == file.Content:
			result.UpToDate = append(result.UpToDate, file.OutputPath)
		default:
			result.Stale = append(result.Stale, StaleFile{
				Path: file.OutputPath,
				Diff: LineDiff(string(current), file.Content),
			})
		}
	}

	failed := make(map[string]bool)
	for _, path := range c.generator.summary.FailedFiles {
		failed[filepath.Clean(path)] = true
	}

	generated, err := c.generator.scanner.GeneratedFiles(c.generator.config.Patterns())
	if err != nil {
		return result, appendError(planErr, err)
	}
	for _, path := range generated {
		path = filepath.Clean(path)
		if expected[path] || failed[sourceOf(path, c.generator.config.Suffix)] {
			continue
		}
		result.Orphaned = append(result.Orphaned, path)
	}

	return result, planErr
}

// sourceOf maps a generated path back to its source path
func sourceOf(output, suffix string) string {
	return strings.TrimSuffix(output, suffix) + utils.SourceExtension
}

// LineDiff renders a line-oriented diff from before to after. Unchanged runs
// are elided down to their first and last line.
func LineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		split := strings.Split(text, "\n")

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			writeLines(&out, "+", split)
		case diffmatchpatch.DiffDelete:
			writeLines(&out, "-", split)
		case diffmatchpatch.DiffEqual:
			if len(split) > 2 {
				writeLines(&out, " ", split[:1])
				fmt.Fprintf(&out, "@@ %d unchanged lines @@\n", len(split)-2)
				split = split[len(split)-1:]
			}
			writeLines(&out, " ", split)
		}
	}
	return out.String()
}

func writeLines(out *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		out.WriteString(prefix)
		out.WriteString(line)
		out.WriteString("\n")
	}
}
