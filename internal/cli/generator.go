package cli

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/generator"
	"github.com/toyz/blanket/internal/models"
	"github.com/toyz/blanket/internal/parser"
	"github.com/toyz/blanket/internal/templates"
	"github.com/toyz/blanket/internal/utils"
)

// Generator coordinates the CLI generation process
type Generator struct {
	config        *Config
	scanner       *DirectoryScanner
	crateResolver *CrateResolver
	parser        parser.SourceParser
	expander      generator.Expander
	fileReader    *utils.FileReader
	reporter      *DiagnosticReporter
	diagnostics   *utils.DiagnosticSystem
	summary       models.GenerationSummary
}

// NewGenerator creates a new CLI generator
func NewGenerator(config *Config, diagnostics *utils.DiagnosticSystem) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	fileReader := utils.NewFileReader()
	scanner, err := NewDirectoryScanner(utils.NewFileProcessorWithReader(fileReader), config.Suffix, config.Exclude)
	if err != nil {
		return nil, err
	}

	reporter := NewDiagnosticReporter(config.Verbose, diagnostics.ErrorWriter())
	reporter.SetColors(diagnostics.ColorsEnabled())
	reporter.SetFileReader(fileReader)

	sourceParser := parser.NewParserWithAttribute(config.Attribute)
	sourceParser.SetFileReader(fileReader)

	return &Generator{
		config:        config,
		scanner:       scanner,
		crateResolver: NewCrateResolver(fileReader),
		parser:        sourceParser,
		expander:      generator.NewGenerator(config.GeneratorOptions()),
		fileReader:    fileReader,
		reporter:      reporter,
		diagnostics:   diagnostics,
	}, nil
}

// Reporter returns the reporter used for failures
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() models.GenerationSummary {
	return g.summary
}

// Expand expands every annotated trait in source and returns the rewritten
// text without a banner
func (g *Generator) Expand(filename, source string) (string, []string, error) {
	file, err := g.parser.ParseSource(filename, source)
	if err != nil {
		return "", nil, err
	}
	return g.expander.ExpandFile(file)
}

// GenerateFile expands one source file. It returns nil when the file holds
// no annotated trait.
func (g *Generator) GenerateFile(sourcePath string) (*models.GeneratedFile, error) {
	file, err := g.parser.ParseFile(sourcePath)
	if err != nil {
		return nil, err
	}
	if len(file.Invocations) == 0 {
		return nil, nil
	}

	expanded, warnings, err := g.expander.ExpandFile(file)
	if err != nil {
		return nil, err
	}

	crate, err := g.crateResolver.ResolveCrateName(g.config.Crate, sourcePath)
	if err != nil {
		g.diagnostics.Debug("%s: %v", sourcePath, err)
	}
	if modulePath, err := g.crateResolver.BuildModulePath(sourcePath); err == nil {
		g.diagnostics.Verbose("Expanding %s (%s)", sourcePath, modulePath)
	}

	banner, err := templates.GenerateBanner(templates.BannerData{
		Source: filepath.ToSlash(filepath.Base(sourcePath)),
		Crate:  crate,
	})
	if err != nil {
		return nil, errors.WrapGenerateError(sourcePath, err)
	}

	traits := make([]string, 0, len(file.Invocations))
	for _, inv := range file.Invocations {
		traits = append(traits, inv.Trait.Name)
	}

	return &models.GeneratedFile{
		SourcePath: sourcePath,
		OutputPath: utils.OutputPath(sourcePath, g.config.Suffix),
		Content:    banner + expanded,
		Traits:     traits,
		Warnings:   warnings,
	}, nil
}

// Plan scans the configured directories and expands every candidate file in
// memory. A failing file is recorded and the remaining files still expand;
// the failures are returned together.
func (g *Generator) Plan() ([]*models.GeneratedFile, error) {
	g.summary = models.GenerationSummary{GeneratedFiles: make([]string, 0)}

	g.diagnostics.Debug("Scanning directories: %v", g.config.Patterns())
	sources, err := g.scanner.ScanDirectories(g.config.Patterns())
	if err != nil {
		return nil, err
	}
	g.summary.FilesScanned = len(sources)

	candidates, err := g.scanner.Candidates(sources, g.parser.Attribute())
	if err != nil {
		return nil, err
	}
	g.diagnostics.Verbose("Found %d source files, %d mention #[%s]", len(sources), len(candidates), g.parser.Attribute())

	var planned []*models.GeneratedFile
	errs := errors.NewMultipleErrors()
	for _, path := range candidates {
		generated, err := g.GenerateFile(path)
		if err != nil {
			errs.Add(err)
			g.summary.FailedFiles = append(g.summary.FailedFiles, path)
			continue
		}
		if generated == nil {
			continue
		}

		g.summary.TraitsExpanded += len(generated.Traits)
		g.summary.Warnings = append(g.summary.Warnings, generated.Warnings...)
		planned = append(planned, generated)
	}

	return planned, errs.ErrorOrNil()
}

// Run expands the configured directories and writes every generated file.
// Files that expanded are written even when others failed.
func (g *Generator) Run() error {
	startTime := time.Now()
	g.diagnostics.Verbose("Starting code generation at %s", startTime.Format("15:04:05"))

	planned, planErr := g.Plan()
	if planErr != nil && len(g.summary.FailedFiles) == 0 {
		return planErr
	}

	for _, warning := range g.summary.Warnings {
		g.reporter.ReportWarning(warning)
	}

	if len(planned) > 0 {
		g.diagnostics.PhaseHeader("Generating")
		g.diagnostics.Indent()
	}
	for _, file := range planned {
		g.diagnostics.PhaseItem(file.SourcePath + ": " + pluralize(len(file.Traits), "trait"))
		if err := g.fileReader.WriteFile(file.OutputPath, file.Content); err != nil {
			planErr = appendError(planErr, errors.WrapFileSystemError("write", file.OutputPath, err))
			g.summary.FailedFiles = append(g.summary.FailedFiles, file.SourcePath)
			continue
		}
		g.diagnostics.PhaseWrite(file.OutputPath)
		g.summary.FilesGenerated++
		g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, file.OutputPath)
	}
	if len(planned) > 0 {
		g.diagnostics.Unindent()
	}

	g.diagnostics.Verbose("Generation completed in %v", time.Since(startTime).Round(time.Millisecond))
	return planErr
}

// ReportSuccess prints the summary of the last run
func (g *Generator) ReportSuccess() {
	g.diagnostics.Summary("Summary", map[string]interface{}{
		"Files scanned":   g.summary.FilesScanned,
		"Files generated": g.summary.FilesGenerated,
		"Traits expanded": g.summary.TraitsExpanded,
		"Warnings":        len(g.summary.Warnings),
	})
}

// appendError adds err to acc, promoting acc to a MultipleErrors
func appendError(acc error, err error) error {
	multi, ok := acc.(*errors.MultipleErrors)
	if !ok {
		multi = errors.NewMultipleErrors()
		multi.Add(acc)
	}
	multi.Add(err)
	return multi
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
