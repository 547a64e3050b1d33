package models

// GeneratedFile is an expanded source file ready to be written
type GeneratedFile struct {
	SourcePath string   // the annotated input file
	OutputPath string   // where the expansion is written
	Content    string   // full expanded source including the banner
	Traits     []string // names of the expanded traits
	Warnings   []string
}

// GenerationSummary contains statistics about one run
type GenerationSummary struct {
	FilesScanned   int
	FilesGenerated int
	TraitsExpanded int
	GeneratedFiles []string
	FailedFiles    []string
	Warnings       []string
}
