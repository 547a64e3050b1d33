package parser

import (
	"github.com/toyz/blanket/internal/models"
)

// SourceParser finds annotated traits in source files
type SourceParser interface {
	Attribute() string
	ParseFile(path string) (*models.SourceFile, error)
	ParseSource(filename, source string) (*models.SourceFile, error)
}
