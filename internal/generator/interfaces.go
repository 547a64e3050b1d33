package generator

import "github.com/toyz/blanket/internal/models"

// Expander splits annotated traits into a declaration and a blanket impl
type Expander interface {
	Split(trait *models.TraitDecl, h *models.ImplHeader) (*models.Expansion, error)
	Expand(inv models.Invocation) (*models.Expansion, error)
	Render(exp *models.Expansion) (string, error)
	ExpandFile(file *models.SourceFile) (string, []string, error)
}
