package header

import (
	"fmt"

	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/models"
)

// CheckTraitName verifies that the header implements the annotated trait
func CheckTraitName(h *models.ImplHeader, trait *models.TraitDecl) error {
	if h.TraitName == trait.Name {
		return nil
	}
	return errors.NewTraitNameMismatchError(h.TraitName, trait.Name, spanLocation(h.PathSpan))
}

// CheckBoundParam verifies that the self type is one of the header's type
// parameters. A miss is returned as a warning, or as an error when strict.
func CheckBoundParam(h *models.ImplHeader, strict bool) (string, error) {
	if h.HasTypeParam(h.SelfType) {
		return "", nil
	}
	if strict {
		return "", errors.NewUnboundTypeParamError(h.SelfType, h.TypeParams(), spanLocation(h.SelfSpan))
	}
	return fmt.Sprintf("%s: type parameter '%s' is not declared in the impl generics",
		h.SelfSpan.String(), h.SelfType), nil
}

func spanLocation(s models.Span) errors.SourceLocation {
	return errors.SourceLocation{
		File:   s.File,
		Line:   s.Line,
		Column: s.Column,
		Offset: s.Offset,
		Length: s.Len(),
	}
}
