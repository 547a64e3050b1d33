package generator

import (
	"strings"

	"github.com/toyz/blanket/internal/models"
	"github.com/toyz/blanket/internal/templates"
)

// Render renders the declaration followed by the impl block. The result
// replaces the annotated trait in place, so the first line carries no
// indentation of its own.
func (g *Generator) Render(exp *models.Expansion) (string, error) {
	impl, err := RenderImpl(&exp.Impl)
	if err != nil {
		return "", err
	}
	return RenderTrait(&exp.Trait) + "\n\n" + exp.Impl.Indent + impl, nil
}

// RenderTrait renders a declaration from its verbatim pieces
func RenderTrait(trait *models.TraitDecl) string {
	var b strings.Builder
	b.WriteString(trait.Prefix)
	b.WriteString(trait.Head)
	for _, item := range trait.Items {
		b.WriteString(item.Leading)
		b.WriteString(item.Source)
	}
	b.WriteString(trait.Trailing)
	b.WriteString("}")
	return b.String()
}

// RenderImpl renders the blanket impl block
func RenderImpl(impl *models.ImplBlock) (string, error) {
	head, err := templates.GenerateImplHeader(templates.NewImplHeaderData(impl.Header, impl.Indent))
	if err != nil {
		return "", err
	}

	items := make([]string, 0, len(impl.Items))
	for _, item := range impl.Items {
		items = append(items, item.Indent+item.Source)
	}

	return templates.GenerateImplBlock(templates.ImplBlockData{
		Header: head,
		Items:  items,
		Indent: impl.Indent,
	})
}
