package generator

import (
	"strings"

	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/header"
	"github.com/toyz/blanket/internal/models"
)

// Options controls how traits are split
type Options struct {
	// Strict turns an undeclared self type parameter into an error
	Strict bool
	// CopyItemAttrs keeps item attributes on the impl items as well
	CopyItemAttrs bool
	// MoveDefaults moves associated type and const defaults into the impl
	MoveDefaults bool
}

// Generator implements the Expander interface
type Generator struct {
	options Options
	headers *header.Parser
}

// NewGenerator creates a generator with the given options
func NewGenerator(options Options) *Generator {
	return &Generator{
		options: options,
		headers: header.NewParser(),
	}
}

// Options returns the generator's options
func (g *Generator) Options() Options {
	return g.options
}

// Split splits trait using default options
func Split(trait *models.TraitDecl, h *models.ImplHeader) (*models.Expansion, error) {
	return NewGenerator(Options{}).Split(trait, h)
}

// Split builds the stripped declaration and the blanket impl for trait. The
// inputs are not modified. Nothing is produced when the header names a
// different trait.
func (g *Generator) Split(trait *models.TraitDecl, h *models.ImplHeader) (*models.Expansion, error) {
	if err := header.CheckTraitName(h, trait); err != nil {
		return nil, err
	}
	warning, err := header.CheckBoundParam(h, g.options.Strict)
	if err != nil {
		return nil, err
	}

	exp := &models.Expansion{
		Trait: *trait,
		Impl: models.ImplBlock{
			Header: h,
			Indent: trait.Indent,
		},
	}
	if warning != "" {
		exp.Warnings = append(exp.Warnings, warning)
	}

	exp.Trait.Items = make([]models.TraitItem, 0, len(trait.Items))
	for _, item := range trait.Items {
		if !item.HasBody() && !(g.options.MoveDefaults && item.HasDefault()) {
			exp.Trait.Items = append(exp.Trait.Items, item)
			continue
		}
		exp.Trait.Items = append(exp.Trait.Items, stripped(item))
		exp.Impl.Items = append(exp.Impl.Items, g.implItem(item, trait.Indent))
	}

	return exp, nil
}

// Expand parses the invocation's header and splits its trait
func (g *Generator) Expand(inv models.Invocation) (*models.Expansion, error) {
	h, err := g.headers.Parse(inv.Argument, inv.ArgSpan)
	if err != nil {
		return nil, err
	}
	return g.Split(inv.Trait, h)
}

// ExpandFile expands every invocation in file and returns the rewritten
// source with the warnings raised on the way. If any invocation fails the
// file produces no output and all failures are returned.
func (g *Generator) ExpandFile(file *models.SourceFile) (string, []string, error) {
	rendered := make([]string, len(file.Invocations))
	var warnings []string
	errs := errors.NewMultipleErrors()

	for i, inv := range file.Invocations {
		exp, err := g.Expand(inv)
		if err != nil {
			errs.Add(err)
			continue
		}
		out, err := g.Render(exp)
		if err != nil {
			errs.Add(err)
			continue
		}
		rendered[i] = out
		warnings = append(warnings, exp.Warnings...)
	}

	switch errs.Count() {
	case 0:
	case 1:
		return "", nil, errs.Errors[0]
	default:
		return "", nil, errs
	}

	content := file.Content
	for i := len(file.Invocations) - 1; i >= 0; i-- {
		span := file.Invocations[i].Trait.Span
		content = content[:span.Offset] + rendered[i] + content[span.End:]
	}
	return content, warnings, nil
}

// stripped returns the declaration form of an item: its signature and a `;`
func stripped(item models.TraitItem) models.TraitItem {
	item.Body = ""
	item.Text = item.Decl + ";"
	item.Source = item.Head + ";"
	return item
}

// implItem returns the impl form of an item with a body or default
func (g *Generator) implItem(item models.TraitItem, indent string) models.TraitItem {
	attrs := strings.TrimSuffix(item.Head, item.Decl)

	if item.Kind == models.TypeItem {
		item.Decl = typeAlias(item)
		item.Text = item.Decl + " = " + item.Body + ";"
	}

	if g.options.CopyItemAttrs {
		item.Head = attrs + item.Decl
		item.Source = attrs + item.Text
	} else {
		item.Attrs = nil
		item.Head = item.Decl
		item.Source = item.Text
	}

	if !strings.Contains(item.Leading, "\n") {
		item.Indent = indent + "    "
	}
	return item
}

// typeAlias returns `type Name<..>` from an associated type declaration,
// dropping bounds and where clauses that impls cannot carry
func typeAlias(item models.TraitItem) string {
	decl := item.Decl
	start := len("type")
	end := start + strings.Index(decl[start:], item.Name) + len(item.Name)

	if strings.HasPrefix(decl[end:], "<") {
		depth := 0
		for i := end; i < len(decl); i++ {
			switch {
			case decl[i] == '<':
				depth++
			case decl[i] == '>' && decl[i-1] != '-':
				depth--
			}
			if depth == 0 {
				end = i + 1
				break
			}
		}
	}
	return decl[:end]
}
