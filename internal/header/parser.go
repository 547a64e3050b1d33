package header

import (
	stderrors "errors"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/models"
	"github.com/toyz/blanket/internal/token"
)

// Parser parses blanket attribute arguments into ImplHeaders
type Parser struct {
	parser *participle.Parser[headerAST]
}

// NewParser creates a new header parser
func NewParser() *Parser {
	parser := participle.MustBuild[headerAST](
		participle.Lexer(token.Definition),
		participle.Elide(token.Elided...),
		participle.UseLookahead(4),
	)

	return &Parser{parser: parser}
}

var defaultParser = NewParser()

// Parse parses an attribute argument that starts at line 1, column 1
func Parse(argument string) (*models.ImplHeader, error) {
	return defaultParser.Parse(argument, models.Span{Line: 1, Column: 1})
}

// Parse parses argument; base is where the argument starts in its file and is
// used to report absolute positions.
func (p *Parser) Parse(argument string, base models.Span) (*models.ImplHeader, error) {
	if strings.TrimSpace(argument) == "" {
		return nil, errors.NewHeaderSyntaxError(
			`missing impl header, expected "impl"`, location(base, 1, 1, base.Offset, 0),
		).WithTokens("", "impl")
	}

	// Positions from participle are relative to the argument, so no filename
	// is attached to them.
	ast, err := p.parser.ParseString("", argument)
	if err != nil {
		return nil, syntaxError(argument, base, err)
	}

	b := builder{src: argument, base: base}
	return b.header(ast), nil
}

// syntaxError converts a participle failure into a located HeaderSyntaxError
func syntaxError(argument string, base models.Span, err error) *errors.HeaderSyntaxError {
	var perr participle.Error
	if !stderrors.As(err, &perr) {
		return errors.NewHeaderSyntaxError(err.Error(), location(base, 1, 1, base.Offset, 0))
	}

	pos := perr.Position()
	unexpected := tokenAt(argument, pos.Offset)
	loc := location(base, pos.Line, pos.Column, base.Offset+pos.Offset, len(unexpected))

	hse := errors.NewHeaderSyntaxError(perr.Message(), loc).WithTokens(unexpected, "")
	hse.WithCause(err)
	return hse
}

// tokenAt returns the text of the token starting at offset, if any
func tokenAt(src string, offset int) string {
	tokens, _, err := token.Lex("", src)
	if err != nil {
		return ""
	}
	for _, tok := range tokens {
		if tok.Pos.Offset == offset {
			return tok.Value
		}
	}
	return ""
}

// location maps a position relative to the argument onto the file
func location(base models.Span, line, column, offset, length int) errors.SourceLocation {
	if line <= 0 {
		line, column = 1, 1
	}
	absLine := base.Line + line - 1
	absColumn := column
	if line == 1 {
		absColumn = base.Column + column - 1
	}
	return errors.SourceLocation{
		File:   base.File,
		Line:   absLine,
		Column: absColumn,
		Offset: offset,
		Length: length,
	}
}

// builder turns the grammar tree into the model, slicing verbatim text
type builder struct {
	src  string
	base models.Span
}

func (b builder) text(pos, end lexer.Position) string {
	if pos.Offset < 0 || end.Offset > len(b.src) || pos.Offset > end.Offset {
		return ""
	}
	return strings.TrimSpace(b.src[pos.Offset:end.Offset])
}

func (b builder) span(pos, end lexer.Position) models.Span {
	loc := location(b.base, pos.Line, pos.Column, b.base.Offset+pos.Offset, 0)
	text := b.text(pos, end)
	return models.Span{
		File:   b.base.File,
		Line:   loc.Line,
		Column: loc.Column,
		Offset: loc.Offset,
		End:    loc.Offset + len(text),
	}
}

func (b builder) header(ast *headerAST) *models.ImplHeader {
	h := &models.ImplHeader{
		Unsafe:    ast.Unsafe,
		TraitPath: b.text(ast.Trait.Pos, ast.Trait.EndPos),
		TraitName: ast.Trait.Segments[len(ast.Trait.Segments)-1].Name,
		SelfType:  ast.Self.Name,
		Span:      b.span(ast.Pos, ast.EndPos),
		PathSpan:  b.span(ast.Trait.Pos, ast.Trait.EndPos),
		SelfSpan:  b.span(ast.Self.Pos, ast.Self.EndPos),
	}

	for _, attr := range ast.Attrs {
		h.Attrs = append(h.Attrs, b.text(attr.Pos, attr.EndPos))
	}

	if ast.Generics != nil {
		h.GenericsText = b.text(ast.Generics.Pos, ast.Generics.EndPos)
		for _, param := range ast.Generics.Params {
			h.Generics = append(h.Generics, b.param(param))
		}
	}

	if ast.Where != nil {
		h.WhereText = b.text(ast.Where.Pos, ast.Where.EndPos)
		for _, pred := range ast.Where.Predicates {
			h.Where = append(h.Where, b.predicate(pred))
		}
	}

	return h
}

func (b builder) param(ast *paramAST) models.GenericParam {
	param := models.GenericParam{
		Text:   b.text(ast.Pos, ast.EndPos),
		Bounds: b.bounds(ast.Bounds),
	}

	switch {
	case ast.Lifetime != "":
		param.Kind = models.LifetimeParam
		param.Name = ast.Lifetime
	case ast.Const != "":
		param.Kind = models.ConstParam
		param.Name = ast.Const
	default:
		param.Kind = models.TypeParam
		param.Name = ast.Name
	}

	if len(ast.Default) > 0 {
		param.Default = b.text(ast.Default[0].Pos, ast.Default[len(ast.Default)-1].EndPos)
	}

	return param
}

func (b builder) predicate(ast *predicateAST) models.WherePredicate {
	return models.WherePredicate{
		Bounded: b.text(ast.Bounded[0].Pos, ast.Bounded[len(ast.Bounded)-1].EndPos),
		Bounds:  b.bounds(ast.Bounds),
		Text:    b.text(ast.Pos, ast.EndPos),
	}
}

func (b builder) bounds(bounds []*boundAST) []string {
	var out []string
	for _, bound := range bounds {
		out = append(out, b.text(bound.Pos, bound.EndPos))
	}
	return out
}
