package parser

import (
	"fmt"
	"strings"

	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/models"
	"github.com/toyz/blanket/internal/token"
)

// reader walks the token stream of one source file. Every piece of text it
// records is sliced from src so that output keeps the user's layout.
type reader struct {
	file string
	src  string
	s    *token.Stream
}

// parsedAttr is an attribute plus its parenthesised arguments, if any
type parsedAttr struct {
	attr    models.Attribute
	args    string
	hasArgs bool
	argSpan models.Span
}

func (r *reader) location(tok token.Token) errors.SourceLocation {
	return errors.SourceLocation{
		File:   r.file,
		Line:   tok.Pos.Line,
		Column: tok.Pos.Column,
		Offset: tok.Pos.Offset,
		Length: len(tok.Value),
	}
}

func (r *reader) errorAt(tok token.Token, format string, args ...interface{}) error {
	unexpected := tok.Value
	if tok.Kind == token.EOF {
		unexpected = ""
	}
	return errors.NewTraitSyntaxError(fmt.Sprintf(format, args...), unexpected, r.location(tok))
}

func (r *reader) span(start token.Token, end int) models.Span {
	return models.Span{
		File:   r.file,
		Line:   start.Pos.Line,
		Column: start.Pos.Column,
		Offset: start.Pos.Offset,
		End:    end,
	}
}

// peekAttribute reports whether an attribute or doc comment starts at the
// cursor and whether it is an inner one (#![..], //!, /*!)
func (r *reader) peekAttribute() (ok, inner bool) {
	tok := r.s.Peek()
	switch {
	case tok.Kind == token.DocComment:
		return true, strings.HasPrefix(tok.Value, "//!") || strings.HasPrefix(tok.Value, "/*!")
	case tok.Is("#") && r.s.PeekN(1).Is("["):
		return true, false
	case tok.Is("#") && r.s.PeekN(1).Is("!") && r.s.PeekN(2).Is("["):
		return true, true
	}
	return false, false
}

// attribute consumes one attribute or doc comment
func (r *reader) attribute() (parsedAttr, error) {
	first := r.s.Next()
	if first.Kind == token.DocComment {
		return parsedAttr{attr: models.Attribute{
			Text: first.Value,
			Doc:  true,
			Span: r.span(first, first.End()),
		}}, nil
	}

	r.s.Accept("!")
	open := r.s.Cursor()
	closing, bad, ok := r.s.SkipGroup()
	if !ok {
		return parsedAttr{}, r.errorAt(bad, "unbalanced attribute, unexpected %s", bad)
	}

	pa := parsedAttr{attr: models.Attribute{
		Text: r.src[first.Pos.Offset:closing.End()],
		Span: r.span(first, closing.End()),
	}}

	inner := r.s.Slice(open+1, r.s.Cursor()-1)
	i := 0
	if i < len(inner) && inner[i].Is("::") {
		i++
	}
	for i < len(inner) && inner[i].Kind == token.Ident {
		pa.attr.Name = inner[i].Value
		i++
		if i < len(inner) && inner[i].Is("::") {
			i++
			continue
		}
		break
	}
	pa.attr.Doc = pa.attr.Name == "doc"

	if i < len(inner) && inner[i].Is("(") && inner[len(inner)-1].Is(")") {
		paren := inner[i]
		pa.hasArgs = true
		pa.args = r.src[paren.End():inner[len(inner)-1].Pos.Offset]
		pa.argSpan = models.Span{
			File:   r.file,
			Line:   paren.Pos.Line,
			Column: paren.Pos.Column + 1,
			Offset: paren.End(),
			End:    paren.End() + len(pa.args),
		}
	}

	return pa, nil
}

// attributes consumes a run of attributes. Inner attributes end the run
// unless allowInner is set.
func (r *reader) attributes(allowInner bool) ([]parsedAttr, error) {
	var out []parsedAttr
	for {
		ok, inner := r.peekAttribute()
		if !ok || (inner && !allowInner) {
			return out, nil
		}
		pa, err := r.attribute()
		if err != nil {
			return nil, err
		}
		out = append(out, pa)
	}
}

// until advances to the first token for which stop returns true, skipping
// delimited groups. With angles set, tokens nested inside <...> are skipped
// as well.
func (r *reader) until(stop func(token.Token) bool, angles bool) error {
	depth := 0
	for {
		tok := r.s.Peek()
		switch {
		case tok.Kind == token.EOF:
			return r.errorAt(tok, "unexpected end of input")
		case depth == 0 && stop(tok):
			return nil
		case tok.IsOpen():
			if _, bad, ok := r.s.SkipGroup(); !ok {
				return r.errorAt(bad, "unbalanced delimiter, unexpected %s", bad)
			}
		case tok.IsClose():
			return r.errorAt(tok, "unexpected %s", tok)
		case angles && tok.Is("<"):
			depth++
			r.s.Next()
		case angles && tok.Is(">") && depth > 0:
			depth--
			r.s.Next()
		default:
			r.s.Next()
		}
	}
}

// angle consumes a balanced <...> list
func (r *reader) angle() error {
	r.s.Next()
	if err := r.until(is(">"), true); err != nil {
		return err
	}
	r.s.Next()
	return nil
}

func is(values ...string) func(token.Token) bool {
	return func(tok token.Token) bool {
		for _, v := range values {
			if tok.Is(v) {
				return true
			}
		}
		return false
	}
}

// trait reads a trait declaration at the cursor. The attribute at index skip
// is left out of the declaration's prefix; pass -1 to keep them all.
func (r *reader) trait(skip int) (*models.TraitDecl, error) {
	first := r.s.Peek()
	attrs, err := r.attributes(false)
	if err != nil {
		return nil, err
	}
	head := r.s.Peek()

	decl := &models.TraitDecl{Indent: lineIndent(r.src, first.Pos.Offset)}
	var prefix strings.Builder
	pos := first.Pos.Offset
	for i, pa := range attrs {
		if i == skip {
			prefix.WriteString(r.src[pos:pa.attr.Span.Offset])
			rest := r.src[pa.attr.Span.End:head.Pos.Offset]
			pos = pa.attr.Span.End + len(rest) - len(strings.TrimLeft(rest, " \t\r\n"))
			continue
		}
		decl.Attrs = append(decl.Attrs, pa.attr)
	}
	prefix.WriteString(r.src[pos:head.Pos.Offset])
	decl.Prefix = prefix.String()

	if r.s.Accept(KeywordPub) {
		if r.s.Peek().Is("(") {
			if _, bad, ok := r.s.SkipGroup(); !ok {
				return nil, r.errorAt(bad, "unbalanced visibility, unexpected %s", bad)
			}
		}
		decl.Visibility = r.src[head.Pos.Offset:r.s.Previous().End()]
	}
	decl.Unsafe = r.s.Accept(KeywordUnsafe)
	decl.Auto = r.s.Accept(KeywordAuto)

	if tok := r.s.Peek(); !tok.Is(KeywordTrait) {
		return nil, r.errorAt(tok, "expected 'trait', found %s", tok)
	}
	r.s.Next()

	name := r.s.Next()
	if name.Kind != token.Ident {
		return nil, r.errorAt(name, "expected trait name, found %s", name)
	}
	decl.Name = name.Value
	decl.NameSpan = r.span(name, name.End())

	if tok := r.s.Peek(); tok.Is("<") {
		if err := r.angle(); err != nil {
			return nil, err
		}
		decl.Generics = r.src[tok.Pos.Offset:r.s.Previous().End()]
	}

	if r.s.Accept(":") {
		start, cursor := r.s.Peek(), r.s.Cursor()
		if err := r.until(is(KeywordWhere, "{"), true); err != nil {
			return nil, err
		}
		if r.s.Cursor() > cursor {
			decl.Supertraits = r.src[start.Pos.Offset:r.s.Previous().End()]
		}
	}

	if tok := r.s.Peek(); tok.Is(KeywordWhere) {
		if err := r.until(is("{"), true); err != nil {
			return nil, err
		}
		decl.Where = r.src[tok.Pos.Offset:r.s.Previous().End()]
	}

	open := r.s.Next()
	if !open.Is("{") {
		return nil, r.errorAt(open, "expected '{' to open the body of trait '%s', found %s", decl.Name, open)
	}
	decl.Head = r.src[head.Pos.Offset:open.End()]

	prev := open.End()
	for !r.s.Peek().Is("}") {
		if r.s.AtEOF() {
			return nil, r.errorAt(r.s.Peek(), "unclosed body of trait '%s'", decl.Name)
		}
		item, err := r.item(prev)
		if err != nil {
			return nil, err
		}
		decl.Items = append(decl.Items, item)
		prev = item.Span.End
	}

	closing := r.s.Next()
	decl.Trailing = r.src[prev:closing.Pos.Offset]
	decl.Span = r.span(first, closing.End())
	return decl, nil
}

// item reads one trait item. prev is the offset where the previous item (or
// the opening brace) ended.
func (r *reader) item(prev int) (models.TraitItem, error) {
	first := r.s.Peek()
	attrs, err := r.attributes(true)
	if err != nil {
		return models.TraitItem{}, err
	}
	start := r.s.Peek()

	item := models.TraitItem{
		Leading: r.src[prev:first.Pos.Offset],
		Indent:  indentOf(r.src[prev:first.Pos.Offset]),
	}
	for _, pa := range attrs {
		item.Attrs = append(item.Attrs, pa.attr)
	}

	var sigEnd int
	switch {
	case r.atMethod():
		sigEnd, err = r.method(&item)
	case start.Is(KeywordType):
		item.Kind = models.TypeItem
		sigEnd, err = r.associated(&item)
	case start.Is(KeywordConst):
		item.Kind = models.ConstItem
		sigEnd, err = r.associated(&item)
	case start.Kind == token.Ident && r.s.PeekN(1).Is("!"):
		sigEnd, err = r.macro(&item)
	default:
		return item, r.errorAt(start, "expected a trait item, found %s", start)
	}
	if err != nil {
		return item, err
	}

	end := r.s.Previous().End()
	item.Head = r.src[first.Pos.Offset:sigEnd]
	item.Decl = r.src[start.Pos.Offset:sigEnd]
	item.Text = r.src[start.Pos.Offset:end]
	item.Source = r.src[first.Pos.Offset:end]
	item.Span = r.span(first, end)
	return item, nil
}

// atMethod looks past fn qualifiers for the fn keyword
func (r *reader) atMethod() bool {
	for n := 0; ; n++ {
		tok := r.s.PeekN(n)
		switch {
		case tok.Is(KeywordFn):
			return true
		case tok.Kind == token.Ident && fnQualifiers[tok.Value]:
		case tok.Kind == token.String && n > 0 && r.s.PeekN(n-1).Is("extern"):
		default:
			return false
		}
	}
}

func (r *reader) method(item *models.TraitItem) (int, error) {
	item.Kind = models.MethodItem
	for !r.s.Peek().Is(KeywordFn) {
		r.s.Next()
	}
	r.s.Next()

	name := r.s.Next()
	if name.Kind != token.Ident {
		return 0, r.errorAt(name, "expected method name, found %s", name)
	}
	item.Name = name.Value

	if err := r.until(is("{", ";"), true); err != nil {
		return 0, err
	}
	sigEnd := r.s.Previous().End()

	body := r.s.Peek()
	if body.Is(";") {
		r.s.Next()
		return sigEnd, nil
	}

	closing, bad, ok := r.s.SkipGroup()
	if !ok {
		return 0, r.errorAt(bad, "unbalanced body of method '%s', unexpected %s", item.Name, bad)
	}
	item.Body = r.src[body.Pos.Offset:closing.End()]
	return sigEnd, nil
}

// associated reads a `type` or `const` item with an optional default
func (r *reader) associated(item *models.TraitItem) (int, error) {
	keyword := r.s.Next()
	name := r.s.Next()
	if name.Kind != token.Ident {
		return 0, r.errorAt(name, "expected %s name, found %s", keyword.Value, name)
	}
	item.Name = name.Value

	if err := r.until(is("=", ";"), true); err != nil {
		return 0, err
	}
	sigEnd := r.s.Previous().End()

	if r.s.Accept("=") {
		value := r.s.Peek()
		if value.Is(";") {
			return 0, r.errorAt(value, "expected a default for %s '%s'", keyword.Value, item.Name)
		}
		if err := r.until(is(";"), false); err != nil {
			return 0, err
		}
		item.Body = r.src[value.Pos.Offset:r.s.Previous().End()]
	}

	r.s.Next()
	return sigEnd, nil
}

func (r *reader) macro(item *models.TraitItem) (int, error) {
	item.Kind = models.MacroItem
	item.Name = r.s.Next().Value
	r.s.Next()

	group := r.s.Peek()
	if !group.IsOpen() {
		return 0, r.errorAt(group, "expected macro arguments, found %s", group)
	}
	closing, bad, ok := r.s.SkipGroup()
	if !ok {
		return 0, r.errorAt(bad, "unbalanced macro invocation, unexpected %s", bad)
	}

	if group.Value == "{" {
		r.s.Accept(";")
	} else if tok := r.s.Peek(); !r.s.Accept(";") {
		return 0, r.errorAt(tok, "expected ';' after macro invocation, found %s", tok)
	}
	return closing.End(), nil
}

// indentOf returns the whitespace that starts the last line of leading
func indentOf(leading string) string {
	line := leading
	if i := strings.LastIndexByte(leading, '\n'); i >= 0 {
		line = leading[i+1:]
	}
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// lineIndent returns the whitespace between the start of the line and
// offset, or "" when other text precedes offset on that line
func lineIndent(src string, offset int) string {
	line := src[strings.LastIndexByte(src[:offset], '\n')+1 : offset]
	if strings.TrimLeft(line, " \t") != "" {
		return ""
	}
	return line
}
