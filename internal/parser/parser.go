package parser

import (
	stderrors "errors"
	"strings"

	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/models"
	"github.com/toyz/blanket/internal/token"
	"github.com/toyz/blanket/internal/utils"
)

// Parser implements the SourceParser interface
type Parser struct {
	attribute  string
	fileReader *utils.FileReader
}

// NewParser creates a parser that looks for the default attribute
func NewParser() *Parser {
	return NewParserWithAttribute(DefaultAttribute)
}

// NewParserWithAttribute creates a parser for a custom attribute name. A path
// such as `my_macros::blanket_trait` matches on its final segment.
func NewParserWithAttribute(name string) *Parser {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	if name == "" {
		name = DefaultAttribute
	}
	return &Parser{attribute: name, fileReader: utils.NewFileReader()}
}

// SetFileReader shares a file cache with the caller
func (p *Parser) SetFileReader(fileReader *utils.FileReader) {
	p.fileReader = fileReader
}

// Attribute returns the attribute name the parser matches
func (p *Parser) Attribute() string {
	return p.attribute
}

// ParseFile reads a source file through the file cache and parses it
func (p *Parser) ParseFile(path string) (*models.SourceFile, error) {
	content, err := p.fileReader.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}
	return p.ParseSource(path, content)
}

// ParseSource scans source for annotated traits
func (p *Parser) ParseSource(filename, source string) (*models.SourceFile, error) {
	r, err := newReader(filename, source)
	if err != nil {
		return nil, err
	}

	file := &models.SourceFile{Path: filename, Content: source}
	for !r.s.AtEOF() {
		ok, inner := r.peekAttribute()
		if !ok {
			r.s.Next()
			continue
		}
		if inner {
			if _, err := r.attribute(); err != nil {
				return nil, err
			}
			continue
		}

		start := r.s.Cursor()
		attrs, err := r.attributes(false)
		if err != nil {
			return nil, err
		}

		index, err := p.invocation(r, attrs)
		if err != nil {
			return nil, err
		}
		if index < 0 {
			continue
		}

		r.s.Reset(start)
		trait, err := r.trait(index)
		if err != nil {
			return nil, err
		}

		attr := attrs[index]
		argSpan := attr.argSpan
		if !attr.hasArgs {
			argSpan = models.Span{File: filename, Line: attr.attr.Span.Line, Column: attr.attr.Span.Column, Offset: attr.attr.Span.End, End: attr.attr.Span.End}
		}
		file.Invocations = append(file.Invocations, models.Invocation{
			Attr:     attr.attr,
			Argument: attr.args,
			ArgSpan:  argSpan,
			Trait:    trait,
		})
	}

	return file, nil
}

// ParseTrait parses source holding exactly one trait declaration
func (p *Parser) ParseTrait(filename, source string) (*models.TraitDecl, error) {
	r, err := newReader(filename, source)
	if err != nil {
		return nil, err
	}

	trait, err := r.trait(-1)
	if err != nil {
		return nil, err
	}
	if tok := r.s.Peek(); !r.s.AtEOF() {
		return nil, r.errorAt(tok, "unexpected %s after trait '%s'", tok, trait.Name)
	}
	return trait, nil
}

// invocation returns the index of the attribute naming the parser's
// attribute, or -1
func (p *Parser) invocation(r *reader, attrs []parsedAttr) (int, error) {
	index := -1
	for i, pa := range attrs {
		if pa.attr.Doc || pa.attr.Name != p.attribute {
			continue
		}
		if index >= 0 {
			return -1, errors.NewTraitSyntaxError(
				"trait is annotated with '"+p.attribute+"' more than once", pa.attr.Text, errors.SourceLocation{
					File:   r.file,
					Line:   pa.attr.Span.Line,
					Column: pa.attr.Span.Column,
					Offset: pa.attr.Span.Offset,
					Length: pa.attr.Span.Len(),
				})
		}
		index = i
	}
	return index, nil
}

func newReader(filename, source string) (*reader, error) {
	tokens, eof, err := token.Lex(filename, source)
	if err != nil {
		var lexErr *token.Error
		if stderrors.As(err, &lexErr) {
			return nil, errors.NewTraitSyntaxError(lexErr.Msg, "", errors.SourceLocation{
				File:   filename,
				Line:   lexErr.Pos.Line,
				Column: lexErr.Pos.Column,
				Offset: lexErr.Pos.Offset,
			})
		}
		return nil, err
	}
	return &reader{file: filename, src: source, s: token.NewStream(tokens, eof)}, nil
}
