package token

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// definition is a participle lexer. Block comments nest and raw strings are
// fenced by a matching number of hashes; neither is regular, so both are
// scanned by hand before the rules are tried.
type definition struct {
	symbols map[string]lexer.TokenType
	rules   []compiledRule
}

type compiledRule struct {
	typ lexer.TokenType
	re  *regexp.Regexp
}

func newDefinition(rules []lexer.SimpleRule) *definition {
	d := &definition{symbols: map[string]lexer.TokenType{"EOF": lexer.EOF}}
	for i, rule := range rules {
		typ := lexer.EOF - 1 - lexer.TokenType(i)
		d.symbols[rule.Name] = typ
		d.rules = append(d.rules, compiledRule{
			typ: typ,
			re:  regexp.MustCompile(`^(?:` + rule.Pattern + `)`),
		})
	}
	return d
}

func (d *definition) Symbols() map[string]lexer.TokenType {
	return d.symbols
}

func (d *definition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return d.LexString(filename, string(data))
}

func (d *definition) LexString(filename, input string) (lexer.Lexer, error) {
	return &rustLexer{
		def: d,
		src: input,
		pos: lexer.Position{Filename: filename, Line: 1, Column: 1},
	}, nil
}

type rustLexer struct {
	def *definition
	src string
	pos lexer.Position
}

func (l *rustLexer) Next() (lexer.Token, error) {
	rest := l.src[l.pos.Offset:]
	if rest == "" {
		return lexer.Token{Type: lexer.EOF, Pos: l.pos}, nil
	}

	n, doc, closed := blockComment(rest)
	if !closed {
		return lexer.Token{}, &lexer.Error{Msg: "unterminated block comment", Pos: l.pos}
	}
	if n > 0 {
		if doc {
			return l.emit("DocComment", n), nil
		}
		return l.emit("Comment", n), nil
	}

	n, closed = rawString(rest)
	if !closed {
		return lexer.Token{}, &lexer.Error{Msg: "unterminated raw string", Pos: l.pos}
	}
	if n > 0 {
		return l.emit("String", n), nil
	}

	for _, rule := range l.def.rules {
		if m := rule.re.FindStringIndex(rest); m != nil && m[1] > 0 {
			return l.emitType(rule.typ, m[1]), nil
		}
	}
	return lexer.Token{}, &lexer.Error{Msg: fmt.Sprintf("invalid input text %q", excerpt(rest)), Pos: l.pos}
}

func (l *rustLexer) emit(name string, n int) lexer.Token {
	return l.emitType(l.def.symbols[name], n)
}

func (l *rustLexer) emitType(typ lexer.TokenType, n int) lexer.Token {
	value := l.src[l.pos.Offset : l.pos.Offset+n]
	tok := lexer.Token{Type: typ, Value: value, Pos: l.pos}
	advance(&l.pos, value)
	return tok
}

// advance moves pos past text. Columns count runes.
func advance(pos *lexer.Position, text string) {
	pos.Offset += len(text)
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		pos.Line += strings.Count(text, "\n")
		pos.Column = utf8.RuneCountInString(text[i+1:]) + 1
		return
	}
	pos.Column += utf8.RuneCountInString(text)
}

// blockComment returns the length of the block comment that starts src, or
// 0 when src does not start one. closed is false for an unterminated comment.
func blockComment(src string) (n int, doc, closed bool) {
	if !strings.HasPrefix(src, "/*") {
		return 0, false, true
	}

	depth := 0
	for i := 0; i+1 < len(src); {
		switch {
		case src[i] == '/' && src[i+1] == '*':
			depth++
			i += 2
		case src[i] == '*' && src[i+1] == '/':
			depth--
			i += 2
			if depth == 0 {
				return i, isDocBlock(src[:i]), true
			}
		default:
			i++
		}
	}
	return 0, false, false
}

// isDocBlock reports whether a block comment is `/** */` or `/*! */`.
// `/**/` and `/*** */` are plain comments.
func isDocBlock(comment string) bool {
	if strings.HasPrefix(comment, "/*!") {
		return true
	}
	return strings.HasPrefix(comment, "/**") && !strings.HasPrefix(comment, "/***") && comment != "/**/"
}

// rawString returns the length of the raw string literal (`r"…"`,
// `r#"…"#`, `br##"…"##`, ...) that starts src, or 0 when src does not start
// one. closed is false when the closing fence is missing.
func rawString(src string) (n int, closed bool) {
	i := 0
	switch {
	case strings.HasPrefix(src, "br"):
		i = 2
	case strings.HasPrefix(src, "r"):
		i = 1
	default:
		return 0, true
	}

	hashes := 0
	for i < len(src) && src[i] == '#' {
		hashes++
		i++
	}
	if i >= len(src) || src[i] != '"' {
		return 0, true
	}

	fence := `"` + strings.Repeat("#", hashes)
	end := strings.Index(src[i+1:], fence)
	if end < 0 {
		return 0, false
	}
	return i + 1 + end + len(fence), true
}

func excerpt(s string) string {
	const limit = 16
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "…"
}
