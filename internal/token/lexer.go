package token

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies a lexed token
type Kind int

const (
	EOF Kind = iota
	Whitespace
	Comment
	DocComment
	String
	Char
	Lifetime
	Number
	Ident
	Punct
	Delim
)

// String returns the lexer rule name of the kind
func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Whitespace:
		return "Whitespace"
	case Comment:
		return "Comment"
	case DocComment:
		return "DocComment"
	case String:
		return "String"
	case Char:
		return "Char"
	case Lifetime:
		return "Lifetime"
	case Number:
		return "Number"
	case Ident:
		return "Ident"
	case Punct:
		return "Punct"
	case Delim:
		return "Delim"
	default:
		return "Unknown"
	}
}

// rules are tried in order after the hand-scanned forms, so line comments
// come before punctuation and char literals come before lifetimes
var rules = []lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Comment", Pattern: `////[^\n]*|//(?:[^/!\n][^\n]*)?(?:\n|$)`},
	{Name: "DocComment", Pattern: `///[^\n]*|//![^\n]*`},
	{Name: "String", Pattern: `b?"(?:\\(?s:.)|[^"\\])*"`},
	{Name: "Char", Pattern: `b?'(?:\\(?:u\{[0-9a-fA-F]+\}|x[0-9a-fA-F]{2}|.)|[^\\'\n])'`},
	{Name: "Lifetime", Pattern: `'[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Number", Pattern: `[0-9][0-9a-zA-Z_]*(?:\.[0-9][0-9a-zA-Z_]*)?`},
	{Name: "Ident", Pattern: `r#[\p{L}_][\p{L}\p{N}_]*|[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Punct", Pattern: `::|->|=>|\.\.\.|\.\.=|\.\.|[-+*/%^!&|=<>@.,;:#$?~\\]`},
	{Name: "Delim", Pattern: `[(){}\[\]]`},
}

// Definition is the lexer shared by the header grammar and the trait front-end
var Definition lexer.Definition = newDefinition(rules)

// Elided lists the rules the parsers skip
var Elided = []string{"Whitespace", "Comment"}

var kinds = func() map[lexer.TokenType]Kind {
	byName := map[string]Kind{
		"Whitespace": Whitespace,
		"Comment":    Comment,
		"DocComment": DocComment,
		"String":     String,
		"Char":       Char,
		"Lifetime":   Lifetime,
		"Number":     Number,
		"Ident":      Ident,
		"Punct":      Punct,
		"Delim":      Delim,
	}
	out := make(map[lexer.TokenType]Kind, len(byName))
	for name, typ := range Definition.Symbols() {
		if kind, ok := byName[name]; ok {
			out[typ] = kind
		}
	}
	return out
}()

// Token is a single significant lexeme with its source position
type Token struct {
	Kind  Kind
	Value string
	Pos   lexer.Position
}

// End returns the byte offset just past the token
func (t Token) End() int {
	return t.Pos.Offset + len(t.Value)
}

// Is reports whether the token is a non-literal with the given text
func (t Token) Is(value string) bool {
	switch t.Kind {
	case Ident, Punct, Delim:
		return t.Value == value
	}
	return false
}

// IsOpen reports whether the token opens a delimited group
func (t Token) IsOpen() bool {
	return t.Kind == Delim && (t.Value == "(" || t.Value == "[" || t.Value == "{")
}

// IsClose reports whether the token closes a delimited group
func (t Token) IsClose() bool {
	return t.Kind == Delim && (t.Value == ")" || t.Value == "]" || t.Value == "}")
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Value)
}

// Error is a lexing failure at a position
type Error struct {
	Msg string
	Pos lexer.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Lex tokenizes src, dropping whitespace and regular comments. Doc comments are
// kept since they are attributes.
func Lex(filename, src string) ([]Token, lexer.Position, error) {
	lex, err := Definition.Lex(filename, strings.NewReader(src))
	if err != nil {
		return nil, lexer.Position{}, &Error{Msg: err.Error(), Pos: lexer.Position{Filename: filename, Line: 1, Column: 1}}
	}

	var tokens []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, lexer.Position{}, &Error{Msg: messageOf(err), Pos: positionOf(err, filename)}
		}
		if tok.EOF() {
			return tokens, tok.Pos, nil
		}
		kind := kinds[tok.Type]
		if kind == Whitespace || kind == Comment {
			continue
		}
		tokens = append(tokens, Token{Kind: kind, Value: tok.Value, Pos: tok.Pos})
	}
}

func messageOf(err error) string {
	if m, ok := err.(interface{ Message() string }); ok {
		return m.Message()
	}
	return err.Error()
}

func positionOf(err error, filename string) lexer.Position {
	if located, ok := err.(interface{ Position() lexer.Position }); ok {
		return located.Position()
	}
	return lexer.Position{Filename: filename, Line: 1, Column: 1}
}
