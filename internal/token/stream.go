package token

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Stream is a cursor over a lexed token slice
type Stream struct {
	tokens []Token
	cursor int
	eof    Token
}

// NewStream creates a stream; eof is the position reported once the tokens run out
func NewStream(tokens []Token, eof lexer.Position) *Stream {
	return &Stream{
		tokens: tokens,
		eof:    Token{Kind: EOF, Pos: eof},
	}
}

// Peek returns the current token without consuming it
func (s *Stream) Peek() Token {
	return s.PeekN(0)
}

// PeekN returns the token n positions ahead of the cursor
func (s *Stream) PeekN(n int) Token {
	if s.cursor+n < len(s.tokens) {
		return s.tokens[s.cursor+n]
	}
	return s.eof
}

// Next consumes and returns the current token
func (s *Stream) Next() Token {
	tok := s.Peek()
	if s.cursor < len(s.tokens) {
		s.cursor++
	}
	return tok
}

// Accept consumes the current token if it is value
func (s *Stream) Accept(value string) bool {
	if s.Peek().Is(value) {
		s.cursor++
		return true
	}
	return false
}

// AtEOF reports whether all tokens were consumed
func (s *Stream) AtEOF() bool {
	return s.cursor >= len(s.tokens)
}

// Cursor returns the current index, usable with Reset
func (s *Stream) Cursor() int {
	return s.cursor
}

// Reset moves the cursor back to a saved index
func (s *Stream) Reset(cursor int) {
	s.cursor = cursor
}

// Previous returns the last consumed token
func (s *Stream) Previous() Token {
	if s.cursor == 0 || s.cursor > len(s.tokens) {
		return s.eof
	}
	return s.tokens[s.cursor-1]
}

// SkipGroup consumes a balanced delimited group starting at the cursor and
// returns its closing token. The returned bad token is the first one that
// breaks the nesting, or EOF if the group never closes.
func (s *Stream) SkipGroup() (closing Token, bad Token, ok bool) {
	open := s.Next()
	if !open.IsOpen() {
		return Token{}, open, false
	}

	stack := []string{closerOf(open.Value)}
	for len(stack) > 0 {
		tok := s.Next()
		switch {
		case tok.Kind == EOF:
			return Token{}, tok, false
		case tok.IsOpen():
			stack = append(stack, closerOf(tok.Value))
		case tok.IsClose():
			if tok.Value != stack[len(stack)-1] {
				return Token{}, tok, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return tok, Token{}, true
			}
		}
	}
	return Token{}, open, false
}

func closerOf(open string) string {
	switch open {
	case "(":
		return ")"
	case "[":
		return "]"
	default:
		return "}"
	}
}

// Slice returns the tokens in [from, to)
func (s *Stream) Slice(from, to int) []Token {
	if from < 0 {
		from = 0
	}
	if to > len(s.tokens) {
		to = len(s.tokens)
	}
	if from >= to {
		return nil
	}
	return s.tokens[from:to]
}
