package models

import "fmt"

// Span locates a range of source text
type Span struct {
	File   string // file path, empty for in-memory input
	Line   int    // line of the first character (1-based)
	Column int    // column of the first character (1-based)
	Offset int    // byte offset of the first character
	End    int    // byte offset just past the last character
}

// Len returns the number of bytes covered by the span
func (s Span) Len() int {
	return s.End - s.Offset
}

// Text returns the spanned slice of src
func (s Span) Text(src string) string {
	if s.Offset < 0 || s.End > len(src) || s.Offset > s.End {
		return ""
	}
	return src[s.Offset:s.End]
}

func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}
