package header

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// headerAST is the root of an attribute argument:
//
//	#[attr]* unsafe? impl <generics>? path for Ident where-clause?
type headerAST struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Attrs    []*attrAST   `@@*`
	Unsafe   bool         `@"unsafe"?`
	Generics *genericsAST `"impl" @@?`
	Trait    *pathAST     `@@`
	Self     *identAST    `"for" @@`
	Where    *whereAST    `@@?`
}

type attrAST struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Body []*treeAST `"#" "[" @@* "]"`
}

type identAST struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name string `@Ident`
}

type genericsAST struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Params []*paramAST `"<" ( @@ ( "," @@ )* ","? )? ">"`
}

type paramAST struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Lifetime string          `(   @Lifetime`
	Const    string          `  | "const" @Ident`
	Name     string          `  | @Ident )`
	Bounds   []*boundAST     `( ":" ( @@ ( "+" @@ )* "+"? )? )?`
	Default  []*boundPartAST `( "=" @@+ )?`
}

type boundAST struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Parts []*boundPartAST `@@+`
}

// boundPartAST is a token or group inside a bound; it stops at the
// separators that end a bound at the current nesting level.
type boundPartAST struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Angle   []*angleAST `(   "<" @@* ">"`
	Paren   []*treeAST  `  | "(" @@* ")"`
	Bracket []*treeAST  `  | "[" @@* "]"`
	Token   string      `  | @!( "(" | ")" | "[" | "]" | "{" | "}" | "<" | ">" | "," | "+" | "=" | ":" | ";" ) )`
}

type pathAST struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Global   bool          `@"::"?`
	Segments []*segmentAST `@@ ( "::" @@ )*`
}

type segmentAST struct {
	Name string      `@Ident`
	Args []*angleAST `( "<" @@* ">" )?`
}

type whereAST struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Predicates []*predicateAST `"where" ( @@ ( "," @@ )* ","? )?`
}

type predicateAST struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Bounded []*boundPartAST `@@+`
	Bounds  []*boundAST     `":" ( @@ ( "+" @@ )* "+"? )?`
}

// angleAST is anything inside <...>, where commas and braces are allowed
type angleAST struct {
	Angle   []*angleAST `(   "<" @@* ">"`
	Paren   []*treeAST  `  | "(" @@* ")"`
	Bracket []*treeAST  `  | "[" @@* "]"`
	Brace   []*treeAST  `  | "{" @@* "}"`
	Token   string      `  | @!( "(" | ")" | "[" | "]" | "{" | "}" | "<" | ">" ) )`
}

// treeAST is a balanced token tree
type treeAST struct {
	Paren   []*treeAST `(   "(" @@* ")"`
	Bracket []*treeAST `  | "[" @@* "]"`
	Brace   []*treeAST `  | "{" @@* "}"`
	Token   string     `  | @!( "(" | ")" | "[" | "]" | "{" | "}" ) )`
}
