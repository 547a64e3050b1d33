package models

// ImplBlock is the generated blanket implementation
type ImplBlock struct {
	Header *ImplHeader
	Items  []TraitItem // items with bodies, in trait order
	Indent string      // indentation of the annotated trait
}

// Expansion is the result of splitting one annotated trait
type Expansion struct {
	Trait    TraitDecl // the declaration with bodies stripped
	Impl     ImplBlock
	Warnings []string
}

// Invocation is one annotated trait found in a source file
type Invocation struct {
	Attr     Attribute  // the attribute carrying the header
	Argument string     // text between the attribute's parentheses
	ArgSpan  Span       // location of Argument
	Trait    *TraitDecl // the annotated trait
}

// SourceFile is a scanned source file and the invocations it contains
type SourceFile struct {
	Path        string
	Content     string
	Invocations []Invocation
}
