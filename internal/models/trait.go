package models

import "strings"

// ItemKind classifies trait items
type ItemKind int

const (
	MethodItem ItemKind = iota
	TypeItem
	ConstItem
	MacroItem
)

// String returns the string representation of the item kind
func (k ItemKind) String() string {
	switch k {
	case MethodItem:
		return "fn"
	case TypeItem:
		return "type"
	case ConstItem:
		return "const"
	case MacroItem:
		return "macro"
	default:
		return "unknown"
	}
}

// Attribute is an outer attribute or doc comment as written
type Attribute struct {
	Text string // verbatim, e.g. #[inline] or /// docs
	Name string // last path segment for #[...] attributes, empty for doc comments
	Doc  bool   // doc comment or #[doc = ...]
	Span Span
}

// TraitItem is one item in a trait body. All text fields are verbatim slices
// of the source so items can be re-emitted without reformatting.
type TraitItem struct {
	Kind    ItemKind
	Name    string
	Attrs   []Attribute
	Leading string // source between the previous item (or the opening brace) and this item
	Indent  string // whitespace preceding the item on its first line
	Head    string // from the first attribute to the end of the signature
	Decl    string // from the first non-attribute token to the end of the signature
	Body    string // fn: the "{...}" block; type/const: the default value
	Text    string // from the first non-attribute token to the end of the item
	Source  string // the whole item including attributes
	Span    Span
}

// HasBody reports whether the item is a method with a default body
func (i TraitItem) HasBody() bool {
	return i.Kind == MethodItem && i.Body != ""
}

// HasDefault reports whether the item is an associated type or const with a default
func (i TraitItem) HasDefault() bool {
	return (i.Kind == TypeItem || i.Kind == ConstItem) && i.Body != ""
}

// Signature returns the declaration with whitespace normalised
func (i TraitItem) Signature() string {
	return strings.Join(strings.Fields(i.Decl), " ")
}

// TraitDecl is a trait declaration as read from source
type TraitDecl struct {
	Name        string
	Visibility  string      // "", "pub", "pub(crate)", ...
	Unsafe      bool
	Auto        bool
	Generics    string      // "<...>" as written
	Supertraits string      // bounds after ':' as written
	Where       string      // "where ..." as written
	Attrs       []Attribute // outer attributes other than the invocation
	Prefix      string      // attribute region as written, with the invocation removed
	Head        string      // from the visibility to the opening brace inclusive
	Indent      string      // whitespace before the trait on its first line
	Items       []TraitItem
	Trailing    string // source between the last item and the closing brace
	Span        Span   // from the first attribute to the closing brace
	NameSpan    Span
}

// Methods returns the method items in source order
func (t *TraitDecl) Methods() []TraitItem {
	var out []TraitItem
	for _, item := range t.Items {
		if item.Kind == MethodItem {
			out = append(out, item)
		}
	}
	return out
}

// Item returns the first item with the given name
func (t *TraitDecl) Item(name string) (TraitItem, bool) {
	for _, item := range t.Items {
		if item.Name == name {
			return item, true
		}
	}
	return TraitItem{}, false
}
