package models

// GenericKind distinguishes the kinds of generic parameters
type GenericKind int

const (
	TypeParam GenericKind = iota
	LifetimeParam
	ConstParam
)

// String returns the string representation of the generic kind
func (k GenericKind) String() string {
	switch k {
	case TypeParam:
		return "type"
	case LifetimeParam:
		return "lifetime"
	case ConstParam:
		return "const"
	default:
		return "unknown"
	}
}

// GenericParam is one entry of an impl generic parameter list
type GenericParam struct {
	Kind    GenericKind // type, lifetime or const
	Name    string      // T, 'a or N
	Bounds  []string    // verbatim bounds, or the type of a const parameter
	Default string      // verbatim default after '=', if any
	Text    string      // the whole parameter as written
}

// WherePredicate is one comma-separated clause of a where clause
type WherePredicate struct {
	Bounded string   // the constrained type or lifetime
	Bounds  []string // verbatim bounds
	Text    string   // the whole predicate as written
}

// ImplHeader is the parsed attribute argument `impl<..> Trait for T where ..`
type ImplHeader struct {
	Attrs        []string         // outer attributes placed on the generated impl
	Unsafe       bool             // `unsafe impl`
	Generics     []GenericParam   // parameters in declaration order
	GenericsText string           // "<...>" as written, empty when absent
	TraitPath    string           // trait reference as written, e.g. crate::Erased
	TraitName    string           // final path segment identifier
	SelfType     string           // the bound type parameter after `for`
	Where        []WherePredicate // predicates in declaration order
	WhereText    string           // "where ..." as written, empty when absent
	Span         Span             // the whole argument
	PathSpan     Span             // the trait reference
	SelfSpan     Span             // the self type identifier
}

// TypeParams returns the names of the declared type parameters
func (h *ImplHeader) TypeParams() []string {
	var names []string
	for _, p := range h.Generics {
		if p.Kind == TypeParam {
			names = append(names, p.Name)
		}
	}
	return names
}

// HasTypeParam reports whether name is a declared type parameter
func (h *ImplHeader) HasTypeParam(name string) bool {
	for _, p := range h.Generics {
		if p.Kind == TypeParam && p.Name == name {
			return true
		}
	}
	return false
}
