package generator

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/header"
	"github.com/toyz/blanket/internal/models"
	"github.com/toyz/blanket/internal/parser"
	"github.com/toyz/blanket/internal/token"
)

func expandSource(t *testing.T, options Options, source string) (string, []string, error) {
	t.Helper()
	file, err := parser.NewParser().ParseSource("lib.rs", source)
	require.NoError(t, err)
	return NewGenerator(options).ExpandFile(file)
}

func parseTrait(t *testing.T, source string) *models.TraitDecl {
	t.Helper()
	trait, err := parser.NewParser().ParseTrait("", source)
	require.NoError(t, err)
	return trait
}

func parseHeader(t *testing.T, argument string) *models.ImplHeader {
	t.Helper()
	h, err := header.Parse(argument)
	require.NoError(t, err)
	return h
}

func tokenValues(t *testing.T, source string) []string {
	t.Helper()
	tokens, _, err := token.Lex("", source)
	require.NoError(t, err)
	values := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		values = append(values, tok.Value)
	}
	return values
}

func TestExpandFile(t *testing.T) {
	tests := []struct {
		name     string
		options  Options
		source   string
		expected string
	}{
		{
			name: "erased marker",
			source: `trait Marker {}

#[blanket_trait(impl<T: Marker> Erased for T)]
pub trait Erased {
    fn name(&self) -> &str {
        "erased"
    }
}
`,
			expected: `trait Marker {}

pub trait Erased {
    fn name(&self) -> &str;
}

impl<T: Marker> Erased for T {
    fn name(&self) -> &str {
        "erased"
    }
}
`,
		},
		{
			name: "static call through the bound",
			source: `#[blanket_trait(impl<T: A> B for T)]
pub trait B {
    fn a(&self) -> i32 {
        T::a()
    }
}`,
			expected: `pub trait B {
    fn a(&self) -> i32;
}

impl<T: A> B for T {
    fn a(&self) -> i32 {
        T::a()
    }
}`,
		},
		{
			name: "where clause on the impl",
			source: `#[blanket_trait(impl<T: A> C for T where T::AA: Send)]
pub trait C {
    fn a(&self) -> i32 {
        self.aa()
    }
}`,
			expected: `pub trait C {
    fn a(&self) -> i32;
}

impl<T: A> C for T where T::AA: Send {
    fn a(&self) -> i32 {
        self.aa()
    }
}`,
		},
		{
			name: "associated type default stays on the declaration",
			source: `#[blanket_trait(impl<T: A> D for T where T::AA: Send)]
pub trait D {
    type X = T::AA;
    fn a(&self) -> i32 {
        self.aa()
    }
}`,
			expected: `pub trait D {
    type X = T::AA;
    fn a(&self) -> i32;
}

impl<T: A> D for T where T::AA: Send {
    fn a(&self) -> i32 {
        self.aa()
    }
}`,
		},
		{
			name:    "associated type default moved",
			options: Options{MoveDefaults: true},
			source: `#[blanket_trait(impl<T: A> D for T where T::AA: Send)]
pub trait D {
    type X: Send = T::AA;
    const N: usize = 4;
    fn a(&self) -> i32 {
        self.aa()
    }
}`,
			expected: `pub trait D {
    type X: Send;
    const N: usize;
    fn a(&self) -> i32;
}

impl<T: A> D for T where T::AA: Send {
    type X = T::AA;

    const N: usize = 4;

    fn a(&self) -> i32 {
        self.aa()
    }
}`,
		},
		{
			name: "impl trait return",
			source: `#[blanket_trait(impl<T: X> Y for T)]
pub trait Y {
    fn b(&mut self) -> impl Future<Output = i32> {
        X::a(self)
    }
}`,
			expected: `pub trait Y {
    fn b(&mut self) -> impl Future<Output = i32>;
}

impl<T: X> Y for T {
    fn b(&mut self) -> impl Future<Output = i32> {
        X::a(self)
    }
}`,
		},
		{
			name: "nested in a module",
			source: `mod inner {
    /// Erased view.
    #[blanket_trait(impl<T: A> B for T)]
    pub trait B {
        fn a(&self) -> i32 {
            T::a()
        }
    }
}`,
			expected: `mod inner {
    /// Erased view.
    pub trait B {
        fn a(&self) -> i32;
    }

    impl<T: A> B for T {
        fn a(&self) -> i32 {
            T::a()
        }
    }
}`,
		},
		{
			name:   "single line trait",
			source: `#[blanket_trait(impl<T> E for T)] trait E { fn f(&self) {} }`,
			expected: `trait E { fn f(&self); }

impl<T> E for T {
    fn f(&self) {}
}`,
		},
		{
			name: "item attributes stay on the declaration",
			source: `#[blanket_trait(impl<T: Clone> Dup for T)]
trait Dup {
    /// Clones twice.
    #[must_use]
    fn dup(&self) -> (Self, Self) where Self: Sized {
        (self.clone(), self.clone())
    }
}`,
			expected: `trait Dup {
    /// Clones twice.
    #[must_use]
    fn dup(&self) -> (Self, Self) where Self: Sized;
}

impl<T: Clone> Dup for T {
    fn dup(&self) -> (Self, Self) where Self: Sized {
        (self.clone(), self.clone())
    }
}`,
		},
		{
			name:    "item attributes copied",
			options: Options{CopyItemAttrs: true},
			source: `#[blanket_trait(impl<T: Clone> Dup for T)]
trait Dup {
    #[must_use]
    fn dup(&self) -> Self {
        self.clone()
    }
}`,
			expected: `trait Dup {
    #[must_use]
    fn dup(&self) -> Self;
}

impl<T: Clone> Dup for T {
    #[must_use]
    fn dup(&self) -> Self {
        self.clone()
    }
}`,
		},
		{
			name: "nested block comment before a method",
			source: `#[blanket_trait(impl<T> Foo for T)]
trait Foo {
    /* outer /* inner */ } */
    fn f(&self) {}
}`,
			expected: `trait Foo {
    /* outer /* inner */ } */
    fn f(&self);
}

impl<T> Foo for T {
    fn f(&self) {}
}`,
		},
		{
			name:     "braces inside nested comments and fenced raw strings",
			source:   "#[blanket_trait(impl<T> Foo for T)]\ntrait Foo {\n    fn f(&self) -> &str {\n        /* { /* } */ */\n        r##\"a\"}\"##\n    }\n}",
			expected: "trait Foo {\n    fn f(&self) -> &str;\n}\n\nimpl<T> Foo for T {\n    fn f(&self) -> &str {\n        /* { /* } */ */\n        r##\"a\"}\"##\n    }\n}",
		},
		{
			name: "header attributes and unsafe",
			source: `#[blanket_trait(#[cfg(feature = "std")] unsafe impl<T: Send> Shared for T)]
unsafe trait Shared {}`,
			expected: `unsafe trait Shared {}

#[cfg(feature = "std")]
unsafe impl<T: Send> Shared for T {}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := expandSource(t, tt.options, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestErasedRoundTripTokens(t *testing.T) {
	out, warnings, err := expandSource(t, Options{}, `#[blanket_trait(impl<T: Marker> Erased for T)]
trait Erased {
    fn name(&self) -> &str { T::NAME }
}`)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	want := tokenValues(t, `trait Erased { fn name(&self) -> &str; }
impl<T: Marker> Erased for T { fn name(&self) -> &str { T::NAME } }`)
	if diff := cmp.Diff(want, tokenValues(t, out)); diff != "" {
		t.Errorf("expansion tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitSignaturesAndOrder(t *testing.T) {
	trait := parseTrait(t, `pub trait Mixed: Clone {
    fn first(&self) -> u8 { 1 }
    fn required(&self);
    type Out;
    fn second<U>(&self, u: U) -> Vec<U> where U: Copy { vec![u] }
    const N: usize = 2;
    my_macro!();
    fn third(self: Box<Self>) {}
}`)
	h := parseHeader(t, "impl<T: Clone> Mixed for T")

	exp, err := Split(trait, h)
	require.NoError(t, err)

	var bodied []string
	for _, item := range trait.Items {
		if item.HasBody() {
			bodied = append(bodied, item.Signature())
		}
	}

	var declared, implemented []string
	for _, item := range exp.Trait.Items {
		if item.Kind == models.MethodItem && item.Name != "required" {
			declared = append(declared, item.Signature())
			assert.Empty(t, item.Body)
			assert.Equal(t, item.Decl+";", item.Text)
		}
	}
	for _, item := range exp.Impl.Items {
		implemented = append(implemented, item.Signature())
		assert.NotEmpty(t, item.Body)
	}

	assert.Equal(t, []string{
		"fn first(&self) -> u8",
		"fn second<U>(&self, u: U) -> Vec<U> where U: Copy",
		"fn third(self: Box<Self>)",
	}, bodied)
	assert.Equal(t, bodied, declared)
	assert.Equal(t, bodied, implemented)

	// every other item is carried to the declaration untouched and left out of the impl
	require.Len(t, exp.Trait.Items, len(trait.Items))
	for i, item := range trait.Items {
		if item.HasBody() {
			continue
		}
		assert.Equal(t, item, exp.Trait.Items[i])
		_, inImpl := findItem(exp.Impl.Items, item.Name)
		assert.False(t, inImpl, "%s should not be in the impl", item.Name)
	}

	// the input trait is unchanged
	first, _ := trait.Item("first")
	assert.Equal(t, "{ 1 }", first.Body)
}

func findItem(items []models.TraitItem, name string) (models.TraitItem, bool) {
	for _, item := range items {
		if item.Name == name {
			return item, true
		}
	}
	return models.TraitItem{}, false
}

func TestSplitAssociatedTypesOnly(t *testing.T) {
	trait := parseTrait(t, "trait Types {\n    type Out;\n    const N: usize = 3;\n}")
	exp, err := Split(trait, parseHeader(t, "impl<T: A> Types for T"))
	require.NoError(t, err)

	assert.Empty(t, exp.Impl.Items)
	assert.Equal(t, trait.Items, exp.Trait.Items)

	out, err := NewGenerator(Options{}).Render(exp)
	require.NoError(t, err)
	assert.Equal(t, "trait Types {\n    type Out;\n    const N: usize = 3;\n}\n\nimpl<T: A> Types for T {}", out)
}

func TestSplitTraitNameMismatch(t *testing.T) {
	out, warnings, err := expandSource(t, Options{}, "#[blanket_trait(impl<T> Bar for T)]\ntrait Foo {\n    fn f(&self) {}\n}\n")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Nil(t, warnings)

	var mismatch *errors.TraitNameMismatchError
	require.True(t, stderrors.As(err, &mismatch))
	assert.Equal(t, "Bar", mismatch.HeaderTrait)
	assert.Equal(t, "Foo", mismatch.AnnotatedTrait)
	assert.Equal(t, "lib.rs", mismatch.Location().File)
	assert.Equal(t, 1, mismatch.Location().Line)
	assert.Equal(t, 25, mismatch.Location().Column)
}

func TestExpandHeaderSyntaxError(t *testing.T) {
	out, _, err := expandSource(t, Options{}, "#[blanket_trait(impl T Erased)]\ntrait Erased {}\n")
	require.Error(t, err)
	assert.Empty(t, out)

	var hse *errors.HeaderSyntaxError
	require.True(t, stderrors.As(err, &hse))
	assert.Equal(t, "Erased", hse.Unexpected)
	assert.Equal(t, 1, hse.Location().Line)
	assert.Equal(t, 24, hse.Location().Column)
}

func TestExpandEmptyHeaderLocation(t *testing.T) {
	source := strings.Repeat("\n", 9) + "#[blanket_trait()]\ntrait Foo {}\n"
	_, _, err := expandSource(t, Options{}, source)

	var hse *errors.HeaderSyntaxError
	require.True(t, stderrors.As(err, &hse))
	assert.Equal(t, "lib.rs:10:17", hse.Location().String())
	assert.Equal(t, 25, hse.Location().Offset)
}

func TestExpandFileCollectsAllFailures(t *testing.T) {
	source := `#[blanket_trait(impl<T> Bar for T)]
trait Foo {}

#[blanket_trait(impl<T> Good for T)]
trait Good { fn f(&self) {} }

#[blanket_trait(impl T Erased)]
trait Erased {}
`
	out, _, err := expandSource(t, Options{}, source)
	require.Error(t, err)
	assert.Empty(t, out)

	var multi *errors.MultipleErrors
	require.True(t, stderrors.As(err, &multi))
	assert.Equal(t, 2, multi.Count())
	assert.True(t, multi.HasCode(errors.TraitNameMismatchErrorCode))
	assert.True(t, multi.HasCode(errors.HeaderSyntaxErrorCode))
}

func TestExpandFileMultipleInvocations(t *testing.T) {
	source := `#[blanket_trait(impl<T: A> B for T)]
trait B { fn b(&self) {} }

struct Between;

#[blanket_trait(impl<T: A> C for T)]
trait C { fn c(&self) {} }
`
	out, _, err := expandSource(t, Options{}, source)
	require.NoError(t, err)
	assert.Equal(t, `trait B { fn b(&self); }

impl<T: A> B for T {
    fn b(&self) {}
}

struct Between;

trait C { fn c(&self); }

impl<T: A> C for T {
    fn c(&self) {}
}
`, out)
}

func TestSplitUnboundSelfType(t *testing.T) {
	trait := parseTrait(t, "trait B { fn b(&self) {} }")
	h := parseHeader(t, "impl<U: A> B for T")

	exp, err := NewGenerator(Options{}).Split(trait, h)
	require.NoError(t, err)
	require.Len(t, exp.Warnings, 1)
	assert.Contains(t, exp.Warnings[0], "'T' is not declared")

	exp, err = NewGenerator(Options{Strict: true}).Split(trait, h)
	assert.Nil(t, exp)
	var unbound *errors.UnboundTypeParamError
	require.True(t, stderrors.As(err, &unbound))
}

func TestExpandFileWarnings(t *testing.T) {
	_, warnings, err := expandSource(t, Options{}, "#[blanket_trait(impl<U> B for T)]\ntrait B {}\n")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "lib.rs:1:")
}

func TestExpandFileWithoutInvocations(t *testing.T) {
	source := "fn main() {}\n"
	out, warnings, err := expandSource(t, Options{}, source)
	require.NoError(t, err)
	assert.Equal(t, source, out)
	assert.Empty(t, warnings)
}

func TestTypeAlias(t *testing.T) {
	tests := []struct {
		decl     string
		name     string
		expected string
	}{
		{"type Out", "Out", "type Out"},
		{"type Out: Clone + Send", "Out", "type Out"},
		{"type Item<'a>: Iterator where Self: 'a", "Item", "type Item<'a>"},
		{"type F<G: Fn() -> u8>: Send", "F", "type F<G: Fn() -> u8>"},
		{"type ty", "ty", "type ty"},
	}

	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			assert.Equal(t, tt.expected, typeAlias(models.TraitItem{Kind: models.TypeItem, Name: tt.name, Decl: tt.decl}))
		})
	}
}
