package errors

import (
	"fmt"
	"strings"
)

// HeaderSyntaxError is raised when the attribute argument does not match
// `impl<..> Trait for T where ..`
type HeaderSyntaxError struct {
	*BaseError
	Unexpected string // offending token text, empty at end of input
	Expected   string // what the grammar wanted, if known
}

// NewHeaderSyntaxError creates a header syntax error at loc
func NewHeaderSyntaxError(message string, loc SourceLocation) *HeaderSyntaxError {
	err := &HeaderSyntaxError{
		BaseError: New(HeaderSyntaxErrorCode, message),
	}
	err.WithLocation(loc)
	err.WithSuggestion(headerSuggestion(message))
	return err
}

// Error returns the located message. The cause is a grammar error positioned
// within the attribute argument and is only shown as a cause.
func (e *HeaderSyntaxError) Error() string {
	if e.Loc.IsEmpty() {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Loc.String(), e.Message)
}

// WithTokens records the offending and expected tokens
func (e *HeaderSyntaxError) WithTokens(unexpected, expected string) *HeaderSyntaxError {
	e.Unexpected = unexpected
	e.Expected = expected
	return e
}

// TraitNameMismatchError is raised when the header implements a different
// trait than the one it annotates
type TraitNameMismatchError struct {
	*BaseError
	HeaderTrait    string // final path segment named in the header
	AnnotatedTrait string // name of the annotated trait
}

// NewTraitNameMismatchError creates a mismatch error located at the header path
func NewTraitNameMismatchError(headerTrait, annotatedTrait string, loc SourceLocation) *TraitNameMismatchError {
	err := &TraitNameMismatchError{
		BaseError: Newf(TraitNameMismatchErrorCode,
			"header implements trait '%s' but the annotated trait is '%s'", headerTrait, annotatedTrait),
		HeaderTrait:    headerTrait,
		AnnotatedTrait: annotatedTrait,
	}
	err.WithLocation(loc)
	err.WithSuggestion(fmt.Sprintf("Use `impl<...> %s for T` in the attribute", annotatedTrait))
	return err
}

// TraitSyntaxError is raised when the annotated item cannot be read as a trait
type TraitSyntaxError struct {
	*BaseError
	Unexpected string
}

// NewTraitSyntaxError creates a trait syntax error at loc
func NewTraitSyntaxError(message, unexpected string, loc SourceLocation) *TraitSyntaxError {
	err := &TraitSyntaxError{
		BaseError:  New(TraitSyntaxErrorCode, message),
		Unexpected: unexpected,
	}
	err.WithLocation(loc)
	if strings.Contains(message, "expected 'trait'") {
		err.WithSuggestion("The attribute can only be applied to trait declarations")
	}
	return err
}

// UnboundTypeParamError is raised in strict mode when the self type of the
// header is not one of its generic parameters
type UnboundTypeParamError struct {
	*BaseError
	Param string
}

// NewUnboundTypeParamError creates an unbound parameter error at loc
func NewUnboundTypeParamError(param string, declared []string, loc SourceLocation) *UnboundTypeParamError {
	err := &UnboundTypeParamError{
		BaseError: Newf(UnboundTypeParamErrorCode, "type parameter '%s' is not declared in the impl generics", param),
		Param:     param,
	}
	err.WithLocation(loc)
	err.WithContext("declared", declared)
	err.WithSuggestion(fmt.Sprintf("Declare it: impl<%s: Bound> Trait for %s", param, param))
	return err
}

// headerSuggestion maps common header mistakes to a hint
func headerSuggestion(msg string) string {
	msg = strings.ToLower(msg)

	switch {
	case strings.Contains(msg, `"for"`):
		return "Header format: impl<T: Bound> TraitName for T [where ...]"
	case strings.Contains(msg, `"impl"`):
		return "The attribute argument must start with `impl`"
	case strings.Contains(msg, `">"`) || strings.Contains(msg, `"<"`):
		return "Check that the generic parameter list is closed with '>'"
	case strings.Contains(msg, "unexpected token"):
		return "The implementing type must be a single type parameter, optionally followed by a where clause"
	default:
		return "Header format: impl<T: Bound> TraitName for T [where ...]"
	}
}
