package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLocation_String(t *testing.T) {
	tests := []struct {
		name     string
		loc      SourceLocation
		expected string
	}{
		{name: "empty", loc: SourceLocation{}, expected: "unknown location"},
		{name: "file only", loc: SourceLocation{File: "lib.rs"}, expected: "lib.rs"},
		{name: "line", loc: SourceLocation{File: "lib.rs", Line: 3}, expected: "lib.rs:3"},
		{name: "full", loc: SourceLocation{File: "lib.rs", Line: 3, Column: 7}, expected: "lib.rs:3:7"},
		{name: "no file", loc: SourceLocation{Line: 1, Column: 2}, expected: "<input>:1:2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.loc.String())
		})
	}
}

func TestBaseError(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := WrapFileSystemError("read", "src/lib.rs", cause)

	assert.Equal(t, "failed to read file 'src/lib.rs': permission denied", err.Error())
	assert.Equal(t, FileSystemErrorCode, err.ErrorCode())
	assert.Equal(t, "read", err.Context()["operation"])
	assert.True(t, stderrors.Is(err, cause))

	err.WithLocation(SourceLocation{File: "src/lib.rs", Line: 2, Column: 1})
	assert.Equal(t, "src/lib.rs:2:1: failed to read file 'src/lib.rs': permission denied", err.Error())

	err.WithSuggestions("Check permissions", "Run as another user")
	assert.Len(t, err.Suggestions(), 2)

	assert.NotNil(t, New(UnknownErrorCode, "x").Context())
}

func TestExpansionErrors(t *testing.T) {
	loc := SourceLocation{File: "lib.rs", Line: 1, Column: 24, Length: 6}

	t.Run("header syntax", func(t *testing.T) {
		err := NewHeaderSyntaxError(`unexpected token "Erased" (expected "for")`, loc).WithTokens("Erased", `"for"`)
		assert.Equal(t, HeaderSyntaxErrorCode, err.ErrorCode())
		assert.Equal(t, "Erased", err.Unexpected)
		assert.Equal(t, loc, err.Location())
		require.NotEmpty(t, err.Suggestions())
		assert.Contains(t, err.Suggestions()[0], "for T")

		var coded BlanketError = err
		assert.Equal(t, "HeaderSyntaxError", coded.ErrorCode().String())
	})

	t.Run("trait name mismatch", func(t *testing.T) {
		err := NewTraitNameMismatchError("Bar", "Foo", loc)
		assert.Equal(t, "lib.rs:1:24: header implements trait 'Bar' but the annotated trait is 'Foo'", err.Error())
		assert.Contains(t, err.Suggestions()[0], "Foo")
	})

	t.Run("trait syntax", func(t *testing.T) {
		err := NewTraitSyntaxError("expected 'trait', found 'struct'", "struct", loc)
		assert.Equal(t, "struct", err.Unexpected)
		assert.Len(t, err.Suggestions(), 1)

		assert.Empty(t, NewTraitSyntaxError("unexpected end of input", "", loc).Suggestions())
	})

	t.Run("unbound type parameter", func(t *testing.T) {
		err := NewUnboundTypeParamError("T", []string{"U"}, loc)
		assert.Equal(t, "T", err.Param)
		assert.Equal(t, []string{"U"}, err.Context()["declared"])
	})
}

func TestMultipleErrors(t *testing.T) {
	multi := NewMultipleErrors()
	assert.Nil(t, multi.ErrorOrNil())
	assert.Equal(t, "no errors", multi.Error())

	mismatch := NewTraitNameMismatchError("Bar", "Foo", SourceLocation{File: "a.rs", Line: 1})
	multi.Add(mismatch)
	multi.Add(nil)
	assert.Equal(t, 1, multi.Count())
	assert.Equal(t, mismatch.Error(), multi.Error())

	multi.Add(WrapTemplateError("banner", "execute", fmt.Errorf("boom")))
	assert.Equal(t, 2, multi.Count())
	assert.Contains(t, multi.Error(), "multiple errors (2 total):")
	assert.True(t, multi.HasCode(TraitNameMismatchErrorCode))
	assert.True(t, multi.HasCode(TemplateErrorCode))
	assert.False(t, multi.HasCode(HeaderSyntaxErrorCode))

	var target *TraitNameMismatchError
	require.True(t, stderrors.As(multi.ErrorOrNil(), &target))
	assert.Equal(t, "Foo", target.AnnotatedTrait)
}
