package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Check(t *testing.T) {
	root := newCrate(t)
	outPath := filepath.Join(root, "src", "lib.expanded.rs")

	g, _ := newTestGenerator(t, root, nil)
	checker := NewChecker(g)

	t.Run("missing output", func(t *testing.T) {
		result, err := checker.Check()
		require.NoError(t, err)
		assert.False(t, result.OK())
		assert.Equal(t, []string{outPath}, result.Missing)
	})

	require.NoError(t, g.Run())

	t.Run("up to date", func(t *testing.T) {
		result, err := checker.Check()
		require.NoError(t, err)
		assert.True(t, result.OK())
		assert.Equal(t, []string{outPath}, result.UpToDate)
	})

	t.Run("stale output", func(t *testing.T) {
		stale := erasedBanner + "trait Marker {}\n\npub trait Erased {}\n"
		require.NoError(t, os.WriteFile(outPath, []byte(stale), 0644))

		result, err := checker.Check()
		require.NoError(t, err)
		assert.False(t, result.OK())
		require.Len(t, result.Stale, 1)
		assert.Equal(t, outPath, result.Stale[0].Path)
		assert.Contains(t, result.Stale[0].Diff, "-pub trait Erased {}\n")
		assert.Contains(t, result.Stale[0].Diff, "+impl<T: Marker> Erased for T {\n")
	})

	t.Run("orphaned output", func(t *testing.T) {
		orphan := filepath.Join(root, "src", "plain.expanded.rs")
		require.NoError(t, os.WriteFile(orphan, []byte("// old\n"), 0644))
		require.NoError(t, g.Run())

		result, err := checker.Check()
		require.NoError(t, err)
		assert.Equal(t, []string{orphan}, result.Orphaned)
		assert.False(t, result.OK())
	})
}

func TestChecker_FailedSourceIsNotOrphaned(t *testing.T) {
	root := newCrate(t)
	writeTree(t, root, map[string]string{
		"src/broken.rs":          "#[blanket_trait(impl<T> Bar for T)]\ntrait Foo {}\n",
		"src/broken.expanded.rs": "// from an earlier run\n",
	})

	g, _ := newTestGenerator(t, root, nil)
	result, err := NewChecker(g).Check()
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Orphaned)
	assert.Equal(t, []string{filepath.Join(root, "src", "lib.expanded.rs")}, result.Missing)
}

func TestLineDiff(t *testing.T) {
	before := "a\nb\nc\nd\ne\nf\n"
	after := "a\nb\nc\nd\ne\nF\n"

	assert.Equal(t, " a\n@@ 3 unchanged lines @@\n e\n-f\n+F\n", LineDiff(before, after))
	assert.Equal(t, " same\n", LineDiff("same\n", "same\n"))
}
