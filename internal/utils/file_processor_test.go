package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		r, err := filepath.Rel(root, path)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestFileProcessor_SourceFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"lib.rs":                  "",
		"lib.expanded.rs":         "",
		"README.md":               "",
		"nested/mod.rs":           "",
		"nested/deep/erased.rs":   "",
		"target/debug/build.rs":   "",
		".hidden/skip.rs":         "",
		"generated/skip_me.rs":    "",
		"nested/deep/skip_gen.rs": "",
	})

	fp := NewFileProcessor()
	require.NoError(t, fp.SetExclude([]string{"generated/**", "**/*_gen.rs"}))

	files, err := fp.SourceFiles([]string{root}, ".expanded.rs")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib.rs"}, rel(t, root, files))

	files, err = fp.SourceFiles([]string{root + "/..."}, ".expanded.rs")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib.rs", "nested/deep/erased.rs", "nested/mod.rs"}, rel(t, root, files))

	files, err = fp.SourceFiles([]string{filepath.Join(root, "nested", "mod.rs"), filepath.Join(root, "nested", "mod.rs")}, ".expanded.rs")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = fp.SourceFiles([]string{filepath.Join(root, "missing")}, ".expanded.rs")
	assert.Error(t, err)
}

func TestFileProcessor_SetExclude(t *testing.T) {
	fp := NewFileProcessor()
	assert.Error(t, fp.SetExclude([]string{"bad/[a"}))

	require.NoError(t, fp.SetExclude([]string{"src/gen/**"}))
	assert.True(t, fp.Excluded("src/gen/a.rs"))
	assert.True(t, fp.Excluded(filepath.Join("src", "gen", "deep", "b.rs")))
	assert.False(t, fp.Excluded("src/lib.rs"))
}

func TestFileProcessor_CleanDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"lib.rs":                 "",
		"lib.expanded.rs":        "",
		"nested/mod.expanded.rs": "",
	})

	fp := NewFileProcessor()

	removed, err := fp.CleanDirectories([]string{root}, ".expanded.rs")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib.expanded.rs"}, rel(t, root, removed))

	removed, err = fp.CleanDirectories([]string{root + "/...", filepath.Join(root, "missing")}, ".expanded.rs")
	require.NoError(t, err)
	assert.Equal(t, []string{"nested/mod.expanded.rs"}, rel(t, root, removed))

	_, err = os.Stat(filepath.Join(root, "lib.rs"))
	assert.NoError(t, err)
}

func TestExpandPattern(t *testing.T) {
	tests := []struct {
		pattern   string
		dir       string
		recursive bool
	}{
		{"./...", ".", true},
		{"...", ".", true},
		{"src/...", "src", true},
		{"src", "src", false},
		{"", ".", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			dir, recursive := ExpandPattern(tt.pattern)
			assert.Equal(t, tt.dir, dir)
			assert.Equal(t, tt.recursive, recursive)
		})
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "src/lib.expanded.rs", OutputPath("src/lib.rs", ".expanded.rs"))
	assert.Equal(t, "src/erased_gen.rs", OutputPath("src/erased.rs", "_gen.rs"))
}
