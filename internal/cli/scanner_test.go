package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/blanket/internal/utils"
)

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	root := newCrate(t)
	writeTree(t, root, map[string]string{
		"src/lib.expanded.rs":   "// generated\n",
		"src/gen/skipped.rs":    "#[blanket_trait(impl<T> S for T)]\ntrait S {}\n",
		"src/nested/deep.rs":    "#[blanket_trait(impl<T> D for T)]\ntrait D {}\n",
		".hidden/ignored.rs":    "",
	})

	scanner, err := NewDirectoryScanner(utils.NewFileProcessor(), DefaultSuffix, []string{"src/gen/**"})
	require.NoError(t, err)

	files, err := scanner.ScanDirectories([]string{root + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "src", "lib.rs"),
		filepath.Join(root, "src", "nested", "deep.rs"),
		filepath.Join(root, "src", "plain.rs"),
	}, files)

	files, err = scanner.ScanDirectories([]string{filepath.Join(root, "src")})
	require.NoError(t, err)
	assert.Len(t, files, 2)

	candidates, err := scanner.Candidates(files, "blanket_trait")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "src", "lib.rs")}, candidates)

	generated, err := scanner.GeneratedFiles([]string{root + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "src", "lib.expanded.rs")}, generated)
}

func TestDirectoryScanner_Errors(t *testing.T) {
	_, err := NewDirectoryScanner(utils.NewFileProcessor(), DefaultSuffix, []string{"[bad"})
	assert.Error(t, err)

	scanner, err := NewDirectoryScanner(utils.NewFileProcessor(), DefaultSuffix, nil)
	require.NoError(t, err)

	_, err = scanner.ScanDirectories([]string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}
