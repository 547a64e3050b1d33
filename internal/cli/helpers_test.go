package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/toyz/blanket/internal/utils"
)

const erasedSource = `trait Marker {}

#[blanket_trait(impl<T: Marker> Erased for T)]
pub trait Erased {
    fn name(&self) -> &str {
        "erased"
    }
}
`

const erasedExpanded = `trait Marker {}

pub trait Erased {
    fn name(&self) -> &str;
}

impl<T: Marker> Erased for T {
    fn name(&self) -> &str {
        "erased"
    }
}
`

const erasedBanner = "// @generated by blanket from lib.rs (crate erased_traits). Do not edit.\n"

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// newCrate lays out a small crate with one annotated file
func newCrate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Cargo.toml":       "[package]\nname = \"erased-traits\"\nversion = \"0.1.0\"\n",
		"src/lib.rs":       erasedSource,
		"src/plain.rs":     "pub fn plain() {}\n",
		"target/debug/x.rs": "#[blanket_trait(impl<T> X for T)]\ntrait X {}\n",
	})
	return root
}

type testOutput struct {
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestGenerator(t *testing.T, root string, configure func(*Config)) (*Generator, testOutput) {
	t.Helper()

	config := DefaultConfig()
	config.Directories = []string{root + "/..."}
	if configure != nil {
		configure(config)
	}

	output := testOutput{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	diagnostics.SetOutput(output.out, output.errOut)
	diagnostics.SetColors(false)
	diagnostics.SetShowTime(false)

	g, err := NewGenerator(config, diagnostics)
	require.NoError(t, err)
	return g, output
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}
