package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/blanket/internal/utils"
)

// CrateResolver maps source files to the crate and module they belong to
type CrateResolver struct {
	cargoParser *utils.CargoParser
	crates      map[string]crateInfo // keyed by source directory
}

type crateInfo struct {
	name string
	root string // directory holding Cargo.toml
}

// NewCrateResolver creates a new crate resolver
func NewCrateResolver(fileReader *utils.FileReader) *CrateResolver {
	return &CrateResolver{
		cargoParser: utils.NewCargoParser(fileReader),
		crates:      make(map[string]crateInfo),
	}
}

// ResolveCrateName resolves the crate name for sourcePath.
// If customCrate is provided, it uses that; otherwise reads the nearest Cargo.toml.
func (r *CrateResolver) ResolveCrateName(customCrate, sourcePath string) (string, error) {
	if customCrate != "" {
		return customCrate, nil
	}

	info, err := r.lookup(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to determine crate name: %w (consider using --crate flag)", err)
	}
	return info.name, nil
}

// BuildModulePath returns the module path of sourcePath inside its crate,
// e.g. src/a/b.rs is crate::a::b and src/a/mod.rs is crate::a
func (r *CrateResolver) BuildModulePath(sourcePath string) (string, error) {
	info, err := r.lookup(sourcePath)
	if err != nil {
		return "", err
	}

	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source path: %w", err)
	}

	relPath, err := filepath.Rel(filepath.Join(info.root, "src"), absSource)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("%s is outside the crate's src directory", sourcePath)
	}

	relPath = strings.TrimSuffix(filepath.ToSlash(relPath), utils.SourceExtension)
	segments := strings.Split(relPath, "/")

	switch last := segments[len(segments)-1]; {
	case len(segments) == 1 && (last == "lib" || last == "main"):
		segments = nil
	case last == "mod":
		segments = segments[:len(segments)-1]
	}

	return strings.Join(append([]string{"crate"}, segments...), "::"), nil
}

func (r *CrateResolver) lookup(sourcePath string) (crateInfo, error) {
	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return crateInfo{}, fmt.Errorf("failed to resolve source path: %w", err)
	}

	dir := filepath.Dir(absSource)
	if info, ok := r.crates[dir]; ok {
		return info, nil
	}

	manifestPath, manifest, err := r.cargoParser.FindManifest(dir)
	if err != nil {
		return crateInfo{}, err
	}

	info := crateInfo{name: manifest.CrateName(), root: filepath.Dir(manifestPath)}
	r.crates[dir] = info
	return info, nil
}
