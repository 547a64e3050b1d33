package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ManifestName is the file name of a crate manifest
const ManifestName = "Cargo.toml"

// CargoManifest is the part of a Cargo.toml the generator reads
type CargoManifest struct {
	Package   *CargoPackage   `toml:"package"`
	Lib       *CargoTarget    `toml:"lib"`
	Workspace *CargoWorkspace `toml:"workspace"`
}

// CargoPackage is the [package] table
type CargoPackage struct {
	Name string `toml:"name"`
}

// CargoTarget is a [lib] or [[bin]] table
type CargoTarget struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// CargoWorkspace is the [workspace] table
type CargoWorkspace struct {
	Members []string `toml:"members"`
}

// CrateName returns the name the crate is referred to by in source: the lib
// target name if set, otherwise the package name with dashes as underscores
func (m *CargoManifest) CrateName() string {
	if m.Lib != nil && m.Lib.Name != "" {
		return m.Lib.Name
	}
	if m.Package != nil {
		return strings.ReplaceAll(m.Package.Name, "-", "_")
	}
	return ""
}

// CargoParser provides utilities for parsing Cargo.toml files
type CargoParser struct {
	fileReader *FileReader
}

// NewCargoParser creates a new manifest parser with caching
func NewCargoParser(fileReader *FileReader) *CargoParser {
	return &CargoParser{
		fileReader: fileReader,
	}
}

// ParseManifest reads and decodes a Cargo.toml file
func (p *CargoParser) ParseManifest(manifestPath string) (*CargoManifest, error) {
	cleanPath := filepath.Clean(manifestPath)
	if filepath.Base(cleanPath) != ManifestName {
		return nil, fmt.Errorf("file is not a %s file: %s", ManifestName, manifestPath)
	}

	content, err := p.fileReader.ReadFile(cleanPath)
	if err != nil {
		return nil, WrapLoadError(ManifestName, err)
	}

	var manifest CargoManifest
	if err := toml.Unmarshal([]byte(content), &manifest); err != nil {
		return nil, WrapProcessError(cleanPath, err)
	}
	return &manifest, nil
}

// FindManifest searches for a crate manifest starting from startDir and
// walking up. Workspace-only manifests are skipped.
func (p *CargoParser) FindManifest(startDir string) (string, *CargoManifest, error) {
	currentDir := filepath.Clean(startDir)

	for {
		manifestPath := filepath.Join(currentDir, ManifestName)
		if content, err := p.fileReader.ReadFile(manifestPath); err == nil && content != "" {
			manifest, err := p.ParseManifest(manifestPath)
			if err != nil {
				return "", nil, err
			}
			if manifest.Package != nil {
				return manifestPath, manifest, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", nil, fmt.Errorf("%s not found above %s", ManifestName, startDir)
}
