package templates

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/models"
)

var registry = NewTemplateRegistry()

// ImplHeaderData is the data for the impl-header template
type ImplHeaderData struct {
	Attrs     []string
	Unsafe    bool
	Generics  string
	TraitPath string
	SelfType  string
	Where     string
	Indent    string
}

// ImplBlockData is the data for the impl-block and impl-empty templates
type ImplBlockData struct {
	Header string
	Items  []string // rendered items, each starting with its indentation
	Indent string
}

// BannerData is the data for the generated-file banner
type BannerData struct {
	Source string
	Crate  string
}

// NewImplHeaderData builds template data from a parsed header
func NewImplHeaderData(h *models.ImplHeader, indent string) ImplHeaderData {
	return ImplHeaderData{
		Attrs:     h.Attrs,
		Unsafe:    h.Unsafe,
		Generics:  h.GenericsText,
		TraitPath: h.TraitPath,
		SelfType:  h.SelfType,
		Where:     h.WhereText,
		Indent:    indent,
	}
}

// GenerateImplHeader renders `impl<..> Trait for T where ..` without the body
func GenerateImplHeader(data ImplHeaderData) (string, error) {
	return executeTemplate("impl-header", registry.MustGet("impl-header"), data)
}

// GenerateImplBlock renders a complete impl block around pre-rendered items
func GenerateImplBlock(data ImplBlockData) (string, error) {
	if len(data.Items) == 0 {
		return executeTemplate("impl-empty", registry.MustGet("impl-empty"), data)
	}
	return executeTemplate("impl-block", registry.MustGet("impl-block"), data)
}

// GenerateBanner renders the comment that opens every generated file
func GenerateBanner(data BannerData) (string, error) {
	return executeTemplate("banner", registry.MustGet("banner"), data)
}

// executeTemplate executes a Go template with the given data
func executeTemplate(name, templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return "", errors.WrapTemplateError(name, "parse", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}

	return buf.String(), nil
}

// ExecuteTemplate executes a Go template with the given data (exported version)
func ExecuteTemplate(name, templateStr string, data interface{}) (string, error) {
	if templateStr == "" {
		return "", fmt.Errorf("template %s is empty", name)
	}
	return executeTemplate(name, templateStr, data)
}
