package templates

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerImplTemplates()
	registry.registerFileTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Names returns the registered template names
func (tr *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	return names
}

// registerImplTemplates registers the blanket impl templates
func (tr *TemplateRegistry) registerImplTemplates() {
	// Header line of the impl block, attributes first. Every line after the
	// first is indented to match the annotated trait.
	tr.templates["impl-header"] = `{{range .Attrs}}{{.}}
{{$.Indent}}{{end}}{{if .Unsafe}}unsafe {{end}}impl{{.Generics}} {{.TraitPath}} for {{.SelfType}}{{with .Where}} {{.}}{{end}}`

	tr.templates["impl-empty"] = `{{.Header}} {}`

	tr.templates["impl-block"] = `{{.Header}} {
{{range $i, $item := .Items}}{{if $i}}

{{end}}{{$item}}{{end}}
{{.Indent}}}`
}

// registerFileTemplates registers templates for generated files
func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates["banner"] = `// @generated by blanket from {{.Source}}{{with .Crate}} (crate {{.}}){{end}}. Do not edit.
`
}
