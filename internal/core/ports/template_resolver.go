package ports

// TemplateResolver renders a task's template against its parameters and
// the project's global render context, returning the text of the script to
// execute. Resolution of which interpreter a rendered script needs is a
// separate concern (see InterpreterEnvironment); this port only turns a
// template name plus a parameter set into a string.
//
//go:generate go run go.uber.org/mock/mockgen -source=template_resolver.go -destination=mocks/mock_template_resolver.go -package=mocks
type TemplateResolver interface {
	// Render looks up template by name among the project's custom
	// templates and executes it against data. Returns
	// domain.ErrUnknownTemplate if no template matches, or
	// domain.ErrUndefinedVariable if the template references a key data
	// lacks.
	Render(template string, data map[string]any) (string, error)

	// Suffix returns the file suffix ("py", "r") a rendered template of this
	// name should be executed as, used to select an interpreter. Returns
	// domain.ErrUnsupportedSuffix if template's suffix has no known
	// interpreter.
	Suffix(template string) (string, error)

	// RenderInline executes source directly as template text against data,
	// without a name lookup. Used to pre-parse a task declaration file
	// (whose own text may embed project-config variables) before it is
	// parsed as YAML.
	RenderInline(source string, data map[string]any) (string, error)
}
