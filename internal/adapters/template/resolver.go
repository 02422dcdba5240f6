// Package template implements TemplateResolver: finding a named template
// by name among the files loaded from the project's custom_templates (there
// is no builtin template set), and rendering it with text/template. Neither the template language
// nor template discovery is part of the core build model (spec.md scopes
// rendering out as an external collaborator), so this package is the one
// place in the module built on the standard library rather than a
// third-party templating engine — see DESIGN.md.
package template

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TemplateResolver = (*Resolver)(nil)

// Resolver looks templates up by name among the loaded custom template
// files only, and renders them against a data map.
type Resolver struct {
	custom map[string]string // name -> source text, loaded from custom_templates paths
}

// New loads every template file found under the given custom_templates
// paths (each may be a single file or a directory, expanded
// non-recursively). Later paths win on a name collision.
func New(customTemplatePaths []string) (*Resolver, error) {
	r := &Resolver{custom: make(map[string]string)}

	for _, p := range customTemplatePaths {
		if err := r.loadPath(p); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Resolver) loadPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPathResolutionFailed.Error()), "path", path)
	}

	if !info.IsDir() {
		return r.loadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPathResolutionFailed.Error()), "path", path)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := r.loadFile(filepath.Join(path, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) loadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is project-configured, not request input
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPathResolutionFailed.Error()), "path", path)
	}
	r.custom[filepath.Base(path)] = string(data)
	return nil
}

// Render looks name up among the loaded custom templates and executes it
// against data. A task's Template field is always a registered name — a
// task never supplies a template's source inline.
func (r *Resolver) Render(name string, data map[string]any) (string, error) {
	source, ok := r.custom[name]
	if !ok {
		return "", zerr.With(domain.ErrUnknownTemplate, "template", name)
	}
	return r.execute(name, source, data)
}

// RenderInline executes source directly, with no name lookup — used for
// pre-parsing a task declaration file's own text against the project
// config before it is parsed as YAML.
func (r *Resolver) RenderInline(source string, data map[string]any) (string, error) {
	return r.execute("declaration", source, data)
}

func (r *Resolver) execute(name, source string, data map[string]any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(source)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrUnknownTemplate.Error()), "template", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrUndefinedVariable.Error()), "template", name)
	}

	return buf.String(), nil
}

// knownSuffixes maps a template's file suffix to the interpreter family
// that runs it.
var knownSuffixes = map[string]string{
	".py": "py",
	".r":  "r",
	".R":  "r",
}

// Suffix infers the interpreter suffix ("py", "r") from name's file
// extension.
func (r *Resolver) Suffix(name string) (string, error) {
	ext := filepath.Ext(name)
	if suffix, ok := knownSuffixes[ext]; ok {
		return suffix, nil
	}
	return "", zerr.With(domain.ErrUnsupportedSuffix, "template", name, "suffix", strings.TrimPrefix(ext, "."))
}
