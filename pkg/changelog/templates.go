package changelog

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/*.md.tmpl
var defaultTemplates embed.FS

// templateNames lists every template piece the renderer consumes.
var templateNames = []string{
	"version",
	"version-note",
	"type",
	"commit-scope",
	"commit-noscope",
	"refs",
	"breaking-change",
	"version-separator",
}

// Set holds the parsed template pieces the renderer assembles markdown from.
type Set struct {
	templates map[string]*template.Template
}

// EnsureTemplates copies any missing default template into dir so operators
// can edit the pieces. Existing files are never overwritten.
func EnsureTemplates(dir string) error {
	for _, name := range templateNames {
		file := name + ".md.tmpl"
		path := filepath.Join(dir, file)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		data, err := defaultTemplates.ReadFile("templates/" + file)
		if err != nil {
			return fmt.Errorf("reading embedded template %s: %w", file, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing template %s: %w", file, err)
		}
	}
	return nil
}

// LoadTemplates parses the template set from dir, falling back to the
// embedded defaults for any piece missing on disk. Pass "" to use the
// defaults only.
func LoadTemplates(dir string) (*Set, error) {
	set := &Set{templates: make(map[string]*template.Template, len(templateNames))}
	for _, name := range templateNames {
		file := name + ".md.tmpl"

		var text string
		if dir != "" {
			if data, err := os.ReadFile(filepath.Join(dir, file)); err == nil {
				text = string(data)
			}
		}
		if text == "" {
			data, err := defaultTemplates.ReadFile("templates/" + file)
			if err != nil {
				return nil, fmt.Errorf("reading embedded template %s: %w", file, err)
			}
			text = string(data)
		}

		tmpl, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", file, err)
		}
		set.templates[name] = tmpl
	}
	return set, nil
}

// render executes one template piece with the given data. The result is
// trimmed of trailing newlines; the renderer controls line breaks itself.
func (s *Set) render(name string, data any) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
