// Package sandbox assembles runnable project descriptors for an online
// sandbox and hands them to a Submitter.
package sandbox

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
)

// DefaultEndpoint is the sandbox form-post endpoint.
const DefaultEndpoint = "https://stackblitz.com/run"

// DefaultTemplate is the sandbox project template.
const DefaultTemplate = "node"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// projectFiles is the descriptor file order paired with the template that
// renders each; package.json is generated separately.
var projectFiles = []struct {
	path     string
	template string
}{
	{"src/App.tsx", "App.tsx.tmpl"},
	{"index.html", "index.html.tmpl"},
	{"src/main.tsx", "main.tsx.tmpl"},
	{"src/index.css", "index.css.tmpl"},
	{"tailwind.config.js", "tailwind.config.js.tmpl"},
	{"postcss.config.js", "postcss.config.js.tmpl"},
	{"vite.config.ts", "vite.config.ts.tmpl"},
	{"package.json", ""},
	{"README.md", "README.md.tmpl"},
}

var (
	runtimeDependencies = map[string]string{
		"react":     "18.2.0",
		"react-dom": "18.2.0",
	}

	devDependencies = map[string]string{
		"@types/react":         "18.2.43",
		"@types/react-dom":     "18.2.17",
		"@vitejs/plugin-react": "4.2.1",
		"autoprefixer":         "10.4.16",
		"postcss":              "8.4.32",
		"tailwindcss":          "3.3.6",
		"typescript":           "5.2.2",
		"vite":                 "5.0.8",
	}
)

// Options configures descriptor assembly.
type Options struct {
	Endpoint string
	Template string
}

// Input is what a descriptor is built from.
type Input struct {
	Identifier string
	Snippet    string
	// Name is the component the App shell mounts.
	Name     string
	Degraded bool
}

// File is one path/content pair of a descriptor.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Descriptor is a complete sandbox project.
type Descriptor struct {
	Identifier   string            `json:"identifier"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Template     string            `json:"template"`
	Endpoint     string            `json:"-"`
	Files        []File            `json:"files"`
	Dependencies map[string]string `json:"dependencies"`
	Settings     Settings          `json:"settings"`
}

// Settings is the sandbox project settings object.
type Settings struct {
	Compile CompileSettings `json:"compile"`
}

// CompileSettings controls the sandbox compiler.
type CompileSettings struct {
	ClearConsole bool `json:"clearConsole"`
}

type packageManifest struct {
	Name            string            `json:"name"`
	Private         bool              `json:"private"`
	Version         string            `json:"version"`
	Type            string            `json:"type"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Build assembles the descriptor for in.
func Build(in Input, opts Options) (*Descriptor, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}

	d := &Descriptor{
		Identifier:   in.Identifier,
		Title:        in.Identifier + " - UI Pattern",
		Description:  "Interactive demo of " + in.Identifier + " UI pattern",
		Template:     opts.Template,
		Endpoint:     opts.Endpoint,
		Dependencies: Dependencies(),
	}

	for _, f := range projectFiles {
		var content string
		var err error
		if f.template == "" {
			content, err = renderManifest(in.Identifier)
		} else {
			content, err = render(f.template, in)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", f.path, err)
		}
		d.Files = append(d.Files, File{Path: f.path, Content: content})
	}

	return d, nil
}

// Dependencies returns every package the generated project installs.
func Dependencies() map[string]string {
	deps := make(map[string]string, len(runtimeDependencies)+len(devDependencies))
	for name, version := range runtimeDependencies {
		deps[name] = version
	}
	for name, version := range devDependencies {
		deps[name] = version
	}
	return deps
}

// File returns the content of the descriptor file at path.
func (d *Descriptor) File(path string) (string, bool) {
	for _, f := range d.Files {
		if f.Path == path {
			return f.Content, true
		}
	}
	return "", false
}

func render(name string, in Input) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderManifest(identifier string) (string, error) {
	manifest := packageManifest{
		Name:    identifier + "-ui-pattern",
		Private: true,
		Version: "0.1.0",
		Type:    "module",
		Scripts: map[string]string{
			"dev":     "vite",
			"build":   "vite build",
			"preview": "vite preview",
		},
		Dependencies:    runtimeDependencies,
		DevDependencies: devDependencies,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
