package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Submitter delivers an assembled descriptor somewhere. The outcome of the
// submission itself is not observed beyond the returned error.
type Submitter interface {
	Submit(ctx context.Context, d *Descriptor) error
}

var formPageTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <title>{{.Title}}</title>
  </head>
  <body>
    <form id="sandbox" method="{{.Method}}" action="{{.Action}}" target="{{.Target}}" enctype="multipart/form-data">
{{- range .Fields}}
      <input type="hidden" name="{{.Name}}" value="{{.Value}}" />
{{- end}}
      <noscript><button type="submit">Open in sandbox</button></noscript>
    </form>
    <script>document.getElementById("sandbox").submit();</script>
  </body>
</html>
`))

// FormPage writes a self-submitting HTML form to W, so the browser that
// loads it performs the sandbox navigation.
type FormPage struct {
	W io.Writer
}

func (p *FormPage) Submit(ctx context.Context, d *Descriptor) error {
	form, err := d.Form()
	if err != nil {
		return err
	}
	data := struct {
		*Form
		Title string
	}{Form: form, Title: d.Title}

	if err := formPageTemplate.Execute(p.W, data); err != nil {
		return fmt.Errorf("failed to write form page: %w", err)
	}
	return nil
}

// MultipartPoster posts the form as multipart/form-data. The response body is
// discarded unread; only transport failures are errors.
type MultipartPoster struct {
	Client *http.Client
}

func (p *MultipartPoster) Submit(ctx context.Context, d *Descriptor) error {
	form, err := d.Form()
	if err != nil {
		return err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, field := range form.Fields {
		if err := mw.WriteField(field.Name, field.Value); err != nil {
			return fmt.Errorf("failed to encode field %s: %w", field.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, form.Method, form.Action, &body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to %s: %w", form.Action, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// ErrUnsafePath is returned when a descriptor file would land outside the
// target directory.
var ErrUnsafePath = errors.New("descriptor path escapes output directory")

// MetadataFile holds the descriptor metadata DirWriter writes next to the
// project files.
const MetadataFile = "sandbox.json"

// DirWriter writes the descriptor to Dir/<identifier>/.
type DirWriter struct {
	Dir string
}

// ProjectDir returns the directory a descriptor for identifier is written to.
// Identifiers that would resolve to Dir itself or outside it are rejected.
func (w *DirWriter) ProjectDir(identifier string) (string, error) {
	root := filepath.Join(w.Dir, filepath.FromSlash(identifier))
	if !below(w.Dir, root) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, identifier)
	}
	return root, nil
}

// below reports whether target lies strictly inside base.
func below(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *DirWriter) Submit(ctx context.Context, d *Descriptor) error {
	root, err := w.ProjectDir(d.Identifier)
	if err != nil {
		return err
	}

	for _, f := range d.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(root, filepath.FromSlash(f.Path))
		if !below(root, target) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, f.Path)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, []byte(f.Content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
	}

	meta := struct {
		Title        string            `json:"title"`
		Description  string            `json:"description"`
		Template     string            `json:"template"`
		Dependencies map[string]string `json:"dependencies"`
		Settings     Settings          `json:"settings"`
	}{d.Title, d.Description, d.Template, d.Dependencies, d.Settings}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, MetadataFile), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}
