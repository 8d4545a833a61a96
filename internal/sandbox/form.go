package sandbox

import (
	"encoding/json"
	"fmt"
)

// Field is one named form value.
type Field struct {
	Name  string
	Value string
}

// Form is the POST a sandbox endpoint accepts to create a project.
type Form struct {
	Action string
	Method string
	// Target is the browsing context the form opens in.
	Target string
	Fields []Field
}

// Form returns the descriptor as sandbox form fields: metadata, one field per
// file in descriptor order, then dependencies and settings as JSON.
func (d *Descriptor) Form() (*Form, error) {
	deps, err := json.Marshal(d.Dependencies)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dependencies: %w", err)
	}
	settings, err := json.Marshal(d.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}

	fields := []Field{
		{Name: "project[title]", Value: d.Title},
		{Name: "project[description]", Value: d.Description},
		{Name: "project[template]", Value: d.Template},
	}
	for _, f := range d.Files {
		fields = append(fields, Field{Name: "project[files][" + f.Path + "]", Value: f.Content})
	}
	fields = append(fields,
		Field{Name: "project[dependencies]", Value: string(deps)},
		Field{Name: "project[settings]", Value: string(settings)},
	)

	return &Form{
		Action: d.Endpoint,
		Method: "POST",
		Target: "_blank",
		Fields: fields,
	}, nil
}

// Value returns the first field value named name.
func (f *Form) Value(name string) (string, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}
