package export

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/quixio/tributary/internal/quix"
)

// marshalYAML renders with 2-space indentation, the layout Quix's own
// tooling emits
func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ProjectYAML renders the root quix.yaml descriptor
func ProjectYAML(project *quix.Project) ([]byte, error) {
	data, err := marshalYAML(project)
	if err != nil {
		return nil, fmt.Errorf("failed to render project descriptor: %w", err)
	}
	return data, nil
}

// AppYAML renders one application's app.yaml descriptor
func AppYAML(app quix.AppDescriptor) ([]byte, error) {
	data, err := marshalYAML(app)
	if err != nil {
		return nil, fmt.Errorf("failed to render app descriptor for %s: %w", app.Name, err)
	}
	return data, nil
}
