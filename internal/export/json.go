package export

import (
	"encoding/json"

	"github.com/quixio/tributary/internal/convert"
	"github.com/quixio/tributary/internal/diagnostics"
	"github.com/quixio/tributary/internal/quix"
)

// JSONExporter renders the full conversion plan as indented JSON. This is
// the machine-readable form behind the inspect command: everything the
// writer would put on disk, plus diagnostics and failures.
type JSONExporter struct{}

func NewJSONExporter() Exporter {
	return &JSONExporter{}
}

func (e *JSONExporter) Name() string {
	return "json"
}

type jsonPlan struct {
	Project     string                   `json:"project"`
	Source      string                   `json:"source"`
	Descriptor  *quix.Project            `json:"descriptor"`
	Apps        []jsonApp                `json:"apps"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics,omitempty"`
	Failures    []jsonFailure            `json:"failures,omitempty"`
}

type jsonApp struct {
	Key        string             `json:"key"`
	Descriptor quix.AppDescriptor `json:"descriptor"`
	Dockerfile string             `json:"dockerfile"`
}

type jsonFailure struct {
	Service string `json:"service"`
	Reason  string `json:"reason"`
}

func (e *JSONExporter) Export(output *convert.Output) ([]byte, error) {
	plan := jsonPlan{
		Project:    output.ProjectName,
		Source:     output.Source,
		Descriptor: output.Project,
		Apps:       make([]jsonApp, 0, len(output.Apps)),
	}

	for _, app := range output.Apps {
		plan.Apps = append(plan.Apps, jsonApp{
			Key:        app.Key,
			Descriptor: app.Descriptor,
			Dockerfile: string(app.Dockerfile),
		})
	}

	plan.Diagnostics = output.Diags

	for _, failure := range output.Failed {
		plan.Failures = append(plan.Failures, jsonFailure{
			Service: failure.Service,
			Reason:  failure.Err.Error(),
		})
	}

	return json.MarshalIndent(plan, "", "  ")
}
