package diagnostics

import (
	"fmt"
	"sort"
)

type Severity int

const (
	SeverityNote    Severity = iota // informational, no action needed
	SeverityWarning                 // something was dropped or defaulted
)

// Diagnostic is one non-fatal finding produced during conversion.
// Diagnostics accumulate through the whole run and are reported at the end.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Service  string   `json:"service,omitempty"` // empty for project-level findings
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	prefix := "note"
	if d.Severity == SeverityWarning {
		prefix = "warning"
	}
	if d.Service == "" {
		return fmt.Sprintf("%s: %s", prefix, d.Message)
	}
	return fmt.Sprintf("%s: service %q: %s", prefix, d.Service, d.Message)
}

func Warningf(service, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Service: service, Message: fmt.Sprintf(format, args...)}
}

func Notef(service, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityNote, Service: service, Message: fmt.Sprintf(format, args...)}
}

// Sort orders diagnostics for stable reporting: warnings before notes,
// then by service, then by message.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Severity != diags[j].Severity {
			return diags[i].Severity > diags[j].Severity
		}
		if diags[i].Service != diags[j].Service {
			return diags[i].Service < diags[j].Service
		}
		return diags[i].Message < diags[j].Message
	})
}

// Warnings counts warning-level diagnostics
func Warnings(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			n++
		}
	}
	return n
}
