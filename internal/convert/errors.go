package convert

import "fmt"

// ValidationError marks a service the converter cannot map faithfully.
// One failing service aborts only its own conversion; the remaining
// services still produce output.
type ValidationError struct {
	Service string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Service == "" {
		return "invalid project: " + e.Reason
	}
	return fmt.Sprintf("invalid service %q: %s", e.Service, e.Reason)
}

func validationf(service, format string, args ...any) *ValidationError {
	return &ValidationError{Service: service, Reason: fmt.Sprintf(format, args...)}
}
