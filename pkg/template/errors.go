package template

import "fmt"

// ValidationError reports a malformed or incomplete template detected at load
// time, before any host interaction. A template that fails validation aborts
// only its own processing.
type ValidationError struct {
	// Template identifies the offending template (display name plus layout
	// reference when present). Empty when the document itself is malformed.
	Template string

	// Field names the field that failed validation.
	Field string

	// Reason describes the failure.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("template: invalid document: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("template: invalid template %q: %s: %s", e.Template, e.Field, e.Reason)
}
