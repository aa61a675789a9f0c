package materialize

import "fmt"

// Stage names the host call that failed.
const (
	StageCloneOrCreate = "clone_or_create"
	StagePlace         = "place"
	StageSetProperty   = "set_property"
	StageBindBehavior  = "bind_behavior"
)

// Error reports a host rejection during materialization. The host call is
// assumed non-idempotent, so the failure is terminal for its template and is
// never retried; the wrapped error preserves the host's native failure.
type Error struct {
	Template string
	Stage    string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("materialize: template %q: %s: %v", e.Template, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
