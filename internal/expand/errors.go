package expand

import "fmt"

// TypeMismatchError reports a default value whose representation cannot be
// interpreted as its declared type. Coercion is deliberately strict: silent
// cross-type conversion (a string "0" under a boolean tag) would corrupt the
// assumptions of host property panels that bind by declared type.
type TypeMismatchError struct {
	Property string
	Declared string
	Value    any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("expand: property %q: default %v (%T) does not match declared type %s",
		e.Property, e.Value, e.Value, e.Declared)
}

// DuplicatePropertyNameError reports an expansion that would emit the same
// concrete property name twice, either because a numbered rule collides with
// a base property or because two rules generate the same name. Expansion
// never silently overwrites; it emits nothing on collision.
type DuplicatePropertyNameError struct {
	Template string
	Name     string
}

func (e *DuplicatePropertyNameError) Error() string {
	return fmt.Sprintf("expand: template %q: duplicate property name %q", e.Template, e.Name)
}
