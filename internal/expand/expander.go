// Package expand implements the template expansion engine: the pure
// transformation from a declarative component template to the ordered, typed,
// uniquely named property list attached to a materialized entity.
package expand

import (
	"strconv"

	"github.com/simkit/compgen/pkg/template"
)

// Property is one concrete named property emitted by expansion. Default holds
// the coerced representation (string, float64, or bool) for its Type.
type Property struct {
	Name    string                `json:"name" yaml:"name"`
	Type    template.PropertyType `json:"type" yaml:"type"`
	Default any                   `json:"default" yaml:"default"`
}

// Expander turns component templates into flat property lists. It holds no
// state and is safe for reuse across templates; expansion has no side effects
// and is deterministic for a given template.
type Expander struct{}

// New creates an Expander.
func New() *Expander {
	return &Expander{}
}

// Expand produces the ordered property list for one template:
//
//  1. Every base property, once, in declaration order.
//  2. For each numbered rule, in declaration order, one property per set
//     index from 1 through the template's set count, named by appending the
//     index to the rule's name template. All sets of a rule are emitted
//     before the next rule starts; hosts display properties in emission
//     order, so the ordering is part of the contract.
//
// The suffix is always applied, including for a single set, so a one-set
// template stays consistent with its multi-set siblings. A generated name
// that collides with any other emitted name fails the whole expansion with a
// DuplicatePropertyNameError.
func (e *Expander) Expand(t template.ComponentTemplate) ([]Property, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	sets := t.Sets()
	out := make([]Property, 0, len(t.Properties)+len(t.NumberedProperties)*sets)
	seen := make(map[string]struct{}, cap(out))

	emit := func(name string, typ template.PropertyType, raw any) error {
		if _, dup := seen[name]; dup {
			return &DuplicatePropertyNameError{Template: t.Identity(), Name: name}
		}
		value, err := Coerce(name, typ, raw)
		if err != nil {
			return err
		}
		seen[name] = struct{}{}
		out = append(out, Property{Name: name, Type: typ, Default: value})
		return nil
	}

	for _, prop := range t.Properties {
		if err := emit(prop.Name, prop.Type, prop.Default); err != nil {
			return nil, err
		}
	}

	for _, rule := range t.NumberedProperties {
		for index := 1; index <= sets; index++ {
			name := rule.NameTemplate + strconv.Itoa(index)
			if err := emit(name, rule.Type, rule.Default); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}
