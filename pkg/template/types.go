package template

import "errors"

// PropertyType is the closed set of value kinds a component property may
// declare. The host properties panel binds by declared type, so the set is
// deliberately small and never extended at runtime.
type PropertyType string

const (
	PropertyTypeString  PropertyType = "string"
	PropertyTypeNumber  PropertyType = "number"
	PropertyTypeBoolean PropertyType = "boolean"
)

// Valid reports whether the type tag belongs to the closed set.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeString, PropertyTypeNumber, PropertyTypeBoolean:
		return true
	}
	return false
}

// PropertyDeclaration describes a single concrete property applied exactly
// once to a component, regardless of the template's set count.
type PropertyDeclaration struct {
	Name    string       `json:"name" yaml:"name"`
	Type    PropertyType `json:"type" yaml:"type"`
	Default any          `json:"default" yaml:"default"`
}

// NumberedPropertyRule describes a property instantiated once per set, with
// the 1-based set index appended to NameTemplate to form each concrete name
// (NameTemplate "location" and three sets yields location1..location3).
type NumberedPropertyRule struct {
	NameTemplate string       `json:"name_template" yaml:"name_template"`
	Type         PropertyType `json:"type" yaml:"type"`
	Default      any          `json:"default" yaml:"default"`
}

// ComponentTemplate is the in-memory representation of one component's
// declarative record. Display names are not unique across templates; two
// templates may share a Name and differ only by LayoutName.
type ComponentTemplate struct {
	// Name is the component's display name.
	Name string `json:"name" yaml:"name"`

	// Folder is the logical grouping path the created entity is placed under.
	Folder string `json:"folder" yaml:"folder"`

	// LayoutName optionally references a pre-built source object to clone.
	// When empty, the host creates a primitive placeholder instead.
	LayoutName string `json:"layout_name,omitempty" yaml:"layout_name,omitempty"`

	// Properties are applied once each, in declaration order.
	Properties []PropertyDeclaration `json:"properties,omitempty" yaml:"properties,omitempty"`

	// NumberedProperties are instantiated once per set.
	NumberedProperties []NumberedPropertyRule `json:"numbered_properties,omitempty" yaml:"numbered_properties,omitempty"`

	// PropertySets is the multiplicity for numbered properties. Defaults to 1
	// when the source document omits it.
	PropertySets int `json:"property_sets,omitempty" yaml:"property_sets,omitempty"`

	// Script is an opaque behavior identifier resolved by the host at
	// materialization time. This package never inspects it.
	Script string `json:"script,omitempty" yaml:"script,omitempty"`
}

// Identity returns a human-readable identifier for error reporting. Display
// names may repeat, so the layout reference is included when present.
func (t ComponentTemplate) Identity() string {
	if t.LayoutName == "" {
		return t.Name
	}
	return t.Name + " (" + t.LayoutName + ")"
}

// Sets returns the effective multiplicity for numbered-property expansion.
func (t ComponentTemplate) Sets() int {
	if t.PropertySets <= 0 {
		return 1
	}
	return t.PropertySets
}

// Validate performs the load-time checks from the template contract: required
// fields, a known type tag on every declaration, defaults consistent with
// their declared type, and a positive set count whenever numbered rules exist.
func (t ComponentTemplate) Validate() error {
	if t.Name == "" {
		return &ValidationError{Template: t.Identity(), Field: "name", Reason: "required"}
	}
	if t.Folder == "" {
		return &ValidationError{Template: t.Identity(), Field: "folder", Reason: "required"}
	}
	for _, prop := range t.Properties {
		if prop.Name == "" {
			return &ValidationError{Template: t.Identity(), Field: "properties", Reason: "property name is required"}
		}
		if !prop.Type.Valid() {
			return &ValidationError{Template: t.Identity(), Field: prop.Name, Reason: "unknown type " + string(prop.Type)}
		}
	}
	for _, rule := range t.NumberedProperties {
		if rule.NameTemplate == "" {
			return &ValidationError{Template: t.Identity(), Field: "numbered_properties", Reason: "name_template is required"}
		}
		if !rule.Type.Valid() {
			return &ValidationError{Template: t.Identity(), Field: rule.NameTemplate, Reason: "unknown type " + string(rule.Type)}
		}
	}
	if len(t.NumberedProperties) > 0 && t.PropertySets < 0 {
		return &ValidationError{Template: t.Identity(), Field: "property_sets", Reason: "must be a positive integer"}
	}
	return nil
}

var errTemplateName = errors.New("template: name is required")

// NewComponentTemplate validates core fields and returns the template value.
// Most callers go through a Parser instead; this constructor exists for
// programmatic catalog construction in tests and fixtures.
func NewComponentTemplate(name, folder string) (ComponentTemplate, error) {
	if name == "" {
		return ComponentTemplate{}, errTemplateName
	}
	if folder == "" {
		return ComponentTemplate{}, errors.New("template: folder is required")
	}
	return ComponentTemplate{Name: name, Folder: folder}, nil
}
