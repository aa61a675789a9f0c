// Package parser implements template.Parser for JSON and YAML template
// documents. JSON input is decoded tolerantly (comments and trailing commas
// are accepted) because template catalogs are human-authored.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"unicode"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/simkit/compgen/internal/expand"
	pkgtemplate "github.com/simkit/compgen/pkg/template"
)

// Parser decodes template documents into validated component templates.
type Parser struct{}

// Ensure the implementation satisfies the public interface.
var _ pkgtemplate.Parser = (*Parser)(nil)

// New constructs a Parser.
func New() *Parser {
	return &Parser{}
}

// templateRecord mirrors the authored document shape. PropertySets is a
// pointer so an explicit zero or negative count can be rejected while an
// omitted field defaults to one set.
type templateRecord struct {
	Name               string           `json:"name" yaml:"name"`
	Folder             string           `json:"folder" yaml:"folder"`
	LayoutName         string           `json:"layout_name" yaml:"layout_name"`
	Properties         []propertyRecord `json:"properties" yaml:"properties"`
	NumberedProperties []numberedRecord `json:"numbered_properties" yaml:"numbered_properties"`
	PropertySets       *int             `json:"property_sets" yaml:"property_sets"`
	Script             string           `json:"script" yaml:"script"`
}

type propertyRecord struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	Default any    `json:"default" yaml:"default"`
}

type numberedRecord struct {
	NameTemplate string `json:"name_template" yaml:"name_template"`
	Type         string `json:"type" yaml:"type"`
	Default      any    `json:"default" yaml:"default"`
}

// documentRecord supports catalogs wrapped in a components key in addition to
// a bare top-level list.
type documentRecord struct {
	Components []templateRecord `json:"components" yaml:"components"`
}

// Parse decodes, validates, and normalizes a template document. Templates are
// returned in document order. The first invalid template aborts the parse;
// nothing partial is returned.
func (p *Parser) Parse(ctx context.Context, doc pkgtemplate.Document) ([]pkgtemplate.ComponentTemplate, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := decode(doc.Raw())
	if err != nil {
		return nil, err
	}

	templates := make([]pkgtemplate.ComponentTemplate, 0, len(records))
	for index, record := range records {
		tmpl, err := buildTemplate(record)
		if err != nil {
			return nil, fmt.Errorf("template parser: record %d: %w", index, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

func decode(raw []byte) ([]templateRecord, error) {
	if looksLikeJSON(raw) {
		return decodeJSON(raw)
	}
	return decodeYAML(raw)
}

// looksLikeJSON sniffs the first meaningful byte. JSONC comments count as
// JSON; everything else falls through to the YAML decoder.
func looksLikeJSON(raw []byte) bool {
	trimmed := bytes.TrimLeftFunc(raw, unicode.IsSpace)
	if len(trimmed) == 0 {
		return false
	}
	switch trimmed[0] {
	case '[', '{', '/':
		return true
	}
	return false
}

func decodeJSON(raw []byte) ([]templateRecord, error) {
	clean := jsonc.ToJSON(raw)

	// A list-form catalog keeps the list decoder's error so a malformed
	// record is reported instead of the wrapper fallback's shape complaint.
	trimmed := bytes.TrimLeftFunc(clean, unicode.IsSpace)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []templateRecord
		if err := json.Unmarshal(clean, &records); err != nil {
			return nil, &pkgtemplate.ValidationError{Field: "document", Reason: "not a valid JSON template catalog: " + err.Error()}
		}
		return records, nil
	}

	var wrapped documentRecord
	if err := json.Unmarshal(clean, &wrapped); err != nil {
		return nil, &pkgtemplate.ValidationError{Field: "document", Reason: "not a valid JSON template catalog: " + err.Error()}
	}
	if wrapped.Components == nil {
		return nil, &pkgtemplate.ValidationError{Field: "document", Reason: "JSON catalog must be a template list or carry a components key"}
	}
	return wrapped.Components, nil
}

func decodeYAML(raw []byte) ([]templateRecord, error) {
	var records []templateRecord
	if err := yaml.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	var wrapped documentRecord
	if err := yaml.Unmarshal(raw, &wrapped); err != nil {
		return nil, &pkgtemplate.ValidationError{Field: "document", Reason: "not a valid YAML template catalog: " + err.Error()}
	}
	if wrapped.Components == nil {
		return nil, &pkgtemplate.ValidationError{Field: "document", Reason: "YAML catalog must be a template list or carry a components key"}
	}
	return wrapped.Components, nil
}

// buildTemplate converts one record into a validated ComponentTemplate with
// coerced defaults. Validation failures surface as template.ValidationError;
// a default whose representation disagrees with its declared type surfaces as
// the coercion layer's TypeMismatchError.
func buildTemplate(record templateRecord) (pkgtemplate.ComponentTemplate, error) {
	tmpl := pkgtemplate.ComponentTemplate{
		Name:         record.Name,
		Folder:       record.Folder,
		LayoutName:   record.LayoutName,
		Script:       record.Script,
		PropertySets: 1,
	}

	if record.PropertySets != nil {
		if len(record.NumberedProperties) > 0 && *record.PropertySets <= 0 {
			return pkgtemplate.ComponentTemplate{}, &pkgtemplate.ValidationError{
				Template: tmpl.Identity(),
				Field:    "property_sets",
				Reason:   fmt.Sprintf("must be a positive integer, got %d", *record.PropertySets),
			}
		}
		tmpl.PropertySets = *record.PropertySets
	}

	for _, prop := range record.Properties {
		declaration := pkgtemplate.PropertyDeclaration{
			Name: prop.Name,
			Type: pkgtemplate.PropertyType(prop.Type),
		}
		value, err := normalizeDefault(tmpl, "properties", prop.Name, declaration.Type, prop.Default)
		if err != nil {
			return pkgtemplate.ComponentTemplate{}, err
		}
		declaration.Default = value
		tmpl.Properties = append(tmpl.Properties, declaration)
	}

	for _, rule := range record.NumberedProperties {
		numbered := pkgtemplate.NumberedPropertyRule{
			NameTemplate: rule.NameTemplate,
			Type:         pkgtemplate.PropertyType(rule.Type),
		}
		value, err := normalizeDefault(tmpl, "numbered_properties", rule.NameTemplate, numbered.Type, rule.Default)
		if err != nil {
			return pkgtemplate.ComponentTemplate{}, err
		}
		numbered.Default = value
		tmpl.NumberedProperties = append(tmpl.NumberedProperties, numbered)
	}

	if err := tmpl.Validate(); err != nil {
		return pkgtemplate.ComponentTemplate{}, err
	}
	return tmpl, nil
}

// normalizeDefault runs structural checks before coercion so an unknown type
// tag reports as a validation error rather than a mismatch. The owning field
// ("properties" or "numbered_properties") names the failure when the
// declaration itself has no usable name.
func normalizeDefault(tmpl pkgtemplate.ComponentTemplate, field, name string, typ pkgtemplate.PropertyType, raw any) (any, error) {
	if name == "" {
		reason := "property name is required"
		if field == "numbered_properties" {
			reason = "name_template is required"
		}
		return nil, &pkgtemplate.ValidationError{Template: tmpl.Identity(), Field: field, Reason: reason}
	}
	if !typ.Valid() {
		return nil, &pkgtemplate.ValidationError{Template: tmpl.Identity(), Field: name, Reason: "unknown type " + string(typ)}
	}
	return expand.Coerce(name, typ, raw)
}
