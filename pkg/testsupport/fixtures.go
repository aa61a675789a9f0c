// Package testsupport provides fixture loading and golden-file helpers shared
// by the contract tests across packages.
package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgtemplate "github.com/simkit/compgen/pkg/template"
)

// LoadDocument reads a fixture and builds a template.Document using a file
// source. Testing helpers fail the test on error to keep contract tests
// concise.
func LoadDocument(t *testing.T, path string) pkgtemplate.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T,
// allowing callers to wire fixtures in setup functions.
func LoadDocumentFromPath(path string) (pkgtemplate.Document, error) {
	if path == "" {
		return pkgtemplate.Document{}, errors.New("testsupport: document path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pkgtemplate.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := pkgtemplate.NewDocument(pkgtemplate.SourceFromFile(path), data)
	if err != nil {
		return pkgtemplate.Document{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc, nil
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// RobotTemplate builds the mobile-robot fixture: two base properties plus
// nine numbered rules over four sets, matching the catalog testdata.
func RobotTemplate() pkgtemplate.ComponentTemplate {
	return pkgtemplate.ComponentTemplate{
		Name:       "Mobile Robot Resource",
		Folder:     "Mobile Robots",
		LayoutName: "_Template_Mobile_Robot_Resource",
		Properties: []pkgtemplate.PropertyDeclaration{
			{Name: "robotQuantity", Type: pkgtemplate.PropertyTypeNumber, Default: float64(0)},
			{Name: "initialPositions", Type: pkgtemplate.PropertyTypeString, Default: ""},
		},
		NumberedProperties: []pkgtemplate.NumberedPropertyRule{
			{NameTemplate: "location", Type: pkgtemplate.PropertyTypeString, Default: "initial"},
			{NameTemplate: "nextLocation", Type: pkgtemplate.PropertyTypeString, Default: ""},
			{NameTemplate: "batteryLevel", Type: pkgtemplate.PropertyTypeNumber, Default: float64(100)},
			{NameTemplate: "target", Type: pkgtemplate.PropertyTypeString, Default: ""},
			{NameTemplate: "stop", Type: pkgtemplate.PropertyTypeBoolean, Default: false},
			{NameTemplate: "priority", Type: pkgtemplate.PropertyTypeNumber, Default: float64(1)},
			{NameTemplate: "carryingProduct", Type: pkgtemplate.PropertyTypeBoolean, Default: false},
			{NameTemplate: "carriedProduct", Type: pkgtemplate.PropertyTypeString, Default: ""},
			{NameTemplate: "maxSpeed", Type: pkgtemplate.PropertyTypeNumber, Default: float64(0)},
		},
		PropertySets: 4,
		Script:       "Robot",
	}
}

// InputConveyorTemplate builds the two-set input conveyor fixture.
func InputConveyorTemplate() pkgtemplate.ComponentTemplate {
	return pkgtemplate.ComponentTemplate{
		Name:       "Conveyor",
		Folder:     "Conveyors",
		LayoutName: "_Template_InputConveyor",
		Properties: []pkgtemplate.PropertyDeclaration{
			{Name: "inputconveyorQuantity", Type: pkgtemplate.PropertyTypeNumber, Default: float64(0)},
			{Name: "inputconveyorProperties", Type: pkgtemplate.PropertyTypeString, Default: ""},
		},
		NumberedProperties: []pkgtemplate.NumberedPropertyRule{
			{NameTemplate: "produced", Type: pkgtemplate.PropertyTypeBoolean, Default: false},
			{NameTemplate: "productType", Type: pkgtemplate.PropertyTypeString, Default: "Component"},
			{NameTemplate: "clonetimeInterval", Type: pkgtemplate.PropertyTypeNumber, Default: float64(160)},
			{NameTemplate: "cloneCount", Type: pkgtemplate.PropertyTypeNumber, Default: float64(0)},
		},
		PropertySets: 2,
		Script:       "InputConveyor",
	}
}
