package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/simkit/compgen/internal/expand"
	"github.com/simkit/compgen/pkg/testsupport"
	pkgtemplate "github.com/simkit/compgen/pkg/template"
)

func TestParseCatalogJSONC(t *testing.T) {
	doc := testsupport.LoadDocument(t, filepath.Join("testdata", "components.jsonc"))

	templates, err := New().Parse(testsupport.Context(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(templates) != 6 {
		t.Fatalf("expected 6 templates, got %d", len(templates))
	}

	robot := templates[5]
	if diff := cmp.Diff(testsupport.RobotTemplate(), robot); diff != "" {
		t.Fatalf("robot template mismatch (-want +got):\n%s", diff)
	}

	inputConveyor := templates[3]
	if diff := cmp.Diff(testsupport.InputConveyorTemplate(), inputConveyor); diff != "" {
		t.Fatalf("input conveyor mismatch (-want +got):\n%s", diff)
	}

	blockGeo := templates[2]
	if blockGeo.Script != "" || len(blockGeo.Properties) != 0 {
		t.Fatalf("expected bare layout clone, got %+v", blockGeo)
	}
	if blockGeo.PropertySets != 1 {
		t.Fatalf("expected omitted property_sets to default to 1, got %d", blockGeo.PropertySets)
	}
}

func TestParseCatalogYAML(t *testing.T) {
	doc := testsupport.LoadDocument(t, filepath.Join("testdata", "components.yaml"))

	templates, err := New().Parse(testsupport.Context(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}

	conveyor := templates[1]
	if conveyor.PropertySets != 2 {
		t.Fatalf("expected 2 property sets, got %d", conveyor.PropertySets)
	}
	if got := conveyor.Properties[0].Default; got != float64(0) {
		t.Fatalf("expected YAML integer default normalized to float64, got %v (%T)", got, got)
	}
	if got := conveyor.NumberedProperties[0].Default; got != false {
		t.Fatalf("expected boolean default preserved, got %v (%T)", got, got)
	}
}

func TestParseNormalizesNumericDefaults(t *testing.T) {
	raw := []byte(`[{"name": "C", "folder": "F", "properties": [{"name": "count", "type": "number", "default": 160}]}]`)
	doc := pkgtemplate.MustNewDocument(pkgtemplate.SourceFromFile("inline.json"), raw)

	templates, err := New().Parse(testsupport.Context(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := templates[0].Properties[0].Default; got != float64(160) {
		t.Fatalf("expected float64 default, got %v (%T)", got, got)
	}
}

func TestParseRejectsMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		field string
	}{
		{name: "missing name", raw: `[{"folder": "F"}]`, field: "name"},
		{name: "missing folder", raw: `[{"name": "C"}]`, field: "folder"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := pkgtemplate.MustNewDocument(pkgtemplate.SourceFromFile("inline.json"), []byte(tc.raw))
			_, err := New().Parse(testsupport.Context(), doc)

			var invalid *pkgtemplate.ValidationError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if invalid.Field != tc.field {
				t.Fatalf("expected failure on %q, got %q", tc.field, invalid.Field)
			}
		})
	}
}

func TestParseRejectsUnknownType(t *testing.T) {
	raw := []byte(`[{"name": "C", "folder": "F", "properties": [{"name": "p", "type": "decimal", "default": 0}]}]`)
	doc := pkgtemplate.MustNewDocument(pkgtemplate.SourceFromFile("inline.json"), raw)

	_, err := New().Parse(testsupport.Context(), doc)
	var invalid *pkgtemplate.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestParseRejectsNonPositivePropertySets(t *testing.T) {
	raw := []byte(`[{
		"name": "C", "folder": "F",
		"numbered_properties": [{"name_template": "p", "type": "string", "default": ""}],
		"property_sets": 0
	}]`)
	doc := pkgtemplate.MustNewDocument(pkgtemplate.SourceFromFile("inline.json"), raw)

	_, err := New().Parse(testsupport.Context(), doc)
	var invalid *pkgtemplate.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if invalid.Field != "property_sets" {
		t.Fatalf("expected property_sets failure, got %q", invalid.Field)
	}
}

func TestParseRejectsMismatchedDefault(t *testing.T) {
	raw := []byte(`[{"name": "C", "folder": "F", "properties": [{"name": "count", "type": "number", "default": "abc"}]}]`)
	doc := pkgtemplate.MustNewDocument(pkgtemplate.SourceFromFile("inline.json"), raw)

	_, err := New().Parse(testsupport.Context(), doc)
	var mismatch *expand.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
}

func TestParseNamesNumberedRuleFieldOnMissingNameTemplate(t *testing.T) {
	raw := []byte(`[{
		"name": "C", "folder": "F",
		"numbered_properties": [{"type": "string", "default": ""}]
	}]`)
	doc := pkgtemplate.MustNewDocument(pkgtemplate.SourceFromFile("inline.json"), raw)

	_, err := New().Parse(testsupport.Context(), doc)
	var invalid *pkgtemplate.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if invalid.Field != "numbered_properties" {
		t.Fatalf("expected numbered_properties failure, got %q", invalid.Field)
	}
}

func TestParseListCatalogReportsRecordLevelError(t *testing.T) {
	raw := []byte(`[{"name": 3, "folder": "F"}]`)
	doc := pkgtemplate.MustNewDocument(pkgtemplate.SourceFromFile("inline.json"), raw)

	_, err := New().Parse(testsupport.Context(), doc)
	var invalid *pkgtemplate.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(invalid.Reason, "cannot unmarshal number") {
		t.Fatalf("expected the record-level decode error, got %q", invalid.Reason)
	}
	if strings.Contains(invalid.Reason, "documentRecord") {
		t.Fatalf("wrapper fallback error leaked through: %q", invalid.Reason)
	}
}

func TestParseRejectsMalformedDocument(t *testing.T) {
	doc := pkgtemplate.MustNewDocument(pkgtemplate.SourceFromFile("inline.json"), []byte(`{"not": "a catalog"}`))

	_, err := New().Parse(testsupport.Context(), doc)
	var invalid *pkgtemplate.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestParseHonoursContextCancellation(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "components.jsonc"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	doc := pkgtemplate.MustNewDocument(pkgtemplate.SourceFromFile("components.jsonc"), data)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Parse(ctx, doc); err == nil {
		t.Fatal("expected context error")
	}
}
