package materialize_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simkit/compgen/pkg/expand"
	"github.com/simkit/compgen/pkg/host/memory"
	"github.com/simkit/compgen/pkg/materialize"
	"github.com/simkit/compgen/pkg/template"
	"github.com/simkit/compgen/pkg/testsupport"
)

func openSession(t *testing.T, options ...memory.Option) *memory.Session {
	t.Helper()
	session, err := memory.New(options...).Open(context.Background())
	require.NoError(t, err)
	return session.(*memory.Session)
}

func TestMaterializeFullSequence(t *testing.T) {
	session := openSession(t,
		memory.WithLayouts("_Template_Mobile_Robot_Resource"),
		memory.WithScripts("Robot"),
	)

	tmpl := testsupport.RobotTemplate()
	component, err := materialize.New().Materialize(testsupport.Context(), session, tmpl)
	require.NoError(t, err)
	require.NotEmpty(t, component.Entity)
	assert.Len(t, component.Properties, 2+9*4)

	entities := session.Snapshot()
	require.Len(t, entities, 1)
	created := entities[0]
	assert.Equal(t, "_Template_Mobile_Robot_Resource", created.Layout)
	assert.Equal(t, "Mobile Robots", created.Folder)
	assert.Equal(t, "Robot", created.Script)
	require.Len(t, created.Properties, 2+9*4)
	assert.Equal(t, "robotQuantity", created.Properties[0].Name)
	assert.Equal(t, "location1", created.Properties[2].Name)
	assert.Equal(t, "location4", created.Properties[5].Name)
	assert.Equal(t, "nextLocation1", created.Properties[6].Name)
}

func TestMaterializePrimitiveWithoutScript(t *testing.T) {
	session := openSession(t)

	tmpl := template.ComponentTemplate{Name: "Pathway Area", Folder: "Navigation"}
	component, err := materialize.New().Materialize(testsupport.Context(), session, tmpl)
	require.NoError(t, err)
	require.NotEmpty(t, component.Entity)

	entities := session.Snapshot()
	require.Len(t, entities, 1)
	assert.True(t, entities[0].Primitive)
	assert.Empty(t, entities[0].Script)
}

func TestMaterializeExpansionErrorNeverReachesHost(t *testing.T) {
	session := openSession(t)

	tmpl := template.ComponentTemplate{
		Name:   "Broken",
		Folder: "F",
		Properties: []template.PropertyDeclaration{
			{Name: "count", Type: template.PropertyTypeNumber, Default: "abc"},
		},
	}

	_, err := materialize.New().Materialize(testsupport.Context(), session, tmpl)
	var mismatch *expand.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Empty(t, session.Snapshot(), "host must not be touched on expansion failure")
}

func TestMaterializeWrapsHostRejection(t *testing.T) {
	session := openSession(t) // no layouts seeded

	tmpl := template.ComponentTemplate{
		Name:       "Conveyor",
		Folder:     "Conveyors",
		LayoutName: "_Template_OutputConveyor",
	}

	_, err := materialize.New().Materialize(testsupport.Context(), session, tmpl)
	var hostErr *materialize.Error
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, materialize.StageCloneOrCreate, hostErr.Stage)
	assert.Equal(t, "Conveyor (_Template_OutputConveyor)", hostErr.Template)
	assert.Error(t, errors.Unwrap(hostErr))
}

func TestMaterializeBindFailureReportsStage(t *testing.T) {
	session := openSession(t) // no scripts registered

	tmpl := template.ComponentTemplate{
		Name:   "Pathway Area",
		Folder: "Navigation",
		Script: "PathwayArea",
	}

	_, err := materialize.New().Materialize(testsupport.Context(), session, tmpl)
	var hostErr *materialize.Error
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, materialize.StageBindBehavior, hostErr.Stage)
}

func TestRunFailFastStopsAtFirstFailure(t *testing.T) {
	session := openSession(t) // cloning anything fails

	templates := []template.ComponentTemplate{
		{Name: "First", Folder: "F"},
		{Name: "Broken", Folder: "F", LayoutName: "_Missing"},
		{Name: "Never", Folder: "F"},
	}

	report, err := materialize.New(materialize.WithFailurePolicy(materialize.FailFast)).
		Run(testsupport.Context(), session, templates)
	require.Error(t, err)
	require.Len(t, report.Results, 2)
	assert.NoError(t, report.Results[0].Err)
	assert.Error(t, report.Results[1].Err)
	assert.Len(t, session.Snapshot(), 1)
}

func TestRunContinueOnErrorProcessesAllTemplates(t *testing.T) {
	session := openSession(t)

	templates := []template.ComponentTemplate{
		{Name: "First", Folder: "F"},
		{Name: "Broken", Folder: "F", LayoutName: "_Missing"},
		{Name: "Last", Folder: "F"},
	}

	report, err := materialize.New(materialize.WithFailurePolicy(materialize.ContinueOnError)).
		Run(testsupport.Context(), session, templates)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "Broken (_Missing)", failed[0].Template)
	assert.Len(t, session.Snapshot(), 2)
}
