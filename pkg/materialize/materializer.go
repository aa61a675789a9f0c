// Package materialize orchestrates the per-template host calls that turn an
// expanded component template into a live entity: resolve a base entity by
// cloning or primitive creation, place it under its folder, attach every
// expanded property, and bind the optional behavior script. This is the only
// package that touches the host session.
package materialize

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/simkit/compgen/pkg/expand"
	"github.com/simkit/compgen/pkg/host"
	"github.com/simkit/compgen/pkg/template"
)

// FailurePolicy decides what a batch run does after a template fails. The
// choice belongs to the caller; the materializer has no implicit default
// beyond the documented FailFast.
type FailurePolicy string

const (
	// FailFast stops the batch at the first failed template.
	FailFast FailurePolicy = "fail-fast"

	// ContinueOnError records the failure and moves to the next template.
	// Templates share no transactional state, so later templates are
	// unaffected by an earlier failure.
	ContinueOnError FailurePolicy = "continue"
)

// MaterializedComponent pairs a template with its expanded property list and
// the entity the host created for it. It exists only as the transient product
// of one materialization; nothing persists it.
type MaterializedComponent struct {
	Template   template.ComponentTemplate
	Properties []expand.Property
	Entity     host.EntityHandle
}

// Result records the outcome for one template in a batch run.
type Result struct {
	Template   string
	Entity     host.EntityHandle
	Properties int
	Err        error
}

// Report collects per-template outcomes in processing order.
type Report struct {
	Results []Result
}

// Failed returns the results that carry an error.
func (r Report) Failed() []Result {
	var failed []Result
	for _, result := range r.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// Option customises the materializer configuration.
type Option func(*Materializer)

// WithLogger injects a structured logger. The default is a no-op logger so
// library use stays silent.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Materializer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithFailurePolicy selects the batch behavior after a failed template.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(m *Materializer) {
		m.policy = policy
	}
}

// WithExpander injects a custom expansion engine.
func WithExpander(expander *expand.Expander) Option {
	return func(m *Materializer) {
		if expander != nil {
			m.expander = expander
		}
	}
}

// Materializer drives the one-shot, order-dependent creation sequence for
// each template. Calls into the session are blocking and serialized; the
// session is assumed single-writer.
type Materializer struct {
	expander *expand.Expander
	logger   *zap.Logger
	policy   FailurePolicy
}

// New constructs a Materializer applying any provided options.
func New(options ...Option) *Materializer {
	m := &Materializer{
		expander: expand.New(),
		logger:   zap.NewNop(),
		policy:   FailFast,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

// Materialize expands one template and performs the create → place → attach →
// bind sequence against the session. Expansion and validation errors are
// returned as-is (the template never reaches the host); host rejections come
// back as *Error with the failing stage. There are no retries.
func (m *Materializer) Materialize(ctx context.Context, session host.Session, tmpl template.ComponentTemplate) (MaterializedComponent, error) {
	if ctx == nil {
		return MaterializedComponent{}, errors.New("materialize: context is required")
	}
	if session == nil {
		return MaterializedComponent{}, errors.New("materialize: host session is required")
	}

	properties, err := m.expander.Expand(tmpl)
	if err != nil {
		return MaterializedComponent{}, err
	}

	identity := tmpl.Identity()
	m.logger.Info("materializing component",
		zap.String("template", identity),
		zap.String("folder", tmpl.Folder),
		zap.String("layout", tmpl.LayoutName),
		zap.Int("properties", len(properties)),
	)

	entity, err := session.CloneOrCreate(ctx, tmpl.LayoutName)
	if err != nil {
		return MaterializedComponent{}, &Error{Template: identity, Stage: StageCloneOrCreate, Err: err}
	}

	if err := session.Place(ctx, entity, tmpl.Folder); err != nil {
		return MaterializedComponent{}, &Error{Template: identity, Stage: StagePlace, Err: err}
	}

	for _, property := range properties {
		if err := session.SetProperty(ctx, entity, property.Name, property.Type, property.Default); err != nil {
			return MaterializedComponent{}, &Error{Template: identity, Stage: StageSetProperty, Err: err}
		}
	}

	if tmpl.Script != "" {
		if err := session.BindBehavior(ctx, entity, tmpl.Script); err != nil {
			return MaterializedComponent{}, &Error{Template: identity, Stage: StageBindBehavior, Err: err}
		}
	}

	m.logger.Info("component materialized",
		zap.String("template", identity),
		zap.String("entity", string(entity)),
	)

	return MaterializedComponent{Template: tmpl, Properties: properties, Entity: entity}, nil
}

// Run materializes a batch of templates sequentially, in the order supplied.
// Under FailFast the first failure stops the run and is returned alongside
// the partial report. Under ContinueOnError every template is attempted and
// failures are recorded per result; callers inspect Report.Failed().
func (m *Materializer) Run(ctx context.Context, session host.Session, templates []template.ComponentTemplate) (Report, error) {
	var report Report
	for _, tmpl := range templates {
		component, err := m.Materialize(ctx, session, tmpl)
		result := Result{
			Template:   tmpl.Identity(),
			Entity:     component.Entity,
			Properties: len(component.Properties),
			Err:        err,
		}
		report.Results = append(report.Results, result)

		if err == nil {
			continue
		}
		m.logger.Error("materialization failed",
			zap.String("template", tmpl.Identity()),
			zap.Error(err),
		)
		if m.policy == FailFast {
			return report, err
		}
	}
	return report, nil
}
