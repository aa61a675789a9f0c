// Package orchestrator coordinates the full pipeline from declarative
// template document to materialized simulation entities: load → parse →
// expand → materialize. It applies sensible defaults (memory host driver,
// built-in loader and parser) while remaining open to dependency injection
// for advanced callers.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	internalloader "github.com/simkit/compgen/internal/template/loader"
	internalparser "github.com/simkit/compgen/internal/template/parser"
	"github.com/simkit/compgen/pkg/expand"
	"github.com/simkit/compgen/pkg/host"
	"github.com/simkit/compgen/pkg/host/memory"
	"github.com/simkit/compgen/pkg/materialize"
	"github.com/simkit/compgen/pkg/template"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom template loader.
func WithLoader(loader template.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithParser injects a custom template parser.
func WithParser(parser template.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithExpander injects a custom expansion engine.
func WithExpander(expander *expand.Expander) Option {
	return func(o *Orchestrator) {
		o.expander = expander
	}
}

// WithMaterializer injects a custom materializer.
func WithMaterializer(materializer *materialize.Materializer) Option {
	return func(o *Orchestrator) {
		o.materializer = materializer
	}
}

// WithRegistry injects a host driver registry.
func WithRegistry(registry *host.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultDriver overrides the driver used when a request omits an
// explicit Driver field.
func WithDefaultDriver(name string) Option {
	return func(o *Orchestrator) {
		o.defaultDriver = name
	}
}

// WithLogger injects a structured logger shared with the default
// materializer.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFailurePolicy selects the batch failure policy for the default
// materializer. Ignored when WithMaterializer supplies one.
func WithFailurePolicy(policy materialize.FailurePolicy) Option {
	return func(o *Orchestrator) {
		o.policy = policy
	}
}

const defaultDriverName = memory.DriverName

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	loader          template.Loader
	parser          template.Parser
	expander        *expand.Expander
	materializer    *materialize.Materializer
	registry        *host.Registry
	logger          *zap.Logger
	policy          materialize.FailurePolicy
	defaultDriver   string
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations so callers
// can start with a single constructor call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultDriver: defaultDriverName,
		logger:        zap.NewNop(),
		policy:        materialize.FailFast,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to process a template catalog.
type Request struct {
	// Source identifies where the template document lives. Optional when
	// Document or Templates is supplied.
	Source template.Source

	// Document allows callers to bypass the loader when they already have a
	// raw payload.
	Document *template.Document

	// Templates bypasses loading and parsing entirely.
	Templates []template.ComponentTemplate

	// Session supplies an open host session directly. When nil, Apply opens
	// one through the driver registry.
	Session host.Session

	// Driver names the registered host driver to open when Session is nil.
	// If empty, the orchestrator falls back to the configured default.
	Driver string
}

// ComponentPlan pairs a template with its expanded property list without
// touching any host.
type ComponentPlan struct {
	Template   template.ComponentTemplate `json:"template" yaml:"template"`
	Properties []expand.Property          `json:"properties" yaml:"properties"`
}

// Load resolves and parses the request's template catalog.
func (o *Orchestrator) Load(ctx context.Context, req Request) ([]template.ComponentTemplate, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.Templates != nil {
		return req.Templates, nil
	}

	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}

	templates, err := o.parser.Parse(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse templates: %w", err)
	}
	return templates, nil
}

// Plan loads the catalog and expands every template without host interaction.
// Expansion failures abort the plan; nothing partial is returned.
func (o *Orchestrator) Plan(ctx context.Context, req Request) ([]ComponentPlan, error) {
	templates, err := o.Load(ctx, req)
	if err != nil {
		return nil, err
	}

	plans := make([]ComponentPlan, 0, len(templates))
	for _, tmpl := range templates {
		properties, err := o.expander.Expand(tmpl)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: expand template %q: %w", tmpl.Identity(), err)
		}
		plans = append(plans, ComponentPlan{Template: tmpl, Properties: properties})
	}
	return plans, nil
}

// Apply loads the catalog and materializes it against a host session. The
// materializer's failure policy decides whether a failed template aborts the
// batch or is recorded and skipped.
func (o *Orchestrator) Apply(ctx context.Context, req Request) (materialize.Report, error) {
	templates, err := o.Load(ctx, req)
	if err != nil {
		return materialize.Report{}, err
	}

	session, err := o.resolveSession(ctx, req)
	if err != nil {
		return materialize.Report{}, err
	}

	return o.materializer.Run(ctx, session, templates)
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (template.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return template.Document{}, errors.New("orchestrator: source, document, or templates is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return template.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) resolveSession(ctx context.Context, req Request) (host.Session, error) {
	if req.Session != nil {
		return req.Session, nil
	}
	if o.registry == nil {
		return nil, errors.New("orchestrator: host registry is nil")
	}

	target := req.Driver
	if target == "" {
		target = o.defaultDriver
	}

	driver, err := o.registry.Get(target)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	session, err := driver.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: open host session: %w", err)
	}
	return session, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.loader == nil {
		o.loader = internalloader.New(template.NewLoaderOptions())
	}
	if o.parser == nil {
		o.parser = internalparser.New()
	}
	if o.expander == nil {
		o.expander = expand.New()
	}
	if o.materializer == nil {
		o.materializer = materialize.New(
			materialize.WithExpander(o.expander),
			materialize.WithLogger(o.logger),
			materialize.WithFailurePolicy(o.policy),
		)
	}
	if o.registry == nil {
		o.registry = host.NewRegistry()
		o.registry.MustRegister(memory.New())
	}
	if o.defaultDriver == "" {
		o.defaultDriver = defaultDriverName
	}

	o.defaultsApplied = true
}
