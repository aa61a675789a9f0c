// Package memory provides an in-memory host driver. It backs the pipeline's
// tests and the CLI's dry-run mode: entity creation, placement, property
// attachment, and behavior binding all succeed against process-local state,
// with the same failure modes a real host exhibits (unknown layouts, unknown
// script capabilities, stale entity handles).
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/simkit/compgen/pkg/host"
	"github.com/simkit/compgen/pkg/template"
)

// DriverName is the name the driver registers under.
const DriverName = "memory"

// Option customises the driver configuration.
type Option func(*Driver)

// WithLayouts seeds the layout library. CloneOrCreate fails for any layout
// name outside this set, mirroring a host whose template layout is missing
// from the open simulation.
func WithLayouts(names ...string) Option {
	return func(d *Driver) {
		for _, name := range names {
			d.layouts[name] = struct{}{}
		}
	}
}

// WithScripts registers the behavior capabilities the host can resolve.
// BindBehavior rejects identifiers outside this set.
func WithScripts(names ...string) Option {
	return func(d *Driver) {
		for _, name := range names {
			d.scripts[name] = struct{}{}
		}
	}
}

// Driver opens in-memory sessions. Each session owns independent entity
// state; the layout library and script capabilities are shared.
type Driver struct {
	layouts map[string]struct{}
	scripts map[string]struct{}
}

var _ host.Driver = (*Driver)(nil)

// New constructs a Driver applying any provided options.
func New(options ...Option) *Driver {
	d := &Driver{
		layouts: make(map[string]struct{}),
		scripts: make(map[string]struct{}),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// Name implements host.Driver.
func (d *Driver) Name() string {
	return DriverName
}

// Open implements host.Driver.
func (d *Driver) Open(ctx context.Context) (host.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Session{
		driver:   d,
		entities: make(map[host.EntityHandle]*Entity),
	}, nil
}

// Property records one attached property in attachment order.
type Property struct {
	Name    string
	Type    template.PropertyType
	Default any
}

// Entity is the session-local record of one created entity.
type Entity struct {
	Handle     host.EntityHandle
	Layout     string
	Primitive  bool
	Folder     string
	Properties []Property
	Script     string
}

// Session implements host.Session against process-local state. The pipeline
// serializes its calls, but the mutex keeps the session safe for concurrent
// inspection from tests.
type Session struct {
	driver   *Driver
	mu       sync.Mutex
	entities map[host.EntityHandle]*Entity
	order    []host.EntityHandle
}

var _ host.Session = (*Session)(nil)

// CloneOrCreate implements host.Session. An empty layout name creates a
// primitive placeholder; a non-empty name must exist in the layout library.
func (s *Session) CloneOrCreate(ctx context.Context, layoutName string) (host.EntityHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if layoutName != "" {
		if _, ok := s.driver.layouts[layoutName]; !ok {
			return "", fmt.Errorf("memory host: layout %q not found", layoutName)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	handle := host.EntityHandle(uuid.NewString())
	s.entities[handle] = &Entity{
		Handle:    handle,
		Layout:    layoutName,
		Primitive: layoutName == "",
	}
	s.order = append(s.order, handle)
	return handle, nil
}

// Place implements host.Session.
func (s *Session) Place(ctx context.Context, entity host.EntityHandle, folder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if folder == "" {
		return fmt.Errorf("memory host: folder is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookup(entity)
	if err != nil {
		return err
	}
	record.Folder = folder
	return nil
}

// SetProperty implements host.Session. Properties are recorded in attachment
// order; attaching the same name twice is a host-side error because property
// panels bind by name.
func (s *Session) SetProperty(ctx context.Context, entity host.EntityHandle, name string, typ template.PropertyType, defaultValue any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("memory host: property name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookup(entity)
	if err != nil {
		return err
	}
	for _, existing := range record.Properties {
		if existing.Name == name {
			return fmt.Errorf("memory host: property %q already attached to entity %s", name, entity)
		}
	}
	record.Properties = append(record.Properties, Property{Name: name, Type: typ, Default: defaultValue})
	return nil
}

// BindBehavior implements host.Session. The script identifier must resolve
// against the driver's registered capabilities.
func (s *Session) BindBehavior(ctx context.Context, entity host.EntityHandle, script string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if script == "" {
		return fmt.Errorf("memory host: script reference is required")
	}
	if _, ok := s.driver.scripts[script]; !ok {
		return fmt.Errorf("memory host: script capability %q not registered", script)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookup(entity)
	if err != nil {
		return err
	}
	record.Script = script
	return nil
}

// Snapshot returns a deep copy of all entities in creation order.
func (s *Session) Snapshot() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entity, 0, len(s.order))
	for _, handle := range s.order {
		record := s.entities[handle]
		clone := *record
		clone.Properties = append([]Property(nil), record.Properties...)
		out = append(out, clone)
	}
	return out
}

func (s *Session) lookup(entity host.EntityHandle) (*Entity, error) {
	record, ok := s.entities[entity]
	if !ok {
		return nil, fmt.Errorf("memory host: unknown entity handle %s", entity)
	}
	return record, nil
}
