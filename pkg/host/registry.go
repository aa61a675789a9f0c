package host

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Driver opens sessions against a particular host implementation. Drivers are
// registered by name so callers (the CLI in particular) can select a host
// without linking against its package directly.
type Driver interface {
	Name() string
	Open(ctx context.Context) (Session, error)
}

// Registry stores drivers by name, providing discovery and duplication
// safeguards.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]Driver),
	}
}

// Register adds a driver by its Name(). Duplicate names return an error.
func (r *Registry) Register(driver Driver) error {
	if driver == nil {
		return fmt.Errorf("host: driver is required")
	}
	name := driver.Name()
	if name == "" {
		return fmt.Errorf("host: driver name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[name]; exists {
		return fmt.Errorf("host: driver %q already registered", name)
	}

	r.drivers[name] = driver
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(driver Driver) {
	if err := r.Register(driver); err != nil {
		panic(err)
	}
}

// Get retrieves a driver by name.
func (r *Registry) Get(name string) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	driver, ok := r.drivers[name]
	if !ok {
		return nil, fmt.Errorf("host: driver %q not found", name)
	}
	return driver, nil
}

// List returns a sorted list of driver names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a driver is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.drivers[name]
	return ok
}
