package driver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cybertec-postgresql/dbal/internal/errors"
)

// Registry maps driver names to drivers.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{drivers: make(map[string]Driver)}
}

// Register adds d under name. It panics on duplicates like database/sql.
func (r *Registry) Register(name string, d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d == nil {
		panic("driver: Register driver is nil")
	}
	if _, dup := r.drivers[name]; dup {
		panic("driver: Register called twice for driver " + name)
	}
	r.drivers[name] = d
}

// Lookup returns the driver registered under name.
func (r *Registry) Lookup(name string) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drivers[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", errors.ErrUnknownDriver, name, r.names())
	}
	return d, nil
}

// Drivers returns the sorted names of the registered drivers.
func (r *Registry) Drivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Register adds d to the default registry.
func Register(name string, d Driver) {
	defaultRegistry.Register(name, d)
}

// Lookup finds a driver in the default registry.
func Lookup(name string) (Driver, error) {
	return defaultRegistry.Lookup(name)
}

// Drivers lists the drivers of the default registry.
func Drivers() []string {
	return defaultRegistry.Drivers()
}

// DefaultRegistry returns the registry drivers add themselves to in init.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
