// Package di provides a dependency injection container with singleton,
// scoped and transient lifetimes. The registration table is assembled
// through a Builder and closed for mutation at Build time; resolution is
// read-only afterwards and safe for concurrent use.
package di

import (
	"sync"
)

// Lifetime is the construction and sharing policy of a registered service.
type Lifetime string

const (
	// Singleton services are constructed once and shared for the process lifetime.
	Singleton Lifetime = "singleton"
	// Scoped services are constructed once per scope and shared within it.
	Scoped Lifetime = "scoped"
	// Transient services are constructed fresh on every resolution.
	Transient Lifetime = "transient"
)

// Factory constructs a service instance. The resolver it receives resolves
// the service's own dependencies and participates in cycle detection.
type Factory func(Resolver) (any, error)

// Resolver resolves services by name. Implemented by Container (root
// resolution, singleton and transient only), Scope (adds scoped services),
// and the internal resolver handed to factories.
type Resolver interface {
	Resolve(name string) (any, error)
	Has(name string) bool
}

type registration struct {
	name     string
	lifetime Lifetime
	factory  Factory

	// singleton state
	mu       sync.RWMutex
	built    bool
	instance any
}

// Builder accumulates service registrations. It is not safe for concurrent
// use; assemble the table from one goroutine, then Build.
type Builder struct {
	regs   map[string]*registration
	order  []string
	closed bool
}

// NewBuilder creates an empty registration table.
func NewBuilder() *Builder {
	return &Builder{regs: make(map[string]*registration)}
}

func (b *Builder) register(name string, lifetime Lifetime, factory Factory) error {
	if b.closed {
		return ErrBuilderClosed
	}
	if name == "" {
		return ErrEmptyName
	}
	if factory == nil {
		return ErrInvalidFactory
	}
	if _, exists := b.regs[name]; exists {
		return newResolutionError(name, nil, ErrAlreadyRegistered)
	}
	b.regs[name] = &registration{name: name, lifetime: lifetime, factory: factory}
	b.order = append(b.order, name)
	return nil
}

// RegisterSingleton registers a service constructed once per process.
func (b *Builder) RegisterSingleton(name string, factory Factory) error {
	return b.register(name, Singleton, factory)
}

// RegisterScoped registers a service constructed once per scope.
func (b *Builder) RegisterScoped(name string, factory Factory) error {
	return b.register(name, Scoped, factory)
}

// RegisterTransient registers a service constructed on every resolution.
func (b *Builder) RegisterTransient(name string, factory Factory) error {
	return b.register(name, Transient, factory)
}

// Build closes the table and returns the container. The builder must not be
// used afterwards.
func (b *Builder) Build() (*Container, error) {
	if b.closed {
		return nil, ErrBuilderClosed
	}
	b.closed = true
	return &Container{regs: b.regs, order: b.order}, nil
}

// Container resolves registered services. Immutable after Build; reads need
// no locking beyond per-registration singleton construction.
type Container struct {
	regs  map[string]*registration
	order []string
}

// Resolve resolves a singleton or transient service by name. Scoped services
// must be resolved through a Scope.
func (c *Container) Resolve(name string) (any, error) {
	r := resolver{container: c}
	return r.Resolve(name)
}

// Has reports whether a service name is registered.
func (c *Container) Has(name string) bool {
	_, ok := c.regs[name]
	return ok
}

// Services returns all registered service names in registration order.
func (c *Container) Services() []string {
	return append([]string(nil), c.order...)
}

// Lifetime returns the lifetime of a registered service.
func (c *Container) Lifetime(name string) (Lifetime, bool) {
	reg, ok := c.regs[name]
	if !ok {
		return "", false
	}
	return reg.lifetime, true
}

// BeginScope opens a new ownership boundary for scoped services. The caller
// must Close it.
func (c *Container) BeginScope() *Scope {
	return newScope(c)
}

// resolveSingleton constructs the singleton exactly once, even under
// concurrent first resolution.
func (c *Container) resolveSingleton(reg *registration, r *resolver) (any, error) {
	reg.mu.RLock()
	if reg.built {
		instance := reg.instance
		reg.mu.RUnlock()
		return instance, nil
	}
	reg.mu.RUnlock()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.built {
		return reg.instance, nil
	}

	instance, err := reg.factory(r)
	if err != nil {
		return nil, err
	}
	reg.built = true
	reg.instance = instance
	return instance, nil
}

// resolver carries the in-progress resolution stack used for cycle
// detection. A fresh one is created per top-level Resolve call.
type resolver struct {
	container *Container
	scope     *Scope // nil for root resolution
	stack     []string
}

func (r *resolver) Has(name string) bool {
	return r.container.Has(name)
}

func (r *resolver) Resolve(name string) (any, error) {
	for _, onStack := range r.stack {
		if onStack == name {
			return nil, newResolutionError(name, append(r.stack, name), ErrCircularDependency)
		}
	}

	reg, ok := r.container.regs[name]
	if !ok {
		return nil, newResolutionError(name, r.stack, ErrNotRegistered)
	}

	child := &resolver{
		container: r.container,
		scope:     r.scope,
		stack:     append(r.stack[:len(r.stack):len(r.stack)], name),
	}

	switch reg.lifetime {
	case Singleton:
		instance, err := r.container.resolveSingleton(reg, child)
		return instance, wrapResolution(name, r.stack, err)
	case Scoped:
		if r.scope == nil {
			return nil, newResolutionError(name, r.stack, ErrScopedOutsideScope)
		}
		instance, err := r.scope.resolveScoped(reg, child)
		return instance, wrapResolution(name, r.stack, err)
	default: // Transient
		instance, err := reg.factory(child)
		return instance, wrapResolution(name, r.stack, err)
	}
}

// wrapResolution adds service context to factory errors while leaving
// already-wrapped resolution errors intact.
func wrapResolution(name string, chain []string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*ResolutionError); ok {
		return err
	}
	return newResolutionError(name, chain, err)
}
