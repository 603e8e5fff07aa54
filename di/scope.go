package di

import (
	"errors"
	"sync"
)

// Scope is an ownership boundary for scoped services. Each scoped service is
// constructed at most once per scope and destroyed when the scope closes;
// instances never escape their scope. Scopes also resolve singleton and
// transient services by delegating to the container.
type Scope struct {
	container *Container

	mu      sync.Mutex
	closed  bool
	entries map[string]*scopeEntry
	order   []string // construction order, for reverse teardown
}

type scopeEntry struct {
	mu       sync.Mutex
	built    bool
	instance any
}

func newScope(c *Container) *Scope {
	return &Scope{
		container: c,
		entries:   make(map[string]*scopeEntry),
	}
}

// Resolve resolves a service of any lifetime within this scope.
func (s *Scope) Resolve(name string) (any, error) {
	r := resolver{container: s.container, scope: s}
	return r.Resolve(name)
}

// Has reports whether a service name is registered.
func (s *Scope) Has(name string) bool {
	return s.container.Has(name)
}

// resolveScoped returns the scope's instance for reg, constructing it on
// first resolution. Construction holds only the per-entry lock so factories
// may resolve further scoped dependencies.
func (s *Scope) resolveScoped(reg *registration, r *resolver) (any, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrScopeEnded
	}
	entry, ok := s.entries[reg.name]
	if !ok {
		entry = &scopeEntry{}
		s.entries[reg.name] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.built {
		return entry.instance, nil
	}

	instance, err := reg.factory(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.closed {
		// The scope closed while the instance was under construction; do not
		// let it escape teardown.
		s.mu.Unlock()
		if closer, ok := instance.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		return nil, ErrScopeEnded
	}
	entry.built = true
	entry.instance = instance
	s.order = append(s.order, reg.name)
	s.mu.Unlock()

	return instance, nil
}

// Close releases ownership of every scoped instance the scope constructed,
// finalizing instances that implement io.Closer's Close() error in reverse
// construction order. Close is idempotent; resolving through a closed scope
// fails with ErrScopeEnded.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	order := s.order
	entries := s.entries
	s.order = nil
	s.entries = nil
	s.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		entry := entries[order[i]]
		if closer, ok := entry.instance.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, newResolutionError(order[i], nil, err))
			}
		}
	}
	return errors.Join(errs...)
}
