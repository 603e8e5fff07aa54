package di

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for comparison with errors.Is.
var (
	ErrNotRegistered      = errors.New("service not registered")
	ErrAlreadyRegistered  = errors.New("service already registered")
	ErrCircularDependency = errors.New("circular dependency detected")
	ErrScopedOutsideScope = errors.New("scoped service must be resolved from a scope")
	ErrScopeEnded         = errors.New("scope already ended")
	ErrInvalidFactory     = errors.New("factory cannot be nil")
	ErrEmptyName          = errors.New("service name cannot be empty")
	ErrBuilderClosed      = errors.New("builder already built")
	ErrTypeMismatch       = errors.New("service type mismatch")
)

// ResolutionError wraps a failure during service resolution with the service
// name and the dependency chain that led to it.
type ResolutionError struct {
	Service string
	Chain   []string
	Err     error
}

func (e *ResolutionError) Error() string {
	if len(e.Chain) > 0 {
		return fmt.Sprintf("resolve %s: %v (chain: %s)", e.Service, e.Err, strings.Join(e.Chain, " -> "))
	}
	return fmt.Sprintf("resolve %s: %v", e.Service, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func newResolutionError(service string, chain []string, err error) *ResolutionError {
	return &ResolutionError{
		Service: service,
		Chain:   append([]string(nil), chain...),
		Err:     err,
	}
}
