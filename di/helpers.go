package di

import "fmt"

// Resolve resolves a service with type safety.
func Resolve[T any](r Resolver, name string) (T, error) {
	var zero T
	instance, err := r.Resolve(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: service %s is not of type %T", ErrTypeMismatch, name, zero)
	}
	return typed, nil
}

// Must resolves or panics. Use only during startup wiring.
func Must[T any](r Resolver, name string) T {
	instance, err := Resolve[T](r, name)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", name, err))
	}
	return instance
}

// RegisterSingleton is a typed convenience wrapper.
func RegisterSingleton[T any](b *Builder, name string, factory func(Resolver) (T, error)) error {
	return b.RegisterSingleton(name, func(r Resolver) (any, error) {
		return factory(r)
	})
}

// RegisterScoped is a typed convenience wrapper.
func RegisterScoped[T any](b *Builder, name string, factory func(Resolver) (T, error)) error {
	return b.RegisterScoped(name, func(r Resolver) (any, error) {
		return factory(r)
	})
}

// RegisterTransient is a typed convenience wrapper.
func RegisterTransient[T any](b *Builder, name string, factory func(Resolver) (T, error)) error {
	return b.RegisterTransient(name, func(r Resolver) (any, error) {
		return factory(r)
	})
}

// RegisterValue registers a pre-built instance as a singleton.
func RegisterValue[T any](b *Builder, name string, instance T) error {
	return b.RegisterSingleton(name, func(Resolver) (any, error) {
		return instance, nil
	})
}
