package di

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name string
}

func TestBuilderRegistration(t *testing.T) {
	t.Run("rejects empty name", func(t *testing.T) {
		b := NewBuilder()
		err := b.RegisterSingleton("", func(Resolver) (any, error) { return nil, nil })
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("rejects nil factory", func(t *testing.T) {
		b := NewBuilder()
		err := b.RegisterSingleton("svc", nil)
		assert.ErrorIs(t, err, ErrInvalidFactory)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.RegisterSingleton("svc", func(Resolver) (any, error) { return &fakeService{}, nil }))
		err := b.RegisterTransient("svc", func(Resolver) (any, error) { return &fakeService{}, nil })
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("rejects use after build", func(t *testing.T) {
		b := NewBuilder()
		_, err := b.Build()
		require.NoError(t, err)

		assert.ErrorIs(t, b.RegisterSingleton("svc", func(Resolver) (any, error) { return nil, nil }), ErrBuilderClosed)
		_, err = b.Build()
		assert.ErrorIs(t, err, ErrBuilderClosed)
	})
}

func TestContainerIntrospection(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.RegisterSingleton("a", func(Resolver) (any, error) { return &fakeService{"a"}, nil }))
	require.NoError(t, b.RegisterScoped("b", func(Resolver) (any, error) { return &fakeService{"b"}, nil }))
	require.NoError(t, b.RegisterTransient("c", func(Resolver) (any, error) { return &fakeService{"c"}, nil }))

	c, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, c.Services())
	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("missing"))

	lt, ok := c.Lifetime("b")
	require.True(t, ok)
	assert.Equal(t, Scoped, lt)

	_, ok = c.Lifetime("missing")
	assert.False(t, ok)
}

func TestSingletonSharedAcrossResolutions(t *testing.T) {
	var calls atomic.Int32
	b := NewBuilder()
	require.NoError(t, b.RegisterSingleton("svc", func(Resolver) (any, error) {
		calls.Add(1)
		return &fakeService{"svc"}, nil
	}))
	c, err := b.Build()
	require.NoError(t, err)

	first, err := c.Resolve("svc")
	require.NoError(t, err)
	second, err := c.Resolve("svc")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSingletonConcurrentFirstResolution(t *testing.T) {
	var calls atomic.Int32
	b := NewBuilder()
	require.NoError(t, b.RegisterSingleton("svc", func(Resolver) (any, error) {
		calls.Add(1)
		return &fakeService{"svc"}, nil
	}))
	c, err := b.Build()
	require.NoError(t, err)

	const goroutines = 32
	instances := make([]any, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			instance, err := c.Resolve("svc")
			assert.NoError(t, err)
			instances[i] = instance
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 1; i < goroutines; i++ {
		assert.Same(t, instances[0], instances[i])
	}
}

func TestTransientConstructedPerResolution(t *testing.T) {
	var calls atomic.Int32
	b := NewBuilder()
	require.NoError(t, b.RegisterTransient("svc", func(Resolver) (any, error) {
		calls.Add(1)
		return &fakeService{"svc"}, nil
	}))
	c, err := b.Build()
	require.NoError(t, err)

	first, err := c.Resolve("svc")
	require.NoError(t, err)
	second, err := c.Resolve("svc")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), calls.Load())
}

func TestResolveNotRegistered(t *testing.T) {
	b := NewBuilder()
	c, err := b.Build()
	require.NoError(t, err)

	_, err = c.Resolve("missing")
	assert.ErrorIs(t, err, ErrNotRegistered)

	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "missing", re.Service)
}

func TestResolveDependencyChain(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.RegisterSingleton("db", func(Resolver) (any, error) {
		return &fakeService{"db"}, nil
	}))
	require.NoError(t, b.RegisterSingleton("repo", func(r Resolver) (any, error) {
		db, err := r.Resolve("db")
		if err != nil {
			return nil, err
		}
		return &fakeService{name: "repo/" + db.(*fakeService).name}, nil
	}))
	c, err := b.Build()
	require.NoError(t, err)

	repo, err := c.Resolve("repo")
	require.NoError(t, err)
	assert.Equal(t, "repo/db", repo.(*fakeService).name)
}

func TestResolveCircularDependency(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.RegisterSingleton("a", func(r Resolver) (any, error) {
		return r.Resolve("b")
	}))
	require.NoError(t, b.RegisterSingleton("b", func(r Resolver) (any, error) {
		return r.Resolve("a")
	}))
	c, err := b.Build()
	require.NoError(t, err)

	_, err = c.Resolve("a")
	assert.ErrorIs(t, err, ErrCircularDependency)

	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Chain, "a")
	assert.Contains(t, re.Chain, "b")
}

func TestResolveSelfCycle(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.RegisterTransient("a", func(r Resolver) (any, error) {
		return r.Resolve("a")
	}))
	c, err := b.Build()
	require.NoError(t, err)

	_, err = c.Resolve("a")
	assert.ErrorIs(t, err, ErrCircularDependency)
}

func TestResolveScopedFromRootFails(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.RegisterScoped("svc", func(Resolver) (any, error) { return &fakeService{}, nil }))
	c, err := b.Build()
	require.NoError(t, err)

	_, err = c.Resolve("svc")
	assert.ErrorIs(t, err, ErrScopedOutsideScope)
}

func TestResolveFactoryErrorWrapped(t *testing.T) {
	boom := errors.New("connect refused")
	b := NewBuilder()
	require.NoError(t, b.RegisterSingleton("db", func(Resolver) (any, error) {
		return nil, fmt.Errorf("open db: %w", boom)
	}))
	require.NoError(t, b.RegisterSingleton("repo", func(r Resolver) (any, error) {
		return r.Resolve("db")
	}))
	c, err := b.Build()
	require.NoError(t, err)

	_, err = c.Resolve("repo")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "db", re.Service)
}

func TestTypedHelpers(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, RegisterSingleton(b, "svc", func(Resolver) (*fakeService, error) {
		return &fakeService{"svc"}, nil
	}))
	require.NoError(t, RegisterValue(b, "answer", 42))
	c, err := b.Build()
	require.NoError(t, err)

	svc, err := Resolve[*fakeService](c, "svc")
	require.NoError(t, err)
	assert.Equal(t, "svc", svc.name)

	answer := Must[int](c, "answer")
	assert.Equal(t, 42, answer)

	_, err = Resolve[string](c, "svc")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	assert.Panics(t, func() { Must[*fakeService](c, "missing") })
}
