package vm

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryAttachDetach(t *testing.T) {
	r := NewThreadRegistry()

	_, ok := r.Current()
	require.False(t, ok)

	env, err := r.Attach(0x70000000, 65536)
	require.NoError(t, err)
	require.Equal(t, uintptr(0x70000000), env.Thread().StackBase())

	got, ok := r.Current()
	require.True(t, ok)
	require.Same(t, env, got)

	got, ok = r.Lookup(env.Thread().ID())
	require.True(t, ok)
	require.Same(t, env, got)

	require.NoError(t, r.Detach())
	_, ok = r.Current()
	require.False(t, ok)
	require.Error(t, r.Detach())
}

func TestRegistryRejectsDoubleAttach(t *testing.T) {
	r := NewThreadRegistry()
	_, err := r.Attach(0x1000, 64)
	require.NoError(t, err)
	defer r.Detach()

	_, err = r.Attach(0x2000, 64)
	require.Error(t, err)
}

func TestRegistryCustomIdentity(t *testing.T) {
	id := int64(41)
	r := NewThreadRegistry(WithIdentity(func() int64 { return id }))

	env, err := r.Attach(0x1000, 64)
	require.NoError(t, err)
	require.Equal(t, int64(41), env.Thread().ID())

	// A different identity no longer resolves to this environment.
	id = 42
	_, ok := r.Current()
	require.False(t, ok)

	id = 41
	got, ok := r.Current()
	require.True(t, ok)
	require.Same(t, env, got)
}

func TestRegistryConcurrentAttach(t *testing.T) {
	r := NewThreadRegistry()
	const n = 32

	var wg sync.WaitGroup
	errs := make(chan error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			env, err := r.Attach(0x1000, 64)
			if err != nil {
				errs <- err
				return
			}
			if _, ok := r.Lookup(env.Thread().ID()); !ok {
				errs <- errors.New("attached thread not visible in registry")
				return
			}
			errs <- r.Detach()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
