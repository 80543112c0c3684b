package vm

import (
	"fmt"
	"sync"

	"github.com/petermattis/goid"
)

// IdentityFunc returns the identity of the calling thread. The default uses
// goroutine IDs, which is correct once a goroutine is pinned to its OS thread.
// Ports that attach real foreign threads substitute their own source.
type IdentityFunc func() int64

// ThreadRegistry maps thread identities to their environments. Lookups run on
// the fault path and take no locks shared with the interrupted code; each
// entry is written only by its own thread at attach and detach.
type ThreadRegistry struct {
	identity IdentityFunc
	envs     sync.Map // int64 -> *Env
}

// RegistryOption is a configuration function for a ThreadRegistry.
type RegistryOption func(*ThreadRegistry)

// WithIdentity substitutes the thread identity source.
func WithIdentity(fn IdentityFunc) RegistryOption {
	return func(r *ThreadRegistry) {
		r.identity = fn
	}
}

// NewThreadRegistry returns an empty registry.
func NewThreadRegistry(opts ...RegistryOption) *ThreadRegistry {
	r := &ThreadRegistry{identity: goid.Get}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach registers an environment for the calling thread, whose stack grows
// down from stackBase above a guard region of guardSize bytes. Attaching a
// thread twice is an error.
func (r *ThreadRegistry) Attach(stackBase, guardSize uintptr) (*Env, error) {
	id := r.identity()
	env := NewEnv(NewThread(id, stackBase, guardSize))
	if _, loaded := r.envs.LoadOrStore(id, env); loaded {
		return nil, fmt.Errorf("vm: thread %d already attached", id)
	}
	return env, nil
}

// Detach removes the calling thread's environment.
func (r *ThreadRegistry) Detach() error {
	id := r.identity()
	if _, ok := r.envs.LoadAndDelete(id); !ok {
		return fmt.Errorf("vm: thread %d not attached", id)
	}
	return nil
}

// Current returns the calling thread's environment.
func (r *ThreadRegistry) Current() (*Env, bool) {
	return r.Lookup(r.identity())
}

// Lookup returns the environment attached under id.
func (r *ThreadRegistry) Lookup(id int64) (*Env, bool) {
	v, ok := r.envs.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Env), true
}
