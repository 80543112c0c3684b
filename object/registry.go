package object

import (
	"fmt"
	"sync"
)

// FieldDef names one instance field in a class definition.
type FieldDef struct {
	Name       string
	Descriptor string
}

// Registry resolves classes by binary name. Classes are defined at bootstrap,
// before any fault can be dispatched; lookups afterward are read-only and safe
// from any thread.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// NewRegistry returns an empty class registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// Define registers a class extending super (nil only for the root class) with
// the given fields, and returns it. Field slots continue from the superclass,
// so inherited fields keep their slots in subclass instances.
// Panics if the name is already defined.
func (r *Registry) Define(name string, super *Class, fields ...FieldDef) *Class {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[name]; exists {
		panic(fmt.Sprintf("object: class %q already defined", name))
	}
	base := 0
	if super != nil {
		base = super.slots
	}
	cls := &Class{name: name, super: super, slots: base + len(fields)}
	for i, fd := range fields {
		cls.fields = append(cls.fields, &InstanceField{
			name:       fd.Name,
			descriptor: fd.Descriptor,
			slot:       base + i,
		})
	}
	r.classes[name] = cls
	return cls
}

// Lookup returns the class with the given binary name.
func (r *Registry) Lookup(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cls, ok := r.classes[name]
	return cls, ok
}

// MustLookup returns the class with the given binary name and panics if it
// was never defined. For use after bootstrap, where absence is a wiring bug.
func (r *Registry) MustLookup(name string) *Class {
	cls, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("object: class %q not defined", name))
	}
	return cls
}
