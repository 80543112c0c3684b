// Package object holds the class metadata and instance representation the
// fault path works against: binary class names, superclass chains, instance
// fields addressed by (name, descriptor), and instances laid out as 64-bit
// field slots.
package object

import "fmt"

// Class is the runtime metadata for one managed class: its binary name, its
// superclass, and the instance fields it declares.
type Class struct {
	name   string
	super  *Class
	fields []*InstanceField
	slots  int // total instance slots, superclass chain included
}

// Name returns the class's binary name, e.g. "java/lang/StackOverflowError".
func (c *Class) Name() string {
	return c.name
}

// Super returns the superclass, or nil for the root class.
func (c *Class) Super() *Class {
	return c.super
}

// SlotCount returns the number of 64-bit field slots instances of c carry,
// superclass chain included.
func (c *Class) SlotCount() int {
	return c.slots
}

// IsSubclassOf reports whether c is other or a descendant of other.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.super {
		if cur == other {
			return true
		}
	}
	return false
}

// FindField returns the instance field with the given name and descriptor,
// searching c first and then its superclass chain.
func (c *Class) FindField(name, descriptor string) (*InstanceField, bool) {
	for cur := c; cur != nil; cur = cur.super {
		for _, f := range cur.fields {
			if f.name == name && f.descriptor == descriptor {
				return f, true
			}
		}
	}
	return nil, false
}

// InstanceField describes one declared instance field: its name, its JVM type
// descriptor, and the slot it occupies in instances of the declaring class.
// Every field occupies one 64-bit slot regardless of descriptor.
type InstanceField struct {
	name       string
	descriptor string
	slot       int
}

// Name returns the field name.
func (f *InstanceField) Name() string {
	return f.name
}

// Descriptor returns the JVM type descriptor, e.g. "J" for long.
func (f *InstanceField) Descriptor() string {
	return f.descriptor
}

// Slot returns the field's slot index within an instance.
func (f *InstanceField) Slot() int {
	return f.slot
}

// Instance is one allocated object: a class reference plus its field slots.
type Instance struct {
	class *Class
	slots []uint64
}

// NewInstance returns a zero-initialized instance of cls.
func NewInstance(cls *Class) *Instance {
	return &Instance{class: cls, slots: make([]uint64, cls.slots)}
}

// Class returns the instance's class.
func (o *Instance) Class() *Class {
	return o.class
}

// IsInstanceOf reports whether the instance's class is cls or a subclass.
func (o *Instance) IsInstanceOf(cls *Class) bool {
	return o.class.IsSubclassOf(cls)
}

// Long returns the value of a long field.
func (o *Instance) Long(f *InstanceField) int64 {
	o.checkField(f)
	return int64(o.slots[f.slot])
}

// SetLong stores v into a long field.
func (o *Instance) SetLong(f *InstanceField, v int64) {
	o.checkField(f)
	o.slots[f.slot] = uint64(v)
}

func (o *Instance) checkField(f *InstanceField) {
	if f.slot >= len(o.slots) {
		panic(fmt.Sprintf("object: field %s.%s does not belong to class %s",
			f.name, f.descriptor, o.class.name))
	}
}
