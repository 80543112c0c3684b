package object

// Binary names of the bootstrap classes the fault path touches.
const (
	ObjectClass               = "java/lang/Object"
	ThrowableClass            = "java/lang/Throwable"
	ErrorClass                = "java/lang/Error"
	ExceptionClass            = "java/lang/Exception"
	RuntimeExceptionClass     = "java/lang/RuntimeException"
	NullPointerExceptionClass = "java/lang/NullPointerException"
	VirtualMachineErrorClass  = "java/lang/VirtualMachineError"
	StackOverflowErrorClass   = "java/lang/StackOverflowError"
	OutOfMemoryErrorClass     = "java/lang/OutOfMemoryError"
)

// StackStateField is the reserved long field on Throwable that carries the
// opaque handle of a captured call stack.
const (
	StackStateField      = "stackState"
	StackStateDescriptor = "J"
)

// Bootstrap returns a registry preloaded with the throwable hierarchy the
// fault path depends on.
func Bootstrap() *Registry {
	r := NewRegistry()
	obj := r.Define(ObjectClass, nil)
	throwable := r.Define(ThrowableClass, obj,
		FieldDef{Name: StackStateField, Descriptor: StackStateDescriptor})
	err := r.Define(ErrorClass, throwable)
	exc := r.Define(ExceptionClass, throwable)
	rte := r.Define(RuntimeExceptionClass, exc)
	r.Define(NullPointerExceptionClass, rte)
	vme := r.Define(VirtualMachineErrorClass, err)
	r.Define(StackOverflowErrorClass, vme)
	r.Define(OutOfMemoryErrorClass, vme)
	return r
}
