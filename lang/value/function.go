package value

// UserFunction is the marker interface satisfied by the Value kind that
// closes over a compiled function plus a captured parent frame.
// Its concrete representation lives in lang/vm, the first package down this
// dependency chain that has a compiled function and a call-stack frame to
// reference; defining only the interface here keeps lang/value free of a
// dependency on lang/compiler, so the value model depends on the symbol
// table only.
type UserFunction interface {
	Value
	Name() string
}

// NativeFunction is a reference to a host-implemented function: the
// mechanism describes for consuming the (out-of-scope) standard
// library of built-ins. Unlike UserFunction, a NativeFunction needs nothing
// from the compiler, so it can be a concrete type here.
type NativeFunction struct {
	name string
	fn   func(caller Caller, args []Value) (Value, error)
}

// NewNativeFunction wraps fn as a callable Smile value named name.
func NewNativeFunction(name string, fn func(caller Caller, args []Value) (Value, error)) *NativeFunction {
	return &NativeFunction{name: name, fn: fn}
}

func (f *NativeFunction) Kind() Kind     { return KindNativeFunction }
func (f *NativeFunction) String() string { return "#<native " + f.name + ">" }
func (f *NativeFunction) Name() string   { return f.name }

// Invoke calls the wrapped host function. caller lets the native function
// call back into the VM (e.g. to invoke a Smile block passed as an
// argument), per "a way to register and invoke them".
func (f *NativeFunction) Invoke(caller Caller, args []Value) (Value, error) {
	return f.fn(caller, args)
}
