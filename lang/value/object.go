package value

import (
	"github.com/dolthub/swiss"

	"github.com/smile-lang/smile/lang/symbol"
)

// Object is a generic property bag, dispatched via its Kind's method table
// like every other value, treated opaquely by the VM. It is
// the catch-all kind user-level "classes" and library-defined record types
// are built from. Properties are kept in a swiss.Map rather than a plain Go
// map: a property bag is read far more often than it's mutated, the case
// the open-addressing swiss-table layout is tuned for.
type Object struct {
	tag   string // a human-readable label, not part of identity
	props *swiss.Map[symbol.Symbol, Value]
}

func NewObject(tag string) *Object {
	return &Object{tag: tag, props: swiss.NewMap[symbol.Symbol, Value](4)}
}

func (o *Object) Kind() Kind { return KindObject }
func (o *Object) String() string {
	if o.tag != "" {
		return "#<" + o.tag + ">"
	}
	return "#<object>"
}

func (o *Object) Get(name symbol.Symbol) (Value, bool) {
	return o.props.Get(name)
}

func (o *Object) Set(name symbol.Symbol, v Value) {
	o.props.Put(name, v)
}

// Each calls fn for every property currently set on o, in unspecified
// order; fn returning false stops the iteration early.
func (o *Object) Each(fn func(name symbol.Symbol, v Value) bool) {
	o.props.Iter(func(name symbol.Symbol, v Value) bool {
		return !fn(name, v)
	})
}

// Tag returns the object's diagnostic label (its user-visible "class name").
func (o *Object) Tag() string { return o.tag }
