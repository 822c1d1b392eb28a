// Package value implements Smile's tagged runtime value model: the fixed set
// of value Kinds the VM must distinguish, per-kind method
// dispatch, and the handful of value kinds (Null, Bool, the
// four integer widths, the three decimal-float widths, Symbol, String, List,
// Pair, Object) that have no dependency on compiled bytecode. UserFunction
// values, which close over a compiled function plus a captured call frame,
// are realized by the lang/vm package, which is the first layer down the
// dependency chain that has something to close over.
package value

import (
	"fmt"

	"github.com/smile-lang/smile/lang/symbol"
)

// Value is the interface implemented by every value the VM manipulates.
type Value interface {
	Kind() Kind
	String() string
}

// Caller lets a built-in method call back into the VM to invoke a Smile
// function value (e.g. the "each"/"map"/"where" primitive methods calling a
// user-supplied block). It is implemented by lang/vm.Thread; defining the
// interface here, rather than importing lang/vm, is what keeps this package
// free of the cyclic import that would otherwise exist between the value
// model and the VM.
type Caller interface {
	Call(fn Value, args []Value) (Value, error)
}

// Null is the type of the Null value. Per , the empty list and
// "null" are the same value, so Nil also stands for the List-shaped
// "empty list" case (see list.go).
type Null struct{}

// Nil is the sole Null value.
var Nil = Null{}

func (Null) Kind() Kind     { return KindNull }
func (Null) String() string { return "null" }

// Bool is the type of boolean values.
type Bool bool

const (
	False Bool = false
	True  Bool = true
)

func (b Bool) Kind() Kind { return KindBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Truthy implements the truthiness rule of : Null, Bool false,
// and numeric zero are falsy; everything else is truthy.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(x)
	case Byte:
		return x != 0
	case Int16:
		return x != 0
	case Int32:
		return x != 0
	case Int64:
		return x != 0
	case Real32:
		return !x.IsZeroValue()
	case Real64:
		return !x.IsZeroValue()
	case Real128:
		return !x.IsZeroValue()
	default:
		return true
	}
}

// Symbol wraps an interned symbol.Symbol as a first-class Value.
type Symbol symbol.Symbol

func (s Symbol) Kind() Kind     { return KindSymbol }
func (s Symbol) String() string { return fmt.Sprintf("#<symbol %d>", symbol.Symbol(s)) }

// String overrides Symbol's default Stringer naming collision: symbol.Symbol
// has no String method of its own (it is a bare integer id), so render it via
// the owning table when available; callers that only have the bare id use
// the numeric fallback above. NameIn resolves the symbol's spelling using
// the supplied table.
func (s Symbol) NameIn(t *symbol.Table) string { return t.GetName(symbol.Symbol(s)) }
