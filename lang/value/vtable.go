package value

import (
	"bytes"

	"github.com/smile-lang/smile/lang/symbol"
)

// Method is a built-in method implementation: a function bound to a (Kind,
// symbol) pair in the per-kind vtable of /§9. caller lets a
// method call back into the VM, e.g. to invoke a Smile function passed as an
// argument (the "each"/"map"/"where" family).
type Method func(caller Caller, recv Value, args []Value) (Value, error)

// vtables is the two-level dispatch table of :
// vtable[kind][symbol]. Because the set of kinds is fixed and small, the
// outer array is dense; the inner map is keyed by the small integer symbol
// ids, so it could equally be a sorted slice + binary search for hot paths —
// a map is used here for simplicity since the core's own built-in method set
// is intentionally small (the bulk of the standard library is an external
// collaborator per ).
var vtables [numKinds]map[symbol.Symbol]Method

// RegisterMethod binds name to fn for every value of Kind k. It is how the
// (out-of-scope) standard library of built-ins registers itself with the
// core, per "a way to register and invoke them".
func RegisterMethod(k Kind, name symbol.Symbol, fn Method) {
	if vtables[k] == nil {
		vtables[k] = make(map[symbol.Symbol]Method)
	}
	vtables[k][name] = fn
}

// LookupMethod returns the method bound to (v.Kind(), name), if any.
func LookupMethod(v Value, name symbol.Symbol) (Method, bool) {
	m, ok := vtables[v.Kind()][name]
	return m, ok
}

// CallMethod resolves and invokes the method named name on recv, per the
// dispatch rule of : read recv's kind tag, index into its method
// table by name; if absent, return an UnknownMethodError (the "missing
// method" fallback).
func CallMethod(recv Value, name symbol.Symbol, args []Value) (Value, error) {
	return CallMethodWith(nil, recv, name, args)
}

// CallMethodWith is like CallMethod but supplies a Caller so the method can
// invoke Smile function values itself.
func CallMethodWith(caller Caller, recv Value, name symbol.Symbol, args []Value) (Value, error) {
	m, ok := LookupMethod(recv, name)
	if !ok {
		return nil, &UnknownMethodError{Recv: recv.Kind(), Name: name}
	}
	return m(caller, recv, args)
}

// Compare implements the ordering comparisons (<, >, <=, >=) plus equality
// (==) and inequality (!=) that Binary delegates to when the Binary opcode
// carries one of those symbols. Numeric operands of the ordering
// comparisons are promoted per the lattice first.
// Equality ("==") is value equality for primitives and structural equality
// for lists; identity equality ("===", ) is Identical, a distinct
// function, since the two must not be conflated for user-defined kinds.
func Compare(op symbol.Symbol, x, y Value) (bool, error) {
	if op == symbol.SymEq {
		return Equal(x, y), nil
	}
	if op == symbol.SymNe {
		return !Equal(x, y), nil
	}

	xk, yk := x.Kind(), y.Kind()
	if xk.IsNumeric() && yk.IsNumeric() {
		pk, ok := promotedKind(xk, yk)
		if !ok {
			return false, &TypeMismatchError{X: xk, Y: yk}
		}
		px, py := promote(x, pk), promote(y, pk)
		var c int
		if pk.IsInteger() {
			a, b := AsInt64(px), AsInt64(py)
			switch {
			case a < b:
				c = -1
			case a > b:
				c = 1
			}
		} else {
			c = AsDecimal(px).Compare(AsDecimal(py))
		}
		return compareResult(op, c), nil
	}

	if ox, ok := x.(Ordered); ok {
		c, err := ox.Cmp(y)
		if err != nil {
			return false, err
		}
		return compareResult(op, c), nil
	}
	return false, &TypeMismatchError{X: xk, Y: yk}
}

func compareResult(op symbol.Symbol, c int) bool {
	switch op {
	case symbol.SymLt:
		return c < 0
	case symbol.SymGt:
		return c > 0
	case symbol.SymLe:
		return c <= 0
	case symbol.SymGe:
		return c >= 0
	}
	return false
}

// Ordered is implemented by any kind whose values support a three-way
// comparison beyond the numeric lattice (e.g. String).
type Ordered interface {
	Value
	Cmp(y Value) (int, error)
}

func (s String) Cmp(y Value) (int, error) {
	o, ok := y.(String)
	if !ok {
		return 0, &TypeMismatchError{X: s.Kind(), Y: y.Kind()}
	}
	return bytes.Compare([]byte(s), []byte(o)), nil
}

// Equal implements "==": value equality for primitives, structural equality
// for proper lists, identity equality for Pair/Object/UserFunction/
// NativeFunction.
func Equal(x, y Value) bool {
	if x.Kind() != y.Kind() {
		return false
	}
	switch xv := x.(type) {
	case Null:
		return true
	case Bool:
		return xv == y.(Bool)
	case Byte, Int16, Int32, Int64:
		return AsInt64(x) == AsInt64(y)
	case Real32, Real64, Real128:
		_ = xv
		return decimalEqual(x, y)
	case Symbol:
		return xv == y.(Symbol)
	case String:
		return xv == y.(String)
	case *List:
		return listEqual(xv, y.(*List))
	default:
		return x == y // identity for Pair/Object/*Function pointer-typed kinds
	}
}

func decimalEqual(x, y Value) bool {
	return AsDecimal(x).Eq(AsDecimal(y))
}

func listEqual(a, b *List) bool {
	var av, bv Value = a, b
	for {
		la, aok := av.(*List)
		lb, bok := bv.(*List)
		if aok != bok {
			return false
		}
		if !aok {
			return Equal(av, bv) // both Nil, or a dotted tail comparison
		}
		if !Equal(la.First, lb.First) {
			return false
		}
		av, bv = la.Rest, lb.Rest
	}
}

// Identical implements "===": reference identity for list/pair/object/
// function kinds, value identity for primitives. User-defined object kinds
// get no special-cased structural comparison here; that is left to
// whatever method the kind itself registers.
func Identical(x, y Value) bool {
	switch xv := x.(type) {
	case *List, *Pair, *Object:
		return x == y
	case *NativeFunction:
		return x == y
	default:
		_ = xv
		return Equal(x, y)
	}
}

// Hash returns a structural hash of v, for use as a map key. It returns
// ok=false for kinds with no defined hash (the three decimal kinds, Pair,
// Object, and function values), and for a list holding any of them,
// otherwise matching "Hashing exists for primitives, strings,
// symbols, and lists (structurally)".
func Hash(v Value) (h uint64, ok bool) {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211

	switch x := v.(type) {
	case Null:
		return 0, true
	case Bool:
		if x {
			return 1, true
		}
		return 2, true
	case Byte, Int16, Int32, Int64:
		return uint64(AsInt64(v)), true
	case Symbol:
		return uint64(x), true
	case String:
		return fnv1a(offset64, prime64, []byte(x)), true
	case *List:
		h = offset64
		cur := v
		for {
			switch c := cur.(type) {
			case Null:
				return h, true
			case *List:
				eh, eok := Hash(c.First)
				if !eok {
					return 0, false
				}
				h = (h ^ eh) * prime64
				cur = c.Rest
			default:
				return 0, false
			}
		}
	default:
		return 0, false
	}
}

func fnv1a(h, prime uint64, data []byte) uint64 {
	for _, b := range data {
		h ^= uint64(b)
		h *= prime
	}
	return h
}
