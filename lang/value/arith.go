package value

import (
	"fmt"

	"github.com/smile-lang/smile/lang/decimal"
	"github.com/smile-lang/smile/lang/symbol"
)

// rank returns the position of Kind k in the numeric promotion lattice of
// : Byte ⊂ Int16 ⊂ Int32 ⊂ Int64; Real32 ⊂ Real64 ⊂ Real128;
// integer ⊂ decimal. It returns -1 for a non-numeric Kind.
func rank(k Kind) int {
	switch k {
	case KindByte:
		return 0
	case KindInt16:
		return 1
	case KindInt32:
		return 2
	case KindInt64:
		return 3
	case KindReal32:
		return 4
	case KindReal64:
		return 5
	case KindReal128:
		return 6
	default:
		return -1
	}
}

// promotedKind returns the Kind both operands of a binary numeric operation
// should be converted to.
func promotedKind(xk, yk Kind) (Kind, bool) {
	rx, ry := rank(xk), rank(yk)
	if rx < 0 || ry < 0 {
		return 0, false
	}
	if rx >= ry {
		return xk, true
	}
	return yk, true
}

// promote converts v, a numeric value, to the requested numeric Kind.
func promote(v Value, to Kind) Value {
	if v.Kind() == to {
		return v
	}
	if to.IsDecimal() {
		w := WidthOf(to)
		if v.Kind().IsDecimal() {
			return FromDecimal(to, AsDecimal(v))
		}
		return FromDecimal(to, decimal.FromInt64(w, AsInt64(v)))
	}
	return FromInt64(to, AsInt64(v))
}

// TypeMismatchError is returned when a primitive operation is applied to
// operands whose kinds are incompatible, corresponding to the runtime
// "type-mismatch" exception kind of .
type TypeMismatchError struct {
	Op   string
	X, Y Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: cannot apply %s to %s and %s", e.Op, e.X, e.Y)
}

// DivideByZeroError corresponds to the "divide-by-zero" exception kind.
type DivideByZeroError struct{}

func (e *DivideByZeroError) Error() string { return "divide by zero" }

// ArityError corresponds to the "arity" exception kind: a call supplied a
// number of arguments its callee's parameter list cannot accept. Max < 0
// means the callee has a rest parameter and accepts any number at or above
// Min.
type ArityError struct {
	Name     string
	Got      int
	Min, Max int
}

func (e *ArityError) Error() string {
	switch {
	case e.Max < 0:
		return fmt.Sprintf("%s: expected at least %d argument(s), got %d", e.Name, e.Min, e.Got)
	case e.Min == e.Max:
		return fmt.Sprintf("%s: expected %d argument(s), got %d", e.Name, e.Min, e.Got)
	default:
		return fmt.Sprintf("%s: expected %d to %d argument(s), got %d", e.Name, e.Min, e.Max, e.Got)
	}
}

// UnknownMethodError corresponds to the "unknown-method" exception kind.
type UnknownMethodError struct {
	Recv Kind
	Name symbol.Symbol
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("%s has no method (symbol %d)", e.Recv, e.Name)
}

// Binary evaluates a binary operator carried by the compiler's Binary opcode
// against x and y. The comparisons (<, >, <=, >=, ==, !=) go through Compare
// and yield a Bool. The arithmetic family (+, -, *, /, <<<, >>>) promotes
// numeric operands per the lattice above and dispatches to a vtable method
// otherwise (e.g. a user Object overloading "+").
func Binary(reg *symbol.Table, op symbol.Symbol, x, y Value) (Value, error) {
	switch op {
	case symbol.SymLt, symbol.SymGt, symbol.SymLe, symbol.SymGe, symbol.SymEq, symbol.SymNe:
		b, err := Compare(op, x, y)
		if err != nil {
			return nil, err
		}
		return Bool(b), nil
	}
	xk, yk := x.Kind(), y.Kind()
	if xk.IsNumeric() && yk.IsNumeric() {
		pk, ok := promotedKind(xk, yk)
		if !ok {
			return nil, &TypeMismatchError{Op: reg.GetName(op), X: xk, Y: yk}
		}
		return numericBinary(reg, op, promote(x, pk), promote(y, pk), pk)
	}
	return CallMethod(x, op, []Value{y})
}

func numericBinary(reg *symbol.Table, op symbol.Symbol, x, y Value, k Kind) (Value, error) {
	if k.IsInteger() {
		a, b := AsInt64(x), AsInt64(y)
		switch op {
		case symbol.SymPlus:
			return FromInt64(k, a+b), nil
		case symbol.SymMinus:
			return FromInt64(k, a-b), nil
		case symbol.SymStar:
			return FromInt64(k, a*b), nil
		case symbol.SymSlash:
			if b == 0 {
				return nil, &DivideByZeroError{}
			}
			return FromInt64(k, a/b), nil
		case symbol.SymShl:
			return FromInt64(k, int64(uint64(a)<<uint(b&63))), nil
		case symbol.SymShr:
			return FromInt64(k, int64(uint64(a)>>uint(b&63))), nil
		}
		return nil, &TypeMismatchError{Op: reg.GetName(op), X: k, Y: k}
	}

	da, db := AsDecimal(x), AsDecimal(y)
	switch op {
	case symbol.SymPlus:
		return FromDecimal(k, da.Add(db)), nil
	case symbol.SymMinus:
		return FromDecimal(k, da.Sub(db)), nil
	case symbol.SymStar:
		return FromDecimal(k, da.Mul(db)), nil
	case symbol.SymSlash:
		// IEEE-754 decimal division by zero yields Inf/NaN, never an
		// exception (boundary case distinguishes this from
		// integer division).
		return FromDecimal(k, da.Div(db)), nil
	}
	return nil, &TypeMismatchError{Op: reg.GetName(op), X: k, Y: k}
}

// Unary evaluates a unary arithmetic operator (+x, -x) against x. Any other
// operator symbol yields the bitwise complement of an integer operand and
// the absolute value of a decimal operand.
func Unary(reg *symbol.Table, op symbol.Symbol, x Value) (Value, error) {
	k := x.Kind()
	if !k.IsNumeric() {
		return CallMethod(x, op, nil)
	}
	if k.IsInteger() {
		n := AsInt64(x)
		switch op {
		case symbol.SymPlus:
			return x, nil
		case symbol.SymMinus:
			return FromInt64(k, -n), nil
		}
		return FromInt64(k, ^n), nil // bitwise complement, the "~" operator
	}
	d := AsDecimal(x)
	switch op {
	case symbol.SymPlus:
		return x, nil
	case symbol.SymMinus:
		return FromDecimal(k, d.Neg()), nil
	}
	return FromDecimal(k, d.Abs()), nil
}
