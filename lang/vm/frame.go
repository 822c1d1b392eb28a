package vm

import (
	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/value"
)

// frame is one activation of a Closure. Each frame owns its own operand
// stack slice (grown by append as needed) rather than sharing one
// thread-wide array indexed by a stack pointer, trading a single-allocation
// micro-optimization for a simpler, still entirely correct, per-call
// allocation.
type frame struct {
	closure *Closure
	cells   []*Cell
	stack   []value.Value
	pc      int
}

func (fr *frame) push(v value.Value) { fr.stack = append(fr.stack, v) }

func (fr *frame) pushAll(vs []value.Value) { fr.stack = append(fr.stack, vs...) }

func (fr *frame) pop() value.Value {
	n := len(fr.stack) - 1
	v := fr.stack[n]
	fr.stack = fr.stack[:n]
	return v
}

func (fr *frame) popN(n int) []value.Value {
	vs := make([]value.Value, n)
	copy(vs, fr.stack[len(fr.stack)-n:])
	fr.stack = fr.stack[:len(fr.stack)-n]
	return vs
}

func (fr *frame) top() value.Value { return fr.stack[len(fr.stack)-1] }

// newFrame binds args against cl's parameter contract (positional, with
// per-parameter defaults and an optional trailing rest
// parameter collecting the remainder into a List) and returns a fresh frame
// ready to run from pc 0. Every local slot is boxed as a *Cell uniformly,
// whether or not Info.Cells actually marks it captured: a plain slice of
// Cell pointers is simpler to get right than switching representations
// per-slot, at the cost of one allocation per local that a more aggressive
// VM would avoid for the common non-captured case (see DESIGN.md). A
// missing positional argument whose parameter has a default is filled by
// compiling that default into a zero-arg UserFunctionInfo (see
// lang/compiler's compileFn) and invoking it here, in the new scope, so it
// can see earlier parameters the same way a nested $fn literal would.
func newFrame(t *Thread, cl *Closure, args []value.Value) (*frame, error) {
	info := cl.Info
	fixed := info.NumParams
	if info.HasRest {
		fixed--
	}
	if !info.HasRest && len(args) > info.NumParams {
		return nil, &value.ArityError{Name: info.Name, Got: len(args), Min: minRequired(info, fixed), Max: info.NumParams}
	}
	required := minRequired(info, fixed)
	if len(args) < required {
		max := info.NumParams
		if info.HasRest {
			max = -1
		}
		return nil, &value.ArityError{Name: info.Name, Got: len(args), Min: required, Max: max}
	}

	cells := make([]*Cell, len(info.Locals))
	for i := range cells {
		cells[i] = newCell(value.Nil)
	}
	fr := &frame{closure: cl, cells: cells}
	for i := 0; i < fixed; i++ {
		if i < len(args) {
			cells[i].Value = args[i]
			continue
		}
		def := info.Defaults[i]
		if def == nil {
			continue
		}
		v, err := t.callClosure(closureFrom(fr, def), nil)
		if err != nil {
			return nil, err
		}
		cells[i].Value = v
	}
	if info.HasRest {
		var rest []value.Value
		if len(args) > fixed {
			rest = args[fixed:]
		}
		cells[fixed].Value = value.NewList(rest)
	}
	return fr, nil
}

func minRequired(info *compiler.UserFunctionInfo, fixed int) int {
	n := 0
	for i := 0; i < fixed; i++ {
		if info.Defaults[i] == nil {
			n++
		}
	}
	return n
}
