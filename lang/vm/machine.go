// Package vm implements Smile's fetch-decode-execute loop: the concrete
// Closure/Cell runtime representation (closure.go, cell.go, frame.go) plus
// the Machine/Thread pair that walks a compiler.CompiledTables' bytecode.
// Rather than a single-pass, non-reentrant interpreter loop, it recurses
// through ordinary Go calls for both Smile function calls and nested
// $till bodies, so till/when's escape (see thread.go's escapeSignal) can
// unwind across both uniformly.
package vm

import (
	"context"

	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/value"
)

// Machine owns the symbol table and global bindings shared by every Thread
// created from it. There is no predeclared-module/load() machinery here:
// that belongs to a surface-syntax module system, out of scope for this
// execution core.
type Machine struct {
	Reg     *symbol.Table
	Globals map[symbol.Symbol]value.Value
}

// NewMachine returns a Machine sharing reg, with an empty global namespace.
func NewMachine(reg *symbol.Table) *Machine {
	return &Machine{Reg: reg, Globals: make(map[symbol.Symbol]value.Value)}
}

// NewThread returns a fresh, independent execution context on m. ctx may be
// nil, disabling cancellation.
func (m *Machine) NewThread(ctx context.Context) *Thread {
	return &Thread{m: m, ctx: ctx}
}

// Run runs the already-compiled tables.Toplevel with no arguments, returning
// an EvalResult (EvalReturn or, if execution hit a Brk opcode, EvalBreak) or
// the error that terminated it: a *value.Exception (stack overflow, an
// undefined global, an unmatched escape), one of lang/value's
// ArityError/TypeMismatchError/DivideByZeroError/UnknownMethodError for a
// failed call or primitive operation, or a plain Go error for a context
// abort. Run never produces
// EvalParseErrors: tables is already compiled by the time it gets here; see
// EvalInScope for the entry point that can.
func (t *Thread) Run(tables *compiler.CompiledTables) (res *EvalResult, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		sig, ok := r.(breakSignal)
		if !ok {
			panic(r)
		}
		res, err = &EvalResult{Kind: EvalBreak, BreakClosure: sig.closure, BreakPC: sig.pc, BreakValue: sig.value}, nil
	}()
	v, err := t.callClosure(&Closure{Info: tables.Toplevel}, nil)
	if err != nil {
		return nil, err
	}
	return &EvalResult{Kind: EvalReturn, Value: v}, nil
}

// callValue dispatches a call to either kind of callable Value. Any other
// Kind is a type-mismatch: Smile has no implicit "coerce to function"
// conversion.
func (t *Thread) callValue(fn value.Value, args []value.Value) (value.Value, error) {
	switch f := fn.(type) {
	case *Closure:
		return t.callClosure(f, args)
	case *value.NativeFunction:
		return f.Invoke(t, args)
	default:
		return nil, &value.TypeMismatchError{Op: "call", X: fn.Kind(), Y: fn.Kind()}
	}
}

func (t *Thread) callClosure(cl *Closure, args []value.Value) (value.Value, error) {
	if t.depth >= t.maxDepth() {
		return nil, value.NewException(symbol.SymStackOverflow, "call stack depth exceeded")
	}
	fr, err := newFrame(t, cl, args)
	if err != nil {
		return nil, err
	}
	t.depth++
	defer func() { t.depth-- }()

	result, viaRet, err := t.runFrom(fr)
	if err != nil {
		return nil, err
	}
	if !viaRet {
		// A well-formed function body always ends in Ret; reaching the end
		// of the instruction stream via an unmatched TillEnd is a compiler
		// bug, not a user-reachable condition.
		return nil, value.NewException(symbol.SymNameNotFound, "function body did not end in a return")
	}
	return result, nil
}

// runFrom executes fr starting at its current pc until either a Ret
// instruction returns a value from the whole call (viaRet=true) or a
// TillEnd closes the nested $till region this particular invocation of
// runFrom was spawned to run (viaRet=false, used only by runTill's
// recursive call below). Every $till body is its own nested runFrom
// invocation so that a TillDo panicking from arbitrarily far down the
// dynamic call chain unwinds the Go stack back to exactly the runTill that
// opened the matching scope, wherever that is.
func (t *Thread) runFrom(fr *frame) (result value.Value, viaRet bool, err error) {
	code := fr.closure.Info.Code.Code
	consts := fr.closure.Info.Code.Constants
	reg := t.m.Reg

	for {
		if err := t.checkBudget(); err != nil {
			return nil, false, err
		}

		op := compiler.Opcode(code[fr.pc])
		pc := fr.pc + 1
		var arg uint32
		if op >= compiler.OpcodeArgMin {
			arg, pc = decodeArg(code, pc, isJumpOp(op))
		}
		fr.pc = pc

		switch op {
		case compiler.Nop, compiler.Label:
			// no-ops at run time

		case compiler.Dup1:
			fr.push(fr.top())
		case compiler.Dup2:
			vs := fr.popN(2)
			fr.push(vs[0])
			fr.push(vs[1])
			fr.push(vs[0])
			fr.push(vs[1])
		case compiler.Pop1, compiler.Rep1:
			fr.pop()
		case compiler.Pop2, compiler.Rep2:
			fr.popN(2)

		case compiler.LdNull:
			fr.push(value.Nil)
		case compiler.LdBool:
			fr.push(value.Bool(arg != 0))

		case compiler.LdLoc0:
			fr.push(fr.cells[arg].Value)
		case compiler.StLoc0:
			fr.cells[arg].Value = fr.pop()
		case compiler.StpLoc0:
			fr.cells[arg].Value = fr.top()

		case compiler.Unary:
			x := fr.pop()
			v, e := value.Unary(reg, symbol.Symbol(arg), x)
			if e != nil {
				return nil, false, e
			}
			fr.push(v)
		case compiler.Binary:
			vs := fr.popN(2)
			v, e := value.Binary(reg, symbol.Symbol(arg), vs[0], vs[1])
			if e != nil {
				return nil, false, e
			}
			fr.push(v)

		case compiler.Met0, compiler.Met1, compiler.Met2, compiler.Met3,
			compiler.Met4, compiler.Met5, compiler.Met6, compiler.Met7:
			n := int(op - compiler.Met0)
			callArgs := fr.popN(n)
			recv := fr.pop()
			v, e := value.CallMethodWith(t, recv, symbol.Symbol(arg), callArgs)
			if e != nil {
				return nil, false, e
			}
			fr.push(v)

		case compiler.Ret:
			return fr.pop(), true, nil

		case compiler.Dup:
			n := int(arg)
			vs := fr.popN(n)
			fr.pushAll(vs)
			fr.pushAll(vs)
		case compiler.Pop:
			fr.popN(int(arg))
		case compiler.Rep:
			fr.popN(int(arg))

		case compiler.Brk:
			// Suspends the whole evaluation at a breakpoint (testing only):
			// unlike TillDo this never matches a $till scope's recover, so
			// it unwinds all the way up to Thread.Run/EvalInScope.
			v := fr.pop()
			panic(breakSignal{closure: fr.closure, pc: fr.pc, value: v})

		case compiler.Ld8:
			fr.push(value.Byte(arg))
		case compiler.Ld16:
			fr.push(value.Int16(int16(arg)))
		case compiler.Ld32:
			fr.push(value.Int32(int32(arg)))
		case compiler.Ld64:
			fr.push(consts[arg])

		case compiler.LdSym:
			fr.push(value.Symbol(arg))
		case compiler.LdStr:
			fr.push(consts[arg])
		case compiler.LdObj:
			fr.push(t.loadObj(fr, consts[arg]))

		case compiler.LdLocN:
			fr.push(fr.closure.Captured[arg].Value)
		case compiler.StLocN:
			fr.closure.Captured[arg].Value = fr.pop()
		case compiler.StpLocN:
			fr.closure.Captured[arg].Value = fr.top()

		case compiler.LdX:
			v, ok := t.m.Globals[symbol.Symbol(arg)]
			if !ok {
				return nil, false, value.NewException(symbol.SymNameNotFound,
					"name not defined: "+reg.GetName(symbol.Symbol(arg)))
			}
			fr.push(v)
		case compiler.StX:
			t.m.Globals[symbol.Symbol(arg)] = fr.pop()

		case compiler.LdProp:
			recv := fr.pop()
			v, e := loadProp(recv, symbol.Symbol(arg))
			if e != nil {
				return nil, false, e
			}
			fr.push(v)
		case compiler.StProp:
			vs := fr.popN(2)
			if e := storeProp(vs[0], symbol.Symbol(arg), vs[1]); e != nil {
				return nil, false, e
			}

		case compiler.LdMember:
			vs := fr.popN(int(arg) + 1)
			v, e := loadMember(vs[0], vs[1:])
			if e != nil {
				return nil, false, e
			}
			fr.push(v)
		case compiler.StMember:
			vs := fr.popN(int(arg) + 2)
			n := len(vs)
			if e := storeMember(vs[0], vs[1:n-1], vs[n-1]); e != nil {
				return nil, false, e
			}

		case compiler.Call:
			n := int(arg)
			callArgs := fr.popN(n)
			fn := fr.pop()
			v, e := t.callValue(fn, callArgs)
			if e != nil {
				return nil, false, e
			}
			fr.push(v)

		case compiler.Jmp:
			fr.pc = int(arg)
		case compiler.Bt:
			if value.Truthy(fr.pop()) {
				fr.pc = int(arg)
			}
		case compiler.Bf:
			if !value.Truthy(fr.pop()) {
				fr.pc = int(arg)
			}

		case compiler.TillBegin:
			// fr.pc already sits at the body's first instruction; find
			// where this region's own TillEnd leaves off so we always
			// resume there, whether the body fell through normally or a
			// TillDo panicked out of it from the middle (see escape.go's
			// tillEndAddr doc comment). The operand indexes a constant-pool
			// list of the labels this till opened (one or more).
			endPC := tillEndAddr(code, fr.pc)
			elems, _ := value.ListToSlice(consts[arg])
			labels := make([]symbol.Symbol, len(elems))
			for i, e := range elems {
				sym, _ := e.(value.Symbol)
				labels[i] = symbol.Symbol(sym)
			}
			v, viaRet, e := t.runTill(fr, labels)
			if e != nil {
				return nil, false, e
			}
			if viaRet {
				return v, true, nil
			}
			fr.pc = endPC
			fr.push(v)

		case compiler.TillDo:
			v := fr.pop()
			label := symbol.Symbol(arg)
			scope, ok := t.findTill(label)
			if !ok {
				return nil, false, value.NewException(symbol.SymNameNotFound,
					"no active $till scope named "+reg.GetName(label))
			}
			panic(escapeSignal{token: scope.token, value: v})

		case compiler.TillEnd:
			return fr.pop(), false, nil

		default:
			return nil, false, value.NewException(symbol.SymTypeMismatch, "illegal opcode")
		}
	}
}

// isJumpOp reports whether op's operand is a bytecode address rather than
// an ordinary varint-encoded value (used by both the main decode loop and
// escape.go's tillEndAddr scan).
func isJumpOp(op compiler.Opcode) bool {
	return op == compiler.Jmp || op == compiler.Bt || op == compiler.Bf
}

// decodeArg decodes a little-endian base-128 varint operand starting at pc.
// Jump operands are always exactly 4 bytes wide regardless of how many of
// those bytes the varint encoding itself needed, matching the compiler's
// addUint32(..., 4) padding (see lang/compiler/compiler.go); every other
// operand ends at its own terminating byte.
func decodeArg(code []byte, pc int, isJump bool) (arg uint32, next int) {
	var shift uint
	p := pc
	for {
		b := code[p]
		p++
		arg |= uint32(b&0x7f) << shift
		if b < 0x80 {
			break
		}
		shift += 7
	}
	if isJump {
		return arg, pc + 4
	}
	return arg, p
}

// loadObj realizes a constant-pool value for LdObj: a *compiler.FuncTemplate
// becomes a freshly captured Closure (the compiler's stand-in for a
// dedicated MAKEFUNC opcode, see compiled.go's FuncTemplate doc comment);
// every other constant (a quoted form, a decimal literal) is pushed as-is.
func (t *Thread) loadObj(fr *frame, c value.Value) value.Value {
	if tmpl, ok := c.(*compiler.FuncTemplate); ok {
		return makeClosure(fr, tmpl)
	}
	return c
}
