package vm

import (
	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/value"
)

// findTill searches the dynamically active till-scope stack from the
// innermost outward for one named label, among possibly several a single
// $till declared. Unlike lexical resolution, this crosses Go call-stack
// (Smile call) boundaries freely: a $when inside a callback passed several
// calls deep can still reach a $till opened by one of its ancestors, as
// long as that scope is still active.
func (t *Thread) findTill(label symbol.Symbol) (tillScope, bool) {
	for i := len(t.tillStack) - 1; i >= 0; i-- {
		for _, l := range t.tillStack[i].labels {
			if l == label {
				return t.tillStack[i], true
			}
		}
	}
	return tillScope{}, false
}

// tillEndAddr scans forward from pc (the position of the till body's first
// instruction) to find the byte offset immediately following this till
// region's matching TillEnd, skipping over any nested $till bodies along
// the way. The caller always resumes from this address after the region
// closes, whether it closed by falling through to TillEnd normally or by a
// TillDo panicking out of it from somewhere in the middle: on the escape
// path, fr.pc is left wherever the panic happened, not at the region's end,
// so without this the outer loop would walk into the tail of the very body
// it just escaped, including that body's own TillEnd.
func tillEndAddr(code []byte, pc int) int {
	depth := 0
	for pc < len(code) {
		op := compiler.Opcode(code[pc])
		next := pc + 1
		if op >= compiler.OpcodeArgMin {
			_, next = decodeArg(code, next, isJumpOp(op))
		}
		switch op {
		case compiler.TillBegin:
			depth++
		case compiler.TillEnd:
			if depth == 0 {
				return next
			}
			depth--
		}
		pc = next
	}
	return pc
}

// runTill executes fr's $till body (the instructions from just after
// TillBegin through the matching TillEnd) as its own nested runFrom
// invocation, registering a fresh escape token for labels for the duration.
// A TillDo targeting this activation unwinds here via panic/recover
// (escapeSignal); any other panic (a genuine bug, a breakSignal meant for
// the top-level evaluator, or an escape meant for a scope further out) is
// re-raised unchanged. viaRet reports that the body actually executed a Ret
// (a plain function return reached from inside the till, not a $when
// escape): the caller must keep propagating that as a Ret of its own
// rather than treating result as the till expression's value and resuming
// after TillEnd.
func (t *Thread) runTill(fr *frame, labels []symbol.Symbol) (result value.Value, viaRet bool, err error) {
	token := new(int)
	t.tillStack = append(t.tillStack, tillScope{labels: labels, token: token})
	defer func() { t.tillStack = t.tillStack[:len(t.tillStack)-1] }()

	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			sig, ok := r.(escapeSignal)
			if !ok || sig.token != token {
				panic(r)
			}
			result, viaRet, err = sig.value, false, nil
		}()
		result, viaRet, err = t.runFrom(fr)
	}()
	return result, viaRet, err
}
