package vm

import (
	"context"

	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/value"
)

// tillScope is one dynamically active $till escape target: the labels it
// was opened under (a till may declare several at once), and a unique token
// identifying this particular activation (a fresh one every time the $till
// form runs, so a recursive function with its own $till of the same name
// nests correctly).
type tillScope struct {
	labels []symbol.Symbol
	token  *int
}

// escapeSignal is panicked by a TillDo instruction to unwind the Go call
// stack back to the runTill that opened the matching scope, however many
// frames (Smile calls, not just till nesting) separate the two: since this
// interpreter recurses through ordinary Go function calls for both Smile
// function calls and nested $till bodies, a label that lexically encloses a
// $fn literal invoked deep inside a callback needs to unwind through call
// frames a simple loop-and-return cannot reach. This is the idiomatic Go
// realization of a defer/catch side-table, generalized since till/when can
// target any lexically enclosing scope, not just the nearest one.
type escapeSignal struct {
	token *int
	value value.Value
}

// Thread is one independent execution context: its own operand-stack-owning
// call chain, step budget, and till-scope stack. Multiple Threads may share
// a Machine's globals and symbol table: there is no built-in concurrency
// primitive, but nothing stops an embedder from running more than one
// Thread over the same Machine.
type Thread struct {
	m   *Machine
	ctx context.Context

	steps    int64
	MaxSteps int64 // 0 means unlimited

	depth             int
	MaxCallStackDepth int // 0 means use defaultMaxCallStackDepth

	tillStack []tillScope
}

const defaultMaxCallStackDepth = 4000

// Reg returns the symbol table shared by this thread's Machine.
func (t *Thread) Reg() *symbol.Table { return t.m.Reg }

// Call implements value.Caller, letting a native function or primitive
// method (lang/stdlib's map/where/each/any?/all? family) invoke a Smile
// function value from Go code.
func (t *Thread) Call(fn value.Value, args []value.Value) (value.Value, error) {
	return t.callValue(fn, args)
}

func (t *Thread) maxDepth() int {
	if t.MaxCallStackDepth > 0 {
		return t.MaxCallStackDepth
	}
	return defaultMaxCallStackDepth
}

// checkBudget is called once per executed instruction. It reports a
// stack-overflow exception when the step budget is exhausted, and returns
// the context's own error when the surrounding context is cancelled. Either
// error ends the evaluation; $till/when does not catch errors.
func (t *Thread) checkBudget() error {
	t.steps++
	if t.MaxSteps > 0 && t.steps > t.MaxSteps {
		return value.NewException(symbol.SymStackOverflow, "step budget exceeded")
	}
	if t.ctx != nil {
		select {
		case <-t.ctx.Done():
			return t.ctx.Err()
		default:
		}
	}
	return nil
}
