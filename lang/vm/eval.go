package vm

import (
	"github.com/smile-lang/smile/internal/diag"
	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/value"
)

// EvalResultKind distinguishes the outcomes evaluating an entry point can
// have, beyond an outright error (reported as a plain Go error alongside
// EvalResult, the same way every other method in this package reports a
// failed evaluation rather than folding it in as a result kind).
type EvalResultKind int

const (
	EvalReturn      EvalResultKind = iota // ordinary result, in Value
	EvalBreak                             // hit a Brk opcode; see BreakClosure/BreakPC/BreakValue
	EvalParseErrors                       // compile-time errors; see ParseErrors
)

// EvalResult is the outcome of running one compiled entry point.
type EvalResult struct {
	Kind EvalResultKind

	Value value.Value // meaningful when Kind == EvalReturn

	// meaningful when Kind == EvalBreak: the closure and byte-code pointer
	// the VM was sitting at when it hit the Brk opcode, and the value it
	// was about to suspend with, for inspection (testing only).
	BreakClosure *Closure
	BreakPC      int
	BreakValue   value.Value

	// meaningful when Kind == EvalParseErrors: produced only by
	// EvalInScope, never by Run, since Run always receives already-compiled
	// tables and so never sees a compile error.
	ParseErrors []diag.Diagnostic
}

// breakSignal is panicked by a Brk instruction to suspend the whole
// evaluation. Unlike escapeSignal, it is never caught by runTill: its type
// assertion there always misses, so it propagates past every active $till
// scope, however many are nested, all the way up to Run/EvalInScope's own
// recover.
type breakSignal struct {
	closure *Closure
	pc      int
	value   value.Value
}

// EvalInScope compiles tree fresh (there is no incremental-scope-extension
// machinery here: Smile's persistent cross-evaluation state lives in
// Machine.Globals, a symbol-keyed map, not a slot-indexed closure scope, so
// every call gets its own throwaway CompiledTables) and runs it, the entry
// point a REPL or similar interactive host uses instead of Run. Unlike Run,
// it can produce EvalParseErrors when tree fails to compile.
func (t *Thread) EvalInScope(tree value.Value) (*EvalResult, error) {
	diags := diag.NewList(false)
	tables := &compiler.CompiledTables{}
	compiler.Compile(tables, t.m.Reg, tree, diags)
	if diags.HasErrors() {
		return &EvalResult{Kind: EvalParseErrors, ParseErrors: diags.Items()}, nil
	}
	return t.Run(tables)
}
