package compiler

import "github.com/smile-lang/smile/lang/value"

// Binding names a single local, parameter, or free variable slot, for
// diagnostics and disassembly.
type Binding struct {
	Name string
}

// ByteCodeSegment is the encoded instruction stream of a single compiled
// function plus the constant pool its Ld64/LdStr/LdObj instructions index
// into, one per function since Smile programs are compiled one function
// at a time rather than whole-file: there is no separate module/program
// unit above a single top-level function. Compile takes one
// syntax tree and returns one UserFunctionInfo.
type ByteCodeSegment struct {
	Code      []byte
	Constants []value.Value
	MaxStack  int
}

// ClosureInfo describes, at compile time, how one free variable referenced
// by a nested function is captured from its enclosing function: either a
// cell-boxed local slot of the immediate parent (ParentLocal >= 0) or a
// free variable the parent itself forwards from its own enclosing scope
// (ParentFree >= 0). Exactly one of the two is set, as an explicit
// descriptor so lang/vm does not need to re-derive the capture path at
// call time.
type ClosureInfo struct {
	Name        string
	ParentLocal int // index into the parent's Locals/Cells, or -1
	ParentFree  int // index into the parent's Freevars, or -1
}

// UserFunctionInfo is the compiled, immutable description of one Smile
// function: its code, its local/free-variable layout, and its parameter
// contract, extended with Defaults/Rest for the default-values-plus-a-
// single-rest-parameter argument-binding contract functions support.
type UserFunctionInfo struct {
	Name      string
	Code      *ByteCodeSegment
	Locals    []Binding
	Cells     []int // indices into Locals that are captured and must be heap cells
	Freevars  []ClosureInfo
	NumParams int
	Defaults  []*UserFunctionInfo // Defaults[i] invoked to produce param i's value when the caller omits it; nil entry = required
	HasRest   bool                // trailing rest parameter collects extra positional arguments into a List
}

// CompiledTables is the output of compiling one top-level syntax tree: the
// entry-point function plus every nested function literal reachable from
// it. There is no file/module/loads bookkeeping here: Smile has no
// multi-file module system, out of scope for this execution core.
type CompiledTables struct {
	Toplevel  *UserFunctionInfo
	Functions []*UserFunctionInfo
}

// FuncTemplate is a constant-pool marker produced by a $fn literal: it
// carries the compiled UserFunctionInfo for a nested function, to be turned
// into a real closure (capturing the defining frame's cells per
// Info.Freevars) each time the VM's LdObj handler loads it. There is no
// dedicated "make closure" opcode; this folds into the existing
// constant-load instruction instead.
type FuncTemplate struct {
	Info *UserFunctionInfo
}

func (f *FuncTemplate) Kind() value.Kind { return value.KindUserFunction }
func (f *FuncTemplate) String() string   { return "#<fn-template " + f.Info.Name + ">" }
