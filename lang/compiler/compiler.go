// The bytecode encoding machinery below (insn, linearize, addUint32) is
// adapted from the Starlark source code:
// https://github.com/google/starlark-go/tree/ee8ed142361c69d52fe8e9fb5e311d2a0a7c02de
//
// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler walks a homoiconic syntax tree (a value.Value, typically
// a *value.List whose head is a special-form Symbol) and compiles it to the
// bytecode instruction set of opcode.go. It also provides a textual
// assembler/disassembler (Asm/Dasm, in asm.go) that lets tests build and
// inspect programs without going through a surface-syntax parser, which is
// out of scope for this module.
package compiler

import (
	"fmt"

	"github.com/smile-lang/smile/internal/diag"
	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/value"
)

// insn is a not-yet-encoded instruction. Jump arguments hold the index into
// the owning function's insns slice of the target instruction, translated
// to a byte address only by linearize, mirroring asm.go
// code-section parser, which resolves the same kind of index-to-address
// mapping for the textual format.
type insn struct {
	op  Opcode
	arg uint32
}

func (i insn) stackeffect() int {
	if i.op == Dup {
		return int(i.arg)
	}
	if i.op == Pop || i.op == Rep || i.op == Call || i.op == LdMember {
		return -int(i.arg)
	}
	if i.op == StMember {
		return -int(i.arg) - 2
	}
	return int(stackEffect[i.op])
}

// linearize encodes insns (with index-valued jump arguments) into a byte
// code stream and returns the peak operand stack depth observed.
func linearize(insns []insn) (code []byte, maxstack int, err error) {
	indexToAddr := make([]int, len(insns))
	addr := 0
	for i, ins := range insns {
		indexToAddr[i] = addr
		addr += encodedSize(ins.op, ins.arg)
	}

	stack := 0
	for i, ins := range insns {
		arg := ins.arg
		if isJump(ins.op) {
			if arg >= uint32(len(indexToAddr)) {
				return nil, 0, fmt.Errorf("compiler: invalid jump target index %d at instruction %d", arg, i)
			}
			arg = uint32(indexToAddr[arg])
		}
		code = encodeInsn(code, ins.op, arg)

		stack += ins.stackeffect()
		if stack < 0 {
			return nil, 0, fmt.Errorf("compiler: stack underflow after instruction %d (%s)", i, ins.op)
		}
		if stack > maxstack {
			maxstack = stack
		}
	}
	return code, maxstack, nil
}

func encodeInsn(code []byte, op Opcode, arg uint32) []byte {
	code = append(code, byte(op))
	if op >= OpcodeArgMin {
		if isJump(op) {
			code = addUint32(code, arg, 4)
		} else {
			code = addUint32(code, arg, 0)
		}
	}
	return code
}

func addUint32(code []byte, x uint32, min int) []byte {
	end := len(code) + min
	for x >= 0x80 {
		code = append(code, byte(x)|0x80)
		x >>= 7
	}
	code = append(code, byte(x))
	for len(code) < end {
		code = append(code, byte(Nop))
	}
	return code
}

// blockScope is one lexical block within a function: a function body, a
// default-value expression, a $while body, or a $till body ($progn and $if
// branches do not open a block of their own). Locals declared in a block are released back to the
// owning CompileScope's slot freelist when the block ends, so sibling
// blocks reuse slot numbers instead of growing NumLocals unboundedly: a
// local-slot high-water-mark discipline applied directly during this
// single compile pass, since there is no separate name-resolution pass
// ahead of it.
type blockScope struct {
	parent *blockScope
	vars   map[symbol.Symbol]int
}

// CompileScope holds one function's compile-time state, including the
// chain to its lexically enclosing function (needed to resolve free
// variables and promote captured locals to heap cells).
type CompileScope struct {
	parent *CompileScope
	reg    *symbol.Table
	tables *CompiledTables
	fn     *UserFunctionInfo
	insns  []insn
	block  *blockScope

	nextSlot  int
	freeSlots []int

	tillStack []symbol.Symbol
	diags     *diag.List
}

func newCompileScope(parent *CompileScope, reg *symbol.Table, tables *CompiledTables, diags *diag.List, name string) *CompileScope {
	return &CompileScope{
		parent: parent,
		reg:    reg,
		tables: tables,
		fn:     &UserFunctionInfo{Name: name},
		block:  &blockScope{vars: map[symbol.Symbol]int{}},
		diags:  diags,
	}
}

func (cs *CompileScope) pushBlock() {
	cs.block = &blockScope{parent: cs.block, vars: map[symbol.Symbol]int{}}
}

// popBlock returns this block's local slots to the freelist, in no
// particular order: what matters for high-water-mark reuse is the count.
func (cs *CompileScope) popBlock() {
	for _, slot := range cs.block.vars {
		cs.freeSlots = append(cs.freeSlots, slot)
	}
	cs.block = cs.block.parent
}

// declareLocal allocates (reusing a freed slot when available) a local slot
// for name in the current block, extending fn.Locals/NumLocals as needed.
func (cs *CompileScope) declareLocal(name symbol.Symbol) int {
	var slot int
	if n := len(cs.freeSlots); n > 0 {
		slot = cs.freeSlots[n-1]
		cs.freeSlots = cs.freeSlots[:n-1]
	} else {
		slot = cs.nextSlot
		cs.nextSlot++
	}
	for len(cs.fn.Locals) <= slot {
		cs.fn.Locals = append(cs.fn.Locals, Binding{})
	}
	cs.fn.Locals[slot] = Binding{Name: cs.reg.GetName(name)}
	cs.block.vars[name] = slot
	return slot
}

// allocTempSlot reserves a local slot outside the block.vars name table, for
// compiler-internal bookkeeping (property/member $set needs somewhere to
// stash the assigned value while it stores it, see compileSet below, since
// neither StProp nor StMember has a "keep the stored value" variant the way
// StpLoc0/StpLocN do for plain variables). freeTempSlot returns it once the
// form finishes, the same freelist declareLocal's blocks use.
func (cs *CompileScope) allocTempSlot() int {
	var slot int
	if n := len(cs.freeSlots); n > 0 {
		slot = cs.freeSlots[n-1]
		cs.freeSlots = cs.freeSlots[:n-1]
	} else {
		slot = cs.nextSlot
		cs.nextSlot++
	}
	for len(cs.fn.Locals) <= slot {
		cs.fn.Locals = append(cs.fn.Locals, Binding{})
	}
	cs.fn.Locals[slot] = Binding{Name: "<tmp>"}
	return slot
}

func (cs *CompileScope) freeTempSlot(slot int) {
	cs.freeSlots = append(cs.freeSlots, slot)
}

func (cs *CompileScope) emit(op Opcode, arg uint32) int {
	cs.insns = append(cs.insns, insn{op: op, arg: arg})
	return len(cs.insns) - 1
}

func (cs *CompileScope) here() uint32 { return uint32(len(cs.insns)) }

func (cs *CompileScope) patchJump(idx int, target uint32) { cs.insns[idx].arg = target }

func (cs *CompileScope) addConstant(v value.Value) uint32 {
	for i, c := range cs.fn.Code.Constants {
		if value.Equal(c, v) {
			return uint32(i)
		}
	}
	cs.fn.Code.Constants = append(cs.fn.Code.Constants, v)
	return uint32(len(cs.fn.Code.Constants) - 1)
}

const (
	varLocal = iota
	varFree
	varGlobal
)

// resolve looks up name starting in cs's own block chain, then walks
// outward through enclosing CompileScopes, capturing a new freevar (and
// promoting the defining local to a heap cell) for every function boundary
// crossed. It returns varGlobal if name is bound nowhere in the lexical
// chain (a predeclared/universal binding, resolved at run time by symbol).
func (cs *CompileScope) resolve(name symbol.Symbol) (kind int, index int) {
	for b := cs.block; b != nil; b = b.parent {
		if slot, ok := b.vars[name]; ok {
			return varLocal, slot
		}
	}
	for i, fv := range cs.fn.Freevars {
		if fv.Name == cs.reg.GetName(name) {
			return varFree, i
		}
	}
	if cs.parent == nil {
		return varGlobal, 0
	}
	pkind, pidx := cs.parent.resolve(name)
	switch pkind {
	case varLocal:
		cs.parent.markCell(pidx)
		cs.fn.Freevars = append(cs.fn.Freevars, ClosureInfo{Name: cs.reg.GetName(name), ParentLocal: pidx, ParentFree: -1})
		return varFree, len(cs.fn.Freevars) - 1
	case varFree:
		cs.fn.Freevars = append(cs.fn.Freevars, ClosureInfo{Name: cs.reg.GetName(name), ParentLocal: -1, ParentFree: pidx})
		return varFree, len(cs.fn.Freevars) - 1
	default:
		return varGlobal, 0
	}
}

func (cs *CompileScope) markCell(slot int) {
	for _, c := range cs.fn.Cells {
		if c == slot {
			return
		}
	}
	cs.fn.Cells = append(cs.fn.Cells, slot)
}

// Compile compiles tree, a top-level syntax tree with no parameters, into
// tables.Toplevel and returns it. There is no "list of files" entry point:
// compilation always starts from a single expression, since there is no
// module system in scope here.
func Compile(tables *CompiledTables, reg *symbol.Table, tree value.Value, diags *diag.List) *UserFunctionInfo {
	cs := newCompileScope(nil, reg, tables, diags, "<toplevel>")
	cs.fn.Code = &ByteCodeSegment{}
	compileBody(cs, tree)
	cs.emit(Ret, 0)
	finish(cs)
	tables.Toplevel = cs.fn
	return cs.fn
}

func finish(cs *CompileScope) {
	code, maxstack, err := linearize(cs.insns)
	if err != nil {
		cs.diags.Addf(diag.Error, diag.Position{}, "%s", err)
		return
	}
	cs.fn.Code.Code = code
	cs.fn.Code.MaxStack = maxstack
}

// compileBody compiles a single form, leaving exactly one value on the
// stack: the result of evaluating tree.
func compileBody(cs *CompileScope, tree value.Value) {
	compileForm(cs, tree)
}

func compileForm(cs *CompileScope, form value.Value) {
	switch f := form.(type) {
	case value.Null:
		cs.emit(LdNull, 0)
	case value.Bool:
		arg := uint32(0)
		if f {
			arg = 1
		}
		cs.emit(LdBool, arg)
	case value.Byte:
		cs.emit(Ld8, uint32(f))
	case value.Int16:
		cs.emit(Ld16, uint32(uint16(f)))
	case value.Int32:
		cs.emit(Ld32, uint32(int32(f)))
	case value.Int64:
		cs.emit(Ld64, cs.addConstant(f))
	case value.Real32, value.Real64, value.Real128:
		cs.emit(LdObj, cs.addConstant(f))
	case value.String:
		cs.emit(LdStr, cs.addConstant(f))
	case value.Symbol:
		compileVarLoad(cs, symbol.Symbol(f))
	case *value.List:
		compileListForm(cs, f)
	default:
		cs.diags.Addf(diag.Error, diag.Position{}, "cannot compile value of kind %s as a form", form.Kind())
		cs.emit(LdNull, 0)
	}
}

func compileVarLoad(cs *CompileScope, name symbol.Symbol) {
	kind, idx := cs.resolve(name)
	switch kind {
	case varLocal:
		cs.emit(LdLoc0, uint32(idx))
	case varFree:
		cs.emit(LdLocN, uint32(idx))
	default:
		cs.emit(LdX, uint32(name))
	}
}

func compileVarStore(cs *CompileScope, name symbol.Symbol, keep bool) {
	kind, idx := cs.resolve(name)
	switch kind {
	case varLocal:
		if keep {
			cs.emit(StpLoc0, uint32(idx))
		} else {
			cs.emit(StLoc0, uint32(idx))
		}
	case varFree:
		if keep {
			cs.emit(StpLocN, uint32(idx))
		} else {
			cs.emit(StLocN, uint32(idx))
		}
	default:
		if keep {
			cs.emit(Dup1, 0)
		}
		cs.emit(StX, uint32(name))
	}
}

func compileListForm(cs *CompileScope, l *value.List) {
	elems, ok := value.ListToSlice(l)
	if !ok {
		cs.diags.Addf(diag.Error, diag.Position{}, "improper list is not a valid form")
		cs.emit(LdNull, 0)
		return
	}
	if len(elems) == 0 {
		cs.emit(LdNull, 0)
		return
	}
	if headSym, ok := elems[0].(value.Symbol); ok {
		switch symbol.Symbol(headSym) {
		case symbol.SymProgn:
			compileProgn(cs, elems[1:])
			return
		case symbol.SymSet:
			compileSet(cs, elems[1:])
			return
		case symbol.SymIf:
			compileIf(cs, elems[1:])
			return
		case symbol.SymWhile:
			compileWhile(cs, elems[1:])
			return
		case symbol.SymTill, symbol.SymTillLower:
			compileTill(cs, elems[1:])
			return
		case symbol.SymWhen:
			compileWhen(cs, elems[1:])
			return
		case symbol.SymFn:
			compileFn(cs, elems[1:])
			return
		case symbol.SymQuote:
			compileQuote(cs, elems[1:])
			return
		case symbol.SymDot:
			compileDot(cs, elems[1:])
			return
		case symbol.SymIndex:
			compileIndex(cs, elems[1:])
			return
		}
		if op, ok := binaryOp(symbol.Symbol(headSym)); ok && len(elems) == 3 {
			compileForm(cs, elems[1])
			compileForm(cs, elems[2])
			cs.emit(Binary, uint32(op))
			return
		}
		if op, ok := unaryOp(symbol.Symbol(headSym)); ok && len(elems) == 2 {
			compileForm(cs, elems[1])
			cs.emit(Unary, uint32(op))
			return
		}
	}
	compileApply(cs, elems)
}

func binaryOp(s symbol.Symbol) (symbol.Symbol, bool) {
	switch s {
	case symbol.SymPlus, symbol.SymMinus, symbol.SymStar, symbol.SymSlash,
		symbol.SymLt, symbol.SymGt, symbol.SymLe, symbol.SymGe,
		symbol.SymEq, symbol.SymNe, symbol.SymShl, symbol.SymShr:
		return s, true
	}
	return 0, false
}

func unaryOp(s symbol.Symbol) (symbol.Symbol, bool) {
	switch s {
	case symbol.SymPlus, symbol.SymMinus:
		return s, true
	}
	return 0, false
}

func compileProgn(cs *CompileScope, body []value.Value) {
	if len(body) == 0 {
		cs.emit(LdNull, 0)
		return
	}
	for i, f := range body {
		compileForm(cs, f)
		if i < len(body)-1 {
			cs.emit(Pop1, 0)
		}
	}
}

// compileSet implements ($set target value). target may be a bare Symbol
// (variable assignment), a ($dot recv name) form (property assignment), or
// an ($index coll key) form (member assignment). The first assignment to a
// not-yet-declared symbol within the current block declares a new local,
// matching a dynamically-typed, declaration-free assignment language.
func compileSet(cs *CompileScope, args []value.Value) {
	if len(args) != 2 {
		cs.diags.Addf(diag.Error, diag.Position{}, "$set requires exactly 2 arguments, got %d", len(args))
		cs.emit(LdNull, 0)
		return
	}
	target, valueForm := args[0], args[1]

	if sym, ok := target.(value.Symbol); ok {
		name := symbol.Symbol(sym)
		if _, declared := cs.block.vars[name]; !declared {
			if kind, _ := cs.resolve(name); kind == varGlobal {
				cs.declareLocal(name)
			}
		}
		compileForm(cs, valueForm)
		compileVarStore(cs, name, true)
		return
	}
	if lst, ok := target.(*value.List); ok {
		elems, _ := value.ListToSlice(lst)
		if len(elems) == 3 {
			if headSym, ok := elems[0].(value.Symbol); ok {
				switch symbol.Symbol(headSym) {
				case symbol.SymDot:
					// StProp has no "keep the value" variant the way
					// StpLoc0 does, and it needs its two operands (recv,
					// value) in exactly that stack order with nothing else
					// on top, so the assigned value is stashed in a temp
					// local rather than left duplicated on the stack.
					compileForm(cs, elems[1]) // recv
					compileForm(cs, valueForm)
					tmp := cs.allocTempSlot()
					cs.emit(StpLoc0, uint32(tmp))
					nameSym, _ := elems[2].(value.Symbol)
					cs.emit(StProp, uint32(nameSym))
					cs.emit(LdLoc0, uint32(tmp))
					cs.freeTempSlot(tmp)
					return
				case symbol.SymIndex:
					compileForm(cs, elems[1]) // coll
					compileForm(cs, elems[2]) // key
					compileForm(cs, valueForm)
					tmp := cs.allocTempSlot()
					cs.emit(StpLoc0, uint32(tmp))
					cs.emit(StMember, 1)
					cs.emit(LdLoc0, uint32(tmp))
					cs.freeTempSlot(tmp)
					return
				}
			}
		}
	}
	cs.diags.Addf(diag.Error, diag.Position{}, "invalid $set target")
	cs.emit(LdNull, 0)
}

func compileIf(cs *CompileScope, args []value.Value) {
	if len(args) < 2 || len(args) > 3 {
		cs.diags.Addf(diag.Error, diag.Position{}, "$if requires 2 or 3 arguments, got %d", len(args))
		cs.emit(LdNull, 0)
		return
	}
	compileForm(cs, args[0])
	bf := cs.emit(Bf, 0)
	compileForm(cs, args[1])
	jmp := cs.emit(Jmp, 0)
	cs.patchJump(bf, cs.here())
	if len(args) == 3 {
		compileForm(cs, args[2])
	} else {
		cs.emit(LdNull, 0)
	}
	cs.patchJump(jmp, cs.here())
}

// compileWhile implements ($while pre cond post), a pre-cond-post loop
// shape: pre runs once before the loop (its value discarded), cond is
// tested at the top of every iteration (a null cond makes the loop run
// forever, until escaped via till/when), and post is the iteration's body,
// its value overwriting a running result slot. A null pre/post is simply
// skipped. The loop's own value is the last value post produced, or Null if
// post is null or the loop never iterated.
func compileWhile(cs *CompileScope, args []value.Value) {
	if len(args) != 3 {
		cs.diags.Addf(diag.Error, diag.Position{}, "$while requires exactly 3 arguments (pre, cond, post), got %d", len(args))
		cs.emit(LdNull, 0)
		return
	}
	pre, cond, post := args[0], args[1], args[2]

	result := cs.allocTempSlot()
	cs.emit(LdNull, 0)
	cs.emit(StLoc0, uint32(result))

	if _, isNull := pre.(value.Null); !isNull {
		compileForm(cs, pre)
		cs.emit(Pop1, 0)
	}

	top := cs.here()
	hasCond := false
	var bf int
	if _, isNull := cond.(value.Null); !isNull {
		hasCond = true
		compileForm(cs, cond)
		bf = cs.emit(Bf, 0)
	}

	if _, isNull := post.(value.Null); !isNull {
		cs.pushBlock()
		compileForm(cs, post)
		cs.popBlock()
		cs.emit(StLoc0, uint32(result))
	}

	cs.emit(Jmp, top)
	if hasCond {
		cs.patchJump(bf, cs.here())
	}

	cs.emit(LdLoc0, uint32(result))
	cs.freeTempSlot(result)
}

// tillLabels accepts either a bare Symbol (a till with a single escape
// target) or a proper list of Symbols (several named targets opened by the
// same till, e.g. "till found, not-found do {...}"), returning the target
// set in declaration order.
func tillLabels(form value.Value) ([]symbol.Symbol, bool) {
	switch f := form.(type) {
	case value.Symbol:
		return []symbol.Symbol{symbol.Symbol(f)}, true
	case *value.List:
		elems, ok := value.ListToSlice(f)
		if !ok || len(elems) == 0 {
			return nil, false
		}
		labels := make([]symbol.Symbol, len(elems))
		for i, e := range elems {
			sym, ok := e.(value.Symbol)
			if !ok {
				return nil, false
			}
			labels[i] = symbol.Symbol(sym)
		}
		return labels, true
	}
	return nil, false
}

// compileTill implements ($till label body...), opening an escape scope
// under one or more named targets that a nested (when label value) form
// anywhere in body (including inside nested $fn literals) can jump directly
// out of via TillDo. The label set is stored in the constant pool since
// TillBegin carries only a single operand.
func compileTill(cs *CompileScope, args []value.Value) {
	if len(args) < 1 {
		cs.diags.Addf(diag.Error, diag.Position{}, "$till requires a label or a list of labels")
		cs.emit(LdNull, 0)
		return
	}
	labels, ok := tillLabels(args[0])
	if !ok {
		cs.diags.Addf(diag.Error, diag.Position{}, "$till label must be a symbol or a list of symbols")
		cs.emit(LdNull, 0)
		return
	}
	labelConsts := make([]value.Value, len(labels))
	for i, l := range labels {
		labelConsts[i] = value.Symbol(l)
	}
	cs.emit(TillBegin, cs.addConstant(value.NewList(labelConsts)))
	cs.tillStack = append(cs.tillStack, labels...)
	cs.pushBlock()
	compileProgn(cs, args[1:])
	cs.popBlock()
	cs.tillStack = cs.tillStack[:len(cs.tillStack)-len(labels)]
	cs.emit(TillEnd, 0)
}

// compileWhen implements (when label value): evaluate value and escape
// directly to the matching $till scope, wherever it lexically encloses
// this form (possibly outside the current function, across a closure
// boundary). A LdNull filler follows TillDo so compileForm's "exactly one
// value produced" invariant still holds for any (dead) code the caller
// emits after this form; it is never reached at run time.
func compileWhen(cs *CompileScope, args []value.Value) {
	if len(args) != 2 {
		cs.diags.Addf(diag.Error, diag.Position{}, "when requires a label and a value, got %d arguments", len(args))
		cs.emit(LdNull, 0)
		return
	}
	labelSym, ok := args[0].(value.Symbol)
	if !ok {
		cs.diags.Addf(diag.Error, diag.Position{}, "when label must be a symbol")
		cs.emit(LdNull, 0)
		return
	}
	compileForm(cs, args[1])
	cs.emit(TillDo, uint32(symbol.Symbol(labelSym)))
	cs.emit(LdNull, 0)
}

// compileFn implements ($fn (params...) body...), where params is a proper
// or dotted list of bare Symbols (a dotted tail names the rest parameter)
// and each element may instead be a *value.Pair{name, defaultLiteral} to
// give that parameter a default value. The compiled UserFunctionInfo is
// appended to the shared CompiledTables.Functions, and this form emits an
// LdObj of a FuncTemplate constant for it, which the VM turns into a closure
// over the current frame.
func compileFn(cs *CompileScope, args []value.Value) {
	if len(args) < 1 {
		cs.diags.Addf(diag.Error, diag.Position{}, "$fn requires a parameter list")
		cs.emit(LdNull, 0)
		return
	}
	paramList := args[0]
	body := args[1:]

	child := newCompileScope(cs, cs.reg, cs.tables, cs.diags, "<lambda>")
	child.fn.Code = &ByteCodeSegment{}

	var params []symbol.Symbol
	var defaultForms []value.Value
	hasRest := false

	cur := paramList
	for {
		switch c := cur.(type) {
		case value.Null:
			cur = nil
		case *value.List:
			switch p := c.First.(type) {
			case value.Symbol:
				params = append(params, symbol.Symbol(p))
				defaultForms = append(defaultForms, nil)
			case *value.Pair:
				nameSym, _ := p.First.(value.Symbol)
				params = append(params, symbol.Symbol(nameSym))
				defaultForms = append(defaultForms, p.Second)
			default:
				cs.diags.Addf(diag.Error, diag.Position{}, "invalid parameter form")
			}
			cur = c.Rest
			continue
		case value.Symbol:
			params = append(params, symbol.Symbol(c))
			defaultForms = append(defaultForms, nil)
			hasRest = true
			cur = nil
		default:
			cur = nil
		}
		break
	}

	for _, p := range params {
		child.declareLocal(p)
	}
	child.fn.NumParams = len(params)
	child.fn.HasRest = hasRest

	// Each default is its own zero-arg function nested under child, so it
	// can resolve an earlier parameter as a free variable exactly the way a
	// nested $fn literal would; lang/vm invokes it at call time, in the new
	// frame, only when the caller omits that argument.
	defaults := make([]*UserFunctionInfo, len(params))
	for i, form := range defaultForms {
		if form == nil {
			continue
		}
		defaults[i] = compileDefaultValue(child, form, i)
	}
	child.fn.Defaults = defaults

	child.pushBlock()
	compileProgn(child, body)
	child.popBlock()
	child.emit(Ret, 0)
	finish(child)

	cs.tables.Functions = append(cs.tables.Functions, child.fn)
	cs.emit(LdObj, cs.addConstant(&FuncTemplate{Info: child.fn}))
}

func compileDefaultValue(parent *CompileScope, form value.Value, paramIndex int) *UserFunctionInfo {
	d := newCompileScope(parent, parent.reg, parent.tables, parent.diags, fmt.Sprintf("<default-%d>", paramIndex))
	d.fn.Code = &ByteCodeSegment{}
	d.pushBlock()
	compileForm(d, form)
	d.popBlock()
	d.emit(Ret, 0)
	finish(d)
	parent.tables.Functions = append(parent.tables.Functions, d.fn)
	return d.fn
}

// compileQuote implements ($quote form): form is captured verbatim as a
// constant, never evaluated, matching Smile's homoiconic "the syntax tree
// is data" contract.
func compileQuote(cs *CompileScope, args []value.Value) {
	if len(args) != 1 {
		cs.diags.Addf(diag.Error, diag.Position{}, "$quote requires exactly 1 argument")
		cs.emit(LdNull, 0)
		return
	}
	cs.emit(LdObj, cs.addConstant(args[0]))
}

// compileDot implements both ($dot recv name) property access and
// ($dot recv name arg1 .. argN) primitive method calls (N <= 7).
func compileDot(cs *CompileScope, args []value.Value) {
	if len(args) < 2 {
		cs.diags.Addf(diag.Error, diag.Position{}, "$dot requires at least a receiver and a name")
		cs.emit(LdNull, 0)
		return
	}
	nameSym, ok := args[1].(value.Symbol)
	if !ok {
		cs.diags.Addf(diag.Error, diag.Position{}, "$dot name must be a symbol")
		cs.emit(LdNull, 0)
		return
	}
	compileForm(cs, args[0])
	callArgs := args[2:]
	if len(callArgs) == 0 {
		cs.emit(LdProp, uint32(symbol.Symbol(nameSym)))
		return
	}
	if len(callArgs) > 7 {
		cs.diags.Addf(diag.Error, diag.Position{}, "primitive method calls support at most 7 arguments, got %d", len(callArgs))
	}
	for _, a := range callArgs {
		compileForm(cs, a)
	}
	cs.emit(Met0+Opcode(len(callArgs)), uint32(symbol.Symbol(nameSym)))
}

// compileIndex implements ($index coll key): a single-key member read.
// Writes go through compileSet's ($index ...) target case instead.
func compileIndex(cs *CompileScope, args []value.Value) {
	if len(args) != 2 {
		cs.diags.Addf(diag.Error, diag.Position{}, "$index requires exactly 2 arguments")
		cs.emit(LdNull, 0)
		return
	}
	compileForm(cs, args[0])
	compileForm(cs, args[1])
	cs.emit(LdMember, 1)
}

// compileApply compiles a plain function application (head evaluated like
// any other form, followed by its arguments, followed by Call<n>).
func compileApply(cs *CompileScope, elems []value.Value) {
	compileForm(cs, elems[0])
	for _, a := range elems[1:] {
		compileForm(cs, a)
	}
	cs.emit(Call, uint32(len(elems)-1))
}
