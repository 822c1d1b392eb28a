package compiler

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/value"
)

// This file implements a human-readable/writable form of compiled tables,
// in the spirit of the Starlark-family "disassemble" tooling. It exists so
// tests can build and inspect bytecode without a surface-syntax parser, out
// of scope here.
//
// 	program:                            # required
//
// 	function: NAME <maxstack> <numparams> [+rest]
// 		constants:                        # optional, this function's own constant pool
// 			null
// 			bool   true
// 			int    1234
// 			string "abc"
// 			sym    foo
// 			func   adder                    # references a function declared elsewhere by name
// 			labels found not-found          # a TillBegin label-list constant
// 		locals:
// 			x
// 		cells:
// 			x
// 		freevars:
// 			y local 0                      # captures parent's local slot 0
// 			z free  1                      # forwards parent's own freevar 1
// 		code:
// 			ldnull
// 			jmp 3

var rxConstLineString = regexp.MustCompile(`^\s*string\s+(.+)$`)

var sections = map[string]bool{
	"program:":  true,
	"constants:": true,
	"function:":  true,
	"locals:":    true,
	"cells:":     true,
	"freevars:":  true,
	"code:":      true,
}

// Asm loads CompiledTables from their assembler textual format, interning
// the names of "sym" and "labels" constants into reg. Instruction operands
// (including the symbol operands of LdX/StX/Met*/TillDo) are written as
// plain numbers and are not interned.
func Asm(b []byte, reg *symbol.Table) (*CompiledTables, error) {
	a := &asmReader{s: bufio.NewScanner(bytes.NewReader(b)), reg: reg}
	fields := a.next()
	a.program(fields)

	var fns []*UserFunctionInfo
	fnByName := map[string]*UserFunctionInfo{}
	fields = a.next()
	for a.err == nil && len(fields) > 0 && strings.EqualFold(fields[0], "function:") {
		var fn *UserFunctionInfo
		fn, fields = a.function(fields)
		if fn == nil {
			break
		}
		fns = append(fns, fn)
		fnByName[fn.Name] = fn
	}

	if a.err == nil {
		for i, ref := range a.pendingFuncRefs {
			fn, ok := fnByName[ref.name]
			if !ok {
				a.err = fmt.Errorf("asm: undefined function reference %q in constants[%d]", ref.name, i)
				break
			}
			ref.fn.Code.Constants[ref.idx] = &FuncTemplate{Info: fn}
		}
	}

	if a.err == nil && len(fields) > 0 {
		a.err = fmt.Errorf("asm: unexpected section: %s", fields[0])
	}
	if a.err == nil && len(fns) == 0 {
		a.err = errors.New("asm: missing at least one function")
	}
	if a.err == nil {
		a.tables.Toplevel = fns[0]
		a.tables.Functions = fns[1:]
	}
	return a.tables, a.err
}

type funcRef struct {
	fn   *UserFunctionInfo
	idx  int
	name string
}

type asmReader struct {
	s               *bufio.Scanner
	reg             *symbol.Table
	rawLine         string
	tables          *CompiledTables
	fn              *UserFunctionInfo
	pendingFuncRefs []funcRef
	err             error
}

func (a *asmReader) program(fields []string) {
	if a.err != nil {
		return
	}
	if len(fields) == 0 || !strings.EqualFold(fields[0], "program:") {
		a.err = errors.New("asm: expected program section")
		return
	}
	a.tables = &CompiledTables{}
}

func (a *asmReader) constants(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "constants:") {
		return fields
	}
	for fields = a.next(); len(fields) > 0 && !sections[strings.ToLower(fields[0])]; fields = a.next() {
		var v value.Value
		switch strings.ToLower(fields[0]) {
		case "null":
			v = value.Nil
		case "bool":
			v = value.Bool(fields[1] == "true")
		case "int":
			n, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				a.err = fmt.Errorf("asm: invalid int constant: %w", err)
				return fields
			}
			v = value.Int64(n)
		case "string":
			m := rxConstLineString.FindStringSubmatch(a.rawLine)
			if m == nil {
				a.err = fmt.Errorf("asm: invalid string constant: %q", a.rawLine)
				return fields
			}
			qs, err := strconv.QuotedPrefix(m[1])
			if err != nil {
				a.err = fmt.Errorf("asm: invalid string constant: %w", err)
				return fields
			}
			s, err := strconv.Unquote(qs)
			if err != nil {
				a.err = fmt.Errorf("asm: invalid string constant: %w", err)
				return fields
			}
			v = value.String(s)
		case "sym":
			v = value.Symbol(a.reg.GetSymbol(fields[1]))
		case "func":
			a.pendingFuncRefs = append(a.pendingFuncRefs, funcRef{fn: a.fn, idx: len(a.fn.Code.Constants), name: fields[1]})
			v = value.Nil // placeholder, patched once all functions are known
		case "labels":
			syms := make([]value.Value, len(fields)-1)
			for i, name := range fields[1:] {
				syms[i] = value.Symbol(a.reg.GetSymbol(name))
			}
			v = value.NewList(syms)
		default:
			a.err = fmt.Errorf("asm: invalid constant kind: %s", fields[0])
			return fields
		}
		a.fn.Code.Constants = append(a.fn.Code.Constants, v)
	}
	return fields
}

func (a *asmReader) function(fields []string) (*UserFunctionInfo, []string) {
	if len(fields) < 4 {
		a.err = fmt.Errorf("asm: invalid function header: %q", strings.Join(fields, " "))
		return nil, nil
	}
	maxstack, _ := strconv.Atoi(fields[2])
	numparams, _ := strconv.Atoi(fields[3])
	hasRest := len(fields) > 4 && fields[4] == "+rest"
	fn := &UserFunctionInfo{
		Name:      fields[1],
		NumParams: numparams,
		HasRest:   hasRest,
		Code:      &ByteCodeSegment{MaxStack: maxstack},
		// The textual format has no syntax for per-parameter defaults, so
		// every parameter it declares is required; newFrame (lang/vm) still
		// indexes this slice by position up to NumParams regardless, so it
		// must be fully populated rather than left nil.
		Defaults: make([]*UserFunctionInfo, numparams),
	}
	a.fn = fn

	fields = a.next()
	fields = a.constants(fields)
	fields = a.locals(fields)
	fields = a.cells(fields)
	fields = a.freevars(fields)
	fields = a.code(fields)
	a.fn = nil
	return fn, fields
}

func (a *asmReader) locals(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "locals:") {
		return fields
	}
	for fields = a.next(); len(fields) > 0 && !sections[strings.ToLower(fields[0])]; fields = a.next() {
		a.fn.Locals = append(a.fn.Locals, Binding{Name: fields[0]})
	}
	return fields
}

func (a *asmReader) cells(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "cells:") {
		return fields
	}
outer:
	for fields = a.next(); len(fields) > 0 && !sections[strings.ToLower(fields[0])]; fields = a.next() {
		for i, l := range a.fn.Locals {
			if l.Name == fields[0] {
				a.fn.Cells = append(a.fn.Cells, i)
				continue outer
			}
		}
		a.err = fmt.Errorf("asm: cell %q is not a declared local", fields[0])
		return fields
	}
	return fields
}

func (a *asmReader) freevars(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "freevars:") {
		return fields
	}
	for fields = a.next(); len(fields) > 0 && !sections[strings.ToLower(fields[0])]; fields = a.next() {
		if len(fields) != 3 {
			a.err = fmt.Errorf("asm: invalid freevar: %q", strings.Join(fields, " "))
			return fields
		}
		idx, _ := strconv.Atoi(fields[2])
		ci := ClosureInfo{Name: fields[0], ParentLocal: -1, ParentFree: -1}
		switch fields[1] {
		case "local":
			ci.ParentLocal = idx
		case "free":
			ci.ParentFree = idx
		default:
			a.err = fmt.Errorf("asm: invalid freevar capture kind: %s", fields[1])
			return fields
		}
		a.fn.Freevars = append(a.fn.Freevars, ci)
	}
	return fields
}

func (a *asmReader) code(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "code:") {
		a.err = errors.New("asm: expected code section")
		return fields
	}
	var insns []insn
	for fields = a.next(); len(fields) > 0 && !sections[strings.ToLower(fields[0])]; fields = a.next() {
		op, ok := reverseLookupOpcode[strings.ToLower(fields[0])]
		if !ok {
			a.err = fmt.Errorf("asm: invalid opcode: %s", fields[0])
			return fields
		}
		var arg uint32
		if op >= OpcodeArgMin {
			if len(fields) != 2 {
				a.err = fmt.Errorf("asm: opcode %s requires an argument", fields[0])
				return fields
			}
			n, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				a.err = fmt.Errorf("asm: invalid argument for %s: %w", fields[0], err)
				return fields
			}
			arg = uint32(n)
		} else if len(fields) != 1 {
			a.err = fmt.Errorf("asm: opcode %s takes no argument", fields[0])
			return fields
		}
		insns = append(insns, insn{op: op, arg: arg})
	}
	code, maxstack, err := linearize(insns)
	if err != nil {
		a.err = err
		return fields
	}
	a.fn.Code.Code = code
	if a.fn.Code.MaxStack == 0 {
		a.fn.Code.MaxStack = maxstack
	}
	return fields
}

func (a *asmReader) next() []string {
	a.rawLine = ""
	if a.err != nil {
		return nil
	}
	for a.s.Scan() {
		line := a.s.Text()
		fields := strings.Fields(line)
		if len(fields) != 0 && !strings.HasPrefix(fields[0], "#") {
			for i, fld := range fields {
				if strings.HasPrefix(fld, "#") {
					fields = fields[:i]
					break
				}
			}
			a.rawLine = line
			return fields
		}
	}
	a.err = a.s.Err()
	return nil
}

// Dasm writes CompiledTables to their assembler textual format.
func Dasm(tables *CompiledTables, reg *symbol.Table) ([]byte, error) {
	d := &dasmWriter{buf: new(bytes.Buffer), reg: reg}
	d.write("program:\n")
	d.write("\n")
	d.function(tables.Toplevel)
	for _, fn := range tables.Functions {
		d.write("\n")
		d.function(fn)
	}
	return d.buf.Bytes(), d.err
}

type dasmWriter struct {
	buf *bytes.Buffer
	reg *symbol.Table
	err error
}

func (d *dasmWriter) constants(consts []value.Value) {
	if d.err != nil || len(consts) == 0 {
		return
	}
	d.write("\tconstants:\n")
	for _, c := range consts {
		switch v := c.(type) {
		case value.Null:
			d.write("\t\tnull\n")
		case value.Bool:
			d.writef("\t\tbool\t%t\n", bool(v))
		case value.Int64:
			d.writef("\t\tint\t%d\n", int64(v))
		case value.String:
			d.writef("\t\tstring\t%q\n", string(v))
		case value.Symbol:
			d.writef("\t\tsym\t%s\n", d.reg.GetName(symbol.Symbol(v)))
		case *FuncTemplate:
			d.writef("\t\tfunc\t%s\n", v.Info.Name)
		case *value.List:
			elems, ok := value.ListToSlice(v)
			if !ok {
				d.err = fmt.Errorf("dasm: unsupported list constant: %v", v)
				return
			}
			d.write("\t\tlabels")
			for _, e := range elems {
				sym, ok := e.(value.Symbol)
				if !ok {
					d.err = fmt.Errorf("dasm: label list constant contains a non-symbol element: %v", e)
					return
				}
				d.writef(" %s", d.reg.GetName(symbol.Symbol(sym)))
			}
			d.write("\n")
		default:
			d.err = fmt.Errorf("dasm: unsupported constant type: %T", c)
			return
		}
	}
}

func (d *dasmWriter) function(fn *UserFunctionInfo) {
	if d.err != nil {
		return
	}
	d.writef("function: %s %d %d", fn.Name, fn.Code.MaxStack, fn.NumParams)
	if fn.HasRest {
		d.write(" +rest")
	}
	d.write("\n")

	d.constants(fn.Code.Constants)
	if len(fn.Locals) > 0 {
		d.write("\tlocals:\n")
		for _, l := range fn.Locals {
			d.writef("\t\t%s\n", l.Name)
		}
	}
	if len(fn.Cells) > 0 {
		d.write("\tcells:\n")
		for _, c := range fn.Cells {
			d.writef("\t\t%s\n", fn.Locals[c].Name)
		}
	}
	if len(fn.Freevars) > 0 {
		d.write("\tfreevars:\n")
		for _, fv := range fn.Freevars {
			if fv.ParentLocal >= 0 {
				d.writef("\t\t%s local %d\n", fv.Name, fv.ParentLocal)
			} else {
				d.writef("\t\t%s free %d\n", fv.Name, fv.ParentFree)
			}
		}
	}

	d.write("\tcode:\n")
	addrToIndex := make([]int, len(fn.Code.Code))
	for i := range addrToIndex {
		addrToIndex[i] = -1
	}
	type decoded struct {
		op  Opcode
		arg uint32
	}
	var insns []decoded
	addr := 0
	for addr < len(fn.Code.Code) {
		op := Opcode(fn.Code.Code[addr])
		sz := 1
		var arg uint32
		if op >= OpcodeArgMin {
			v, n := binary.Uvarint(fn.Code.Code[addr+1:])
			if n <= 0 || v > math.MaxUint32 {
				d.err = fmt.Errorf("dasm: invalid operand in %s at %d", fn.Name, addr)
				return
			}
			arg = uint32(v)
			if isJump(op) && n < 4 {
				n = 4
			}
			sz += n
		}
		addrToIndex[addr] = len(insns)
		insns = append(insns, decoded{op: op, arg: arg})
		addr += sz
	}
	for _, ins := range insns {
		arg := ins.arg
		if isJump(ins.op) {
			if int(arg) >= len(addrToIndex) || addrToIndex[arg] == -1 {
				d.err = fmt.Errorf("dasm: invalid jump target in %s", fn.Name)
				return
			}
			arg = uint32(addrToIndex[arg])
		}
		if ins.op >= OpcodeArgMin {
			d.writef("\t\t%s %d\n", ins.op, arg)
		} else {
			d.writef("\t\t%s\n", ins.op)
		}
	}
}

func (d *dasmWriter) writef(format string, args ...any) { d.write(fmt.Sprintf(format, args...)) }

func (d *dasmWriter) write(s string) {
	if d.err != nil {
		return
	}
	_, d.err = d.buf.WriteString(s)
}
