package compiler

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Disassemble renders a raw, address-annotated instruction listing of every
// function in tables (Toplevel first, then Functions in order). Unlike
// Dasm, whose output is meant to be reassembled by Asm, this view exists
// purely for human inspection: jump operands are left as absolute byte
// addresses into Code rather than rewritten to instruction indices, and
// every line carries its own address, the way a raw bytecode dump
// typically does.
func Disassemble(tables *CompiledTables) string {
	var sb strings.Builder
	fns := append([]*UserFunctionInfo{tables.Toplevel}, tables.Functions...)
	for i, fn := range fns {
		if i > 0 {
			sb.WriteByte('\n')
		}
		disassembleFunc(&sb, fn)
	}
	return sb.String()
}

func disassembleFunc(sb *strings.Builder, fn *UserFunctionInfo) {
	fmt.Fprintf(sb, "function %s (maxstack=%d, params=%d)\n", fn.Name, fn.Code.MaxStack, fn.NumParams)

	code := fn.Code.Code
	addr := 0
	for addr < len(code) {
		op := Opcode(code[addr])
		if op < OpcodeArgMin {
			fmt.Fprintf(sb, "%6d  %s\n", addr, op)
			addr++
			continue
		}

		v, n := binary.Uvarint(code[addr+1:])
		if n <= 0 || v > math.MaxUint32 {
			fmt.Fprintf(sb, "%6d  %s  <invalid operand>\n", addr, op)
			return
		}
		argLen := n
		if isJump(op) && argLen < 4 {
			argLen = 4
		}
		fmt.Fprintf(sb, "%6d  %-10s %d\n", addr, op, uint32(v))
		addr += 1 + argLen
	}
}
