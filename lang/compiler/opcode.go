// Much of the bytecode encoding machinery in this package is adapted from
// the Starlark source code:
// https://github.com/google/starlark-go/tree/ee8ed142361c69d52fe8e9fb5e311d2a0a7c02de
//
// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import "fmt"

// Opcode is a single bytecode instruction tag. Every opcode is one byte;
// opcodes at or after OpcodeArgMin carry an additional operand, a varint for
// most instructions but a fixed 4 bytes (to allow back-patching) for jumps.
type Opcode uint8

const ( //nolint:revive
	Nop Opcode = iota

	// stack shuffling
	Dup1 //   x Dup1 x x
	Dup2 // x y Dup2 x y x y
	Pop1 //   x Pop1 -
	Pop2 // x y Pop2 -
	Rep1 //   x Rep1 -         like Pop1 but x is discarded without side effect check
	Rep2 // x y Rep2 -

	// literal loads
	LdNull //  - LdNull Null
	LdBool //  - LdBool<0|1>  Bool

	// local/frame-0 fast paths (the common case: the innermost frame)
	LdLoc0  //  - LdLoc0<slot>  value
	StLoc0  //  v StLoc0<slot> -
	StpLoc0 //  v StpLoc0<slot> v        (store, keep the value on the stack)

	// unary and binary operators; the actual operator symbol is carried as a
	// symbol-table operand, not baked into the opcode, so the value model's
	// arithmetic dispatch (lang/value.Binary/Unary) owns the operator set.
	Unary  //   x Unary<sym>  y
	Binary // x y Binary<sym> z

	// 0..7-argument primitive method calls; Met7 below this is encoded with a
	// varint for the method symbol and an explicit argument count is not
	// needed since it is baked into the mnemonic (keeps the common small-arity
	// calls branch-free in the VM's dispatch switch).
	Met0
	Met1
	Met2
	Met3
	Met4
	Met5
	Met6
	Met7

	Ret // value Ret -       return from the current function

	// --- opcodes with an argument below this line ---

	Dup //          - Dup<n>  (duplicates the top n values)
	Pop //          - Pop<n>  (pops n values)
	Rep //          - Rep<n>

	Brk //  value Brk<_>  -   suspend the whole evaluation at a breakpoint, producing an
	// EvalResult of kind Break carrying value (testing only); the operand is
	// an unused placeholder, the same way Ret's is

	Ld8  //  - Ld8<constant>   value   (Byte width)
	Ld16 //  - Ld16<constant>  value   (Int16 width)
	Ld32 //  - Ld32<constant>  value   (Int32 width)
	Ld64 //  - Ld64<constant>  value   (Int64 width, constant table index)

	LdSym //  - LdSym<symbol>  value
	LdStr //  - LdStr<constant> value
	LdObj //  - LdObj<constant> value  (a FuncTemplate becomes a new closure; any other constant is pushed as-is)

	LdLocN  //  - LdLocN<idx>   value   (idx indexes the running closure's own Captured array)
	StLocN  //  v StLocN<idx>   -
	StpLocN //  v StpLocN<idx>  v

	LdX //  - LdX<name>      value    (global/universal lookup by symbol)
	StX //  v StX<name>      -

	LdProp //  x LdProp<name>   y       y = x.name
	StProp //  x y StProp<name> -       x.name = y

	LdMember //  x i LdMember<n> y    member/index access with an arity-n key
	StMember //  x i v StMember<n> -

	Call //  fn a1..an Call<n>  result

	Label // pseudo-op reserved for symbolic jump targets; the compiler never
	// emits it (its jumps carry instruction indices instead), and the VM
	// treats it as a no-op if assembled text contains one.

	Jmp //    - Jmp<addr>  -
	Bt  // cond Bt<addr>   -       branch if truthy
	Bf  // cond Bf<addr>   -       branch if falsy

	// till/when escape machinery: TillBegin opens an escape scope identified
	// by one or more label names (a till may declare several named escape
	// targets at once, e.g. "till found, not-found do {...}"); its operand is
	// a constant-pool index of the label list, not a bare symbol. TillDo is
	// the actual escape instruction emitted by a "when" clause: it carries
	// the target label as its operand and unwinds to the matching TillBegin,
	// popping its value as the till block's result. TillEnd closes the scope.
	TillBegin //  - TillBegin<constant>  -        constant is a list of symbols
	TillDo    //  value TillDo<sym>      -        unwind to the till scope named sym
	TillEnd   //  - TillEnd              -

	// OpcodeArgMin starts at LdBool, not Dup: every opcode from here on
	// (LdBool's 0/1, LdLoc0/StLoc0/StpLoc0's slot, Unary/Binary's operator
	// symbol, Met0..Met7's method-name symbol, Ret's unused placeholder)
	// carries a real encoded operand, not just the handful after Ret whose
	// argument is itself variable-length (Dup/Pop/Rep/jumps/etc).
	OpcodeArgMin = LdBool
	OpcodeMax    = TillEnd
	opcodeJMPMin = Jmp
	opcodeJMPMax = Bf
)

var opcodeNames = [...]string{
	Nop:      "nop",
	Dup1:     "dup1",
	Dup2:     "dup2",
	Pop1:     "pop1",
	Pop2:     "pop2",
	Rep1:     "rep1",
	Rep2:     "rep2",
	LdNull:   "ldnull",
	LdBool:   "ldbool",
	LdLoc0:   "ldloc0",
	StLoc0:   "stloc0",
	StpLoc0:  "stploc0",
	Unary:    "unary",
	Binary:   "binary",
	Met0:     "met0",
	Met1:     "met1",
	Met2:     "met2",
	Met3:     "met3",
	Met4:     "met4",
	Met5:     "met5",
	Met6:     "met6",
	Met7:     "met7",
	Ret:      "ret",
	Dup:      "dup",
	Pop:      "pop",
	Rep:      "rep",
	Brk:      "brk",
	Ld8:      "ld8",
	Ld16:     "ld16",
	Ld32:     "ld32",
	Ld64:     "ld64",
	LdSym:    "ldsym",
	LdStr:    "ldstr",
	LdObj:    "ldobj",
	LdLocN:   "ldlocn",
	StLocN:   "stlocn",
	StpLocN:  "stplocn",
	LdX:      "ldx",
	StX:      "stx",
	LdProp:   "ldprop",
	StProp:   "stprop",
	LdMember: "ldmember",
	StMember: "stmember",
	Call:     "call",
	Label:    "label",
	Jmp:      "jmp",
	Bt:       "bt",
	Bf:       "bf",
	TillBegin: "tillbegin",
	TillDo:    "tilldo",
	TillEnd:   "tillend",
}

var reverseLookupOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, s := range opcodeNames {
		if s != "" {
			m[s] = Opcode(op)
		}
	}
	return m
}()

func isJump(op Opcode) bool {
	return opcodeJMPMin <= op && op <= opcodeJMPMax
}

// encodedSize returns the number of bytes required to encode op with arg.
func encodedSize(op Opcode, arg uint32) int {
	if op >= OpcodeArgMin {
		if isJump(op) {
			return 1 + 4 // padded to 4 bytes so back-patching never changes size
		}
		return 1 + varArgLen(arg)
	}
	return 1
}

func varArgLen(x uint32) int {
	n := 0
	for x >= 0x80 {
		n++
		x >>= 7
	}
	return n + 1
}

const variableStackEffect = 0x7f

// stackEffect records the static effect on the operand stack depth of each
// opcode that doesn't need the instruction's own argument to compute it
// (Call, Dup, Pop, Rep, LdMember and StMember are variable and computed
// from the argument instead, see insn.stackeffect in compiler.go).
var stackEffect = [...]int8{
	Nop:      0,
	Dup1:     +1,
	Dup2:     +2,
	Pop1:     -1,
	Pop2:     -2,
	Rep1:     -1,
	Rep2:     -2,
	LdNull:   +1,
	LdBool:   +1,
	LdLoc0:   +1,
	StLoc0:   -1,
	StpLoc0:  0,
	Unary:    0,
	Binary:   -1,
	Met0:     0,
	Met1:     -1,
	Met2:     -2,
	Met3:     -3,
	Met4:     -4,
	Met5:     -5,
	Met6:     -6,
	Met7:     -7,
	Ret:      -1,
	Dup:      variableStackEffect,
	Pop:      variableStackEffect,
	Rep:      variableStackEffect,
	Brk:      -1,
	Ld8:      +1,
	Ld16:     +1,
	Ld32:     +1,
	Ld64:     +1,
	LdSym:    +1,
	LdStr:    +1,
	LdObj:    +1,
	LdLocN:   +1,
	StLocN:   -1,
	StpLocN:  0,
	LdX:      +1,
	StX:      -1,
	LdProp:   0,
	StProp:   -2,
	LdMember: variableStackEffect,
	StMember: variableStackEffect,
	Call:     variableStackEffect,
	Label:    0,
	Jmp:      0,
	Bt:       -1,
	Bf:       -1,
	TillBegin: 0,
	TillDo:    -1,
	TillEnd:   0,
}

func (op Opcode) String() string {
	if op <= OpcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}
